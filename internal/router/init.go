package router

import (
	"github.com/marketmapper/marketmapper/internal/application"
	"github.com/marketmapper/marketmapper/internal/container"
	pginfra "github.com/marketmapper/marketmapper/internal/infrastructure/postgres"
	handlers "github.com/marketmapper/marketmapper/internal/interface/http"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
	"github.com/marketmapper/marketmapper/internal/router/modules"
	"github.com/marketmapper/marketmapper/pkg/helpers"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	reportRepo := pginfra.NewReportRepository(container.GetPGPool())

	authSvc := application.NewAuthService(userRepo, container.GetRabbitPub(), logger, cfg.MailSendEnabled)
	reportSvc := application.NewReportService(reportRepo, logger, container.GetES(), cfg.ESReportsIndex)
	analysisSvc := application.NewAnalysisService(container.GetGenerator(), logger, cfg.AITimeout)

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure, cfg.SessionTTL)
	googleCfg := handlers.GoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL())

	// Every route sees the session middleware: flashes drained, user attached.
	r.Use(middleware.Sessions(container.GetSessions(), cookies, userRepo, logger))

	authHandler := handlers.NewAuthHandler(authSvc, container.GetSessions(), cookies, container.GetStateSigner(), googleCfg, logger)
	pageHandler := handlers.NewPageHandler(reportSvc, logger)
	analysisHandler := handlers.NewAnalysisHandler(analysisSvc, reportSvc, container.GetSessions(), logger)
	profileHandler := handlers.NewProfileHandler(authSvc, container.GetSessions(), logger, container.GetGCS(), cfg.GCSBucket)

	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewPagesModule(pageHandler))
	r.Add(modules.NewAnalysisModule(analysisHandler))
	r.Add(modules.NewProfileModule(profileHandler))
}
