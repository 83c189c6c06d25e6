package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketmapper/marketmapper/internal/container"
	handlers "github.com/marketmapper/marketmapper/internal/interface/http"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
)

type AnalysisModule struct {
	Handler *handlers.AnalysisHandler
}

func NewAnalysisModule(h *handlers.AnalysisHandler) *AnalysisModule {
	return &AnalysisModule{Handler: h}
}

func (m *AnalysisModule) Register(rg *gin.RouterGroup) {
	// The AI call is the expensive path; cap it per user.
	resultLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUser())

	auth := rg.Group("/")
	auth.Use(middleware.RequireLogin(container.GetSessions()))
	{
		auth.GET("/analysis", m.Handler.Form)
		auth.POST("/analysis/loading", m.Handler.Loading)
		auth.GET("/analysis/rerun", m.Handler.Rerun)
		auth.POST("/result", resultLimiter, m.Handler.Result)
		auth.POST("/reports/:id/delete", m.Handler.DeleteReport)
	}
}
