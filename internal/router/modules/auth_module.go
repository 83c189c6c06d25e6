package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketmapper/marketmapper/internal/container"
	handlers "github.com/marketmapper/marketmapper/internal/interface/http"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Credential endpoints carry IP-based rate limits.
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath())
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath())

	rg.GET("/login", m.Handler.LoginForm)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/signup", signupLimiter, m.Handler.Signup)

	rg.GET("/auth/google", m.Handler.GoogleRedirect)
	rg.GET("/auth/google/callback", m.Handler.GoogleCallback)

	auth := rg.Group("/")
	auth.Use(middleware.RequireLogin(container.GetSessions()))
	{
		auth.GET("/logout", m.Handler.Logout)
	}
}
