package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/marketmapper/marketmapper/internal/container"
	handlers "github.com/marketmapper/marketmapper/internal/interface/http"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
)

type PagesModule struct {
	Handler *handlers.PageHandler
}

func NewPagesModule(h *handlers.PageHandler) *PagesModule {
	return &PagesModule{Handler: h}
}

func (m *PagesModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.Handler.Landing)

	auth := rg.Group("/")
	auth.Use(middleware.RequireLogin(container.GetSessions()))
	{
		auth.GET("/dashboard", m.Handler.Dashboard)
		auth.GET("/history", m.Handler.History)
	}
}
