package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/marketmapper/marketmapper/internal/container"
	handlers "github.com/marketmapper/marketmapper/internal/interface/http"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
)

type ProfileModule struct {
	Handler *handlers.ProfileHandler
}

func NewProfileModule(h *handlers.ProfileHandler) *ProfileModule {
	return &ProfileModule{Handler: h}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.RequireLogin(container.GetSessions()))
	{
		auth.GET("/profile", m.Handler.Show)
		auth.GET("/profile/edit", m.Handler.Edit)
		auth.POST("/profile/update", m.Handler.Update)
	}
}
