package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketmapper/marketmapper/internal/infrastructure/session"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
)

func sessionID(c *gin.Context) string {
	return c.GetString(middleware.KeySessionID)
}

// flashAndRedirect queues a flash message for the next request and redirects.
func flashAndRedirect(c *gin.Context, store session.Manager, kind, message, location string) {
	_ = store.AddFlash(c.Request.Context(), sessionID(c), kind, message)
	c.Redirect(http.StatusFound, location)
}
