package render

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys set by the session middleware and consumed here so every view
// sees the same locals (current user, auth flag, flash messages).
const (
	KeyCurrentUser  = "currentUser"
	KeyFlashSuccess = "flashSuccess"
	KeyFlashError   = "flashError"
)

// HTML renders the named template with the shared locals merged in. Handlers
// only pass page-specific data.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["title"]; !ok {
		data["title"] = "MarketMapper"
	}
	user, authed := c.Get(KeyCurrentUser)
	data["auth"] = authed
	data["currUser"] = user
	data["success"] = c.GetStringSlice(KeyFlashSuccess)
	data["error"] = c.GetStringSlice(KeyFlashError)
	c.HTML(status, name, data)
}

// ErrorPage renders the generic error view with an explicit status code.
func ErrorPage(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if message == "" {
		message = http.StatusText(status)
	}
	HTML(c, status, "error.tmpl", gin.H{
		"title":   "Error",
		"link":    "error",
		"code":    status,
		"message": message,
	})
}

// NotFound is the gin NoRoute handler.
func NotFound(c *gin.Context) {
	ErrorPage(c, http.StatusNotFound, "This page could not be found")
}
