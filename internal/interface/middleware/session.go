package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/domain/entity"
	"github.com/marketmapper/marketmapper/internal/domain/repository"
	"github.com/marketmapper/marketmapper/internal/infrastructure/session"
	"github.com/marketmapper/marketmapper/pkg/helpers"
	"github.com/marketmapper/marketmapper/pkg/render"
)

// KeySessionID is the gin context key holding the request's session id.
const KeySessionID = "sessionID"

// Sessions ensures every request carries a session id, drains pending flash
// messages into the context, and resolves the session to its user (if any)
// before any route handler runs.
func Sessions(store session.Manager, cookies *helpers.CookieManager, users repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := helpers.SessionID(c)
		if sid == "" {
			sid = store.NewID()
			cookies.SetSession(c, sid)
		}
		c.Set(KeySessionID, sid)

		ctx := c.Request.Context()
		success, errs, err := store.PopFlashes(ctx, sid)
		if err != nil && logger != nil {
			logger.WithError(err).Warn("flash read failed")
		}
		c.Set(render.KeyFlashSuccess, success)
		c.Set(render.KeyFlashError, errs)

		uid, err := store.UserID(ctx, sid)
		if err != nil && logger != nil {
			logger.WithError(err).Warn("session lookup failed")
		}
		if uid != "" {
			u, uerr := users.GetByID(ctx, uid)
			if uerr == nil {
				c.Set(render.KeyCurrentUser, u)
			} else if logger != nil {
				// Stale session pointing at a removed user; treat as anonymous.
				logger.WithField("user_id", uid).WithError(uerr).Debug("session user not found")
			}
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page, remembering
// the requested URL so the user lands back there after logging in.
func RequireLogin(store session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(render.KeyCurrentUser); ok {
			c.Next()
			return
		}
		sid := c.GetString(KeySessionID)
		ctx := c.Request.Context()
		if c.Request.Method == http.MethodGet {
			_ = store.SetRedirectURL(ctx, sid, c.Request.URL.RequestURI())
		}
		_ = store.AddFlash(ctx, sid, session.FlashError, "You must be logged in first!")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// CurrentUser returns the authenticated user attached by Sessions.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(render.KeyCurrentUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}
