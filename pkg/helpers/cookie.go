package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName carries the opaque session id.
const SessionCookieName = "mm_session"

// CookieManager writes and clears the session cookie.
type CookieManager struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

func NewCookie(domain string, secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, TTL: ttl}
}

// SetSession stores the session id as an HttpOnly cookie.
func (m *CookieManager) SetSession(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, sid, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
}

// Clear expires the session cookie.
func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

// SessionID reads the session id from the request, or "".
func SessionID(c *gin.Context) string {
	sid, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return sid
}
