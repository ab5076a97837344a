package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const DefaultCookieName = "medrec_session"

// WriteCookie hands the token to the browser. Persistent sessions outlive
// the browser; the others end with it.
func (m *Manager) WriteCookie(c *gin.Context, token string, s *Session) {
	maxAge := 0
	if s.Persistent {
		maxAge = int(s.ExpiresAt.Sub(m.now()).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, maxAge, "/", "", m.secure, true)
}

func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// Token returns the session token carried by the request, if any.
func (m *Manager) Token(c *gin.Context) string {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return token
}
