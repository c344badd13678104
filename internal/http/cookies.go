package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RefreshCookie describe la cookie que transporta el refresh token. El
// access token nunca viaja por este canal.
type RefreshCookie struct {
	Name   string
	Path   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

func (rc RefreshCookie) withDefaults() RefreshCookie {
	if rc.Name == "" {
		rc.Name = "refresh_token"
	}
	if rc.Path == "" {
		rc.Path = "/auth"
	}
	if rc.MaxAge <= 0 {
		rc.MaxAge = 7 * 24 * time.Hour
	}
	return rc
}

func (rc RefreshCookie) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(rc.Name, token, int(rc.MaxAge.Seconds()), rc.Path, rc.Domain, rc.Secure, true)
}

func (rc RefreshCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(rc.Name, "", -1, rc.Path, rc.Domain, rc.Secure, true)
}

func (rc RefreshCookie) read(c *gin.Context) string {
	value, err := c.Cookie(rc.Name)
	if err != nil {
		return ""
	}
	return value
}
