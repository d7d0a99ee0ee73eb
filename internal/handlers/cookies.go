package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/config"
)

// cookieJar mirrors tokens into cookies when cookie support is enabled.
type cookieJar struct {
	cfg config.AuthConfig
}

func (j cookieJar) setAccess(c *gin.Context, value string) {
	j.set(c, j.cfg.AccessCookieName, value, j.cfg.AccessTokenLifetime)
}

func (j cookieJar) setRefresh(c *gin.Context, value string) {
	j.set(c, j.cfg.RefreshCookieName, value, j.cfg.RefreshTokenLifetime)
}

func (j cookieJar) set(c *gin.Context, name, value string, lifetime time.Duration) {
	if !j.cfg.CookiesEnabled || name == "" {
		return
	}
	c.SetSameSite(j.cfg.CookieSameSite)
	c.SetCookie(name, value, int(lifetime.Seconds()), "/", j.cfg.CookieDomain, j.cfg.CookieSecure, j.cfg.CookieHTTPOnly)
}

// clear expires both token cookies.
func (j cookieJar) clear(c *gin.Context) {
	for _, name := range []string{j.cfg.AccessCookieName, j.cfg.RefreshCookieName} {
		if name == "" {
			continue
		}
		c.SetSameSite(j.cfg.CookieSameSite)
		c.SetCookie(name, "", -1, "/", j.cfg.CookieDomain, j.cfg.CookieSecure, j.cfg.CookieHTTPOnly)
	}
}

// refreshFromCookie returns the refresh cookie value, if any.
func (j cookieJar) refreshFromCookie(c *gin.Context) string {
	if j.cfg.RefreshCookieName == "" {
		return ""
	}
	value, err := c.Cookie(j.cfg.RefreshCookieName)
	if err != nil {
		return ""
	}
	return value
}
