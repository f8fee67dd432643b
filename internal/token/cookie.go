package token

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func newCookie(value string, maxAge time.Duration, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(maxAge)
	}
	return cookie
}

// SetAuthCookie attaches the session token to the response.
func (s *Service) SetAuthCookie(c echo.Context, raw string) {
	c.SetCookie(newCookie(raw, s.ttl(), s.SecureCookies))
}

// ClearAuthCookie overwrites the session cookie with an immediately-expired
// value; the logout path.
func (s *Service) ClearAuthCookie(c echo.Context) {
	cookie := newCookie("", 0, s.SecureCookies)
	cookie.MaxAge = -1
	cookie.Expires = time.Now().Add(-1 * time.Hour)
	c.SetCookie(cookie)
}
