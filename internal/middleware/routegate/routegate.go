// Package routegate enforces the public allow-list: any path outside it
// requires a valid session cookie. API callers get a 401 envelope, page
// navigation is redirected to sign-in.
package routegate

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/token"
)

var publicPaths = []*regexp.Regexp{
	regexp.MustCompile(`^/auth/`),
	regexp.MustCompile(`^/api/v1/auth/`),
	regexp.MustCompile(`^/api/v1/products`),
	regexp.MustCompile(`^/api/v1/search$`),
	regexp.MustCompile(`^/health/`),
	regexp.MustCompile(`^/metrics$`),
	regexp.MustCompile(`^/public/`),
	regexp.MustCompile(`^/robots\.txt$`),
	regexp.MustCompile(`^/favicon\.ico$`),
}

func isPublic(path string) bool {
	for _, re := range publicPaths {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func Middleware(svc *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isPublic(path) {
				return next(c)
			}
			if _, ok := svc.FromRequest(c); ok {
				return next(c)
			}
			if strings.HasPrefix(path, "/api/") {
				return httperr.Respond(c, httperr.ErrAuthentication)
			}
			target := "/auth/signin?callbackUrl=" + url.QueryEscape(path)
			return c.Redirect(http.StatusFound, target)
		}
	}
}
