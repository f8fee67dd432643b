// Package auth is the authorization gate: it derives caller identity and role
// from the session credential and accepts or rejects an operation based on the
// required role.
package auth

import (
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/token"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// Allowed is the pure role decision: no side effects, no storage.
func Allowed(role models.Role, required []models.Role) bool {
	return slices.Contains(required, role)
}

// RequireLogin rejects anonymous callers with 401 and stores the verified
// claims in the request context. An expired token is treated identically to a
// missing one.
func RequireLogin(svc *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := svc.FromRequest(c)
			if !ok {
				return httperr.Respond(c, httperr.ErrAuthentication)
			}
			c.Set(CtxUserID, claims.UserID())
			c.Set(CtxRole, claims.Role)
			c.Set(CtxClaims, claims)
			return next(c)
		}
	}
}

// RequireRole rejects callers whose role claim is outside the allowed set
// with 403. Must run after RequireLogin.
func RequireRole(required ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(models.Role)
			if !ok || role == "" {
				return httperr.Respond(c, httperr.ErrAuthentication)
			}
			if !Allowed(role, required) {
				return httperr.Respond(c, httperr.ErrAuthorization)
			}
			return next(c)
		}
	}
}

// UserID returns the authenticated subject id stored by RequireLogin.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func ClaimsFrom(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(CtxClaims).(*token.Claims)
	return claims, ok
}
