// Package token issues and verifies the signed session credential carried in
// the auth_token cookie. Tokens are stateless: validity is purely a function
// of signature and expiry, so there is no server-side revocation before the
// token naturally expires.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/velora/storefront/internal/models"
)

const CookieName = "auth_token"

const DefaultTTL = 7 * 24 * time.Hour

type Claims struct {
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim. Zero means a malformed subject.
func (c *Claims) UserID() uint {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

type Service struct {
	Secret []byte
	TTL    time.Duration

	// SecureCookies enables the Secure cookie attribute; on outside local
	// development.
	SecureCookies bool
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTTL
	}
	return s.TTL
}

// Issue signs a session token for the user with the service TTL.
func (s *Service) Issue(user *models.User) (string, error) {
	return s.IssueWithTTL(user, s.ttl())
}

func (s *Service) IssueWithTTL(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// Verify rejects bad signatures, malformed payloads and expired tokens.
func (s *Service) Verify(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &claims, nil
}

// FromRequest reads the session cookie. A missing or invalid cookie is not an
// error, just an anonymous caller.
func (s *Service) FromRequest(c echo.Context) (*Claims, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := s.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}
