package routegate

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/token"
)

func TestIsPublic(t *testing.T) {
	public := []string{
		"/auth/signin",
		"/api/v1/auth/login",
		"/api/v1/products",
		"/api/v1/products/42",
		"/api/v1/search",
		"/health/live",
		"/health/ready",
		"/metrics",
		"/public/css/site.css",
		"/robots.txt",
		"/favicon.ico",
	}
	for _, p := range public {
		require.True(t, isPublic(p), p)
	}

	private := []string{
		"/",
		"/account",
		"/api/v1/orders",
		"/api/v1/account/profile",
		"/api/v1/admin/orders",
		"/api/v1/searchable", // prefix must not leak
		"/metricsdump",
	}
	for _, p := range private {
		require.False(t, isPublic(p), p)
	}
}

func gate(t *testing.T, svc *token.Service, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Middleware(svc)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestMiddleware(t *testing.T) {
	svc := &token.Service{Secret: []byte("test-secret"), TTL: time.Hour}

	t.Run("public path passes through anonymously", func(t *testing.T) {
		rec := gate(t, svc, "/api/v1/products", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous api call gets 401 envelope", func(t *testing.T) {
		rec := gate(t, svc, "/api/v1/orders", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
	})

	t.Run("anonymous page navigation redirects to sign-in", func(t *testing.T) {
		rec := gate(t, svc, "/account/settings", nil)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/auth/signin?callbackUrl=%2Faccount%2Fsettings", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("valid session passes", func(t *testing.T) {
		raw, err := svc.Issue(&models.User{ID: 1, Email: "a@b.c", Role: models.RoleCustomer})
		require.NoError(t, err)
		rec := gate(t, svc, "/api/v1/orders", &http.Cookie{Name: token.CookieName, Value: raw})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("expired session is anonymous", func(t *testing.T) {
		raw, err := svc.IssueWithTTL(&models.User{ID: 1, Email: "a@b.c", Role: models.RoleCustomer}, -time.Second)
		require.NoError(t, err)
		rec := gate(t, svc, "/api/v1/orders", &http.Cookie{Name: token.CookieName, Value: raw})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
