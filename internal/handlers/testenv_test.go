package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velora/storefront/internal/handlers"
	"github.com/velora/storefront/internal/hash"
	"github.com/velora/storefront/internal/middleware/routegate"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/orders"
	"github.com/velora/storefront/internal/search"
	"github.com/velora/storefront/internal/token"
	httpserver "github.com/velora/storefront/internal/transport/http"
)

// eventRecorder captures published events instead of writing to a broker.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

func (r *eventRecorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *eventRecorder) byType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, ev := range r.events {
		if m, ok := ev.Event.(map[string]any); ok && m["type"] == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	t      *testing.T
	e      *echo.Echo
	db     *gorm.DB
	tokens *token.Service
	events *eventRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	))

	tokens := &token.Service{Secret: []byte("test-secret"), TTL: time.Hour}
	events := &eventRecorder{}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(routegate.Middleware(tokens))

	httpserver.Register(e, &httpserver.Deps{
		DB:                 db,
		Tokens:             tokens,
		AuthHandler:        &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: events},
		OrdersHandler:      &handlers.OrdersHandler{Svc: &orders.Service{DB: db}, Producer: events},
		AdminOrdersHandler: &handlers.AdminOrdersHandler{Svc: &orders.Service{DB: db}, Producer: events},
		ProductHandler:     &handlers.ProductHandler{DB: db, Producer: events, Search: &search.Service{}},
		AccountHandler:     &handlers.AccountHandler{DB: db},
		DashboardHandler:   &handlers.DashboardHandler{DB: db},
		SearchHandler:      &handlers.SearchHandler{Search: &search.Service{}},
	})

	return &testEnv{t: t, e: e, db: db, tokens: tokens, events: events}
}

// createUser inserts a user directly; password is bcrypt-hashed so the login
// endpoint works against it.
func (env *testEnv) createUser(email, password string, role models.Role) *models.User {
	env.t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.t, err)
	u := &models.User{
		Name:         strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	require.NoError(env.t, env.db.Create(u).Error)
	return u
}

// sessionCookie mints a valid session for the user without the login endpoint.
func (env *testEnv) sessionCookie(u *models.User) *http.Cookie {
	env.t.Helper()
	raw, err := env.tokens.Issue(u)
	require.NoError(env.t, err)
	return &http.Cookie{Name: token.CookieName, Value: raw}
}

func (env *testEnv) do(method, target string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	env.t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(env.t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) seedProduct(sku, price string, qty int) *models.Product {
	env.t.Helper()
	p := &models.Product{
		SKU:      sku,
		Slug:     strings.ToLower(sku),
		Name:     "Product " + sku,
		Price:    mustDecimal(price),
		Quantity: qty,
		IsActive: true,
	}
	require.NoError(env.t, env.db.Create(p).Error)
	return p
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validShippingAddress() map[string]any {
	return map[string]any{
		"first_name":  "Ada",
		"last_name":   "Lovelace",
		"address1":    "12 Analytical Way",
		"city":        "London",
		"state":       "LDN",
		"postal_code": "EC1A",
		"country":     "GB",
		"phone":       "+44 20 0000 0000",
	}
}
