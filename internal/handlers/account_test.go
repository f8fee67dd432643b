package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velora/storefront/internal/models"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser("ada@example.com", "hunter22", models.RoleCustomer)
	product := env.seedProduct("SKU-1", "10.00", 50)
	placeOrder(t, env, ada, product)

	rec := env.do(http.MethodGet, "/api/v1/account/profile", nil, env.sessionCookie(ada))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	require.Equal(t, "ada@example.com", user["email"])
	// the order's shipping snapshot shows up in the address book
	require.Len(t, body["addresses"].([]any), 1)

	rec = env.do(http.MethodGet, "/api/v1/account/profile", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ada := env.createUser("ada@example.com", "hunter22", models.RoleCustomer)
	cookie := env.sessionCookie(ada)

	rec := env.do(http.MethodPatch, "/api/v1/account/profile",
		map[string]any{"name": "Ada L."}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Ada L.", decodeBody(t, rec)["user"].(map[string]any)["name"])

	var fresh models.User
	require.NoError(t, env.db.First(&fresh, ada.ID).Error)
	require.Equal(t, "Ada L.", fresh.Name)

	rec = env.do(http.MethodPatch, "/api/v1/account/profile",
		map[string]any{"name": ""}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
