package orders

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velora/storefront/internal/models"
)

// newTestDB opens a per-test in-memory database. A single connection keeps
// shared-cache sqlite safe under the concurrent creation test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
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
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleCustomer,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price string, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		SKU:      sku,
		Slug:     strings.ToLower(sku),
		Name:     "Product " + sku,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validAddress() AddressInput {
	return AddressInput{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Address1:   "12 Analytical Way",
		City:       "London",
		State:      "LDN",
		PostalCode: "EC1A",
		Country:    "GB",
		Phone:      "+44 20 0000 0000",
	}
}
