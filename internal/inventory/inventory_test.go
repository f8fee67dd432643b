package inventory

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

func newTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		SKU:      "SKU-1",
		Slug:     "sku-1",
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.99"),
		Quantity: qty,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestDecrement(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 5)

	require.NoError(t, Decrement(db, p.ID, 2))

	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.Equal(t, 3, fresh.Quantity)

	// draining to exactly zero is allowed
	require.NoError(t, Decrement(db, p.ID, 3))
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.Zero(t, fresh.Quantity)
}

func TestDecrementInsufficient(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 2)

	err := Decrement(db, p.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.Equal(t, 2, fresh.Quantity)
}

func TestDecrementUnknownProduct(t *testing.T) {
	db := newTestDB(t)

	err := Decrement(db, 404, 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestDecrementNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 5)

	require.Error(t, Decrement(db, p.ID, 0))
	require.Error(t, Decrement(db, p.ID, -1))

	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	require.Equal(t, 5, fresh.Quantity)
}
