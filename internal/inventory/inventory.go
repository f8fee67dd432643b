// Package inventory is the on-hand quantity ledger consumed by order
// creation. The decrement is a single conditional update so two concurrent
// orders for the last unit of a product cannot both succeed.
package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/velora/storefront/internal/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
)

// Decrement lowers the product's on-hand quantity by qty inside the caller's
// transaction. Quantity never goes negative: the update only applies when
// quantity >= qty, never as a read followed by an unconditional write.
func Decrement(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement product %d: %w", productID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("look up product %d: %w", productID, err)
	}
	if count == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrProductNotFound)
	}
	return fmt.Errorf("product %d: %w", productID, ErrInsufficientStock)
}
