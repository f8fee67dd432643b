// Package orders implements the order-creation workflow, the status state
// machine and the admin listing over persisted orders.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/inventory"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/util"
)

const maxOrderNumberRetries = 3

type Service struct {
	DB *gorm.DB
}

type Line struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type AddressInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Company    string `json:"company"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type CreateInput struct {
	Items           []Line
	ShippingAddress AddressInput
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
}

func (in *CreateInput) validate() error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: items required", httperr.ErrValidation)
	}
	for i, it := range in.Items {
		if it.ProductID == 0 {
			return fmt.Errorf("%w: items[%d].product_id required", httperr.ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", httperr.ErrValidation, i)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: items[%d].price must not be negative", httperr.ErrValidation, i)
		}
	}

	addr := in.ShippingAddress
	required := []struct{ name, value string }{
		{"first_name", addr.FirstName},
		{"last_name", addr.LastName},
		{"address1", addr.Address1},
		{"city", addr.City},
		{"state", addr.State},
		{"postal_code", addr.PostalCode},
		{"country", addr.Country},
		{"phone", addr.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: shipping_address.%s required", httperr.ErrValidation, f.name)
		}
	}

	for _, m := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", in.Subtotal},
		{"shipping", in.Shipping},
		{"tax", in.Tax},
		{"total", in.Total},
	} {
		if m.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", httperr.ErrValidation, m.name)
		}
	}
	if !in.Subtotal.Add(in.Shipping).Add(in.Tax).Equal(in.Total) {
		return fmt.Errorf("%w: total must equal subtotal + shipping + tax", httperr.ErrValidation)
	}
	return nil
}

// Create validates the cart snapshot and persists the address, the order
// header, its items and the per-line inventory decrements as one transaction.
// Any failure, including insufficient stock on any line, rolls back the whole
// operation with no partial writes.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		order, err := s.createOnce(ctx, userID, in, NewOrderNumber())
		if err == nil {
			return order, nil
		}
		if isDuplicateKey(err) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: order number collision persisted after %d attempts",
		httperr.ErrInternal, maxOrderNumberRetries)
}

func (s *Service) createOnce(ctx context.Context, userID uint, in CreateInput, orderNumber string) (*models.Order, error) {
	var order models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addr := models.Address{
			UserID:     userID,
			Type:       "SHIPPING",
			FirstName:  in.ShippingAddress.FirstName,
			LastName:   in.ShippingAddress.LastName,
			Company:    in.ShippingAddress.Company,
			Address1:   in.ShippingAddress.Address1,
			Address2:   in.ShippingAddress.Address2,
			City:       in.ShippingAddress.City,
			State:      in.ShippingAddress.State,
			PostalCode: in.ShippingAddress.PostalCode,
			Country:    in.ShippingAddress.Country,
			Phone:      in.ShippingAddress.Phone,
		}
		if err := tx.Create(&addr).Error; err != nil {
			return fmt.Errorf("%w: create address: %w", httperr.ErrInternal, err)
		}

		order = models.Order{
			OrderNumber:   orderNumber,
			UserID:        userID,
			AddressID:     addr.ID,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			Subtotal:      in.Subtotal,
			Shipping:      in.Shipping,
			Tax:           in.Tax,
			Total:         in.Total,
			Currency:      "USD",
		}
		if err := tx.Create(&order).Error; err != nil {
			if isDuplicateKey(err) {
				return err
			}
			return fmt.Errorf("%w: create order: %w", httperr.ErrInternal, err)
		}

		for _, line := range in.Items {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("%w: create order item: %w", httperr.ErrInternal, err)
			}
			order.Items = append(order.Items, item)
		}

		for _, line := range in.Items {
			if err := inventory.Decrement(tx, line.ProductID, line.Quantity); err != nil {
				switch {
				case errors.Is(err, inventory.ErrInsufficientStock):
					return fmt.Errorf("%w: unable to place order, item out of stock: %w",
						httperr.ErrConflict, err)
				case errors.Is(err, inventory.ErrProductNotFound):
					return fmt.Errorf("%w: %w", httperr.ErrNotFound, err)
				default:
					return fmt.Errorf("%w: %w", httperr.ErrInternal, err)
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

// ListForUser returns the caller's own orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint, page, limit int) ([]models.Order, int64, error) {
	offset, limit := util.Calculate(page, limit)

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count orders: %w", httperr.ErrInternal, err)
	}

	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "slug")
		}).
		Preload("Address").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: list orders: %w", httperr.ErrInternal, err)
	}
	return orders, total, nil
}

// StatusPatch carries the admin mutation; either field may be nil to leave
// that lifecycle untouched.
type StatusPatch struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
}

// UpdateStatus applies the state machine to a persisted order. Only status,
// payment status and their timestamps are mutable after creation.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, patch StatusPatch) (*models.Order, error) {
	if patch.Status == nil && patch.PaymentStatus == nil {
		return nil, fmt.Errorf("%w: status or payment_status required", httperr.ErrValidation)
	}

	var order models.Order
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", httperr.ErrNotFound, orderID)
			}
			return fmt.Errorf("%w: load order: %w", httperr.ErrInternal, err)
		}

		if patch.Status != nil {
			if err := Transition(&order, *patch.Status); err != nil {
				return fmt.Errorf("%w: %w", httperr.ErrValidation, err)
			}
		}
		if patch.PaymentStatus != nil {
			if err := TransitionPayment(&order, *patch.PaymentStatus); err != nil {
				return fmt.Errorf("%w: %w", httperr.ErrValidation, err)
			}
		}

		updates := map[string]any{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"shipped_at":     order.ShippedAt,
			"delivered_at":   order.DeliveredAt,
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: update order: %w", httperr.ErrInternal, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
