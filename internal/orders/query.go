package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/util"
)

// AdminQuery describes the back-office listing: free-text search over order
// number and owner name/email, exact status filters, a relative date bucket,
// sorting and offset pagination.
type AdminQuery struct {
	Search        string
	Status        string
	PaymentStatus string
	DateRange     string
	SortBy        string
	SortOrder     string
	Page          int
	Limit         int
}

var sortColumns = map[string]string{
	"createdAt": "orders.created_at",
	"total":     "orders.total",
	"status":    "orders.status",
}

func dateCutoff(bucket string, now time.Time) (time.Time, bool) {
	switch bucket {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, -1, 0), true
	case "year":
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// AdminList is read-only: it shares the status vocabulary with the state
// machine but never transitions anything.
func (s *Service) AdminList(ctx context.Context, q AdminQuery) ([]models.Order, int64, int, error) {
	base := s.DB.WithContext(ctx).Model(&models.Order{}).
		Joins("JOIN users ON users.id = orders.user_id")

	if q.Search != "" {
		pat := "%" + strings.ToLower(q.Search) + "%"
		base = base.Where(
			"LOWER(orders.order_number) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?",
			pat, pat, pat,
		)
	}
	if q.Status != "" {
		if !models.ValidOrderStatus(models.OrderStatus(q.Status)) {
			return nil, 0, 0, fmt.Errorf("%w: unknown status %q", httperr.ErrValidation, q.Status)
		}
		base = base.Where("orders.status = ?", q.Status)
	}
	if q.PaymentStatus != "" {
		if !models.ValidPaymentStatus(models.PaymentStatus(q.PaymentStatus)) {
			return nil, 0, 0, fmt.Errorf("%w: unknown payment status %q", httperr.ErrValidation, q.PaymentStatus)
		}
		base = base.Where("orders.payment_status = ?", q.PaymentStatus)
	}
	if q.DateRange != "" {
		cutoff, ok := dateCutoff(q.DateRange, time.Now())
		if !ok {
			return nil, 0, 0, fmt.Errorf("%w: unknown date range %q", httperr.ErrValidation, q.DateRange)
		}
		base = base.Where("orders.created_at >= ?", cutoff)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("%w: count orders: %w", httperr.ErrInternal, err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns["createdAt"]
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}

	offset, limit := util.Calculate(q.Page, q.Limit)

	var orders []models.Order
	if err := base.Session(&gorm.Session{}).
		Select("orders.*").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "slug")
		}).
		Preload("Address").
		Order(column + " " + direction).
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, 0, fmt.Errorf("%w: list orders: %w", httperr.ErrInternal, err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return orders, total, pages, nil
}
