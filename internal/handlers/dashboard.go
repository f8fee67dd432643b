package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/models"
)

const lowStockThreshold = 10

type DashboardHandler struct {
	DB *gorm.DB
}

// Dashboard aggregates the operational overview for the admin home page.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	db := h.DB.WithContext(c.Request().Context())

	var totalProducts int64
	if err := db.Model(&models.Product{}).Where("is_active = ?", true).
		Count(&totalProducts).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	var totalOrders int64
	if err := db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	var totalCustomers int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).
		Count(&totalCustomers).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&models.Order{}).
		Select("SUM(total)").Scan(&revenue).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}
	totalRevenue := decimal.Zero
	if revenue.Valid {
		totalRevenue = revenue.Decimal
	}

	type lowStockProduct struct {
		ID       uint   `json:"id"`
		Name     string `json:"name"`
		SKU      string `json:"sku"`
		Quantity int    `json:"quantity"`
	}
	var lowStock []lowStockProduct
	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND track_quantity = ? AND quantity < ?", true, true, lowStockThreshold).
		Order("quantity ASC").Limit(10).
		Find(&lowStock).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	var recentOrders []models.Order
	if err := db.Model(&models.Order{}).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at DESC").Limit(10).
		Find(&recentOrders).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total_products":  totalProducts,
		"total_orders":    totalOrders,
		"total_customers": totalCustomers,
		"total_revenue":   totalRevenue,
		"low_stock":       lowStock,
		"recent_orders":   recentOrders,
	})
}
