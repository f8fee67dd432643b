package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/search"
	"github.com/velora/storefront/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer Publisher
	Search   *search.Service
}

// GetProduct resolves a numeric id or a slug.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	key := c.Param("id")

	q := h.DB.Model(&models.Product{})
	if id, err := strconv.Atoi(key); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("slug = ?", key)
	}

	var product models.Product
	if err := q.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Respond(c, fmt.Errorf("%w: product %q", httperr.ErrNotFound, key))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	base := h.DB.Model(&models.Product{}).Where("is_active = ?", true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	var items []models.Product
	if err := base.Session(&gorm.Session{}).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

type productRequest struct {
	SKU           *string          `json:"sku"`
	Slug          *string          `json:"slug"`
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Quantity      *int             `json:"quantity"`
	IsActive      *bool            `json:"is_active"`
	Featured      *bool            `json:"featured"`
	TrackQuantity *bool            `json:"track_quantity"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}

	for _, f := range []struct {
		name  string
		value *string
	}{{"sku", req.SKU}, {"slug", req.Slug}, {"name", req.Name}} {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			return httperr.Respond(c, fmt.Errorf("%w: %s is required", httperr.ErrValidation, f.name))
		}
	}
	if req.Price == nil || req.Price.IsNegative() {
		return httperr.Respond(c, fmt.Errorf("%w: price must not be negative", httperr.ErrValidation))
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return httperr.Respond(c, fmt.Errorf("%w: quantity must not be negative", httperr.ErrValidation))
	}

	product := models.Product{
		SKU:           *req.SKU,
		Slug:          *req.Slug,
		Name:          *req.Name,
		Price:         *req.Price,
		IsActive:      true,
		TrackQuantity: true,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.TrackQuantity != nil {
		product.TrackQuantity = *req.TrackQuantity
	}

	if err := h.DB.Create(&product).Error; err != nil {
		if isDuplicateKey(err) {
			return httperr.Respond(c, fmt.Errorf("%w: sku or slug already in use", httperr.ErrConflict))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	h.index(c, &product)
	publish(c, h.Producer, TopicProductEvents, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"sku":        product.SKU,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return httperr.Respond(c, fmt.Errorf("%w: invalid product id", httperr.ErrValidation))
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Respond(c, fmt.Errorf("%w: product %d", httperr.ErrNotFound, id))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return httperr.Respond(c, fmt.Errorf("%w: price must not be negative", httperr.ErrValidation))
		}
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return httperr.Respond(c, fmt.Errorf("%w: quantity must not be negative", httperr.ErrValidation))
		}
		product.Quantity = *req.Quantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.TrackQuantity != nil {
		product.TrackQuantity = *req.TrackQuantity
	}

	if err := h.DB.Save(&product).Error; err != nil {
		if isDuplicateKey(err) {
			return httperr.Respond(c, fmt.Errorf("%w: sku or slug already in use", httperr.ErrConflict))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	h.index(c, &product)
	publish(c, h.Producer, TopicProductEvents, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"sku":        product.SKU,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return httperr.Respond(c, fmt.Errorf("%w: invalid product id", httperr.ErrValidation))
	}

	if err := h.DB.Delete(&models.Product{}, id).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	if h.Search.Enabled() {
		if err := h.Search.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
			c.Logger().Errorf("search deindex error: %v", err)
		}
	}
	publish(c, h.Producer, TopicProductEvents, fmt.Sprint(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if !h.Search.Enabled() {
		return
	}
	if err := h.Search.IndexProduct(c.Request().Context(), p); err != nil {
		c.Logger().Errorf("search index error: %v", err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
