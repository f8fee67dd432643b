package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/middleware/auth"
	"github.com/velora/storefront/internal/models"
)

type AccountHandler struct {
	DB *gorm.DB
}

func (h *AccountHandler) GetProfile(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return httperr.Respond(c, httperr.ErrAuthentication)
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Respond(c, fmt.Errorf("%w: user not found", httperr.ErrNotFound))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	var addresses []models.Address
	if err := h.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&addresses).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":      userJSON(&user),
		"addresses": addresses,
	})
}

func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return httperr.Respond(c, httperr.ErrAuthentication)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}
	if req.Name == "" || len(req.Name) > 100 {
		return httperr.Respond(c, fmt.Errorf("%w: name is required", httperr.ErrValidation))
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Respond(c, fmt.Errorf("%w: user not found", httperr.ErrNotFound))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	user.Name = req.Name
	if err := h.DB.Model(&user).Update("name", req.Name).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	return c.JSON(http.StatusOK, echo.Map{"user": userJSON(&user)})
}
