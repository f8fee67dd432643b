package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velora/storefront/internal/hash"
	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Producer Publisher
}

type userResponse struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

func userJSON(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}

	if req.Name == "" || len(req.Name) > 100 {
		return httperr.Respond(c, fmt.Errorf("%w: name is required", httperr.ErrValidation))
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid email", httperr.ErrValidation))
	}
	if len(req.Password) < 6 || len(req.Password) > 100 {
		return httperr.Respond(c, fmt.Errorf("%w: password must be at least 6 characters", httperr.ErrValidation))
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return httperr.Respond(c, fmt.Errorf("%w: user with this email already exists", httperr.ErrConflict))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}

	publish(c, h.Producer, TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{"user": userJSON(&user)})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}
	if req.Email == "" || req.Password == "" {
		return httperr.Respond(c, fmt.Errorf("%w: email and password are required", httperr.ErrValidation))
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.Respond(c, fmt.Errorf("%w: invalid email or password", httperr.ErrAuthentication))
		}
		return httperr.Respond(c, fmt.Errorf("%w: %w", httperr.ErrInternal, err))
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return httperr.Respond(c, fmt.Errorf("%w: invalid email or password", httperr.ErrAuthentication))
	}

	raw, err := h.Tokens.Issue(&user)
	if err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: sign token: %w", httperr.ErrInternal, err))
	}
	h.Tokens.SetAuthCookie(c, raw)

	publish(c, h.Producer, TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{"user": userJSON(&user)})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.Tokens.ClearAuthCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me reports the caller behind the session cookie; it is on the public
// allow-list so the storefront can probe auth state without a redirect.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := h.Tokens.FromRequest(c)
	if !ok {
		return httperr.Respond(c, httperr.ErrAuthentication)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": echo.Map{
		"id":    claims.UserID(),
		"email": claims.Email,
		"name":  claims.Name,
		"role":  claims.Role,
	}})
}
