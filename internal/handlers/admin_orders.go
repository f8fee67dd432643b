package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/models"
	"github.com/velora/storefront/internal/orders"
	"github.com/velora/storefront/internal/util"
)

type AdminOrdersHandler struct {
	Svc      *orders.Service
	Producer Publisher
}

func (h *AdminOrdersHandler) List(c echo.Context) error {
	q := orders.AdminQuery{
		Search:        c.QueryParam("search"),
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("paymentStatus"),
		DateRange:     c.QueryParam("dateRange"),
		SortBy:        c.QueryParam("sortBy"),
		SortOrder:     c.QueryParam("sortOrder"),
		Page:          parseIntDefault(c.QueryParam("page"), 1),
		Limit:         parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
	}

	list, total, pages, err := h.Svc.AdminList(c.Request().Context(), q)
	if err != nil {
		return httperr.Respond(c, err)
	}

	_, limit := util.Calculate(q.Page, q.Limit)
	return c.JSON(http.StatusOK, echo.Map{
		"orders": list,
		"pagination": echo.Map{
			"page":  q.Page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

func (h *AdminOrdersHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return httperr.Respond(c, fmt.Errorf("%w: invalid order id", httperr.ErrValidation))
	}

	var req struct {
		Status        *models.OrderStatus   `json:"status"`
		PaymentStatus *models.PaymentStatus `json:"payment_status"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}

	order, err := h.Svc.UpdateStatus(c.Request().Context(), uint(id), orders.StatusPatch{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		return httperr.Respond(c, err)
	}

	publish(c, h.Producer, TopicOrderEvents, fmt.Sprint(order.UserID), map[string]any{
		"type":           "order_status_changed",
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})

	return c.JSON(http.StatusOK, order)
}
