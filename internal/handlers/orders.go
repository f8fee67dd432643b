package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/metrics"
	"github.com/velora/storefront/internal/middleware/auth"
	"github.com/velora/storefront/internal/orders"
	"github.com/velora/storefront/internal/util"
)

type OrdersHandler struct {
	Svc      *orders.Service
	Producer Publisher
}

type createOrderRequest struct {
	Items []struct {
		ProductID uint            `json:"product_id"`
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unit_price"`
	} `json:"items"`
	ShippingAddress orders.AddressInput `json:"shipping_address"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Shipping        decimal.Decimal     `json:"shipping"`
	Tax             decimal.Decimal     `json:"tax"`
	Total           decimal.Decimal     `json:"total"`
}

func (h *OrdersHandler) Create(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return httperr.Respond(c, httperr.ErrAuthentication)
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: invalid JSON body", httperr.ErrValidation))
	}

	in := orders.CreateInput{
		ShippingAddress: req.ShippingAddress,
		Subtotal:        req.Subtotal,
		Shipping:        req.Shipping,
		Tax:             req.Tax,
		Total:           req.Total,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, orders.Line{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	order, err := h.Svc.Create(c.Request().Context(), userID, in)
	if err != nil {
		if errors.Is(err, httperr.ErrConflict) {
			metrics.OversellRejected.Inc()
		}
		return httperr.Respond(c, err)
	}

	metrics.OrdersPlaced.Inc()
	publish(c, h.Producer, TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":         "order_created",
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
}

func (h *OrdersHandler) List(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return httperr.Respond(c, httperr.ErrAuthentication)
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	list, total, err := h.Svc.ListForUser(c.Request().Context(), userID, page, limit)
	if err != nil {
		return httperr.Respond(c, err)
	}

	_, limit = util.Calculate(page, limit)
	return c.JSON(http.StatusOK, echo.Map{
		"orders": list,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}
