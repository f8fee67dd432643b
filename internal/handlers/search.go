package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/velora/storefront/internal/httperr"
	"github.com/velora/storefront/internal/search"
	"github.com/velora/storefront/internal/util"
)

type SearchHandler struct {
	Search *search.Service
}

func (h *SearchHandler) Handler(c echo.Context) error {
	if !h.Search.Enabled() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	}

	q := c.QueryParam("q")
	if q == "" {
		return httperr.Respond(c, fmt.Errorf("%w: q is required", httperr.ErrValidation))
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, products, err := h.Search.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
