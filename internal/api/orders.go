package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/construction-api/internal/domain/orders"
)

type createOrderPayload struct {
	Items []orders.OrderItem `json:"items"`
}

func (h Handlers) createOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if h.Idempotency != nil {
		if key := c.Request().Header.Get("Idempotent-Key"); key != "" {
			ok, err := h.Idempotency.Claim(ctx, key)
			if err != nil {
				return h.writeError(c, err)
			}
			if !ok {
				return c.JSON(http.StatusConflict, map[string]string{"error": "idempotent key already used"})
			}
		}
	}

	var p createOrderPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
	}

	o, err := h.Orders.Create(ctx, p.Items)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h Handlers) getOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	o, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h Handlers) advanceToProcessing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	o, err := h.Orders.AdvanceToProcessing(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h Handlers) advanceToCompleted(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	o, err := h.Orders.AdvanceToCompleted(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
