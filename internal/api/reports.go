package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/construction-api/internal/domain/reports"
)

func (h Handlers) stockReports(c echo.Context) error {
	levels, err := h.Reports.StockSnapshot(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	if levels == nil {
		levels = []reports.StockLevel{}
	}
	return c.JSON(http.StatusOK, levels)
}

func (h Handlers) usageTotals(c echo.Context) error {
	totals, err := h.Reports.UsageTotals(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	if totals == nil {
		totals = []reports.UsageTotal{}
	}
	return c.JSON(http.StatusOK, totals)
}

func (h Handlers) usageTrend(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	m, err := h.Catalog.GetByID(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	trend, err := h.Reports.UsageTrend(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	if len(trend) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"message": "No usage data found for this material.",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"material": m.Name,
		"trend":    trend,
	})
}

func (h Handlers) priceTrend(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	m, err := h.Catalog.GetByID(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	trend, err := h.Reports.PriceTrend(ctx, id)
	if err != nil {
		return h.writeError(c, err)
	}
	if len(trend) == 0 {
		// no history yet is not an error, the material simply never changed price
		return c.JSON(http.StatusOK, map[string]any{
			"material":    m.Name,
			"price_trend": []reports.PricePoint{},
			"message":     "No price history available for this material.",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"material":    m.Name,
		"price_trend": trend,
	})
}

func (h Handlers) exportStockLevels(c echo.Context) error {
	levels, err := h.Reports.StockSnapshot(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	buf, err := reports.StockLevelsXLSX(levels)
	if err != nil {
		return h.writeError(c, err)
	}

	name := fmt.Sprintf("stock_levels_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, name))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
