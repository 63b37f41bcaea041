package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/construction-api/internal/domain/materials"
	"github.com/Spok95/construction-api/internal/domain/orders"
	"github.com/Spok95/construction-api/internal/domain/reports"
)

// Catalog is the material store surface the handlers need.
type Catalog interface {
	Create(ctx context.Context, m *materials.Material) (*materials.Material, error)
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
	List(ctx context.Context) ([]materials.Material, error)
	Update(ctx context.Context, m *materials.Material) (*materials.Material, error)
	Delete(ctx context.Context, id int64) error
}

// OrderFlow is the order lifecycle surface.
type OrderFlow interface {
	Create(ctx context.Context, items []orders.OrderItem) (*orders.Order, error)
	Get(ctx context.Context, id int64) (*orders.Order, error)
	AdvanceToProcessing(ctx context.Context, id int64) (*orders.Order, error)
	AdvanceToCompleted(ctx context.Context, id int64) (*orders.Order, error)
}

// ReportSource serves reporting queries.
type ReportSource interface {
	StockSnapshot(ctx context.Context) ([]reports.StockLevel, error)
	UsageTotals(ctx context.Context) ([]reports.UsageTotal, error)
	UsageTrend(ctx context.Context, materialID int64) ([]reports.UsagePoint, error)
	PriceTrend(ctx context.Context, materialID int64) ([]reports.PricePoint, error)
}

// IdempotencyGuard rejects replays of order-creation requests. Optional.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type Handlers struct {
	Catalog     Catalog
	Orders      OrderFlow
	Reports     ReportSource
	Idempotency IdempotencyGuard
	Log         *slog.Logger
}

// Register mounts all API routes on the router.
func Register(e *echo.Echo, h Handlers) {
	e.POST("/materials", h.createMaterial)
	e.GET("/materials", h.listMaterials)
	e.GET("/materials/:id", h.getMaterial)
	e.PUT("/materials/:id", h.updateMaterial)
	e.DELETE("/materials/:id", h.deleteMaterial)
	e.POST("/materials/bulk-import", h.bulkImportMaterials)
	e.GET("/materials/bulk-export", h.bulkExportMaterials)
	e.GET("/materials/stock-reports", h.stockReports)
	e.GET("/materials/usage-trends", h.usageTotals)
	e.GET("/materials/:id/usage-trend", h.usageTrend)
	e.GET("/materials/:id/price-trend", h.priceTrend)

	e.POST("/orders", h.createOrder)
	e.GET("/orders/:id", h.getOrder)
	e.POST("/orders/:id/processing", h.advanceToProcessing)
	e.POST("/orders/:id/complete", h.advanceToCompleted)

	e.GET("/reports/stock-levels/export", h.exportStockLevels)
}

// writeError maps a domain failure onto an HTTP status and an {"error": ...}
// body. Everything in the domain taxonomy is request-scoped; anything else is
// a 500.
func (h Handlers) writeError(c echo.Context, err error) error {
	var verr *orders.ValidationError
	var serr *orders.StockError
	var terr *orders.TransitionError

	switch {
	case errors.Is(err, materials.ErrNotFound),
		errors.Is(err, orders.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, materials.ErrVersionConflict),
		errors.Is(err, orders.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &verr), errors.As(err, &serr), errors.As(err, &terr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	h.Log.Error("request failed", "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func pathID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64("id", &id).BindError(); err != nil {
		return 0, err
	}
	return id, nil
}
