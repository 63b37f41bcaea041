package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/construction-api/internal/api"
	"github.com/Spok95/construction-api/internal/domain/materials"
	"github.com/Spok95/construction-api/internal/domain/orders"
	"github.com/Spok95/construction-api/internal/domain/reports"
)

type fakeCatalog struct {
	byID     map[int64]*materials.Material
	nextID   int64
	created  []materials.Material
	updateFn func(m *materials.Material) (*materials.Material, error)
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{byID: make(map[int64]*materials.Material), nextID: 1}
}

func (f *fakeCatalog) Create(_ context.Context, m *materials.Material) (*materials.Material, error) {
	cp := *m
	cp.ID = f.nextID
	cp.Version = 1
	f.nextID++
	f.byID[cp.ID] = &cp
	f.created = append(f.created, cp)
	out := cp
	return &out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*materials.Material, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, materials.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]materials.Material, error) {
	var out []materials.Material
	for _, m := range f.byID {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeCatalog) Update(_ context.Context, m *materials.Material) (*materials.Material, error) {
	if f.updateFn != nil {
		return f.updateFn(m)
	}
	stored, ok := f.byID[m.ID]
	if !ok {
		return nil, materials.ErrNotFound
	}
	if m.Version != 0 && m.Version != stored.Version {
		return nil, materials.ErrVersionConflict
	}
	cp := *m
	cp.Version = stored.Version + 1
	f.byID[m.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return materials.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeOrders struct {
	createFn  func(items []orders.OrderItem) (*orders.Order, error)
	getFn     func(id int64) (*orders.Order, error)
	processFn func(id int64) (*orders.Order, error)
	finishFn  func(id int64) (*orders.Order, error)
}

func (f *fakeOrders) Create(_ context.Context, items []orders.OrderItem) (*orders.Order, error) {
	return f.createFn(items)
}

func (f *fakeOrders) Get(_ context.Context, id int64) (*orders.Order, error) {
	return f.getFn(id)
}

func (f *fakeOrders) AdvanceToProcessing(_ context.Context, id int64) (*orders.Order, error) {
	return f.processFn(id)
}

func (f *fakeOrders) AdvanceToCompleted(_ context.Context, id int64) (*orders.Order, error) {
	return f.finishFn(id)
}

type fakeReports struct {
	stock  []reports.StockLevel
	totals []reports.UsageTotal
	usage  map[int64][]reports.UsagePoint
	prices map[int64][]reports.PricePoint
}

func (f *fakeReports) StockSnapshot(_ context.Context) ([]reports.StockLevel, error) {
	return f.stock, nil
}

func (f *fakeReports) UsageTotals(_ context.Context) ([]reports.UsageTotal, error) {
	return f.totals, nil
}

func (f *fakeReports) UsageTrend(_ context.Context, id int64) ([]reports.UsagePoint, error) {
	return f.usage[id], nil
}

func (f *fakeReports) PriceTrend(_ context.Context, id int64) ([]reports.PricePoint, error) {
	return f.prices[id], nil
}

func newTestServer(h api.Handlers) *echo.Echo {
	if h.Log == nil {
		h.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := echo.New()
	api.Register(e, h)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
