package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Spok95/construction-api/internal/domain/materials"
	"github.com/Spok95/construction-api/internal/domain/reports"
)

type materialPayload struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	BasePrice decimal.Decimal `json:"base_price"`
	Stock     int64           `json:"stock"`
	Version   int64           `json:"version"`
}

func (h Handlers) createMaterial(c echo.Context) error {
	var p materialPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
	}
	if p.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if p.Stock < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "stock must not be negative"})
	}

	m, err := h.Catalog.Create(c.Request().Context(), &materials.Material{
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		BasePrice: p.BasePrice,
		Stock:     p.Stock,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h Handlers) getMaterial(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	m, err := h.Catalog.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h Handlers) listMaterials(c echo.Context) error {
	mats, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	if mats == nil {
		mats = []materials.Material{}
	}
	return c.JSON(http.StatusOK, mats)
}

func (h Handlers) updateMaterial(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var p materialPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
	}
	if p.Stock < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "stock must not be negative"})
	}

	m, err := h.Catalog.Update(c.Request().Context(), &materials.Material{
		ID:        id,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		BasePrice: p.BasePrice,
		Stock:     p.Stock,
		Version:   p.Version,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h Handlers) deleteMaterial(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h Handlers) bulkImportMaterials(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return h.writeError(c, err)
	}
	defer func() { _ = f.Close() }()

	mats, err := reports.ParseMaterialsCSV(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	for i := range mats {
		if _, err := h.Catalog.Create(ctx, &mats[i]); err != nil {
			return h.writeError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Bulk import successful"})
}

func (h Handlers) bulkExportMaterials(c echo.Context) error {
	mats, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="materials.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return reports.WriteMaterialsCSV(c.Response(), mats)
}
