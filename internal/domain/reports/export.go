package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/construction-api/internal/domain/materials"
)

var csvHeader = []string{"name", "category", "unit", "base_price", "stock"}

// WriteMaterialsCSV streams the catalog as CSV, version column included.
func WriteMaterialsCSV(w io.Writer, mats []materials.Material) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "category", "unit", "base_price", "stock", "version"}); err != nil {
		return err
	}
	for _, m := range mats {
		rec := []string{
			m.Name,
			m.Category,
			m.Unit,
			m.BasePrice.String(),
			strconv.FormatInt(m.Stock, 10),
			strconv.FormatInt(m.Version, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseMaterialsCSV reads a bulk-import file. Expected header:
// name,category,unit,base_price,stock. Rows become new catalog entries.
func ParseMaterialsCSV(r io.Reader) ([]materials.Material, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, want := range csvHeader {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", want)
		}
	}

	var out []materials.Material
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		price, err := decimal.NewFromString(strings.TrimSpace(rec[col["base_price"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad base_price: %w", line, err)
		}
		stock, err := strconv.ParseInt(strings.TrimSpace(rec[col["stock"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad stock: %w", line, err)
		}
		out = append(out, materials.Material{
			Name:      strings.TrimSpace(rec[col["name"]]),
			Category:  strings.TrimSpace(rec[col["category"]]),
			Unit:      strings.TrimSpace(rec[col["unit"]]),
			BasePrice: price,
			Stock:     stock,
		})
	}
	return out, nil
}

// StockLevelsXLSX renders a stock snapshot as an Excel workbook.
func StockLevelsXLSX(levels []StockLevel) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"material_name", "stock"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, lv := range levels {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		excelRow := []interface{}{lv.Name, lv.Stock}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
