package orders

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/construction-api/internal/domain/materials"
	"github.com/Spok95/construction-api/internal/infra/metrics"
)

type stockRow struct {
	ID    int64
	Name  string
	Stock int64
}

// checkSufficiency verifies every item against current stock before anything
// is decremented. Quantities of items sharing a material accumulate. Returns
// the first shortfall in item order.
func checkSufficiency(items []OrderItem, stock map[int64]stockRow) error {
	remaining := make(map[int64]int64, len(stock))
	for id, row := range stock {
		remaining[id] = row.Stock
	}
	for _, it := range items {
		row, ok := stock[it.MaterialID]
		if !ok {
			return fmt.Errorf("material %d: %w", it.MaterialID, materials.ErrNotFound)
		}
		if remaining[it.MaterialID] < it.Quantity {
			return &StockError{Material: row.Name}
		}
		remaining[it.MaterialID] -= it.Quantity
	}
	return nil
}

// Ledger applies stock deductions for an order inside the caller's
// transaction. All items are verified against locked rows first, then all
// decrements are applied, so a late shortfall never leaves earlier items
// deducted.
type Ledger struct{}

func (l *Ledger) Deduct(ctx context.Context, tx pgx.Tx, items []OrderItem) error {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if !seen[it.MaterialID] {
			seen[it.MaterialID] = true
			ids = append(ids, it.MaterialID)
		}
	}
	// lock rows in id order so concurrent deductions cannot deadlock
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows, err := tx.Query(ctx, `
		SELECT id, name, stock FROM materials
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return err
	}
	stock := make(map[int64]stockRow, len(ids))
	for rows.Next() {
		var r stockRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Stock); err != nil {
			rows.Close()
			return err
		}
		stock[r.ID] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if err := checkSufficiency(items, stock); err != nil {
		return err
	}

	var deducted int64
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			UPDATE materials SET stock = stock - $2, version = version + 1
			WHERE id = $1
		`, it.MaterialID, it.Quantity); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO material_usage (material_id, quantity_used)
			VALUES ($1,$2)
		`, it.MaterialID, it.Quantity); err != nil {
			return err
		}
		deducted += it.Quantity
	}
	metrics.StockDeducted.Add(float64(deducted))
	return nil
}
