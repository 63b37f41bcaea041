package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type StockLevel struct {
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

// UsageTotal carries the total quantity ever ordered per material;
// TotalUsage is null for materials that never appeared on an order.
type UsageTotal struct {
	Name       string `json:"name"`
	TotalUsage *int64 `json:"total_usage"`
}

type UsagePoint struct {
	Date      time.Time `json:"date"`
	TotalUsed int64     `json:"total_used"`
}

type PricePoint struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// StockSnapshot returns current stock across the whole catalog.
func (r *Repo) StockSnapshot(ctx context.Context) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, stock FROM materials ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockLevel
	for rows.Next() {
		var s StockLevel
		if err := rows.Scan(&s.Name, &s.Stock); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UsageTotals aggregates ordered quantity over order items per material.
func (r *Repo) UsageTotals(ctx context.Context) ([]UsageTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.name, SUM(oi.quantity)
		FROM materials m
		LEFT JOIN order_items oi ON oi.material_id = m.id
		GROUP BY m.id, m.name
		ORDER BY m.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UsageTotal
	for rows.Next() {
		var u UsageTotal
		if err := rows.Scan(&u.Name, &u.TotalUsage); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UsageTrend returns consumed quantity per date for one material, oldest first.
func (r *Repo) UsageTrend(ctx context.Context, materialID int64) ([]UsagePoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, SUM(quantity_used)
		FROM material_usage
		WHERE material_id = $1
		GROUP BY date
		ORDER BY date
	`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UsagePoint
	for rows.Next() {
		var p UsagePoint
		if err := rows.Scan(&p.Date, &p.TotalUsed); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PriceTrend returns the recorded price history for one material, oldest first.
func (r *Repo) PriceTrend(ctx context.Context, materialID int64) ([]PricePoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, price
		FROM material_price_history
		WHERE material_id = $1
		ORDER BY date
	`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.Date, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
