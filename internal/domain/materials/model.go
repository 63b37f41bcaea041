package materials

import (
	"time"

	"github.com/shopspring/decimal"
)

type Material struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	BasePrice decimal.Decimal `json:"base_price"`
	Stock     int64           `json:"stock"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
}

// PriceHistory is an append-only record of a material's price before a change.
type PriceHistory struct {
	ID         int64           `json:"id"`
	MaterialID int64           `json:"material_id"`
	Price      decimal.Decimal `json:"price"`
	Date       time.Time       `json:"date"`
}

// Usage records quantity consumed per material per date.
type Usage struct {
	ID           int64     `json:"id"`
	MaterialID   int64     `json:"material_id"`
	QuantityUsed int64     `json:"quantity_used"`
	Date         time.Time `json:"date"`
}
