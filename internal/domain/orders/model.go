package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

type Order struct {
	ID         int64           `json:"id"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items"`
}

// OrderItem is a single material line of an order. Price is the unit price
// snapshot taken at order time, not the material's live base price.
type OrderItem struct {
	ID           int64           `json:"-"`
	OrderID      int64           `json:"-"`
	MaterialID   int64           `json:"material"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountType DiscountType    `json:"discount_type"`
}

// RecalculateTotal refreshes the derived total from the current item set.
func (o *Order) RecalculateTotal() {
	o.TotalPrice = OrderTotal(o.Items)
}
