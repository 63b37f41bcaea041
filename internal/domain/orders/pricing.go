package orders

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedPrice returns the line value of an item after its discount.
// A percentage discount reduces quantity*price by discount percent, a flat
// discount subtracts the discount amount once, any other type means no
// discount. The result never goes below zero.
func DiscountedPrice(it OrderItem) decimal.Decimal {
	gross := decimal.NewFromInt(it.Quantity).Mul(it.Price)

	var priced decimal.Decimal
	switch it.DiscountType {
	case DiscountPercentage:
		priced = gross.Mul(decimal.NewFromInt(1).Sub(it.Discount.Div(hundred)))
	case DiscountFlat:
		priced = gross.Sub(it.Discount)
	default:
		priced = gross
	}

	if priced.IsNegative() {
		return decimal.Zero
	}
	return priced
}

// OrderTotal sums the discounted line values of all items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(DiscountedPrice(it))
	}
	return total
}
