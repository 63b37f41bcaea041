package orders

import (
	"context"
	"fmt"

	"github.com/Spok95/construction-api/internal/domain/materials"
)

// ValidationError rejects an order before it is accepted.
type ValidationError struct {
	Reason   string // invalid_quantity | invalid_discount
	Material string
	Message  string
}

func (e *ValidationError) Error() string { return e.Message }

// StockError reports a material whose stock cannot cover the requested
// quantity. Raised both at validation time and by the inventory ledger.
type StockError struct{ Material string }

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %s", e.Material)
}

// MaterialGetter is the read-only stock lookup the validator runs against.
type MaterialGetter interface {
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
}

type Validator struct {
	mats MaterialGetter
}

func NewValidator(mats MaterialGetter) *Validator {
	return &Validator{mats: mats}
}

// Validate checks every item in order; the first failing item aborts.
// The discount bound 0..100 applies to both discount types.
func (v *Validator) Validate(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return &ValidationError{
			Reason:  "invalid_quantity",
			Message: "order must contain at least one item",
		}
	}
	for _, it := range items {
		m, err := v.mats.GetByID(ctx, it.MaterialID)
		if err != nil {
			return err
		}
		if it.Quantity <= 0 {
			return &ValidationError{
				Reason:   "invalid_quantity",
				Material: m.Name,
				Message:  fmt.Sprintf("invalid quantity for material %s", m.Name),
			}
		}
		if it.Discount.IsNegative() || it.Discount.GreaterThan(hundred) {
			return &ValidationError{
				Reason:   "invalid_discount",
				Material: m.Name,
				Message:  fmt.Sprintf("invalid discount for material %s", m.Name),
			}
		}
		if it.Quantity > m.Stock {
			return &StockError{Material: m.Name}
		}
	}
	return nil
}
