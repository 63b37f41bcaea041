package orders

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Spok95/construction-api/internal/infra/metrics"
)

// TransitionError rejects a status change that the state machine does not
// allow. The message is what the API returns to the caller.
type TransitionError struct{ Message string }

func (e *TransitionError) Error() string { return e.Message }

// Store is the persistence the lifecycle runs against.
type Store interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Transition(ctx context.Context, o *Order, next Status, deductStock bool) error
}

// EventPublisher receives an event per successful lifecycle step. Optional.
type EventPublisher interface {
	OrderEvent(ctx context.Context, event string, o *Order) error
}

// Lifecycle is the Pending -> Processing -> Completed state machine. Each
// transition is a single explicit step, no regression and no skipping.
// Stock is deducted exactly once, on Pending -> Processing; completing an
// order touches no stock.
type Lifecycle struct {
	store     Store
	validator *Validator
	events    EventPublisher
	log       *slog.Logger
	mu        keyedMutex
}

func NewLifecycle(store Store, validator *Validator, events EventPublisher, log *slog.Logger) *Lifecycle {
	return &Lifecycle{store: store, validator: validator, events: events, log: log}
}

// Create validates the items, computes the derived total and persists the
// order as Pending. A failed validation persists nothing.
func (l *Lifecycle) Create(ctx context.Context, items []OrderItem) (*Order, error) {
	if err := l.validator.Validate(ctx, items); err != nil {
		metrics.OrdersRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	o := &Order{Status: StatusPending, Items: items}
	o.RecalculateTotal()

	created, err := l.store.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	l.publish(ctx, "created", created)
	return created, nil
}

func (l *Lifecycle) Get(ctx context.Context, id int64) (*Order, error) {
	return l.store.GetByID(ctx, id)
}

// AdvanceToProcessing moves a Pending order to Processing and deducts stock
// for every item. Any shortfall fails the whole deduction and leaves both
// status and stock untouched.
func (l *Lifecycle) AdvanceToProcessing(ctx context.Context, id int64) (*Order, error) {
	unlock := l.mu.lock(id)
	defer unlock()

	o, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, &TransitionError{Message: "Only Pending orders can be processed."}
	}

	o.RecalculateTotal()
	if err := l.store.Transition(ctx, o, StatusProcessing, true); err != nil {
		return nil, err
	}
	metrics.OrderTransitions.WithLabelValues(string(StatusProcessing)).Inc()
	l.publish(ctx, "processing", o)
	return o, nil
}

// AdvanceToCompleted moves a Processing order to Completed. Stock was already
// deducted on the previous transition.
func (l *Lifecycle) AdvanceToCompleted(ctx context.Context, id int64) (*Order, error) {
	unlock := l.mu.lock(id)
	defer unlock()

	o, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusProcessing {
		return nil, &TransitionError{Message: "Only Processing orders can be completed."}
	}

	o.RecalculateTotal()
	if err := l.store.Transition(ctx, o, StatusCompleted, false); err != nil {
		return nil, err
	}
	metrics.OrderTransitions.WithLabelValues(string(StatusCompleted)).Inc()
	l.publish(ctx, "completed", o)
	return o, nil
}

func (l *Lifecycle) publish(ctx context.Context, event string, o *Order) {
	if l.events == nil {
		return
	}
	if err := l.events.OrderEvent(ctx, event, o); err != nil {
		l.log.Error("publish order event failed", "event", event, "order_id", o.ID, "err", err)
	}
}

func rejectReason(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	var serr *StockError
	if errors.As(err, &serr) {
		return "insufficient_stock"
	}
	return "error"
}
