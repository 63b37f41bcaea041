package orders_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/construction-api/internal/domain/orders"
)

type fakeStore struct {
	mu          sync.Mutex
	byID        map[int64]*orders.Order
	nextID      int64
	deductCalls int
	failDeduct  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[int64]*orders.Order), nextID: 1}
}

func (s *fakeStore) Create(_ context.Context, o *orders.Order) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	cp.ID = s.nextID
	s.nextID++
	s.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeStore) Transition(_ context.Context, o *orders.Order, next orders.Status, deductStock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deductStock {
		s.deductCalls++
		if s.failDeduct {
			return &orders.StockError{Material: "Cement"}
		}
	}
	stored := s.byID[o.ID]
	if stored.Status != o.Status {
		return orders.ErrConflict
	}
	stored.Status = next
	stored.TotalPrice = o.TotalPrice
	o.Status = next
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) OrderEvent(_ context.Context, event string, _ *orders.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func testLifecycle(store *fakeStore, pub orders.EventPublisher) *orders.Lifecycle {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return orders.NewLifecycle(store, orders.NewValidator(stubCatalog()), pub, log)
}

func TestLifecycleCreate(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	lc := testLifecycle(store, pub)

	o, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "10")})
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPending, o.Status)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(900)), "got %s", o.TotalPrice)
	assert.Equal(t, []string{"created"}, pub.events)
}

func TestLifecycleCreateRejectedPersistsNothing(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	_, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 0, "10")})

	var verr *orders.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, store.byID)
}

func TestLifecycleProcessingDeductsOnce(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)

	o, err := lc.AdvanceToProcessing(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessing, o.Status)
	assert.Equal(t, 1, store.deductCalls)

	o, err = lc.AdvanceToCompleted(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, o.Status)
	// completing must not deduct again
	assert.Equal(t, 1, store.deductCalls)
}

func TestLifecycleNoSkippingToCompleted(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)

	_, err = lc.AdvanceToCompleted(context.Background(), created.ID)

	var terr *orders.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Only Processing orders can be completed.", terr.Message)
	assert.Equal(t, 0, store.deductCalls)

	got, err := lc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)
}

func TestLifecycleNoRegressionFromProcessing(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)
	_, err = lc.AdvanceToProcessing(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = lc.AdvanceToProcessing(context.Background(), created.ID)

	var terr *orders.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "Only Pending orders can be processed.", terr.Message)
}

func TestLifecycleCompletedIsTerminal(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)
	_, err = lc.AdvanceToProcessing(context.Background(), created.ID)
	require.NoError(t, err)
	_, err = lc.AdvanceToCompleted(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = lc.AdvanceToProcessing(context.Background(), created.ID)
	var terr *orders.TransitionError
	assert.ErrorAs(t, err, &terr)

	_, err = lc.AdvanceToCompleted(context.Background(), created.ID)
	assert.ErrorAs(t, err, &terr)
}

func TestLifecycleFailedDeductLeavesStatus(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)

	store.failDeduct = true
	_, err = lc.AdvanceToProcessing(context.Background(), created.ID)

	var serr *orders.StockError
	require.ErrorAs(t, err, &serr)

	got, err := lc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)
}

func TestLifecycleSerializesConcurrentTransitions(t *testing.T) {
	store := newFakeStore()
	lc := testLifecycle(store, nil)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lc.AdvanceToProcessing(context.Background(), created.ID)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var terr *orders.TransitionError
			assert.ErrorAs(t, err, &terr)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.deductCalls)
}

func TestLifecycleEvents(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	lc := testLifecycle(store, pub)

	created, err := lc.Create(context.Background(), []orders.OrderItem{pct(1, 10, "0")})
	require.NoError(t, err)
	_, err = lc.AdvanceToProcessing(context.Background(), created.ID)
	require.NoError(t, err)
	_, err = lc.AdvanceToCompleted(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"created", "processing", "completed"}, pub.events)
}
