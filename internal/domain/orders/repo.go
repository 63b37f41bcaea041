package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
	ErrConflict = errors.New("order was modified concurrently")
)

type Repo struct {
	pool   *pgxpool.Pool
	ledger Ledger
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Create persists the order and its items in one transaction. Nothing is
// written when any insert fails, so a rejected order leaves no orphaned rows.
func (r *Repo) Create(ctx context.Context, o *Order) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := &Order{Items: make([]OrderItem, 0, len(o.Items))}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (status, total_price)
		VALUES ($1,$2)
		RETURNING id, status, total_price, created_at
	`, o.Status, o.TotalPrice).Scan(&out.ID, &out.Status, &out.TotalPrice, &out.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		it.OrderID = out.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, material_id, quantity, price, discount, discount_type)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`, it.OrderID, it.MaterialID, it.Quantity, it.Price, it.Discount, it.DiscountType).Scan(&it.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, status, total_price, created_at FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.Status, &o.TotalPrice, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, material_id, quantity, price, discount, discount_type
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MaterialID, &it.Quantity, &it.Price, &it.Discount, &it.DiscountType); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, status, total_price, created_at FROM orders ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Transition moves the order from its current status to next in one
// transaction, deducting stock through the ledger first when requested.
// The status update is guarded on the status the caller read; a concurrent
// transition fails with ErrConflict and rolls everything back.
func (r *Repo) Transition(ctx context.Context, o *Order, next Status, deductStock bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if deductStock {
		if err := r.ledger.Deduct(ctx, tx, o.Items); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, total_price=$3
		WHERE id=$1 AND status=$4
	`, o.ID, next, o.TotalPrice, o.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	o.Status = next
	return nil
}
