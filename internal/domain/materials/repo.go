package materials

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("material not found")
	ErrVersionConflict = errors.New("material was modified concurrently")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, m *Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, category, unit, base_price, stock)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, name, category, unit, base_price, stock, version, created_at
	`, m.Name, m.Category, m.Unit, m.BasePrice, m.Stock)

	var out Material
	if err := scanMaterial(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, category, unit, base_price, stock, version, created_at
		FROM materials
		WHERE id = $1
	`, id)

	var m Material
	if err := scanMaterial(row, &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category, unit, base_price, stock, version, created_at
		FROM materials
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := scanMaterial(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update persists new field values, bumps the version counter and, when the
// base price changed, appends the prior price to material_price_history in the
// same transaction. m.Version, when non-zero, is the version the caller read;
// a mismatch fails with ErrVersionConflict.
func (r *Repo) Update(ctx context.Context, m *Material) (*Material, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var oldPrice decimal.Decimal
	var oldVersion int64
	err = tx.QueryRow(ctx, `
		SELECT base_price, version FROM materials WHERE id = $1 FOR UPDATE
	`, m.ID).Scan(&oldPrice, &oldVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if m.Version != 0 && m.Version != oldVersion {
		return nil, ErrVersionConflict
	}

	if !oldPrice.Equal(m.BasePrice) {
		if _, err := tx.Exec(ctx, `
			INSERT INTO material_price_history (material_id, price)
			VALUES ($1,$2)
		`, m.ID, oldPrice); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(ctx, `
		UPDATE materials
		SET name=$2, category=$3, unit=$4, base_price=$5, stock=$6, version=version+1
		WHERE id=$1
		RETURNING id, name, category, unit, base_price, stock, version, created_at
	`, m.ID, m.Name, m.Category, m.Unit, m.BasePrice, m.Stock)

	var out Material
	if err := scanMaterial(row, &out); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) PriceHistory(ctx context.Context, materialID int64) ([]PriceHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, price, date
		FROM material_price_history
		WHERE material_id = $1
		ORDER BY date
	`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PriceHistory
	for rows.Next() {
		var h PriceHistory
		if err := rows.Scan(&h.ID, &h.MaterialID, &h.Price, &h.Date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanMaterial(row scanner, m *Material) error {
	return row.Scan(
		&m.ID,
		&m.Name,
		&m.Category,
		&m.Unit,
		&m.BasePrice,
		&m.Stock,
		&m.Version,
		&m.CreatedAt,
	)
}
