package masterdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/djr-reciclagem/recebiveis/internal/platform/db"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// Repository stores master-data items.
type Repository interface {
	List(ctx context.Context, kind Kind) ([]Item, error)
	Create(ctx context.Context, kind Kind, nome string) (Item, error)
	Update(ctx context.Context, kind Kind, id int64, nome string) error
	Delete(ctx context.Context, kind Kind, id int64) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// EnsureSchema creates the three master-data tables.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	stmts := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	nome TEXT NOT NULL UNIQUE,
	ativo BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, k))
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return db.ExecAll(ctx, tx, stmts...)
	})
}

// List returns the items of kind ordered by name.
func (r *PGRepository) List(ctx context.Context, kind Kind) ([]Item, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, nome, ativo, created_at, updated_at FROM %s ORDER BY nome`, kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Nome, &it.Ativo, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a new active item.
func (r *PGRepository) Create(ctx context.Context, kind Kind, nome string) (Item, error) {
	var it Item
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`INSERT INTO %s (nome) VALUES ($1)
RETURNING id, nome, ativo, created_at, updated_at`, kind), nome).
		Scan(&it.ID, &it.Nome, &it.Ativo, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Item{}, shared.ErrDuplicate
		}
		return Item{}, err
	}
	return it, nil
}

// Update renames an item.
func (r *PGRepository) Update(ctx context.Context, kind Kind, id int64, nome string) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET nome = $1, updated_at = NOW() WHERE id = $2`, kind), nome, id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an item.
func (r *PGRepository) Delete(ctx context.Context, kind Kind, id int64) error {
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
