package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads audit_logs joined with users.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Window returns up to limit rows newest first, skipping offset.
func (r *PGRepository) Window(ctx context.Context, f Filters, offset, limit int) ([]Row, error) {
	where, args := whereClause(f)
	args = append(args, offset, limit)
	sql := fmt.Sprintf(`%s %s ORDER BY l.occurred_at DESC, l.id DESC OFFSET $%d LIMIT $%d`,
		selectRows, where, len(args)-1, len(args))
	return r.query(ctx, sql, args...)
}

// All returns every matching row newest first.
func (r *PGRepository) All(ctx context.Context, f Filters) ([]Row, error) {
	where, args := whereClause(f)
	return r.query(ctx, selectRows+" "+where+" ORDER BY l.occurred_at DESC, l.id DESC", args...)
}

const selectRows = `SELECT l.occurred_at, l.actor_id, COALESCE(u.email, ''), l.action, l.entity, l.entity_id, l.meta
	FROM audit_logs l LEFT JOIN users u ON u.id = l.actor_id`

func whereClause(f Filters) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !f.From.IsZero() {
		add("l.occurred_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		// To is a calendar day, inclusive.
		add("l.occurred_at < $%d", f.To.Add(24*time.Hour))
	}
	if f.Actor != "" {
		add("u.email ILIKE '%%' || $%d || '%%'", f.Actor)
	}
	if f.Entity != "" {
		add("l.entity = $%d", f.Entity)
	}
	if f.Action != "" {
		add("l.action = $%d", f.Action)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGRepository) query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var (
			item Row
			meta []byte
		)
		if err := row.Scan(&item.At, &item.ActorID, &item.Actor, &item.Action, &item.Entity, &item.EntityID, &meta); err != nil {
			return Row{}, err
		}
		if len(meta) > 0 && string(meta) != "null" {
			if err := json.Unmarshal(meta, &item.Meta); err != nil {
				return Row{}, err
			}
		}
		return item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("audit: scan: %w", err)
	}
	return out, nil
}
