package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/djr-reciclagem/recebiveis/internal/auth"
	"github.com/djr-reciclagem/recebiveis/internal/masterdata"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
)

type schemaOwner interface {
	EnsureSchema(ctx context.Context) error
}

// EnsureSchema creates or upgrades every table the application owns. Each step is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	steps := []struct {
		name  string
		owner schemaOwner
	}{
		{"auth", auth.NewRepository(pool)},
		{"transactions", transactions.NewRepository(pool)},
		{"masterdata", masterdata.NewRepository(pool)},
		{"audit", shared.NewAuditLogger(pool)},
		{"idempotency", shared.NewIdempotencyStore(pool)},
	}
	for _, step := range steps {
		if err := step.owner.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("schema %s: %w", step.name, err)
		}
	}
	return nil
}
