package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/platform/db"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

//go:generate mockgen -destination=mock_repository_test.go -package=transactions . Repository

// Repository persists transactions.
type Repository interface {
	List(ctx context.Context) ([]ledger.Transaction, error)
	Get(ctx context.Context, id string) (ledger.Transaction, error)
	Create(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	Update(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PGRepository stores transactions in PostgreSQL using the Portuguese column names.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		pedido TEXT NOT NULL DEFAULT '',
		data DATE NOT NULL,
		empresa TEXT NOT NULL DEFAULT '',
		cliente TEXT NOT NULL DEFAULT '',
		valor_vendido NUMERIC(14,2) NOT NULL DEFAULT 0,
		nf TEXT NOT NULL DEFAULT '',
		total_nf NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_recebido NUMERIC(14,2) NOT NULL DEFAULT 0,
		observacoes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// Columns added after the first release.
	`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS desconto NUMERIC(14,2) NOT NULL DEFAULT 0`,
	`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS forma_recebimento TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS banco_conta TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()`,
	`CREATE INDEX IF NOT EXISTS transactions_data_created_idx ON transactions (data DESC, created_at DESC)`,
}

// EnsureSchema creates the table and applies the additive column changes in one transaction.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return db.ExecAll(ctx, tx, schemaStatements...)
	})
}

const columnList = `id, pedido, to_char(data, 'YYYY-MM-DD'), empresa, cliente, valor_vendido::text, nf,
	total_nf::text, total_recebido::text, desconto::text, forma_recebimento, banco_conta, observacoes,
	status, created_at, updated_at`

func scanTransaction(row pgx.Row) (ledger.Transaction, error) {
	var (
		t                                 ledger.Transaction
		sale, invoice, received, discount string
		status                            string
	)
	if err := row.Scan(&t.ID, &t.OrderNumber, &t.SaleDate, &t.Company, &t.Client, &sale, &t.InvoiceNumbers,
		&invoice, &received, &discount, &t.PaymentMethod, &t.BankAccount, &t.Observations,
		&status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return ledger.Transaction{}, err
	}
	var err error
	if t.SaleValue, err = decimal.NewFromString(sale); err != nil {
		return ledger.Transaction{}, fmt.Errorf("valor_vendido: %w", err)
	}
	if t.InvoiceTotal, err = decimal.NewFromString(invoice); err != nil {
		return ledger.Transaction{}, fmt.Errorf("total_nf: %w", err)
	}
	if t.TotalReceived, err = decimal.NewFromString(received); err != nil {
		return ledger.Transaction{}, fmt.Errorf("total_recebido: %w", err)
	}
	if t.Discount, err = decimal.NewFromString(discount); err != nil {
		return ledger.Transaction{}, fmt.Errorf("desconto: %w", err)
	}
	t.Status = ledger.Status(status)
	return t, nil
}

// List returns every transaction, newest sale first.
func (r *PGRepository) List(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columnList+` FROM transactions ORDER BY data DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("transactions: list: %w", err)
	}
	defer rows.Close()
	var out []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("transactions: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get loads one transaction.
func (r *PGRepository) Get(ctx context.Context, id string) (ledger.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, `SELECT `+columnList+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Transaction{}, shared.ErrNotFound
		}
		return ledger.Transaction{}, fmt.Errorf("transactions: get: %w", err)
	}
	return t, nil
}

// Create inserts tx with a fresh id and returns the stored row.
func (r *PGRepository) Create(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if strings.TrimSpace(tx.ID) == "" {
		tx.ID = uuid.NewString()
	}
	now := time.Now()
	row := r.pool.QueryRow(ctx, `INSERT INTO transactions (id, pedido, data, empresa, cliente, valor_vendido, nf,
		total_nf, total_recebido, desconto, forma_recebimento, banco_conta, observacoes, status, created_at, updated_at)
		VALUES ($1, $2, $3::text::date, $4, $5, $6::text::numeric, $7, $8::text::numeric, $9::text::numeric,
		$10::text::numeric, $11, $12, $13, $14, $15, $15)
		RETURNING `+columnList,
		tx.ID, tx.OrderNumber, tx.SaleDate, tx.Company, tx.Client, tx.SaleValue.String(), tx.InvoiceNumbers,
		tx.InvoiceTotal.String(), tx.TotalReceived.String(), tx.Discount.String(), tx.PaymentMethod, tx.BankAccount,
		tx.Observations, string(tx.Status), now)
	created, err := scanTransaction(row)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transactions: create: %w", err)
	}
	return created, nil
}

// Update overwrites every mutable column of tx. Last write wins.
func (r *PGRepository) Update(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	row := r.pool.QueryRow(ctx, `UPDATE transactions SET pedido = $2, data = $3::text::date, empresa = $4, cliente = $5,
		valor_vendido = $6::text::numeric, nf = $7, total_nf = $8::text::numeric, total_recebido = $9::text::numeric,
		desconto = $10::text::numeric, forma_recebimento = $11, banco_conta = $12, observacoes = $13, status = $14,
		updated_at = NOW()
		WHERE id = $1
		RETURNING `+columnList,
		tx.ID, tx.OrderNumber, tx.SaleDate, tx.Company, tx.Client, tx.SaleValue.String(), tx.InvoiceNumbers,
		tx.InvoiceTotal.String(), tx.TotalReceived.String(), tx.Discount.String(), tx.PaymentMethod, tx.BankAccount,
		tx.Observations, string(tx.Status))
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Transaction{}, shared.ErrNotFound
		}
		return ledger.Transaction{}, fmt.Errorf("transactions: update: %w", err)
	}
	return updated, nil
}

// Delete removes a transaction, reporting whether a row existed.
func (r *PGRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("transactions: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
