// Package reports builds the filtered transaction report and its CSV, XLSX and PDF exports.
package reports

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
)

// Lister supplies the full transaction list.
type Lister interface {
	List(ctx context.Context) ([]ledger.Transaction, error)
}

// Summary aggregates the filtered rows.
type Summary struct {
	Count         int             `json:"count"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalReceived decimal.Decimal `json:"totalReceived"`
	// TotalPending sums sale minus received over pending and partial rows only.
	TotalPending decimal.Decimal `json:"totalPending"`
}

// Report is the filtered view behind the reports page and every export.
type Report struct {
	Items     []ledger.Transaction `json:"items"`
	Summary   Summary              `json:"summary"`
	Filter    ledger.Filter        `json:"-"`
	Companies []string             `json:"companies"`
}

// Summarize computes the report totals for list.
func Summarize(list []ledger.Transaction) Summary {
	s := Summary{Count: len(list), TotalSales: decimal.Zero, TotalReceived: decimal.Zero, TotalPending: decimal.Zero}
	for _, t := range list {
		s.TotalSales = s.TotalSales.Add(t.SaleValue)
		s.TotalReceived = s.TotalReceived.Add(t.TotalReceived)
		if t.Status == ledger.StatusPending || t.Status == ledger.StatusPartial {
			s.TotalPending = s.TotalPending.Add(t.Outstanding())
		}
	}
	return s
}

// Service builds reports from the transaction store.
type Service struct {
	source Lister
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(source Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// Build applies f to every stored transaction.
func (s *Service) Build(ctx context.Context, f ledger.Filter) (Report, error) {
	list, err := s.source.List(ctx)
	if err != nil {
		return Report{Filter: f, Items: []ledger.Transaction{}, Summary: Summarize(nil)}, err
	}
	items := f.Apply(list)
	return Report{
		Items:     items,
		Summary:   Summarize(items),
		Filter:    f,
		Companies: ledger.Companies(list),
	}, nil
}
