package transactions

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
)

// PendingSummary totals the receivables screen.
type PendingSummary struct {
	Count              int
	TotalPending       decimal.Decimal
	TotalPartiallyPaid decimal.Decimal
	TotalDiscount      decimal.Decimal
}

// PendingView is what the receivables screen shows.
type PendingView struct {
	Items     []ledger.Transaction
	Summary   PendingSummary
	Companies []string
}

// Receivables filters transactions down to pending and partial ones. A partial sale whose
// remainder was written off stays listed; ledger.IsSettled tells the screen it is closed.
func Receivables(list []ledger.Transaction, f ledger.Filter) []ledger.Transaction {
	out := make([]ledger.Transaction, 0)
	for _, t := range list {
		if !t.Status.Receivable() {
			continue
		}
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SummarisePending computes the receivables screen totals.
func SummarisePending(items []ledger.Transaction) PendingSummary {
	sum := PendingSummary{Count: len(items)}
	for _, t := range items {
		sum.TotalPending = sum.TotalPending.Add(ledger.PendingAmount(t))
		if t.Status == ledger.StatusPartial {
			sum.TotalPartiallyPaid = sum.TotalPartiallyPaid.Add(t.TotalReceived)
		}
		sum.TotalDiscount = sum.TotalDiscount.Add(t.Discount)
	}
	return sum
}

// Pending loads the receivables screen.
func (s *Service) Pending(ctx context.Context, f ledger.Filter) (PendingView, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return PendingView{}, err
	}
	// Status filters do not apply here; the screen is already scoped to pending and partial.
	f.Status = ""
	items := Receivables(list, f)
	return PendingView{Items: items, Summary: SummarisePending(items), Companies: ledger.Companies(list)}, nil
}
