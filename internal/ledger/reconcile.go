package ledger

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance absorbs rounding when a payment is compared against the pending amount.
var Tolerance = decimal.New(1, -2)

var (
	// ErrInvalidAmount is returned for payments that are zero or negative.
	ErrInvalidAmount = errors.New("ledger: payment amount must be positive")
	// ErrAmountExceedsPending is returned when a payment is larger than what is still owed.
	ErrAmountExceedsPending = errors.New("ledger: payment amount exceeds pending amount")
)

// Phase describes where a payment stands in the reconciliation flow.
type Phase string

const (
	PhaseAwaitingAmount            Phase = "awaiting_amount"
	PhaseAmountEntered             Phase = "amount_entered"
	PhaseFullSettlement            Phase = "full_settlement"
	PhasePartialDifferenceDetected Phase = "partial_difference_detected"
	PhaseResolved                  Phase = "resolved"
)

// Decision is the user's answer when a payment leaves a difference behind.
type Decision string

const (
	DecisionUndecided     Decision = ""
	DecisionKeepPending   Decision = "keep_pending"
	DecisionApplyDiscount Decision = "apply_discount"
)

// ParseDecision maps form values onto a Decision. Unknown values are undecided.
func ParseDecision(raw string) Decision {
	switch Decision(strings.TrimSpace(raw)) {
	case DecisionKeepPending:
		return DecisionKeepPending
	case DecisionApplyDiscount:
		return DecisionApplyDiscount
	}
	return DecisionUndecided
}

// Payment is a single receipt entered on the receivables screen.
type Payment struct {
	Amount        decimal.Decimal
	PaymentMethod string
	BankAccount   string
	Decision      Decision
}

// Result reports the outcome of RecordPayment. Transaction holds the updated copy and only
// needs persisting when Phase is PhaseFullSettlement or PhaseResolved.
type Result struct {
	Phase       Phase
	Transaction Transaction
	Pending     decimal.Decimal
	Difference  decimal.Decimal
}

// Persist reports whether the result carries a mutation.
func (r Result) Persist() bool {
	return r.Phase == PhaseFullSettlement || r.Phase == PhaseResolved
}

// PendingAmount is the sale value minus everything received or written off.
func PendingAmount(tx Transaction) decimal.Decimal {
	return tx.SaleValue.Sub(tx.TotalReceived).Sub(tx.Discount)
}

// IsSettled reports whether nothing meaningful is left to receive.
func IsSettled(tx Transaction) bool {
	return PendingAmount(tx).LessThanOrEqual(Tolerance)
}

// FullPaymentAmount is the amount that settles the transaction in one go.
func FullPaymentAmount(tx Transaction) decimal.Decimal {
	return ClampNonNegative(PendingAmount(tx)).Round(2)
}

// RecordPayment applies a payment to tx. tx itself is never modified.
//
// A payment that leaves more than Tolerance unpaid needs a Decision; without one the result
// is PhasePartialDifferenceDetected and the caller should ask the user before calling again.
func RecordPayment(tx Transaction, p Payment) (Result, error) {
	pending := PendingAmount(tx)
	res := Result{Phase: PhaseAmountEntered, Transaction: tx, Pending: pending}
	if !p.Amount.IsPositive() {
		return res, ErrInvalidAmount
	}
	if p.Amount.GreaterThan(pending) {
		return res, ErrAmountExceedsPending
	}

	diff := pending.Sub(p.Amount)
	res.Difference = diff
	if diff.LessThanOrEqual(Tolerance) {
		res.Transaction = applyReceipt(tx, p)
		res.Phase = PhaseFullSettlement
		return res, nil
	}

	switch p.Decision {
	case DecisionKeepPending:
		res.Transaction = applyReceipt(tx, p)
	case DecisionApplyDiscount:
		updated := applyReceipt(tx, p)
		updated.Discount = updated.Discount.Add(diff)
		res.Transaction = updated
	default:
		res.Phase = PhasePartialDifferenceDetected
		return res, nil
	}
	res.Phase = PhaseResolved
	return res, nil
}

func applyReceipt(tx Transaction, p Payment) Transaction {
	tx.TotalReceived = tx.TotalReceived.Add(p.Amount)
	if method := strings.TrimSpace(p.PaymentMethod); method != "" {
		tx.PaymentMethod = method
	}
	if bank := strings.TrimSpace(p.BankAccount); bank != "" {
		tx.BankAccount = bank
	}
	tx.Reclassify()
	return tx
}
