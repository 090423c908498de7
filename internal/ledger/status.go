package ledger

import "github.com/shopspring/decimal"

// Status is the derived receivable state of a transaction.
type Status string

const (
	StatusReceived  Status = "received"
	StatusPartial   Status = "partial"
	StatusPending   Status = "pending"
	StatusDivergent Status = "divergent"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusReceived, StatusPartial, StatusPending, StatusDivergent}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusPartial, StatusPending, StatusDivergent:
		return true
	}
	return false
}

// Label is the pt-BR name shown in the UI and exports.
func (s Status) Label() string {
	switch s {
	case StatusReceived:
		return "Recebido"
	case StatusPartial:
		return "Parcial"
	case StatusPending:
		return "Pendente"
	case StatusDivergent:
		return "Divergente"
	}
	return string(s)
}

// Receivable reports whether payments can still be recorded against the status.
func (s Status) Receivable() bool {
	return s == StatusPending || s == StatusPartial
}

// Policy selects how an exact match between sale and received is judged.
type Policy int

const (
	// PolicyStrictEqual marks a sale received only when the amounts are equal. Overpayment is divergent.
	PolicyStrictEqual Policy = iota
	// PolicyAtLeast marks a sale received whenever the received amount covers it.
	PolicyAtLeast
)

func (p Policy) String() string {
	if p == PolicyAtLeast {
		return "at-least"
	}
	return "strict-equal"
}

// Classify applies PolicyStrictEqual.
func Classify(saleValue, totalReceived decimal.Decimal) Status {
	return ClassifyWith(PolicyStrictEqual, saleValue, totalReceived)
}

// ClassifyWith derives the status for the given amounts. The first matching rule wins.
func ClassifyWith(policy Policy, saleValue, totalReceived decimal.Decimal) Status {
	switch {
	case saleValue.IsZero() && totalReceived.IsZero():
		return StatusPending
	case saleValue.IsPositive() && received(policy, saleValue, totalReceived):
		return StatusReceived
	case totalReceived.IsPositive() && totalReceived.LessThan(saleValue):
		return StatusPartial
	case totalReceived.IsZero() && saleValue.IsPositive():
		return StatusPending
	default:
		return StatusDivergent
	}
}

func received(policy Policy, saleValue, totalReceived decimal.Decimal) bool {
	if policy == PolicyAtLeast {
		return totalReceived.GreaterThanOrEqual(saleValue)
	}
	return totalReceived.Equal(saleValue)
}
