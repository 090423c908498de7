// Package ledger holds the sales transaction model together with the status rules and
// the payment reconciliation used by the receivables screens.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one sale and its receivable position.
type Transaction struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"orderNumber"`
	SaleDate       string          `json:"saleDate"`
	Company        string          `json:"company"`
	Client         string          `json:"client"`
	SaleValue      decimal.Decimal `json:"saleValue"`
	InvoiceNumbers string          `json:"invoiceNumbers"`
	InvoiceTotal   decimal.Decimal `json:"invoiceTotal"`
	TotalReceived  decimal.Decimal `json:"totalReceived"`
	Discount       decimal.Decimal `json:"discount"`
	PaymentMethod  string          `json:"paymentMethod,omitempty"`
	BankAccount    string          `json:"bankAccount,omitempty"`
	Observations   string          `json:"observations,omitempty"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Outstanding is what the client still owes ignoring discounts, as used by reports and the dashboard.
func (t Transaction) Outstanding() decimal.Decimal {
	return t.SaleValue.Sub(t.TotalReceived)
}

// Reclassify recomputes Status from the stored amounts.
func (t *Transaction) Reclassify() {
	t.Status = Classify(t.SaleValue, t.TotalReceived)
}

// ClampNonNegative returns v, or zero when v is negative.
func ClampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
