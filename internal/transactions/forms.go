package transactions

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/locale"
	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// transactionForm keeps the raw form strings so a rejected form can be shown again as typed.
type transactionForm struct {
	OrderNumber    string
	SaleDate       string
	Company        string
	Client         string
	SaleValue      string
	InvoiceNumbers string
	InvoiceTotal   string
	TotalReceived  string
	PaymentMethod  string
	BankAccount    string
	Observations   string
}

func formFromRequest(r *http.Request) transactionForm {
	get := func(name string) string { return strings.TrimSpace(r.PostFormValue(name)) }
	return transactionForm{
		OrderNumber:    get("orderNumber"),
		SaleDate:       get("saleDate"),
		Company:        get("company"),
		Client:         get("client"),
		SaleValue:      get("saleValue"),
		InvoiceNumbers: get("invoiceNumbers"),
		InvoiceTotal:   get("invoiceTotal"),
		TotalReceived:  get("totalReceived"),
		PaymentMethod:  get("paymentMethod"),
		BankAccount:    get("bankAccount"),
		Observations:   get("observations"),
	}
}

func formFromTransaction(t ledger.Transaction) transactionForm {
	return transactionForm{
		OrderNumber:    t.OrderNumber,
		SaleDate:       t.SaleDate,
		Company:        t.Company,
		Client:         t.Client,
		SaleValue:      t.SaleValue.StringFixed(2),
		InvoiceNumbers: t.InvoiceNumbers,
		InvoiceTotal:   t.InvoiceTotal.StringFixed(2),
		TotalReceived:  t.TotalReceived.StringFixed(2),
		PaymentMethod:  t.PaymentMethod,
		BankAccount:    t.BankAccount,
		Observations:   t.Observations,
	}
}

// input converts the form. Blank amounts are zero; malformed ones are reported per field.
func (f transactionForm) input() (Input, *shared.ValidationError) {
	verr := &shared.ValidationError{}
	amount := func(field, raw string) decimal.Decimal {
		if raw == "" {
			return decimal.Zero
		}
		v, ok := locale.ParseAmount(raw)
		if !ok {
			verr.Add(field, "Valor inválido.")
		}
		return v
	}
	in := Input{
		OrderNumber:    f.OrderNumber,
		SaleDate:       locale.ParseDate(f.SaleDate),
		Company:        f.Company,
		Client:         f.Client,
		SaleValue:      amount("SaleValue", f.SaleValue),
		InvoiceNumbers: f.InvoiceNumbers,
		InvoiceTotal:   amount("InvoiceTotal", f.InvoiceTotal),
		TotalReceived:  amount("TotalReceived", f.TotalReceived),
		PaymentMethod:  f.PaymentMethod,
		BankAccount:    f.BankAccount,
		Observations:   f.Observations,
	}
	if verr.Empty() {
		return in, nil
	}
	return in, verr
}

// paymentForm is the receivables payment form as typed.
type paymentForm struct {
	Amount        string
	PaymentMethod string
	BankAccount   string
	Decision      string
}

func paymentFromRequest(r *http.Request) paymentForm {
	return paymentForm{
		Amount:        strings.TrimSpace(r.PostFormValue("amount")),
		PaymentMethod: strings.TrimSpace(r.PostFormValue("paymentMethod")),
		BankAccount:   strings.TrimSpace(r.PostFormValue("bankAccount")),
		Decision:      strings.TrimSpace(r.PostFormValue("decision")),
	}
}

// payment converts the form. A malformed amount becomes zero and is rejected by the ledger.
func (f paymentForm) payment() ledger.Payment {
	amount, _ := locale.ParseAmount(f.Amount)
	return ledger.Payment{
		Amount:        amount,
		PaymentMethod: f.PaymentMethod,
		BankAccount:   f.BankAccount,
		Decision:      ledger.ParseDecision(f.Decision),
	}
}
