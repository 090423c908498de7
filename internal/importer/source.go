package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
	"github.com/djr-reciclagem/recebiveis/internal/locale"
	"github.com/djr-reciclagem/recebiveis/internal/transactions"
)

// Source identifies where the text came from. It fixes the header handling, the column
// layout and the minimum field count.
type Source string

const (
	// SourceCSV is an uploaded CSV/TSV file (or converted XLSX sheet) with a header row.
	SourceCSV Source = "csv"
	// SourcePaste is text pasted from a spreadsheet, without header.
	SourcePaste Source = "paste"
	// SourceKlabin is the Klabin receivables report, tab separated with a header row.
	SourceKlabin Source = "klabin"
)

// ParseSource validates a layout name taken from a form.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceCSV, SourcePaste, SourceKlabin:
		return Source(s), nil
	case "":
		return SourceCSV, nil
	}
	return "", fmt.Errorf("importer: unknown layout %q", s)
}

// HasHeader reports whether the first line is a header.
func (s Source) HasHeader() bool {
	return s != SourcePaste
}

// MinFields is the minimum number of fields a row needs to be considered.
func (s Source) MinFields() int {
	if s == SourcePaste {
		return 4
	}
	return 6
}

// DefaultPolicy is the status policy applied when the caller does not pick one. The Klabin
// report keeps strict equality like the manual form.
func (s Source) DefaultPolicy() ledger.Policy {
	if s == SourceKlabin {
		return ledger.PolicyStrictEqual
	}
	return ledger.PolicyAtLeast
}

// Label is the name shown in reports.
func (s Source) Label() string {
	switch s {
	case SourcePaste:
		return "Colar dados"
	case SourceKlabin:
		return "Relatório Klabin"
	default:
		return "Arquivo CSV/XLSX"
	}
}

// StandardHeader is the header row of the import template.
var StandardHeader = []string{
	"Pedido", "Data", "Empresa", "Cliente", "ValorVendido", "NF", "TotalNF",
	"TotalRecebido", "FormaRecebimento", "Banco/Conta", "Observações",
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func amount(raw string) decimal.Decimal {
	return ledger.ClampNonNegative(locale.ParseCurrency(raw))
}

// standardRow maps the eleven-column layout. Missing trailing columns are empty.
func standardRow(fields []string) transactions.Input {
	return transactions.Input{
		OrderNumber:    field(fields, 0),
		SaleDate:       locale.ParseDate(field(fields, 1)),
		Company:        field(fields, 2),
		Client:         field(fields, 3),
		SaleValue:      amount(field(fields, 4)),
		InvoiceNumbers: field(fields, 5),
		InvoiceTotal:   amount(field(fields, 6)),
		TotalReceived:  amount(field(fields, 7)),
		PaymentMethod:  field(fields, 8),
		BankAccount:    field(fields, 9),
		Observations:   field(fields, 10),
	}
}

// klabinRow maps [dataEmissao, notaFiscal, numeroDocumento, observacao, valorBruto, valorRecebido].
func klabinRow(fields []string) transactions.Input {
	gross := amount(field(fields, 4))
	return transactions.Input{
		OrderNumber:    field(fields, 2),
		SaleDate:       locale.ParseDate(field(fields, 0)),
		Company:        "Klabin",
		Client:         "DJR Reciclagem",
		SaleValue:      gross,
		InvoiceNumbers: field(fields, 1),
		InvoiceTotal:   gross,
		TotalReceived:  amount(field(fields, 5)),
		Observations:   field(fields, 3),
	}
}

func (s Source) row(fields []string) transactions.Input {
	if s == SourceKlabin {
		return klabinRow(fields)
	}
	return standardRow(fields)
}
