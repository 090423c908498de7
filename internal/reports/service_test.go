package reports

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
)

type listerFunc func(context.Context) ([]ledger.Transaction, error)

func (f listerFunc) List(ctx context.Context) ([]ledger.Transaction, error) { return f(ctx) }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func sample() []ledger.Transaction {
	return []ledger.Transaction{
		{ID: "1", OrderNumber: "PED-1", SaleDate: "2025-01-10", Company: "Klabin", Client: "DJR", SaleValue: dec("1000"), InvoiceTotal: dec("1000"), TotalReceived: dec("1000"), Status: ledger.StatusReceived},
		{ID: "2", OrderNumber: "PED-2", SaleDate: "2025-02-03", Company: "Jaepel", Client: "Papelão Sul", SaleValue: dec("500"), InvoiceTotal: dec("500"), TotalReceived: dec("200"), Status: ledger.StatusPartial},
		{ID: "3", OrderNumber: "PED-3", SaleDate: "2025-02-20", Company: "Klabin", Client: "DJR", SaleValue: dec("300.5"), InvoiceTotal: dec("300.5"), Status: ledger.StatusPending},
		{ID: "4", OrderNumber: "PED-4", SaleDate: "2025-03-01", Company: "Klabin", Client: "DJR", SaleValue: dec("100"), InvoiceTotal: dec("90"), TotalReceived: dec("90"), Status: ledger.StatusDivergent},
	}
}

func TestSummarizeCountsOutstandingOnlyForOpenRows(t *testing.T) {
	s := Summarize(sample())

	assert.Equal(t, 4, s.Count)
	assert.True(t, dec("1900.5").Equal(s.TotalSales), s.TotalSales.String())
	assert.True(t, dec("1290").Equal(s.TotalReceived), s.TotalReceived.String())
	// 300 from PED-2 and 300.5 from PED-3; the divergent row is left out.
	assert.True(t, dec("600.5").Equal(s.TotalPending), s.TotalPending.String())

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.TotalPending.IsZero())
}

func TestBuildAppliesFilter(t *testing.T) {
	svc := NewService(listerFunc(func(context.Context) ([]ledger.Transaction, error) { return sample(), nil }), nil)

	rep, err := svc.Build(context.Background(), ledger.Filter{Company: "Klabin", StartDate: "2025-02-01"})
	require.NoError(t, err)
	require.Len(t, rep.Items, 2)
	assert.Equal(t, "PED-3", rep.Items[0].OrderNumber)
	assert.Equal(t, []string{"Klabin", "Jaepel"}, rep.Companies)
	assert.Equal(t, 2, rep.Summary.Count)
}

func TestBuildReturnsEmptyReportOnFailure(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(listerFunc(func(context.Context) ([]ledger.Transaction, error) { return nil, boom }), nil)

	rep, err := svc.Build(context.Background(), ledger.Filter{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rep.Items)
}

func TestWriteCSVQuotesEveryCell(t *testing.T) {
	list := []ledger.Transaction{{
		OrderNumber: "PED-9", SaleDate: "2025-01-05", Company: "Klabin", Client: `Cliente "A"`,
		SaleValue: dec("1234.5"), InvoiceNumbers: "NF1, NF2", InvoiceTotal: dec("1234.5"),
		TotalReceived: dec("0"), PaymentMethod: "PIX", Status: ledger.StatusPending, Observations: "linha",
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, list))

	want := `"Pedido","Data","Empresa","Cliente","Valor Venda","NF","Total NF","Recebido","Forma Pgto","Status","Observações"` + "\n" +
		`"PED-9","05/01/2025","Klabin","Cliente ""A""","1234.50","NF1, NF2","1234.50","0.00","PIX","pending","linha"`
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSXProducesReadableWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "PED-2", rows[2][0])
	assert.Equal(t, "03/02/2025", rows[2][1])
	assert.Equal(t, "Parcial", rows[2][9])
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "relatorio-2025-03-09.csv", Filename(now, "csv"))
}
