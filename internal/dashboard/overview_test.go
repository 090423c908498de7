package dashboard

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ledgerFixture() []ledger.Transaction {
	return []ledger.Transaction{
		{OrderNumber: "PED-3", SaleDate: "2025-03-02", Company: "Klabin", SaleValue: dec("200"), TotalReceived: dec("0"), Status: ledger.StatusPending},
		{OrderNumber: "PED-1", SaleDate: "2025-01-10", Company: "Klabin", SaleValue: dec("1000"), TotalReceived: dec("1000"), Status: ledger.StatusReceived},
		{OrderNumber: "PED-2", SaleDate: "2025-01-25", Company: "Jaepel", SaleValue: dec("500"), TotalReceived: dec("250"), Status: ledger.StatusPartial},
		{OrderNumber: "PED-4", SaleDate: "", Company: "Klabin", SaleValue: dec("300"), TotalReceived: dec("0"), Status: ledger.StatusPending},
	}
}

func TestBuildCards(t *testing.T) {
	ov := Build(ledgerFixture(), "")

	assert.Equal(t, 4, ov.Cards.Count)
	assert.True(t, dec("2000").Equal(ov.Cards.TotalSold))
	assert.True(t, dec("1250").Equal(ov.Cards.TotalReceived))
	assert.True(t, dec("750").Equal(ov.Cards.TotalOpen))
	assert.InDelta(t, 62.5, ov.Cards.ReceivedPercent, 0.001)
	assert.Equal(t, 1, ov.Cards.PartialCount)
	assert.Equal(t, 2, ov.Cards.PendingCount)
}

func TestBuildMonthlyAscendingAndSkipsUndated(t *testing.T) {
	ov := Build(ledgerFixture(), "")

	require.Len(t, ov.Monthly, 2)
	assert.Equal(t, "2025-01", ov.Monthly[0].Month)
	assert.True(t, dec("1500").Equal(ov.Monthly[0].Sold))
	assert.True(t, dec("1250").Equal(ov.Monthly[0].Received))
	assert.Equal(t, "2025-03", ov.Monthly[1].Month)
}

func TestBuildCompanyFilter(t *testing.T) {
	ov := Build(ledgerFixture(), "Jaepel")

	assert.Equal(t, 1, ov.Cards.Count)
	assert.InDelta(t, 50, ov.Cards.ReceivedPercent, 0.001)
	require.Len(t, ov.Orders, 1)
	assert.Equal(t, "PED-2", ov.Orders[0].OrderNumber)
}

func TestBuildEmpty(t *testing.T) {
	ov := Build(nil, "Nenhuma")

	assert.Zero(t, ov.Cards.ReceivedPercent)
	assert.True(t, ov.Cards.TotalOpen.IsZero())
	assert.Empty(t, ov.Monthly)
	require.Len(t, ov.Statuses, len(ledger.Statuses))
	for _, s := range ov.Statuses {
		assert.Zero(t, s.Count)
	}
}

func TestBuildCapsOrderBars(t *testing.T) {
	list := make([]ledger.Transaction, MaxOrderBars+5)
	for i := range list {
		list[i] = ledger.Transaction{OrderNumber: "P", SaleDate: "2025-01-01", SaleValue: dec("1"), Status: ledger.StatusPending}
	}
	ov := Build(list, "")
	assert.Len(t, ov.Orders, MaxOrderBars)
	assert.Equal(t, MaxOrderBars+5, ov.Cards.Count)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "mar/2025", MonthLabel("2025-03"))
	assert.Equal(t, "dez/2024", MonthLabel("2024-12"))
	assert.Equal(t, "2025-13", MonthLabel("2025-13"))
	assert.Equal(t, "x", MonthLabel("x"))
}

func TestRenderCharts(t *testing.T) {
	charts, err := RenderCharts(Build(ledgerFixture(), ""))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(charts.Orders), "<svg"))
	assert.Contains(t, string(charts.Monthly), "jan/2025")
	assert.Contains(t, string(charts.Status), "Pendente")
	assert.NotContains(t, string(charts.Status), "Divergente")

	empty, err := RenderCharts(Build(nil, ""))
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)
	assert.Empty(t, empty.Monthly)
	assert.Empty(t, empty.Status)
}
