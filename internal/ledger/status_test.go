package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestClassifyStrictEqual(t *testing.T) {
	cases := []struct {
		name     string
		sale     string
		received string
		want     Status
	}{
		{"undetermined sale", "0", "0", StatusPending},
		{"paid in full", "1000", "1000", StatusReceived},
		{"paid in part", "1000", "250.50", StatusPartial},
		{"nothing paid", "1000", "0", StatusPending},
		{"overpaid", "1000", "1000.01", StatusDivergent},
		{"money against zero sale", "0", "10", StatusDivergent},
		{"cents", "0.03", "0.03", StatusReceived},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(dec(tc.sale), dec(tc.received)))
		})
	}
}

func TestClassifyAtLeast(t *testing.T) {
	require.Equal(t, StatusReceived, ClassifyWith(PolicyAtLeast, dec("1000"), dec("1200")))
	require.Equal(t, StatusReceived, ClassifyWith(PolicyAtLeast, dec("1000"), dec("1000")))
	require.Equal(t, StatusPartial, ClassifyWith(PolicyAtLeast, dec("1000"), dec("999.99")))
	require.Equal(t, StatusPending, ClassifyWith(PolicyAtLeast, dec("0"), dec("0")))
	require.Equal(t, StatusDivergent, ClassifyWith(PolicyAtLeast, dec("0"), dec("5")))
}

func TestStatusLabels(t *testing.T) {
	for _, s := range Statuses {
		require.True(t, s.Valid())
		require.NotEqual(t, string(s), s.Label())
	}
	require.False(t, Status("paid").Valid())
	require.True(t, StatusPartial.Receivable())
	require.False(t, StatusDivergent.Receivable())
}
