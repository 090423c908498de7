package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pendingSale(value string) Transaction {
	tx := Transaction{ID: "tx-1", SaleValue: dec(value), PaymentMethod: "PIX", BankAccount: "Itaú"}
	tx.Reclassify()
	return tx
}

func TestRecordPaymentRejectsInvalidAmounts(t *testing.T) {
	tx := pendingSale("1000")

	res, err := RecordPayment(tx, Payment{Amount: dec("0")})
	require.ErrorIs(t, err, ErrInvalidAmount)
	require.Equal(t, tx, res.Transaction)

	_, err = RecordPayment(tx, Payment{Amount: dec("-10")})
	require.ErrorIs(t, err, ErrInvalidAmount)

	res, err = RecordPayment(tx, Payment{Amount: dec("1000.01")})
	require.ErrorIs(t, err, ErrAmountExceedsPending)
	require.True(t, res.Transaction.TotalReceived.IsZero())
	require.False(t, res.Persist())
}

func TestRecordPaymentFullSettlementWithinTolerance(t *testing.T) {
	tx := pendingSale("1000")

	res, err := RecordPayment(tx, Payment{Amount: dec("999.99"), Decision: DecisionUndecided})
	require.NoError(t, err)
	require.Equal(t, PhaseFullSettlement, res.Phase)
	require.True(t, res.Persist())
	require.True(t, res.Transaction.TotalReceived.Equal(dec("999.99")))
	require.Equal(t, StatusPartial, res.Transaction.Status)
	require.True(t, IsSettled(res.Transaction))

	res, err = RecordPayment(tx, Payment{Amount: FullPaymentAmount(tx)})
	require.NoError(t, err)
	require.Equal(t, PhaseFullSettlement, res.Phase)
	require.Equal(t, StatusReceived, res.Transaction.Status)
	require.True(t, PendingAmount(res.Transaction).IsZero())
}

func TestRecordPaymentDiscountFlow(t *testing.T) {
	tx := pendingSale("1000")
	require.Equal(t, StatusPending, tx.Status)

	res, err := RecordPayment(tx, Payment{Amount: dec("700")})
	require.NoError(t, err)
	require.Equal(t, PhasePartialDifferenceDetected, res.Phase)
	require.True(t, res.Difference.Equal(dec("300")))
	require.True(t, res.Pending.Equal(dec("1000")))
	require.Equal(t, tx, res.Transaction)

	res, err = RecordPayment(tx, Payment{Amount: dec("700"), Decision: DecisionApplyDiscount})
	require.NoError(t, err)
	require.Equal(t, PhaseResolved, res.Phase)
	require.True(t, res.Transaction.TotalReceived.Equal(dec("700")))
	require.True(t, res.Transaction.Discount.Equal(dec("300")))
	require.Equal(t, StatusPartial, res.Transaction.Status)
	require.True(t, PendingAmount(res.Transaction).IsZero())
	require.True(t, IsSettled(res.Transaction))
}

func TestRecordPaymentKeepPending(t *testing.T) {
	tx := pendingSale("1000")

	res, err := RecordPayment(tx, Payment{Amount: dec("400"), Decision: DecisionKeepPending, PaymentMethod: "Boleto"})
	require.NoError(t, err)
	require.Equal(t, PhaseResolved, res.Phase)
	require.True(t, res.Transaction.Discount.IsZero())
	require.True(t, PendingAmount(res.Transaction).Equal(dec("600")))
	require.Equal(t, "Boleto", res.Transaction.PaymentMethod)
	require.Equal(t, "Itaú", res.Transaction.BankAccount)
	require.False(t, IsSettled(res.Transaction))
}

func TestRecordPaymentAccountsForPriorDiscount(t *testing.T) {
	tx := pendingSale("1000")
	tx.TotalReceived = dec("500")
	tx.Discount = dec("100")
	tx.Reclassify()

	_, err := RecordPayment(tx, Payment{Amount: dec("450")})
	require.ErrorIs(t, err, ErrAmountExceedsPending)

	res, err := RecordPayment(tx, Payment{Amount: dec("400")})
	require.NoError(t, err)
	require.Equal(t, PhaseFullSettlement, res.Phase)
	require.True(t, res.Transaction.TotalReceived.Equal(dec("900")))
}

func TestParseDecision(t *testing.T) {
	require.Equal(t, DecisionApplyDiscount, ParseDecision("apply_discount"))
	require.Equal(t, DecisionKeepPending, ParseDecision(" keep_pending "))
	require.Equal(t, DecisionUndecided, ParseDecision("yes"))
}
