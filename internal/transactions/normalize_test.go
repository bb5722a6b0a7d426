package transactions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FieldAliases(t *testing.T) {
	res := Normalize([]RawRecord{{
		"TxID":         "t1",
		"Posted_At":    "2025-03-01T10:00:00Z",
		"Value":        250.0,
		"CCY":          "eur",
		"DC":           "DR",
		"Payee":        "Acme Corp",
		"Country_Code": "de",
		"Method":       "WIRE",
		"MCC":          "7995",
		"Memo":         "invoice 42",
		"Wallet":       "0xABCdef0000000000000000000000000000000001",
	}}, "")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 0, res.Dropped)

	tx := res.Transactions[0]
	assert.Equal(t, "t1", tx.ID)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), tx.Timestamp.UTC())
	assert.Equal(t, -250.0, tx.Amount) // debit sign
	assert.Equal(t, "EUR", tx.Currency)
	assert.Equal(t, DirectionDebit, tx.Direction)
	assert.Equal(t, "Acme Corp", tx.CounterpartyName)
	assert.Equal(t, "DE", tx.CounterpartyCountry)
	assert.Equal(t, "wire", tx.Channel)
	assert.Equal(t, "7995", tx.MerchantCategory)
	assert.Equal(t, "invoice 42", tx.Description)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", tx.ChainAddress)
}

func TestNormalize_AmountForms(t *testing.T) {
	res := Normalize([]RawRecord{
		{"id": "a", "amount": "$9,500.00", "date": "2025-03-01"},
		{"id": "b", "amount": 42, "date": "2025-03-01"},
		{"id": "c", "amount": -17.5, "date": "2025-03-01"},
		{"id": "d", "amount": "not a number", "date": "2025-03-01"},
	}, "USD")
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, 1, res.Dropped)

	byID := map[string]Transaction{}
	for _, tx := range res.Transactions {
		byID[tx.ID] = tx
	}
	assert.Equal(t, 9500.0, byID["a"].Amount)
	assert.Equal(t, DirectionCredit, byID["a"].Direction)
	assert.Equal(t, 42.0, byID["b"].Amount)
	assert.Equal(t, -17.5, byID["c"].Amount)
	assert.Equal(t, DirectionDebit, byID["c"].Direction) // inferred from sign
}

func TestNormalize_TimestampForms(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	res := Normalize([]RawRecord{
		{"id": "rfc", "amount": 1.0, "timestamp": "2025-06-01T12:00:00Z"},
		{"id": "day", "amount": 1.0, "timestamp": "2025-06-01"},
		{"id": "us", "amount": 1.0, "timestamp": "06/01/2025"},
		{"id": "unix", "amount": 1.0, "timestamp": float64(now.Unix())},
		{"id": "native", "amount": 1.0, "timestamp": now},
		{"id": "bad", "amount": 1.0, "timestamp": "yesterday-ish"},
	}, "USD")
	require.Len(t, res.Transactions, 5)
	assert.Equal(t, 1, res.Dropped)

	for _, tx := range res.Transactions {
		assert.Equal(t, 2025, tx.Timestamp.Year(), "tx %s", tx.ID)
		assert.Equal(t, time.June, tx.Timestamp.Month(), "tx %s", tx.ID)
	}
}

func TestNormalize_DirectionNormalizesSign(t *testing.T) {
	res := Normalize([]RawRecord{
		{"id": "a", "amount": 100.0, "direction": "debit", "date": "2025-03-01"},
		{"id": "b", "amount": -100.0, "direction": "credit", "date": "2025-03-01"},
		{"id": "c", "amount": 100.0, "direction": "deposit", "date": "2025-03-01"},
	}, "USD")
	require.Len(t, res.Transactions, 3)

	byID := map[string]Transaction{}
	for _, tx := range res.Transactions {
		byID[tx.ID] = tx
	}
	assert.Equal(t, -100.0, byID["a"].Amount)
	assert.Equal(t, DirectionDebit, byID["a"].Direction)
	assert.Equal(t, 100.0, byID["b"].Amount)
	assert.Equal(t, DirectionCredit, byID["b"].Direction)
	assert.Equal(t, DirectionCredit, byID["c"].Direction)
}

func TestNormalize_DefaultCurrency(t *testing.T) {
	res := Normalize([]RawRecord{{"id": "a", "amount": 1.0, "date": "2025-03-01"}}, "")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, DefaultCurrency, res.Transactions[0].Currency)

	res = Normalize([]RawRecord{{"id": "a", "amount": 1.0, "date": "2025-03-01"}}, "GBP")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "GBP", res.Transactions[0].Currency)
}

func TestNormalize_SortsByTimestamp(t *testing.T) {
	res := Normalize([]RawRecord{
		{"id": "late", "amount": 1.0, "date": "2025-03-05"},
		{"id": "early", "amount": 1.0, "date": "2025-03-01"},
		{"id": "tie1", "amount": 1.0, "date": "2025-03-03"},
		{"id": "tie2", "amount": 1.0, "date": "2025-03-03"},
	}, "USD")
	require.Len(t, res.Transactions, 4)

	ids := make([]string, len(res.Transactions))
	for i, tx := range res.Transactions {
		ids[i] = tx.ID
	}
	// Ties keep input order.
	assert.Equal(t, []string{"early", "tie1", "tie2", "late"}, ids)
}

func TestNormalize_SyntheticIDsAreStable(t *testing.T) {
	records := []RawRecord{
		{"amount": 100.0, "date": "2025-03-01", "counterparty": "Acme"},
		{"amount": 200.0, "date": "2025-03-02", "counterparty": "Globex"},
	}

	first := Normalize(records, "USD")
	second := Normalize(records, "USD")
	require.Len(t, first.Transactions, 2)

	for i := range first.Transactions {
		assert.NotEmpty(t, first.Transactions[i].ID)
		assert.Equal(t, first.Transactions[i].ID, second.Transactions[i].ID)
	}
	assert.NotEqual(t, first.Transactions[0].ID, first.Transactions[1].ID)
}

func TestNormalize_Empty(t *testing.T) {
	res := Normalize(nil, "USD")
	assert.Empty(t, res.Transactions)
	assert.Equal(t, 0, res.Dropped)
}
