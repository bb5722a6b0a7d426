package transactions

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultCurrency is assumed when a record carries no currency field.
const DefaultCurrency = "USD"

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// field aliases, lowercased. Upstream systems disagree on naming; we accept
// the common variants and normalize once here.
var fieldAliases = map[string][]string{
	"id":           {"id", "txid", "tx_id", "transactionid", "transaction_id", "reference"},
	"timestamp":    {"timestamp", "date", "time", "datetime", "posted_at", "postedat", "created_at", "createdat"},
	"amount":       {"amount", "value", "amt", "transaction_amount"},
	"currency":     {"currency", "ccy", "currency_code", "currencycode"},
	"direction":    {"direction", "type", "debit_credit", "dc"},
	"counterparty": {"counterparty", "counterparty_name", "counterpartyname", "payee", "payer", "merchant", "beneficiary"},
	"country":      {"country", "counterparty_country", "counterpartycountry", "country_code", "countrycode"},
	"channel":      {"channel", "method", "payment_method", "paymentmethod"},
	"mcc":          {"mcc", "merchant_category", "merchantcategorycode", "merchant_category_code", "category_code"},
	"description":  {"description", "memo", "narrative", "details", "free_text", "freetextdescription"},
	"chainaddress": {"chainaddress", "chain_address", "wallet", "wallet_address", "walletaddress", "address"},
}

// NormalizeResult reports what Normalize kept and what it dropped.
type NormalizeResult struct {
	Transactions []Transaction
	Dropped      int
}

// Normalize maps heterogeneous raw records into canonical Transactions.
// Missing direction defaults from the sign of amount; missing currency
// defaults to defaultCurrency (or DefaultCurrency if empty); a missing id
// gets a stable synthetic one derived from the record's content and index.
// Records without a parseable amount and timestamp are dropped.
//
// The returned slice is sorted by timestamp, ties broken by input order.
func Normalize(records []RawRecord, defaultCurrency string) NormalizeResult {
	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}

	type indexed struct {
		tx    Transaction
		order int
	}

	kept := make([]indexed, 0, len(records))
	dropped := 0

	for i, rec := range records {
		lowered := lowerKeys(rec)

		amount, okAmt := parseAmount(lookup(lowered, "amount"))
		ts, okTS := parseTimestamp(lookup(lowered, "timestamp"))
		if !okAmt || !okTS {
			dropped++
			continue
		}

		tx := Transaction{
			Timestamp:           ts,
			Amount:              amount,
			Currency:            strings.ToUpper(asString(lookup(lowered, "currency"))),
			CounterpartyName:    asString(lookup(lowered, "counterparty")),
			CounterpartyCountry: strings.ToUpper(asString(lookup(lowered, "country"))),
			Channel:             strings.ToLower(asString(lookup(lowered, "channel"))),
			MerchantCategory:    asString(lookup(lowered, "mcc")),
			Description:         asString(lookup(lowered, "description")),
			ChainAddress:        strings.ToLower(asString(lookup(lowered, "chainaddress"))),
		}

		if tx.Currency == "" {
			tx.Currency = defaultCurrency
		}

		tx.Direction = parseDirection(asString(lookup(lowered, "direction")), amount)
		// Keep the sign consistent with direction so downstream math can rely
		// on either representation.
		if tx.Direction == DirectionDebit && tx.Amount > 0 {
			tx.Amount = -tx.Amount
		}
		if tx.Direction == DirectionCredit && tx.Amount < 0 {
			tx.Amount = -tx.Amount
		}

		tx.ID = asString(lookup(lowered, "id"))
		if tx.ID == "" {
			tx.ID = syntheticID(tx, i)
		}

		kept = append(kept, indexed{tx: tx, order: i})
	}

	sort.SliceStable(kept, func(a, b int) bool {
		if kept[a].tx.Timestamp.Equal(kept[b].tx.Timestamp) {
			return kept[a].order < kept[b].order
		}
		return kept[a].tx.Timestamp.Before(kept[b].tx.Timestamp)
	})

	out := make([]Transaction, len(kept))
	for i, k := range kept {
		out[i] = k.tx
	}
	return NormalizeResult{Transactions: out, Dropped: dropped}
}

func lowerKeys(rec RawRecord) map[string]any {
	m := make(map[string]any, len(rec))
	for k, v := range rec {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return m
}

func lookup(rec map[string]any, canonical string) any {
	for _, alias := range fieldAliases[canonical] {
		if v, ok := rec[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return s.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func parseAmount(v any) (float64, bool) {
	switch a := v.(type) {
	case nil:
		return 0, false
	case float64:
		return a, true
	case float32:
		return float64(a), true
	case int:
		return float64(a), true
	case int64:
		return float64(a), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(a, ",", ""))
		s = strings.TrimPrefix(s, "$")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case float64: // unix seconds from JSON numbers
		if t <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.Unix(t, 0).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
			return time.Unix(secs, 0).UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func parseDirection(raw string, amount float64) Direction {
	switch strings.ToUpper(raw) {
	case "CREDIT", "CR", "C", "IN", "INBOUND", "DEPOSIT":
		return DirectionCredit
	case "DEBIT", "DR", "D", "OUT", "OUTBOUND", "WITHDRAWAL", "PAYMENT":
		return DirectionDebit
	}
	if amount < 0 {
		return DirectionDebit
	}
	return DirectionCredit
}

// syntheticID derives a stable id from record content plus input position, so
// re-normalizing the same batch yields the same ids.
func syntheticID(tx Transaction, index int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%f|%s|%s", index, tx.Timestamp.UTC().Format(time.RFC3339Nano), tx.Amount, tx.Currency, tx.CounterpartyName)
	return "tx_" + hex.EncodeToString(h.Sum(nil))[:24]
}
