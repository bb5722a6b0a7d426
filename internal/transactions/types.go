// Package transactions normalizes caller-supplied transaction records into a
// canonical shape and derives the aggregate profile that detection rules
// consume. Normalization fails closed: a record that cannot yield at least an
// amount and a timestamp is dropped, never fatal to the batch.
package transactions

import "time"

// Direction of funds relative to the screened account.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// Transaction is the canonical transaction shape. Produced once by Normalize
// and never mutated afterward. Ordering by timestamp is significant for the
// windowed rules; Normalize sorts, breaking ties by input order.
type Transaction struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	Amount              float64   `json:"amount"` // signed; sign matches direction
	Currency            string    `json:"currency"`
	Direction           Direction `json:"direction"`
	CounterpartyName    string    `json:"counterpartyName,omitempty"`
	CounterpartyCountry string    `json:"counterpartyCountry,omitempty"` // ISO code or empty
	Channel             string    `json:"channel,omitempty"`
	MerchantCategory    string    `json:"merchantCategoryCode,omitempty"`
	Description         string    `json:"description,omitempty"`
	ChainAddress        string    `json:"chainAddress,omitempty"`
}

// RawRecord is an untyped transaction record as submitted by callers.
// Field names and casing vary by upstream system.
type RawRecord map[string]any

// Profile is a read-only statistical aggregate over a transaction set.
// Rebuilt whole whenever the set changes; never partially updated.
type Profile struct {
	Count                 int            `json:"count"`
	TotalVolume           float64        `json:"totalVolume"` // sum of absolute amounts
	AvgAmount             float64        `json:"avgAmount"`
	MedianAmount          float64        `json:"medianAmount"`
	MaxAmount             float64        `json:"maxAmount"`
	TransactionsPerDay    float64        `json:"transactionsPerDay"`
	DaySpan               int            `json:"daySpan"` // floor 1
	DistinctCounterparty  int            `json:"distinctCounterparties"`
	DistinctCountries     int            `json:"distinctCountries"`
	Channels              []string       `json:"channels,omitempty"`
	CreditCount           int            `json:"creditCount"`
	DebitCount            int            `json:"debitCount"`
	CounterpartyVolume    map[string]float64 `json:"-"` // abs volume per counterparty
	First                 time.Time      `json:"first"`
	Last                  time.Time      `json:"last"`
}
