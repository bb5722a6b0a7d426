package transactions

import (
	"math"
	"sort"
)

// BuildProfile computes the aggregate profile in a single pass over the
// transaction set (plus one sort for the median). An empty set yields a
// zero-valued profile with DaySpan 1.
func BuildProfile(txs []Transaction) Profile {
	p := Profile{
		DaySpan:            1,
		CounterpartyVolume: make(map[string]float64),
	}
	if len(txs) == 0 {
		return p
	}

	counterparties := make(map[string]struct{})
	countries := make(map[string]struct{})
	channels := make(map[string]struct{})
	absAmounts := make([]float64, 0, len(txs))

	p.First = txs[0].Timestamp
	p.Last = txs[0].Timestamp

	for _, tx := range txs {
		abs := math.Abs(tx.Amount)
		absAmounts = append(absAmounts, abs)
		p.TotalVolume += abs
		if abs > p.MaxAmount {
			p.MaxAmount = abs
		}

		if tx.Direction == DirectionCredit {
			p.CreditCount++
		} else {
			p.DebitCount++
		}

		if tx.CounterpartyName != "" {
			counterparties[tx.CounterpartyName] = struct{}{}
			p.CounterpartyVolume[tx.CounterpartyName] += abs
		}
		if tx.CounterpartyCountry != "" {
			countries[tx.CounterpartyCountry] = struct{}{}
		}
		if tx.Channel != "" {
			channels[tx.Channel] = struct{}{}
		}

		if tx.Timestamp.Before(p.First) {
			p.First = tx.Timestamp
		}
		if tx.Timestamp.After(p.Last) {
			p.Last = tx.Timestamp
		}
	}

	p.Count = len(txs)
	p.AvgAmount = p.TotalVolume / float64(p.Count)

	sort.Float64s(absAmounts)
	mid := len(absAmounts) / 2
	if len(absAmounts)%2 == 1 {
		p.MedianAmount = absAmounts[mid]
	} else {
		p.MedianAmount = (absAmounts[mid-1] + absAmounts[mid]) / 2
	}

	// Day span floors at 1 to avoid dividing by zero for same-day batches.
	days := int(p.Last.Sub(p.First).Hours() / 24)
	if days < 1 {
		days = 1
	}
	p.DaySpan = days
	p.TransactionsPerDay = float64(p.Count) / float64(days)

	p.DistinctCounterparty = len(counterparties)
	p.DistinctCountries = len(countries)
	p.Channels = make([]string, 0, len(channels))
	for ch := range channels {
		p.Channels = append(p.Channels, ch)
	}
	sort.Strings(p.Channels)

	return p
}
