package rules

import (
	"fmt"
	"sort"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// GeographicRule flags transactions whose counterparty country is in the
// configured high-risk set. One alert per country, covering all matching
// transactions, so a prolific corridor doesn't flood the alert list.
type GeographicRule struct {
	cfg Config
}

func (r *GeographicRule) ID() string                { return "geographic_high_risk" }
func (r *GeographicRule) Category() string          { return signal.CategoryGeographic }
func (r *GeographicRule) Severity() signal.Severity { return signal.SeverityMedium }

func (r *GeographicRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	byCountry := make(map[string][]string)
	for _, tx := range txs {
		if tx.CounterpartyCountry == "" {
			continue
		}
		if _, hot := r.cfg.HighRiskCountries[tx.CounterpartyCountry]; hot {
			byCountry[tx.CounterpartyCountry] = append(byCountry[tx.CounterpartyCountry], tx.ID)
		}
	}
	if len(byCountry) == 0 {
		return nil
	}

	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var alerts []signal.Alert
	for _, c := range countries {
		ids := byCountry[c]
		score := 15 + 3*float64(len(ids)-1)
		if score > 30 {
			score = 30
		}
		msg := fmt.Sprintf("%d transaction(s) with counterparties in high-risk jurisdiction %s", len(ids), c)
		alerts = append(alerts, newAlert(r, score, msg, ids))
	}
	return alerts
}

// MerchantCategoryRule flags transactions in high-risk merchant category
// codes (gambling, virtual currency, wires, and similar).
type MerchantCategoryRule struct {
	cfg Config
}

func (r *MerchantCategoryRule) ID() string                { return "merchant_category_high_risk" }
func (r *MerchantCategoryRule) Category() string          { return signal.CategoryBehavioral }
func (r *MerchantCategoryRule) Severity() signal.Severity { return signal.SeverityLow }

func (r *MerchantCategoryRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	byMCC := make(map[string][]string)
	for _, tx := range txs {
		if tx.MerchantCategory == "" {
			continue
		}
		if _, hot := r.cfg.HighRiskMCCs[tx.MerchantCategory]; hot {
			byMCC[tx.MerchantCategory] = append(byMCC[tx.MerchantCategory], tx.ID)
		}
	}
	if len(byMCC) == 0 {
		return nil
	}

	mccs := make([]string, 0, len(byMCC))
	for m := range byMCC {
		mccs = append(mccs, m)
	}
	sort.Strings(mccs)

	var alerts []signal.Alert
	for _, m := range mccs {
		ids := byMCC[m]
		score := 8 + 2*float64(len(ids)-1)
		if score > 20 {
			score = 20
		}
		msg := fmt.Sprintf("%d transaction(s) in high-risk merchant category %s", len(ids), m)
		alerts = append(alerts, newAlert(r, score, msg, ids))
	}
	return alerts
}
