package rules

import (
	"fmt"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// MixerCounterpartyRule flags transactions against chain addresses in the
// configured mixer or darknet sets. Darknet contact is graded critical;
// mixers high. Address sets are data — typically loaded from a chain
// intelligence feed — and matched lowercased.
type MixerCounterpartyRule struct {
	cfg Config
}

func (r *MixerCounterpartyRule) ID() string                { return "crypto_tainted_counterparty" }
func (r *MixerCounterpartyRule) Category() string          { return signal.CategoryCrypto }
func (r *MixerCounterpartyRule) Severity() signal.Severity { return signal.SeverityHigh }

func (r *MixerCounterpartyRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	var mixerIDs, darknetIDs []string
	for _, tx := range txs {
		if tx.ChainAddress == "" {
			continue
		}
		if _, ok := r.cfg.DarknetAddresses[tx.ChainAddress]; ok {
			darknetIDs = append(darknetIDs, tx.ID)
			continue
		}
		if _, ok := r.cfg.MixerAddresses[tx.ChainAddress]; ok {
			mixerIDs = append(mixerIDs, tx.ID)
		}
	}

	var alerts []signal.Alert
	if len(mixerIDs) > 0 {
		msg := fmt.Sprintf("%d transaction(s) with known mixing-service addresses", len(mixerIDs))
		alerts = append(alerts, newAlert(r, 35, msg, mixerIDs))
	}
	if len(darknetIDs) > 0 {
		msg := fmt.Sprintf("%d transaction(s) with known darknet-market addresses", len(darknetIDs))
		a := newAlert(r, 45, msg, darknetIDs)
		a.Severity = signal.SeverityCritical
		alerts = append(alerts, a)
	}
	return alerts
}
