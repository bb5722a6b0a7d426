package rules

import (
	"fmt"
	"math"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// FunnelRule detects funnel accounts: many distinct senders crediting the
// account while the outbound side is concentrated on very few receivers.
type FunnelRule struct {
	cfg Config
}

func (r *FunnelRule) ID() string                { return "network_funnel" }
func (r *FunnelRule) Category() string          { return signal.CategoryNetwork }
func (r *FunnelRule) Severity() signal.Severity { return signal.SeverityHigh }

func (r *FunnelRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	senders, receivers, creditIDs, _ := splitCounterparties(txs)
	if len(senders) < r.cfg.FunnelMinSenders || len(receivers) == 0 || len(receivers) > 2 {
		return nil
	}
	msg := fmt.Sprintf("%d distinct senders funnel into %d receiver(s)", len(senders), len(receivers))
	score := 20 + 2*float64(len(senders)-r.cfg.FunnelMinSenders)
	if score > 40 {
		score = 40
	}
	return []signal.Alert{newAlert(r, score, msg, creditIDs)}
}

// FanOutRule detects dispersion: few senders, many distinct receivers.
type FanOutRule struct {
	cfg Config
}

func (r *FanOutRule) ID() string                { return "network_fanout" }
func (r *FanOutRule) Category() string          { return signal.CategoryNetwork }
func (r *FanOutRule) Severity() signal.Severity { return signal.SeverityHigh }

func (r *FanOutRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	senders, receivers, _, debitIDs := splitCounterparties(txs)
	if len(receivers) < r.cfg.FanOutMinReceivers || len(senders) == 0 || len(senders) > 2 {
		return nil
	}
	msg := fmt.Sprintf("%d sender(s) fan out to %d distinct receivers", len(senders), len(receivers))
	score := 20 + 2*float64(len(receivers)-r.cfg.FanOutMinReceivers)
	if score > 40 {
		score = 40
	}
	return []signal.Alert{newAlert(r, score, msg, debitIDs)}
}

// ConcentrationRule flags a single counterparty carrying more than
// cfg.ConcentrationShare of total volume across a meaningful history.
type ConcentrationRule struct {
	cfg Config
}

func (r *ConcentrationRule) ID() string                { return "counterparty_concentration" }
func (r *ConcentrationRule) Category() string          { return signal.CategoryCounterparty }
func (r *ConcentrationRule) Severity() signal.Severity { return signal.SeverityMedium }

func (r *ConcentrationRule) Evaluate(txs []transactions.Transaction, profile transactions.Profile) []signal.Alert {
	if profile.Count < 5 || profile.TotalVolume <= 0 || profile.DistinctCounterparty < 2 {
		return nil
	}

	var topName string
	var topVolume float64
	for name, vol := range profile.CounterpartyVolume {
		if vol > topVolume || (vol == topVolume && name < topName) {
			topName, topVolume = name, vol
		}
	}
	share := topVolume / profile.TotalVolume
	if share <= r.cfg.ConcentrationShare {
		return nil
	}

	var ids []string
	for _, tx := range txs {
		if tx.CounterpartyName == topName {
			ids = append(ids, tx.ID)
		}
	}
	msg := fmt.Sprintf("counterparty %q carries %.0f%% of total volume", topName, 100*share)
	return []signal.Alert{newAlert(r, math.Round(15 + 20*(share-r.cfg.ConcentrationShare)/(1-r.cfg.ConcentrationShare)), msg, ids)}
}

// splitCounterparties partitions counterparties by direction.
func splitCounterparties(txs []transactions.Transaction) (senders, receivers map[string]struct{}, creditIDs, debitIDs []string) {
	senders = make(map[string]struct{})
	receivers = make(map[string]struct{})
	for _, tx := range txs {
		if tx.CounterpartyName == "" {
			continue
		}
		if tx.Direction == transactions.DirectionCredit {
			senders[tx.CounterpartyName] = struct{}{}
			creditIDs = append(creditIDs, tx.ID)
		} else {
			receivers[tx.CounterpartyName] = struct{}{}
			debitIDs = append(debitIDs, tx.ID)
		}
	}
	return senders, receivers, creditIDs, debitIDs
}
