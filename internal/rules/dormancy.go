package rules

import (
	"fmt"
	"time"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// DormancyBurstRule detects an account that goes quiet for a long gap and
// then bursts back with a cluster of activity — a common takeover and
// mule-recruitment pattern.
type DormancyBurstRule struct {
	cfg Config
}

func (r *DormancyBurstRule) ID() string                { return "dormancy_burst" }
func (r *DormancyBurstRule) Category() string          { return signal.CategoryBehavioral }
func (r *DormancyBurstRule) Severity() signal.Severity { return signal.SeverityMedium }

func (r *DormancyBurstRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	if len(txs) < r.cfg.DormancyBurstCount+1 {
		return nil
	}

	// Find the widest gap; everything after it is the burst candidate.
	gapEnd := -1
	for i := 1; i < len(txs); i++ {
		if txs[i].Timestamp.Sub(txs[i-1].Timestamp) >= r.cfg.DormancyGap {
			gapEnd = i
		}
	}
	if gapEnd < 0 {
		return nil
	}

	burst := txs[gapEnd:]
	if len(burst) < r.cfg.DormancyBurstCount {
		return nil
	}
	// The burst must be compressed relative to the gap to count.
	burstSpan := burst[len(burst)-1].Timestamp.Sub(burst[0].Timestamp)
	if burstSpan >= r.cfg.DormancyGap/4 {
		return nil
	}

	ids := make([]string, len(burst))
	for i, tx := range burst {
		ids[i] = tx.ID
	}
	gap := txs[gapEnd].Timestamp.Sub(txs[gapEnd-1].Timestamp)
	msg := fmt.Sprintf("%d transactions within %s after %s of dormancy",
		len(burst), burstSpan.Round(time.Hour), gap.Round(24*time.Hour))
	return []signal.Alert{newAlert(r, 18, msg, ids)}
}
