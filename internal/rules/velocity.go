package rules

import (
	"fmt"
	"math"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// VelocitySpikeRule detects a time bucket whose volume is more than
// cfg.VelocityMultiplier times the mean of the other buckets. Buckets are
// anchored to the first transaction, so the result depends only on the
// input, never on when the rule runs.
type VelocitySpikeRule struct {
	cfg Config
}

func (r *VelocitySpikeRule) ID() string                { return "velocity_spike" }
func (r *VelocitySpikeRule) Category() string          { return signal.CategoryVelocity }
func (r *VelocitySpikeRule) Severity() signal.Severity { return signal.SeverityMedium }

func (r *VelocitySpikeRule) Evaluate(txs []transactions.Transaction, profile transactions.Profile) []signal.Alert {
	if len(txs) == 0 {
		return nil
	}

	nBuckets := int(profile.Last.Sub(profile.First)/r.cfg.VelocityBucket) + 1
	if nBuckets < 3 {
		return nil // need enough history to call anything a spike
	}

	volume := make([]float64, nBuckets)
	members := make([][]string, nBuckets)
	for _, tx := range txs {
		b := int(tx.Timestamp.Sub(profile.First) / r.cfg.VelocityBucket)
		volume[b] += math.Abs(tx.Amount)
		members[b] = append(members[b], tx.ID)
	}

	var alerts []signal.Alert
	for b := range volume {
		var rest float64
		for o := range volume {
			if o != b {
				rest += volume[o]
			}
		}
		mean := rest / float64(nBuckets-1)
		if mean <= 0 {
			continue
		}
		ratio := volume[b] / mean
		if ratio <= r.cfg.VelocityMultiplier {
			continue
		}

		// 15 at the multiplier, growing logarithmically, capped at 35.
		score := 15 + 10*math.Log2(ratio/r.cfg.VelocityMultiplier)
		if score > 35 {
			score = 35
		}
		msg := fmt.Sprintf("bucket volume $%.2f is %.1fx the $%.2f mean of the other %d buckets",
			volume[b], ratio, mean, nBuckets-1)
		alerts = append(alerts, newAlert(r, math.Round(score), msg, members[b]))
	}
	return alerts
}
