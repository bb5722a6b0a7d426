package rules

import (
	"fmt"
	"math"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// StructuringRule detects threshold-avoidance structuring: several
// transactions inside a rolling window whose amounts sit just under the
// reporting threshold.
type StructuringRule struct {
	cfg Config
}

func (r *StructuringRule) ID() string                { return "structuring_threshold_avoidance" }
func (r *StructuringRule) Category() string          { return signal.CategoryStructuring }
func (r *StructuringRule) Severity() signal.Severity { return signal.SeverityHigh }

func (r *StructuringRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	low := r.cfg.ReportingThreshold * (1 - r.cfg.StructuringMargin)

	// Collect sub-threshold transactions in input (timestamp) order.
	var candidates []transactions.Transaction
	for _, tx := range txs {
		abs := math.Abs(tx.Amount)
		if abs >= low && abs < r.cfg.ReportingThreshold {
			candidates = append(candidates, tx)
		}
	}
	if len(candidates) < r.cfg.StructuringMinCount {
		return nil
	}

	// Slide a window over the candidates; emit one alert for the densest
	// cluster rather than one per overlapping window.
	best := 0
	bestStart := 0
	for i := range candidates {
		j := i
		for j < len(candidates) && candidates[j].Timestamp.Sub(candidates[i].Timestamp) <= r.cfg.StructuringWindow {
			j++
		}
		if j-i > best {
			best = j - i
			bestStart = i
		}
	}
	if best < r.cfg.StructuringMinCount {
		return nil
	}

	cluster := candidates[bestStart : bestStart+best]
	ids := make([]string, len(cluster))
	var total float64
	for i, tx := range cluster {
		ids[i] = tx.ID
		total += math.Abs(tx.Amount)
	}

	// Base 30 plus 4 per transaction beyond the minimum, capped at 50.
	score := 30 + 4*float64(best-r.cfg.StructuringMinCount)
	if score > 50 {
		score = 50
	}

	msg := fmt.Sprintf("%d transactions of $%.2f–$%.2f within %s totalling $%.2f, each just under the $%.0f reporting threshold",
		best, low, r.cfg.ReportingThreshold, r.cfg.StructuringWindow, total, r.cfg.ReportingThreshold)
	return []signal.Alert{newAlert(r, score, msg, ids)}
}
