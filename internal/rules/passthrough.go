package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// PassThroughRule detects layering: an inbound credit followed within a
// bounded window by an outbound debit of at least cfg.PassThroughRatio of
// the same amount. Each matched pair produces its own alert; a debit is
// consumed by at most one credit.
type PassThroughRule struct {
	cfg Config
}

func (r *PassThroughRule) ID() string                { return "passthrough_layering" }
func (r *PassThroughRule) Category() string          { return signal.CategoryLayering }
func (r *PassThroughRule) Severity() signal.Severity { return signal.SeverityHigh }

func (r *PassThroughRule) Evaluate(txs []transactions.Transaction, _ transactions.Profile) []signal.Alert {
	var alerts []signal.Alert
	used := make(map[int]bool) // debit indexes already paired

	for i, credit := range txs {
		if credit.Direction != transactions.DirectionCredit {
			continue
		}
		in := math.Abs(credit.Amount)
		if in == 0 {
			continue
		}

		for j := i + 1; j < len(txs); j++ {
			debit := txs[j]
			if debit.Direction != transactions.DirectionDebit || used[j] {
				continue
			}
			if debit.Timestamp.Sub(credit.Timestamp) > r.cfg.PassThroughWindow {
				break // txs are time-ordered; nothing later can match
			}
			out := math.Abs(debit.Amount)
			if out < in*r.cfg.PassThroughRatio || out > in {
				continue
			}

			used[j] = true
			msg := fmt.Sprintf("inbound $%.2f followed by outbound $%.2f (%.0f%%) within %s",
				in, out, 100*out/in, debit.Timestamp.Sub(credit.Timestamp).Round(time.Second))
			alerts = append(alerts, newAlert(r, 25, msg, []string{credit.ID, debit.ID}))
			break
		}
	}
	return alerts
}
