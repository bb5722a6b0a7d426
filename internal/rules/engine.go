// Package rules implements the detector rule engine: a registry of
// independent, pure detection rules evaluated against a normalized
// transaction set and its profile.
//
// A rule never sees wall-clock time — everything it needs is in the
// transactions and profile it is handed — so a given input always yields the
// same alerts. One misbehaving rule is isolated: panics are recovered and
// treated as "no alerts from this rule".
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

var (
	ruleAlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskscreen",
		Subsystem: "rules",
		Name:      "alerts_total",
		Help:      "Total alerts emitted by rule ID.",
	}, []string{"rule"})

	ruleFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskscreen",
		Subsystem: "rules",
		Name:      "failures_total",
		Help:      "Total recovered rule panics by rule ID.",
	}, []string{"rule"})
)

func init() {
	prometheus.MustRegister(ruleAlertsTotal, ruleFailuresTotal)
}

// Rule is a single pure detection rule. Evaluate may return zero, one, or
// several alerts; it must not mutate its inputs or consult external state.
type Rule interface {
	ID() string
	Category() string
	Severity() signal.Severity
	Evaluate(txs []transactions.Transaction, profile transactions.Profile) []signal.Alert
}

// Engine runs a fixed, injected set of rules. The rule set and all
// thresholds are passed in at construction — there is no process-wide
// registry — so two engines with different policies can coexist.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewEngine creates an engine over the given rules.
func NewEngine(logger *slog.Logger, ruleSet ...Rule) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: ruleSet, logger: logger}
}

// Rules returns the registered rule IDs in evaluation order.
func (e *Engine) Rules() []string {
	ids := make([]string, len(e.rules))
	for i, r := range e.rules {
		ids[i] = r.ID()
	}
	return ids
}

// Run evaluates every rule against the same immutable transaction/profile
// pair and concatenates the emitted alerts. A rule that panics contributes
// nothing; the remaining rules still run.
func (e *Engine) Run(txs []transactions.Transaction, profile transactions.Profile) []signal.Alert {
	return e.RunCategories(nil, txs, profile)
}

// RunCategories is Run restricted to rules whose category is in the filter.
// A nil or empty filter means all rules.
func (e *Engine) RunCategories(categories []string, txs []transactions.Transaction, profile transactions.Profile) []signal.Alert {
	var filter map[string]struct{}
	if len(categories) > 0 {
		filter = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			filter[strings.ToUpper(c)] = struct{}{}
		}
	}

	var alerts []signal.Alert
	for _, r := range e.rules {
		if filter != nil {
			if _, ok := filter[r.Category()]; !ok {
				continue
			}
		}
		out := e.evaluate(r, txs, profile)
		if len(out) > 0 {
			ruleAlertsTotal.WithLabelValues(r.ID()).Add(float64(len(out)))
			alerts = append(alerts, out...)
		}
	}
	return alerts
}

// evaluate runs one rule with panic isolation.
func (e *Engine) evaluate(r Rule, txs []transactions.Transaction, profile transactions.Profile) (out []signal.Alert) {
	defer func() {
		if rec := recover(); rec != nil {
			ruleFailuresTotal.WithLabelValues(r.ID()).Inc()
			e.logger.Error("rule panicked, skipping",
				"rule", r.ID(),
				"panic", fmt.Sprintf("%v", rec),
			)
			out = nil
		}
	}()
	return r.Evaluate(txs, profile)
}

// newAlert builds an alert for a rule. The ID is derived from the rule and
// the related transactions so re-running a rule on the same input produces
// byte-identical alerts.
func newAlert(r Rule, score float64, message string, txIDs []string) signal.Alert {
	sorted := append([]string(nil), txIDs...)
	sort.Strings(sorted)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s", r.ID(), strings.Join(sorted, ","))

	return signal.Alert{
		ID:                    "alr_" + hex.EncodeToString(h.Sum(nil))[:24],
		RuleID:                r.ID(),
		Category:              r.Category(),
		Severity:              r.Severity(),
		Score:                 score,
		Message:               message,
		RelatedTransactionIDs: sorted,
	}
}
