// Package scoring turns a heterogeneous bag of findings and alerts into a
// single bounded risk assessment: a 0–100 composite score with level,
// priority, SLA, and recommended actions.
//
// The scorer is a pure function of the finding/alert multiset. It holds no
// state, so scoring the same input twice yields an identical assessment —
// required for audit replay.
package scoring

import (
	"math"
	"sort"

	"github.com/mbd888/riskscreen/internal/signal"
)

// Level buckets the composite score.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Assessment is the scorer's output. Purely a function of the input
// finding/alert set; persistence identifiers live on the stored record, not
// here.
type Assessment struct {
	CompositeScore     int                `json:"compositeScore"`
	Level              Level              `json:"level"`
	Priority           string             `json:"priority"`
	SLA                string             `json:"sla"`
	SARRequired        bool               `json:"sarRequired"`
	CategoryScores     map[string]float64 `json:"categoryScores"`
	RecommendedActions []string           `json:"recommendedActions"`
	CorrelationBonus   float64            `json:"correlationBonus"`
	SeverityMultiplier float64            `json:"severityMultiplier"`
}

// Config carries per-category caps and weights. Categories without an entry
// use the defaults. Caps bound what one prolific category can contribute;
// weights bias the mean toward the domains that matter most.
type Config struct {
	Caps          map[string]float64
	Weights       map[string]float64
	DefaultCap    float64
	DefaultWeight float64
}

// DefaultConfig returns the baseline scoring policy.
func DefaultConfig() Config {
	return Config{
		Caps: map[string]float64{
			signal.CategorySanctions:     60,
			signal.CategoryTerrorFinance: 60,
			signal.CategoryPEP:           40,
			signal.CategoryStructuring:   50,
			signal.CategoryLayering:      50,
			signal.CategoryVelocity:      35,
			signal.CategoryGeographic:    35,
			signal.CategoryCounterparty:  35,
			signal.CategoryNetwork:       45,
			signal.CategoryCrypto:        50,
			signal.CategoryFraud:         45,
			signal.CategoryBehavioral:    35,
			signal.CategoryAdverseMedia:  30,
		},
		Weights: map[string]float64{
			signal.CategorySanctions:     1.5,
			signal.CategoryTerrorFinance: 1.5,
			signal.CategoryPEP:           1.2,
			signal.CategoryStructuring:   1.1,
			signal.CategoryLayering:      1.1,
			signal.CategoryCrypto:        1.1,
		},
		DefaultCap:    40,
		DefaultWeight: 1.0,
	}
}

// Scorer computes composite assessments under a fixed policy.
type Scorer struct {
	cfg Config
}

// New creates a scorer with the given policy.
func New(cfg Config) *Scorer {
	if cfg.DefaultCap <= 0 {
		cfg.DefaultCap = 40
	}
	if cfg.DefaultWeight <= 0 {
		cfg.DefaultWeight = 1.0
	}
	return &Scorer{cfg: cfg}
}

func (s *Scorer) cap(category string) float64 {
	if c, ok := s.cfg.Caps[category]; ok {
		return c
	}
	return s.cfg.DefaultCap
}

func (s *Scorer) weight(category string) float64 {
	if w, ok := s.cfg.Weights[category]; ok {
		return w
	}
	return s.cfg.DefaultWeight
}

// Score aggregates one screening run's findings and alerts.
//
// Categories are summed then clamped to their cap; the capped scores enter a
// weighted mean; a severity multiplier and cross-category correlation bonus
// are applied; the result saturates at 100. Saturation at the high end is
// deliberate: two very hot inputs may both read 100.
func (s *Scorer) Score(findings []signal.Finding, alerts []signal.Alert) Assessment {
	byCategory := make(map[string]float64)
	var criticals, highs int

	tally := func(category string, score float64, sev signal.Severity) {
		if category == "" {
			category = signal.CategoryBehavioral
		}
		byCategory[category] += score
		switch sev {
		case signal.SeverityCritical:
			criticals++
		case signal.SeverityHigh:
			highs++
		}
	}
	for _, f := range findings {
		tally(f.Category, f.Score, f.Severity)
	}
	for _, a := range alerts {
		tally(a.Category, a.Score, a.Severity)
	}

	if len(byCategory) == 0 {
		return Assessment{
			Level:          LevelLow,
			Priority:       "P4",
			SLA:            "5 days",
			CategoryScores: map[string]float64{},
			SeverityMultiplier: 1.0,
		}
	}

	capped := make(map[string]float64, len(byCategory))
	var weightedSum, weightTotal float64
	for category, sum := range byCategory {
		c := math.Min(sum, s.cap(category))
		capped[category] = c
		w := s.weight(category)
		weightedSum += c * w
		weightTotal += w
	}
	weightedMean := weightedSum / weightTotal

	multiplier := severityMultiplier(criticals, highs)
	bonus := correlationBonus(len(byCategory))

	score := int(math.Round(weightedMean*multiplier + bonus))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	level := levelFor(score)
	priority, sla := priorityFor(score)

	return Assessment{
		CompositeScore:     score,
		Level:              level,
		Priority:           priority,
		SLA:                sla,
		SARRequired:        score >= 60 || len(byCategory) >= 4,
		CategoryScores:     capped,
		RecommendedActions: recommendActions(level, capped, score >= 60 || len(byCategory) >= 4),
		CorrelationBonus:   bonus,
		SeverityMultiplier: multiplier,
	}
}

func severityMultiplier(criticals, highs int) float64 {
	switch {
	case criticals >= 3:
		return 1.4
	case criticals >= 1:
		return 1.2
	case highs >= 5:
		return 1.15
	default:
		return 1.0
	}
}

// correlationBonus rewards breadth: independent risk dimensions firing
// together is itself a signal.
func correlationBonus(categories int) float64 {
	switch {
	case categories >= 5:
		return 15
	case categories >= 3:
		return 8
	case categories >= 2:
		return 3
	default:
		return 0
	}
}

func levelFor(score int) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

func priorityFor(score int) (priority, sla string) {
	switch {
	case score >= 80:
		return "P1", "4 hours"
	case score >= 60:
		return "P2", "24 hours"
	case score >= 30:
		return "P3", "72 hours"
	default:
		return "P4", "5 days"
	}
}

func recommendActions(level Level, categories map[string]float64, sar bool) []string {
	actions := make(map[string]struct{})

	switch level {
	case LevelCritical:
		actions["Freeze account activity pending compliance review"] = struct{}{}
		actions["Escalate to senior compliance officer"] = struct{}{}
	case LevelHigh:
		actions["Open an enhanced due diligence case"] = struct{}{}
	case LevelMedium:
		actions["Queue for analyst review"] = struct{}{}
	default:
		actions["No action required; continue routine monitoring"] = struct{}{}
	}

	if sar {
		actions["Prepare a Suspicious Activity Report"] = struct{}{}
	}
	if _, ok := categories[signal.CategorySanctions]; ok {
		actions["Refer to sanctions desk for list verification"] = struct{}{}
	}
	if _, ok := categories[signal.CategoryTerrorFinance]; ok {
		actions["Notify financial intelligence unit immediately"] = struct{}{}
	}
	if _, ok := categories[signal.CategoryPEP]; ok {
		actions["Apply politically-exposed-person onboarding controls"] = struct{}{}
	}
	if _, ok := categories[signal.CategoryCrypto]; ok {
		actions["Request source-of-funds documentation for chain activity"] = struct{}{}
	}

	out := make([]string, 0, len(actions))
	for a := range actions {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
