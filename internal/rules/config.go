package rules

import "time"

// Config carries every tunable threshold the built-in rule catalog uses.
// It is plain data: per-tenant policies are just different Config values.
type Config struct {
	// Structuring: k or more transactions inside Window, each landing in
	// [ReportingThreshold*(1-Margin), ReportingThreshold).
	ReportingThreshold  float64
	StructuringMargin   float64
	StructuringMinCount int
	StructuringWindow   time.Duration

	// Pass-through: inbound credit followed within Window by an outbound
	// debit of at least Ratio of the same amount.
	PassThroughWindow time.Duration
	PassThroughRatio  float64

	// Velocity: a weekly bucket whose volume exceeds Multiplier times the
	// mean of the other buckets.
	VelocityMultiplier float64
	VelocityBucket     time.Duration

	// Network concentration.
	FunnelMinSenders   int     // many senders, few receivers
	FanOutMinReceivers int     // few senders, many receivers
	ConcentrationShare float64 // single-counterparty share of volume

	// Geographic / merchant-category risk sets.
	HighRiskCountries map[string]struct{}
	HighRiskMCCs      map[string]struct{}

	// Crypto counterparty sets (lowercased addresses).
	MixerAddresses   map[string]struct{}
	DarknetAddresses map[string]struct{}

	// Dormancy burst: quiet gap followed by a burst of activity.
	DormancyGap        time.Duration
	DormancyBurstCount int
}

// DefaultConfig returns the baseline policy. The reporting threshold follows
// the USD CTR line; everything else is a conservative starting point meant
// to be tuned per deployment.
func DefaultConfig() Config {
	return Config{
		ReportingThreshold:  10000,
		StructuringMargin:   0.10,
		StructuringMinCount: 3,
		StructuringWindow:   7 * 24 * time.Hour,

		PassThroughWindow: 72 * time.Hour,
		PassThroughRatio:  0.90,

		VelocityMultiplier: 3.0,
		VelocityBucket:     7 * 24 * time.Hour,

		FunnelMinSenders:   8,
		FanOutMinReceivers: 8,
		ConcentrationShare: 0.80,

		HighRiskCountries: toSet("IR", "KP", "SY", "CU", "MM", "AF", "YE", "SO", "SS", "LY"),
		HighRiskMCCs:      toSet("7995", "6051", "4829", "6211", "7273", "5933"),

		MixerAddresses:   map[string]struct{}{},
		DarknetAddresses: map[string]struct{}{},

		DormancyGap:        60 * 24 * time.Hour,
		DormancyBurstCount: 5,
	}
}

// DefaultRules returns the built-in detector catalog bound to cfg.
func DefaultRules(cfg Config) []Rule {
	return []Rule{
		&StructuringRule{cfg: cfg},
		&PassThroughRule{cfg: cfg},
		&VelocitySpikeRule{cfg: cfg},
		&FunnelRule{cfg: cfg},
		&FanOutRule{cfg: cfg},
		&ConcentrationRule{cfg: cfg},
		&GeographicRule{cfg: cfg},
		&MerchantCategoryRule{cfg: cfg},
		&MixerCounterpartyRule{cfg: cfg},
		&DormancyBurstRule{cfg: cfg},
	}
}

func toSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}
