// Package signal defines the shared vocabulary of the screening engine:
// subjects under review, the findings produced by external sources, and the
// alerts produced by detection rules over transaction activity.
//
// Findings and alerts are immutable once produced. Everything downstream
// (scoring, persistence, webhooks) consumes them read-only.
package signal

import "time"

// SubjectKind identifies what kind of entity is being screened.
type SubjectKind string

const (
	KindIndividual SubjectKind = "INDIVIDUAL"
	KindEntity     SubjectKind = "ENTITY"
	KindWallet     SubjectKind = "WALLET"
)

// Subject is the entity under screening. Immutable input.
// Name is used for INDIVIDUAL and ENTITY subjects; WalletAddress for WALLET.
type Subject struct {
	Name          string      `json:"name,omitempty"`
	WalletAddress string      `json:"walletAddress,omitempty"`
	Kind          SubjectKind `json:"kind"`
}

// Identifier returns whichever of name/address identifies the subject.
func (s Subject) Identifier() string {
	if s.Kind == KindWallet {
		return s.WalletAddress
	}
	return s.Name
}

// Severity grades how serious a single signal is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Risk categories. Categories are open-ended strings — sources and rules may
// introduce new ones — but these are the ones the built-in catalog emits.
const (
	CategorySanctions     = "SANCTIONS_EVASION"
	CategoryPEP           = "PEP"
	CategoryStructuring   = "STRUCTURING"
	CategoryLayering      = "LAYERING"
	CategoryVelocity      = "VELOCITY"
	CategoryGeographic    = "GEOGRAPHIC"
	CategoryCounterparty  = "COUNTERPARTY"
	CategoryNetwork       = "NETWORK"
	CategoryCrypto        = "CRYPTO"
	CategoryFraud         = "FRAUD"
	CategoryBehavioral    = "BEHAVIORAL"
	CategoryAdverseMedia  = "ADVERSE_MEDIA"
	CategoryTerrorFinance = "TERRORIST_FINANCING"
)

// Finding is a risk signal produced by one external source adapter call.
type Finding struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Category     string    `json:"category"`
	Severity     Severity  `json:"severity"`
	Score        float64   `json:"score"`
	Message      string    `json:"message"`
	EvidenceRefs []string  `json:"evidenceRefs,omitempty"`
	ObservedAt   time.Time `json:"observedAt"`
}

// Alert is a risk signal produced by a detector rule over a transaction set.
// Same shape as Finding plus the rule and transactions that triggered it.
// Alerts from different rules are never merged.
type Alert struct {
	ID                    string   `json:"id"`
	RuleID                string   `json:"ruleId"`
	Category              string   `json:"category"`
	Severity              Severity `json:"severity"`
	Score                 float64  `json:"score"`
	Message               string   `json:"message"`
	RelatedTransactionIDs []string `json:"relatedTransactionIds,omitempty"`
}
