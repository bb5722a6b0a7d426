// Package screening orchestrates a full risk screening run: fanning a
// subject out to external sources, running detection rules over transaction
// activity, scoring the combined signal set, and persisting the resulting
// record for audit.
package screening

import (
	"context"
	"time"

	"github.com/mbd888/riskscreen/internal/fanout"
	"github.com/mbd888/riskscreen/internal/scoring"
	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/transactions"
)

// Kind distinguishes the two screening flows.
type Kind string

const (
	KindSubject      Kind = "subject"      // fan-out against external sources
	KindTransactions Kind = "transactions" // rule evaluation over activity
)

// Screening is one completed screening run, stored for audit replay. The
// assessment inside is a pure function of the findings and alerts; the
// record adds identity, timing, and provenance.
type Screening struct {
	ID               string                   `json:"id"`
	Kind             Kind                     `json:"kind"`
	Subject          signal.Subject           `json:"subject"`
	Assessment       scoring.Assessment       `json:"assessment"`
	Findings         []signal.Finding         `json:"findings,omitempty"`
	Alerts           []signal.Alert           `json:"alerts,omitempty"`
	SourceResults    map[string]fanout.Result `json:"sourceResults,omitempty"`
	TransactionCount int                      `json:"transactionCount,omitempty"`
	DroppedRecords   int                      `json:"droppedRecords,omitempty"`
	Profile          *transactions.Profile    `json:"profile,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	Duration         time.Duration            `json:"duration"`
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Level       string
	SARRequired *bool
	Limit       int
}

// Store persists screening records.
type Store interface {
	Create(ctx context.Context, s *Screening) error
	Get(ctx context.Context, id string) (*Screening, error)
	List(ctx context.Context, filter ListFilter) ([]*Screening, error)
}
