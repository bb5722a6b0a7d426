package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/mbd888/riskscreen/internal/signal"
)

// DisputeLister abstracts the Stripe dispute list call for testing.
type DisputeLister interface {
	ListDisputes(ctx context.Context, counterparty string, lookback time.Duration) ([]*stripe.Dispute, error)
}

// DisputeSource checks a subject's payment dispute history. A pattern of
// chargebacks, especially fraud-coded ones, is a fraud signal independent of
// any watchlist. Wallet subjects come back clear.
type DisputeSource struct {
	lister   DisputeLister
	lookback time.Duration
	now      func() time.Time
}

// NewDisputeSource builds the source. A zero lookback defaults to 90 days.
func NewDisputeSource(lister DisputeLister, lookback time.Duration) *DisputeSource {
	if lookback <= 0 {
		lookback = 90 * 24 * time.Hour
	}
	return &DisputeSource{lister: lister, lookback: lookback, now: time.Now}
}

func (s *DisputeSource) Name() string { return "disputes" }

func (s *DisputeSource) Fetch(ctx context.Context, subject signal.Subject) (*signal.Finding, error) {
	if subject.Kind == signal.KindWallet {
		return nil, nil
	}

	disputes, err := s.lister.ListDisputes(ctx, subject.Name, s.lookback)
	if err != nil {
		return nil, fmt.Errorf("dispute source: list disputes: %w", err)
	}
	if len(disputes) == 0 {
		return nil, nil
	}

	var fraudCoded int
	refs := make([]string, 0, len(disputes))
	for _, d := range disputes {
		refs = append(refs, d.ID)
		if d.Reason == stripe.DisputeReasonFraudulent {
			fraudCoded++
		}
	}

	score := 15 + 10*float64(len(disputes)-1)
	if score > 45 {
		score = 45
	}
	severity := signal.SeverityMedium
	if fraudCoded > 0 {
		severity = signal.SeverityHigh
	}
	msg := fmt.Sprintf("%d payment dispute(s) in the last %d days, %d coded fraudulent",
		len(disputes), int(s.lookback.Hours()/24), fraudCoded)

	return &signal.Finding{
		ID:           idgen.WithPrefix("fnd_"),
		Source:       s.Name(),
		Category:     signal.CategoryFraud,
		Severity:     severity,
		Score:        score,
		Message:      msg,
		EvidenceRefs: refs,
		ObservedAt:   s.now().UTC(),
	}, nil
}

// StripeDisputeLister lists disputes from the Stripe API, matching the
// subject against the counterparty name the charge was recorded with.
type StripeDisputeLister struct {
	api *client.API
}

// NewStripeDisputeLister builds a lister over a Stripe API key.
func NewStripeDisputeLister(apiKey string) *StripeDisputeLister {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeDisputeLister{api: api}
}

func (l *StripeDisputeLister) ListDisputes(ctx context.Context, counterparty string, lookback time.Duration) ([]*stripe.Dispute, error) {
	params := &stripe.DisputeListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	params.CreatedRange = &stripe.RangeQueryParams{
		GreaterThan: time.Now().Add(-lookback).Unix(),
	}
	params.AddExpand("data.charge")

	want := normalizeName(counterparty)
	var out []*stripe.Dispute
	iter := l.api.Disputes.List(params)
	for iter.Next() {
		d := iter.Dispute()
		if d.Charge == nil {
			continue
		}
		if normalizeName(d.Charge.Metadata["counterparty"]) == want {
			out = append(out, d)
		}
	}
	return out, iter.Err()
}
