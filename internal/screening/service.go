package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbd888/riskscreen/internal/fanout"
	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/mbd888/riskscreen/internal/logging"
	"github.com/mbd888/riskscreen/internal/metrics"
	"github.com/mbd888/riskscreen/internal/realtime"
	"github.com/mbd888/riskscreen/internal/rules"
	"github.com/mbd888/riskscreen/internal/scoring"
	"github.com/mbd888/riskscreen/internal/signal"
	"github.com/mbd888/riskscreen/internal/traces"
	"github.com/mbd888/riskscreen/internal/transactions"
	"github.com/mbd888/riskscreen/internal/webhooks"
)

// ErrNotFound is returned when a screening record does not exist.
var ErrNotFound = errors.New("screening: not found")

// ErrNoSubject is returned when the subject has no usable identifier.
var ErrNoSubject = errors.New("screening: subject has no identifier")

// Service runs screenings end to end and records the results.
type Service struct {
	exec    *fanout.Executor
	engine  *rules.Engine
	scorer  *scoring.Scorer
	store   Store
	emitter *webhooks.Emitter
	hub     *realtime.Hub
	logger  *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithEmitter attaches a webhook emitter for screening lifecycle events.
func WithEmitter(e *webhooks.Emitter) Option {
	return func(s *Service) { s.emitter = e }
}

// WithHub attaches a realtime hub for live screening broadcasts.
func WithHub(h *realtime.Hub) Option {
	return func(s *Service) { s.hub = h }
}

// NewService wires the screening pipeline together.
func NewService(exec *fanout.Executor, engine *rules.Engine, scorer *scoring.Scorer, store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		exec:   exec,
		engine: engine,
		scorer: scorer,
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources lists the registered source adapters with their breaker state.
func (s *Service) Sources() []fanout.SourceInfo {
	return s.exec.Sources()
}

// Rules lists the registered detection rule IDs.
func (s *Service) Rules() []string {
	return s.engine.Rules()
}

// ScreenSubject fans the subject out to external sources (or the allow-listed
// subset), scores whatever came back, and records the run. Source failures
// never fail the screening; they are preserved on the record as absent slots.
func (s *Service) ScreenSubject(ctx context.Context, subject signal.Subject, allow []string) (*Screening, error) {
	if subject.Identifier() == "" {
		return nil, ErrNoSubject
	}

	ctx, span := traces.StartSpan(ctx, "screening.subject",
		traces.SubjectKind(string(subject.Kind)),
	)
	defer span.End()

	start := time.Now()
	results := s.exec.Run(ctx, subject, allow)

	var findings []signal.Finding
	for _, res := range results {
		if res.Contributed() {
			findings = append(findings, *res.Finding)
		}
	}

	assessment := s.scorer.Score(findings, nil)
	rec := &Screening{
		ID:            idgen.WithPrefix("scr_"),
		Kind:          KindSubject,
		Subject:       subject,
		Assessment:    assessment,
		Findings:      findings,
		SourceResults: results,
		CreatedAt:     start.UTC(),
		Duration:      time.Since(start),
	}
	span.SetAttributes(
		traces.ScreeningID(rec.ID),
		traces.CompositeScore(assessment.CompositeScore),
		traces.RiskLevel(string(assessment.Level)),
	)

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("screening: store record: %w", err)
	}

	s.observe(rec)
	s.notify(rec)
	logging.L(ctx).Info("subject screening completed",
		"screening_id", rec.ID,
		"subject_kind", string(subject.Kind),
		"score", assessment.CompositeScore,
		"level", string(assessment.Level),
		"sources", len(results),
		"findings", len(findings),
	)
	return rec, nil
}

// ScreenTransactions normalizes the raw records, builds an activity profile,
// runs the detection rules (or the requested category subset), scores the
// alerts, and records the run.
func (s *Service) ScreenTransactions(ctx context.Context, subject signal.Subject, records []transactions.RawRecord, categories []string) (*Screening, error) {
	if subject.Identifier() == "" {
		return nil, ErrNoSubject
	}

	ctx, span := traces.StartSpan(ctx, "screening.transactions",
		traces.SubjectKind(string(subject.Kind)),
		traces.TransactionCount(len(records)),
	)
	defer span.End()

	start := time.Now()
	norm := transactions.Normalize(records, transactions.DefaultCurrency)
	profile := transactions.BuildProfile(norm.Transactions)

	var alerts []signal.Alert
	if len(categories) > 0 {
		alerts = s.engine.RunCategories(categories, norm.Transactions, profile)
	} else {
		alerts = s.engine.Run(norm.Transactions, profile)
	}

	assessment := s.scorer.Score(nil, alerts)
	rec := &Screening{
		ID:               idgen.WithPrefix("scr_"),
		Kind:             KindTransactions,
		Subject:          subject,
		Assessment:       assessment,
		Alerts:           alerts,
		TransactionCount: len(norm.Transactions),
		DroppedRecords:   norm.Dropped,
		Profile:          &profile,
		CreatedAt:        start.UTC(),
		Duration:         time.Since(start),
	}
	span.SetAttributes(
		traces.ScreeningID(rec.ID),
		traces.CompositeScore(assessment.CompositeScore),
		traces.RiskLevel(string(assessment.Level)),
	)

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("screening: store record: %w", err)
	}

	s.observe(rec)
	s.notify(rec)
	logging.L(ctx).Info("transaction screening completed",
		"screening_id", rec.ID,
		"transactions", len(norm.Transactions),
		"dropped", norm.Dropped,
		"alerts", len(alerts),
		"score", assessment.CompositeScore,
		"level", string(assessment.Level),
	)
	return rec, nil
}

// Get returns one screening record.
func (s *Service) Get(ctx context.Context, id string) (*Screening, error) {
	return s.store.Get(ctx, id)
}

// List returns screening records, most recent first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Screening, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) observe(rec *Screening) {
	metrics.ScreeningsTotal.WithLabelValues(string(rec.Kind), string(rec.Assessment.Level)).Inc()
	metrics.ScreeningDuration.WithLabelValues(string(rec.Kind)).Observe(rec.Duration.Seconds())
	if rec.Assessment.SARRequired {
		metrics.SARFlaggedTotal.Inc()
	}
}

// notify is fire-and-forget: webhook and realtime failures never affect the
// screening result.
func (s *Service) notify(rec *Screening) {
	a := rec.Assessment
	kind := string(rec.Subject.Kind)
	ref := rec.Subject.Identifier()

	if s.emitter != nil {
		s.emitter.EmitScreeningCompleted(rec.ID, kind, ref, a.CompositeScore, string(a.Level), a.SARRequired)
		if a.Level == scoring.LevelHigh || a.Level == scoring.LevelCritical {
			s.emitter.EmitScreeningHighRisk(rec.ID, kind, ref, a.CompositeScore, string(a.Level), a.Priority, a.SLA)
		}
		if a.SARRequired {
			s.emitter.EmitSARFlagged(rec.ID, kind, ref, a.CompositeScore)
		}
		for _, alert := range rec.Alerts {
			s.emitter.EmitAlertRaised(rec.ID, alert.ID, alert.RuleID, alert.Category, string(alert.Severity), alert.Message)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastScreening(map[string]interface{}{
			"screeningId":    rec.ID,
			"kind":           string(rec.Kind),
			"subjectKind":    kind,
			"compositeScore": float64(a.CompositeScore),
			"level":          string(a.Level),
			"priority":       a.Priority,
			"sarRequired":    a.SARRequired,
		})
		for _, alert := range rec.Alerts {
			s.hub.BroadcastAlert(map[string]interface{}{
				"screeningId": rec.ID,
				"alertId":     alert.ID,
				"ruleId":      alert.RuleID,
				"category":    alert.Category,
				"severity":    string(alert.Severity),
				"message":     alert.Message,
			})
		}
	}
}
