package webhooks

import (
	"context"
	"log/slog"
	"time"

	"github.com/mbd888/riskscreen/internal/idgen"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	webhookEmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskscreen",
		Subsystem: "webhook",
		Name:      "emit_total",
		Help:      "Total webhook emit attempts by event type.",
	}, []string{"event_type"})

	webhookEmitErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskscreen",
		Subsystem: "webhook",
		Name:      "emit_errors_total",
		Help:      "Total webhook emit failures by event type.",
	}, []string{"event_type"})
)

func init() {
	prometheus.MustRegister(webhookEmitTotal, webhookEmitErrors)
}

// Emitter wraps a Dispatcher to emit screening lifecycle events.
// All methods are fire-and-forget: errors are logged but never returned.
type Emitter struct {
	d      *Dispatcher
	logger *slog.Logger
}

// NewEmitter creates a new webhook emitter.
func NewEmitter(d *Dispatcher, logger *slog.Logger) *Emitter {
	return &Emitter{d: d, logger: logger}
}

func (e *Emitter) emit(eventType EventType, data map[string]interface{}) {
	if e == nil || e.d == nil {
		return
	}
	webhookEmitTotal.WithLabelValues(string(eventType)).Inc()
	event := &Event{
		ID:        idgen.WithPrefix("evt_"),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := e.d.Dispatch(ctx, event); err != nil {
		webhookEmitErrors.WithLabelValues(string(eventType)).Inc()
		e.logger.Warn("webhook emit failed", "event", eventType, "error", err)
	}
}

// EmitScreeningCompleted emits a screening.completed event.
func (e *Emitter) EmitScreeningCompleted(screeningID, subjectKind, subjectRef string, score int, level string, sarRequired bool) {
	e.emit(EventScreeningCompleted, map[string]interface{}{
		"screeningId":    screeningID,
		"subjectKind":    subjectKind,
		"subjectRef":     subjectRef,
		"compositeScore": score,
		"level":          level,
		"sarRequired":    sarRequired,
	})
}

// EmitScreeningHighRisk emits a screening.high_risk event for HIGH and
// CRITICAL results.
func (e *Emitter) EmitScreeningHighRisk(screeningID, subjectKind, subjectRef string, score int, level, priority, sla string) {
	e.emit(EventScreeningHighRisk, map[string]interface{}{
		"screeningId":    screeningID,
		"subjectKind":    subjectKind,
		"subjectRef":     subjectRef,
		"compositeScore": score,
		"level":          level,
		"priority":       priority,
		"sla":            sla,
	})
}

// EmitAlertRaised emits an alert.raised event.
func (e *Emitter) EmitAlertRaised(screeningID, alertID, ruleID, category, severity, message string) {
	e.emit(EventAlertRaised, map[string]interface{}{
		"screeningId": screeningID,
		"alertId":     alertID,
		"ruleId":      ruleID,
		"category":    category,
		"severity":    severity,
		"message":     message,
	})
}

// EmitSARFlagged emits a sar.flagged event.
func (e *Emitter) EmitSARFlagged(screeningID, subjectKind, subjectRef string, score int) {
	e.emit(EventSARFlagged, map[string]interface{}{
		"screeningId":    screeningID,
		"subjectKind":    subjectKind,
		"subjectRef":     subjectRef,
		"compositeScore": score,
	})
}
