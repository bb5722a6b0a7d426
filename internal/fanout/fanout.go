// Package fanout runs a configured set of source adapters concurrently
// against one subject, enforcing a per-source timeout and isolating
// failures.
//
// A slow or broken source never fails the overall screening and never blocks
// the caller beyond its own budget: it is recorded as an absent result with
// its failure reason, which downstream scoring treats as "this source
// contributed nothing" — emphatically not as "this source came back clear".
package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mbd888/riskscreen/internal/circuitbreaker"
	"github.com/mbd888/riskscreen/internal/signal"
)

var (
	sourceCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskscreen",
		Subsystem: "fanout",
		Name:      "source_calls_total",
		Help:      "Source adapter calls by source and outcome.",
	}, []string{"source", "outcome"})

	sourceLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "riskscreen",
		Subsystem: "fanout",
		Name:      "source_latency_seconds",
		Help:      "Source adapter call latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(sourceCalls, sourceLatency)
}

// Source is a single external signal source. Fetch must honor ctx
// cancellation and normalize its upstream response into a Finding before
// returning. A nil Finding with nil error means "checked and clear".
type Source interface {
	Name() string
	Fetch(ctx context.Context, subject signal.Subject) (*signal.Finding, error)
}

// Outcome classifies how a source slot resolved.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"      // adapter returned (finding or clear)
	OutcomeTimeout Outcome = "timeout" // budget exhausted
	OutcomeError   Outcome = "error"   // adapter failed or panicked
	OutcomeSkipped Outcome = "skipped" // circuit open, adapter not called
)

// Result is one source's slot in a screening run.
type Result struct {
	Source   string          `json:"source"`
	Outcome  Outcome         `json:"outcome"`
	Finding  *signal.Finding `json:"finding,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// Contributed reports whether this slot produced a usable finding.
func (r Result) Contributed() bool {
	return r.Outcome == OutcomeOK && r.Finding != nil
}

// SourceInfo describes a registered source for operational display.
type SourceInfo struct {
	Name         string        `json:"name"`
	Timeout      time.Duration `json:"timeoutMs"`
	BreakerState string        `json:"breakerState"`
}

type registered struct {
	source  Source
	timeout time.Duration
}

// Executor fans a subject out to all registered sources. Each source writes
// only its own result slot, so the fan-out itself needs no locking.
type Executor struct {
	sources        []registered
	byName         map[string]int
	defaultTimeout time.Duration
	breaker        *circuitbreaker.Breaker
	logger         *slog.Logger
}

// Option configures the executor.
type Option func(*Executor)

// WithDefaultTimeout sets the budget used when a source is registered with
// timeout zero.
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) { e.defaultTimeout = d }
}

// WithBreaker attaches a circuit breaker keyed by source name. Sources whose
// circuit is open are skipped without being called.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(e *Executor) { e.breaker = b }
}

// New creates an empty executor.
func New(logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		byName:         make(map[string]int),
		defaultTimeout: 5 * time.Second,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a source with its per-call budget. Registering a duplicate
// name replaces the earlier source.
func (e *Executor) Register(src Source, timeout time.Duration) {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	if i, ok := e.byName[src.Name()]; ok {
		e.sources[i] = registered{source: src, timeout: timeout}
		return
	}
	e.byName[src.Name()] = len(e.sources)
	e.sources = append(e.sources, registered{source: src, timeout: timeout})
}

// Sources lists registered sources with their breaker state.
func (e *Executor) Sources() []SourceInfo {
	out := make([]SourceInfo, 0, len(e.sources))
	for _, reg := range e.sources {
		info := SourceInfo{
			Name:         reg.source.Name(),
			Timeout:      reg.timeout,
			BreakerState: circuitbreaker.StateClosed.String(),
		}
		if e.breaker != nil {
			info.BreakerState = e.breaker.State(info.Name).String()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run queries every registered source (or the allow-listed subset)
// concurrently and returns once each has produced a result or been marked
// absent. It never returns an error: failures live inside the result map.
// An allow-listed name with no registered source resolves to an error slot.
func (e *Executor) Run(ctx context.Context, subject signal.Subject, allow []string) map[string]Result {
	selected := e.resolve(allow)

	type slot struct {
		name   string
		result Result
	}
	slots := make(chan slot, len(selected))

	for name, reg := range selected {
		if reg == nil {
			slots <- slot{name: name, result: Result{
				Source:  name,
				Outcome: OutcomeError,
				Error:   "unknown source",
			}}
			continue
		}
		go func(name string, reg registered) {
			slots <- slot{name: name, result: e.call(ctx, name, reg, subject)}
		}(name, *reg)
	}

	results := make(map[string]Result, len(selected))
	for range selected {
		s := <-slots
		results[s.name] = s.result
	}
	return results
}

// resolve maps the allow-list onto the registry. A nil entry marks an
// allow-listed name we don't know.
func (e *Executor) resolve(allow []string) map[string]*registered {
	selected := make(map[string]*registered)
	if len(allow) == 0 {
		for i := range e.sources {
			selected[e.sources[i].source.Name()] = &e.sources[i]
		}
		return selected
	}
	for _, name := range allow {
		if i, ok := e.byName[name]; ok {
			selected[name] = &e.sources[i]
		} else {
			selected[name] = nil
		}
	}
	return selected
}

// call races one adapter against its budget. The adapter receives a context
// that is cancelled at the deadline; if it keeps running anyway, its late
// result is delivered into a buffered channel that nobody reads — discarded,
// never merged into a completed screening.
func (e *Executor) call(ctx context.Context, name string, reg registered, subject signal.Subject) Result {
	if e.breaker != nil && !e.breaker.Allow(name) {
		sourceCalls.WithLabelValues(name, string(OutcomeSkipped)).Inc()
		return Result{Source: name, Outcome: OutcomeSkipped, Error: "circuit open"}
	}

	cctx, cancel := context.WithTimeout(ctx, reg.timeout)
	defer cancel()

	type outcome struct {
		finding *signal.Finding
		err     error
	}
	done := make(chan outcome, 1)

	start := time.Now()
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("adapter panic: %v", rec)}
			}
		}()
		f, err := reg.source.Fetch(cctx, subject)
		done <- outcome{finding: f, err: err}
	}()

	var res Result
	select {
	case o := <-done:
		res = Result{Source: name, Duration: time.Since(start)}
		if o.err != nil {
			res.Outcome = OutcomeError
			res.Error = o.err.Error()
		} else {
			res.Outcome = OutcomeOK
			res.Finding = o.finding
		}
	case <-cctx.Done():
		reason := fmt.Sprintf("no response within %s", reg.timeout)
		if ctx.Err() != nil {
			reason = "screening cancelled"
		}
		res = Result{
			Source:   name,
			Outcome:  OutcomeTimeout,
			Error:    reason,
			Duration: time.Since(start),
		}
	}

	sourceLatency.WithLabelValues(name).Observe(res.Duration.Seconds())
	sourceCalls.WithLabelValues(name, string(res.Outcome)).Inc()

	if e.breaker != nil {
		if res.Outcome == OutcomeOK {
			e.breaker.RecordSuccess(name)
		} else {
			e.breaker.RecordFailure(name)
		}
	}

	if res.Outcome != OutcomeOK {
		e.logger.Warn("source produced no usable result",
			"source", name,
			"outcome", string(res.Outcome),
			"error", res.Error,
			"subject_kind", string(subject.Kind),
		)
	}
	return res
}
