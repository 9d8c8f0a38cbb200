// Package observe exports task and provider activity to Prometheus and
// OpenTelemetry. Both exporters are hooks; register them on the same
// hooks.Registry the gateway and task runtime use.
package observe

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	genagents "github.com/wafo210715/generative-agents"
)

const namespace = "genagents"

// Run outcomes.
const (
	OutcomeModel    = "model"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Metrics counts runs, attempts and provider calls.
type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	attempts      *prometheus.CounterVec
	modelCalls    *prometheus.CounterVec
	modelTokens   *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg creates unregistered
// collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Task runs by outcome: model answer, fallback or configuration error.",
		}, []string{"task", "outcome"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_run_duration_seconds",
			Help:      "Wall time of task runs including every attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"task"}),
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_attempts_total",
			Help:      "Safe-response attempts by failure reason (ok for accepted answers).",
		}, []string{"task", "reason"}),
		modelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Provider calls by model and status.",
		}, []string{"model", "role", "status"}),
		modelTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_tokens_total",
			Help:      "Tokens reported by providers.",
		}, []string{"model", "direction"}),
		modelDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"model"}),
	}
}

// OnAfterRun counts the run.
func (m *Metrics) OnAfterRun(_ context.Context, e genagents.AfterRunEvent) {
	outcome := OutcomeModel
	switch {
	case e.Error != nil:
		outcome = OutcomeError
	case e.Record.UsedFallback:
		outcome = OutcomeFallback
	}
	m.runs.WithLabelValues(e.Record.Task, outcome).Inc()
	if e.Error == nil {
		m.runDuration.WithLabelValues(e.Record.Task).Observe(e.Duration.Seconds())
	}
}

// OnAttempt counts the attempt.
func (m *Metrics) OnAttempt(_ context.Context, e genagents.AttemptEvent) {
	m.attempts.WithLabelValues(e.Name, AttemptReason(e.Err)).Inc()
}

// OnAfterModelCall counts the call and its tokens.
func (m *Metrics) OnAfterModelCall(_ context.Context, e genagents.AfterModelCallEvent) {
	status := "ok"
	if e.Error != nil {
		status = "error"
	}
	m.modelCalls.WithLabelValues(e.Model, e.Role.String(), status).Inc()
	m.modelDuration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
	if e.Info != nil {
		m.modelTokens.WithLabelValues(e.Model, "input").Add(float64(e.Info.InputTokens))
		m.modelTokens.WithLabelValues(e.Model, "output").Add(float64(e.Info.OutputTokens))
	}
}

// AttemptReason maps an attempt error to a low-cardinality label.
func AttemptReason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, genagents.ErrInvalidJSON):
		return "invalid_json"
	case errors.Is(err, genagents.ErrMissingOutput):
		return "missing_output"
	case errors.Is(err, genagents.ErrRejected):
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

var (
	_ genagents.AfterRunHook       = (*Metrics)(nil)
	_ genagents.AttemptHook        = (*Metrics)(nil)
	_ genagents.AfterModelCallHook = (*Metrics)(nil)
)
