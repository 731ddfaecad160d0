// Package metrics exposes engine and bot activity to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor/pkg/domain"
)

// Metrics owns a private registry so that several instances can live in one
// process (tests, embedded engines).
type Metrics struct {
	registry *prometheus.Registry

	stepsRendered  *prometheus.CounterVec
	answers        *prometheus.CounterVec
	completed      *prometheus.CounterVec
	back           *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	updateErrors   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_steps_rendered_total",
			Help: "Dialog steps rendered, by flow and item kind.",
		}, []string{"entry", "kind"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_answers_total",
			Help: "Answers consumed by the engine, by flow and item kind.",
		}, []string{"entry", "kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_flows_completed_total",
			Help: "Dialogs that reached their final step.",
		}, []string{"entry"}),
		back: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_back_navigations_total",
			Help: "Back presses that landed on an earlier step.",
		}, []string{"entry"}),
		updateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "arbor_update_duration_seconds",
			Help:    "Time spent handling one chat update, lock wait included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		updateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbor_update_errors_total",
			Help: "Chat updates whose handling failed.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.stepsRendered,
		m.answers,
		m.completed,
		m.back,
		m.updateDuration,
		m.updateErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks returns engine lifecycle hooks feeding the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepRendered: func(_ context.Context, e *domain.StepEvent) {
			m.stepsRendered.WithLabelValues(e.Entry.String(), e.Kind.String()).Inc()
		},
		OnAnswered: func(_ context.Context, e *domain.StepEvent) {
			m.answers.WithLabelValues(e.Entry.String(), e.Kind.String()).Inc()
		},
		OnCompleted: func(_ context.Context, e *domain.StepEvent) {
			m.completed.WithLabelValues(e.Entry.String()).Inc()
		},
		OnBack: func(_ context.Context, e *domain.StepEvent) {
			m.back.WithLabelValues(e.Entry.String()).Inc()
		},
	}
}

// ObserveUpdate records one handled chat update.
func (m *Metrics) ObserveUpdate(updateType string, elapsed time.Duration, err error) {
	m.updateDuration.WithLabelValues(updateType).Observe(elapsed.Seconds())
	if err != nil {
		m.updateErrors.WithLabelValues(updateType).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
