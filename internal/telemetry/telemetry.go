// Package telemetry provides Prometheus metrics and tracing for the session viewer.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "session-viewer"
	namespace   = "session_viewer"
)

// Metrics holds all session viewer Prometheus metrics.
type Metrics struct {
	// Pipeline metrics
	PipelineRuns         *prometheus.CounterVec
	SessionsProcessed    *prometheus.CounterVec
	EventsProcessed      *prometheus.CounterVec
	CharacteristicPoints *prometheus.CounterVec
	Clusters             *prometheus.GaugeVec
	MoveEdges            *prometheus.GaugeVec
	PhaseDuration        *prometheus.HistogramVec

	// View synchronization metrics
	SyncPropagations  *prometheus.CounterVec
	SyncCancellations *prometheus.CounterVec
	LayerChanges      *prometheus.CounterVec
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers metrics on reg. A nil reg gets a fresh registry with Go
// and process collectors, so tests can create providers freely.
func NewProvider(reg *prometheus.Registry) *Provider {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// Registry returns the registry the metrics were registered on.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func initMetrics(f promauto.Factory) *Metrics {
	m := &Metrics{}
	initPipelineMetrics(f, m)
	initSyncMetrics(f, m)
	return m
}

func initPipelineMetrics(f promauto.Factory, m *Metrics) {
	m.PipelineRuns = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total analytics pipeline runs",
	}, []string{"cohort"})

	m.SessionsProcessed = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_processed_total",
		Help:      "Sessions normalized by the pipeline",
	}, []string{"cohort"})

	m.EventsProcessed = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_processed_total",
		Help:      "Normalized interaction events",
	}, []string{"cohort"})

	m.CharacteristicPoints = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "characteristic_points_total",
		Help:      "Stay points extracted from sessions",
	}, []string{"cohort"})

	m.Clusters = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "clusters",
		Help:      "Clusters produced by the latest run",
	}, []string{"cohort"})

	m.MoveEdges = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "move_edges",
		Help:      "Aggregated move edges produced by the latest run",
	}, []string{"cohort"})

	m.PhaseDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "phase_duration_seconds",
		Help:      "Time spent per pipeline phase",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"phase"})
}

func initSyncMetrics(f promauto.Factory, m *Metrics) {
	m.SyncPropagations = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "viewsync_propagations_total",
		Help:      "Viewpoint copies from a source view to its target",
	}, []string{"direction"})

	m.SyncCancellations = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "viewsync_cancellations_total",
		Help:      "View synchronization cancellations by reason",
	}, []string{"direction", "reason"})

	m.LayerChanges = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layer_changes_total",
		Help:      "Layer state changes by view and origin",
	}, []string{"view", "origin"})
}

// RunCounts summarises one pipeline run.
type RunCounts struct {
	Sessions             int
	Events               int
	CharacteristicPoints int
	Clusters             int
	Moves                int
}

// RecordRun records the outcome of a pipeline run for cohort.
func (p *Provider) RecordRun(_ context.Context, cohort string, c RunCounts) {
	p.Metrics.PipelineRuns.WithLabelValues(cohort).Inc()
	p.Metrics.SessionsProcessed.WithLabelValues(cohort).Add(float64(c.Sessions))
	p.Metrics.EventsProcessed.WithLabelValues(cohort).Add(float64(c.Events))
	p.Metrics.CharacteristicPoints.WithLabelValues(cohort).Add(float64(c.CharacteristicPoints))
	p.Metrics.Clusters.WithLabelValues(cohort).Set(float64(c.Clusters))
	p.Metrics.MoveEdges.WithLabelValues(cohort).Set(float64(c.Moves))
}

// RecordPhase records the duration of one pipeline phase.
func (p *Provider) RecordPhase(_ context.Context, phase string, d time.Duration) {
	p.Metrics.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordPropagation counts one viewpoint copy in direction (e.g. "left->right").
func (p *Provider) RecordPropagation(direction string) {
	p.Metrics.SyncPropagations.WithLabelValues(direction).Inc()
}

// RecordSyncCancel counts a synchronization cancellation.
func (p *Provider) RecordSyncCancel(direction, reason string) {
	p.Metrics.SyncCancellations.WithLabelValues(direction, reason).Inc()
}

// RecordLayerChange counts a layer state change.
func (p *Provider) RecordLayerChange(view, origin string) {
	p.Metrics.LayerChanges.WithLabelValues(view, origin).Inc()
}

// StartSpan starts a new trace span.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
