package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reload outcome label values.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
)

// Frame mode label values.
const (
	ModeScript   = "script"
	ModeFallback = "fallback"
)

// Metrics holds the host collectors.
type Metrics struct {
	Reloads       *prometheus.CounterVec
	ScriptErrors  *prometheus.CounterVec
	Frames        *prometheus.CounterVec
	FrameDuration prometheus.Histogram
	Generation    prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vine_reload_total",
				Help: "Script validation attempts by outcome",
			},
			[]string{"outcome"},
		),
		ScriptErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vine_script_errors_total",
				Help: "Recovered script errors by kind",
			},
			[]string{"kind"},
		),
		Frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vine_frames_total",
				Help: "Frames drawn, by whether the script or the fallback GUI drew them",
			},
			[]string{"mode"},
		),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vine_frame_duration_seconds",
			Help:    "Time spent in one host frame",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .0167, .025, .05, .1, .25},
		}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vine_session_generation",
			Help: "Generation of the active interpreter session",
		}),
		gatherer: prometheus.DefaultGatherer,
	}
	reg.MustRegister(m.Reloads, m.ScriptErrors, m.Frames, m.FrameDuration, m.Generation)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReloadCommitted: func(_ context.Context, e *domain.ReloadEvent) {
			m.Reloads.WithLabelValues(OutcomeCommitted).Inc()
			m.Generation.Set(float64(e.Generation))
		},
		OnReloadRolledBack: func(_ context.Context, e *domain.ReloadEvent) {
			m.Reloads.WithLabelValues(OutcomeRolledBack).Inc()
		},
		OnScriptError: func(_ context.Context, e *domain.ScriptErrorEvent) {
			m.ScriptErrors.WithLabelValues(e.Kind).Inc()
		},
		OnFrame: func(_ context.Context, e *domain.FrameEvent) {
			mode := ModeScript
			if e.Fallback {
				mode = ModeFallback
			}
			m.Frames.WithLabelValues(mode).Inc()
			m.FrameDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry the metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
