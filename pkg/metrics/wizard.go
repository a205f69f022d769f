package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WizardMetrics records configurator activity: transition outcomes per
// event and the latency of persisted transitions.
type WizardMetrics struct {
	transitions *prometheus.CounterVec
	completions prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewWizardMetrics registers the configurator metrics on the provided registerer.
func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	if reg == nil {
		return &WizardMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_transitions_total",
		Help: "Configuration wizard transitions by event and outcome.",
	}, []string{"event", "outcome"})
	completions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_completions_total",
		Help: "Configurations that reached the complete step.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wizard_transition_duration_seconds",
		Help:    "Duration of persisted wizard transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	reg.MustRegister(transitions, completions, duration)
	return &WizardMetrics{
		transitions: transitions,
		completions: completions,
		duration:    duration,
	}
}

// IncTransition counts one transition attempt for the named event.
func (w *WizardMetrics) IncTransition(event string, ok bool) {
	if w == nil || w.transitions == nil {
		return
	}
	outcome := "rejected"
	if ok {
		outcome = "accepted"
	}
	w.transitions.WithLabelValues(normalizeLabel(event), outcome).Inc()
}

// IncCompletion counts a configuration reaching the complete step.
func (w *WizardMetrics) IncCompletion() {
	if w == nil || w.completions == nil {
		return
	}
	w.completions.Inc()
}

// ObserveTransition records the duration of a persisted transition.
func (w *WizardMetrics) ObserveTransition(event string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(event)).Observe(duration.Seconds())
}
