package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWizardMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWizardMetrics(reg)

	metrics.IncTransition("set_material", true)
	metrics.IncTransition("set_material", false)
	metrics.IncCompletion()
	metrics.ObserveTransition("set_material", 30*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "wizard_transitions_total", "outcome", "accepted"); err != nil {
		t.Fatalf("fetch accepted: %v", err)
	} else if got != 1 {
		t.Fatalf("expected accepted=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "wizard_transitions_total", "outcome", "rejected"); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}

	if mf := findMetricFamily(mfs, "wizard_completions_total"); mf == nil {
		t.Fatal("completions counter not exported")
	} else if mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected completions=1, got %f", mf.GetMetric()[0].GetCounter().GetValue())
	}

	if got, err := fetchHistogramSum(mfs, "wizard_transition_duration_seconds", "event", "set_material"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestWizardMetricsNilSafe(t *testing.T) {
	var metrics *WizardMetrics
	metrics.IncTransition("complete", true)
	metrics.IncCompletion()
	metrics.ObserveTransition("complete", time.Millisecond)
}
