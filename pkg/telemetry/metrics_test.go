package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/reactor/pkg/keyed"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsObserveRuntime(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	rt := reactive.NewRuntime(reactive.WithObserver(m))
	s := rt.NewScope()

	count := reactive.NewSignal(s, 1)
	doubled := reactive.NewMemo(s, func() int { return count.Get() * 2 })
	reactive.CreateEffect(s, func(*reactive.Scope) error {
		_ = doubled.Get()
		return nil
	})
	count.Set(2)

	if got := metricCounterValue(t, m.flushesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("flushes_total(ok)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.nodeRuns.WithLabelValues("effect")); got != 2 {
		t.Errorf("node_runs_total(effect)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.nodeRuns.WithLabelValues("derived")); got != 2 {
		t.Errorf("node_runs_total(derived)=%v, want 2", got)
	}
	if got := metricHistogramCount(t, m.flushDuration); got != 2 {
		t.Errorf("flush_duration_seconds count=%v, want 2", got)
	}
	if got := metricHistogramCount(t, m.nodeDuration.WithLabelValues("effect")); got != 2 {
		t.Errorf("node_duration_seconds(effect) count=%v, want 2", got)
	}
}

func TestMetricsErrors(t *testing.T) {
	t.Run("captured by boundary", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(WithRegistry(reg))
		rt := reactive.NewRuntime(reactive.WithObserver(m))
		s := rt.NewScope()
		fail := reactive.NewSignal(s, false)

		reactive.NewBoundary(s, func(s *reactive.Scope) error {
			_, err := reactive.CreateEffect(s, func(*reactive.Scope) error {
				if fail.Get() {
					return errors.New("bad input")
				}
				return nil
			})
			return err
		}, nil)
		fail.Set(true)

		if got := metricCounterValue(t, m.errorsCaptured.WithLabelValues("R004")); got != 1 {
			t.Errorf("errors_captured_total(R004)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.flushesTotal.WithLabelValues("error")); got != 0 {
			t.Errorf("flushes_total(error)=%v, want 0", got)
		}
	})

	t.Run("flush aborted by cycle", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(WithRegistry(reg), WithNamespace("test"))
		rt := reactive.NewRuntime(reactive.WithObserver(m))
		s := rt.NewScope()
		count := reactive.NewSignal(s, 0)

		reactive.CreateEffect(s, func(*reactive.Scope) error {
			return count.Set(count.Get() + 1)
		})

		if got := metricCounterValue(t, m.flushesTotal.WithLabelValues("error")); got != 1 {
			t.Errorf("flushes_total(error)=%v, want 1", got)
		}
		if got := metricCounterValue(t, m.flushErrors.WithLabelValues("R001")); got != 1 {
			t.Errorf("flush_errors_total(R001)=%v, want 1", got)
		}
	})
}

func TestMetricsRecordPatches(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))

	patches, err := keyed.Diff([]string{"a", "b", "c"}, []string{"c", "a", "d"})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	m.RecordPatches(keyed.Count(patches))

	if got := metricCounterValue(t, m.patches.WithLabelValues("CreateRow")); got != 1 {
		t.Errorf("patches_total(CreateRow)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.patches.WithLabelValues("RemoveRow")); got != 1 {
		t.Errorf("patches_total(RemoveRow)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.patches.WithLabelValues("MoveRow")); got != 1 {
		t.Errorf("patches_total(MoveRow)=%v, want 1", got)
	}

	m.SetLiveNodes(7)
	if got := metricGaugeValue(t, m.liveNodes); got != 7 {
		t.Errorf("live_nodes=%v, want 7", got)
	}
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "demo"}))
	m.FlushFinished(reactive.FlushStats{Waves: 1}, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "reactor_flushes_total" {
			found = true
			if l := f.GetMetric()[0].GetLabel(); len(l) == 0 {
				t.Error("expected const label")
			}
		}
	}
	if !found {
		t.Error("reactor_flushes_total not registered")
	}
}
