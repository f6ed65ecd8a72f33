package metrics

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/hydration"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
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

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
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

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestObserveFlush(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.ObserveFlush(scheduler.FlushReport{Rounds: 2, Applied: 3, Dropped: 1, Effects: 2, Duration: time.Millisecond})
	c.ObserveFlush(scheduler.FlushReport{Rounds: 1, Applied: 1})

	if got := counterValue(t, c.flushes); got != 2 {
		t.Errorf("flushes = %v, want 2", got)
	}
	if got := counterValue(t, c.updates.WithLabelValues("applied")); got != 4 {
		t.Errorf("applied = %v, want 4", got)
	}
	if got := counterValue(t, c.updates.WithLabelValues("dropped")); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if got := counterValue(t, c.effects); got != 2 {
		t.Errorf("effects = %v, want 2", got)
	}
	if got := histogramCount(t, c.flushRounds); got != 2 {
		t.Errorf("flush_rounds count = %v, want 2", got)
	}
}

func TestCollectorWiredIntoRuntime(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
	frames := scheduler.NewManualFrames()
	sched := scheduler.New(frames,
		scheduler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		scheduler.WithObserver(c),
	)
	env := element.NewEnv(dom.NewDocument(), sched, element.WithResourceObserver(c))

	el := env.Tag("button").
		On("click", func(dom.Event) {}).
		On("focus", func(dom.Event) {}).
		Build()
	if got := gaugeValue(t, c.listeners); got != 2 {
		t.Errorf("listeners_active = %v, want 2", got)
	}

	el.Node().Element().AppendChild(element.TextNode(env.NewText("x")))
	frames.Tick()
	if got := counterValue(t, c.flushes); got != 1 {
		t.Errorf("flushes = %v, want 1", got)
	}

	el.Teardown()
	if got := gaugeValue(t, c.listeners); got != 0 {
		t.Errorf("listeners_active = %v after teardown, want 0", got)
	}
}

func TestResourceGauges(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.TaskStarted()
	c.TaskStarted()
	c.TaskCancelled()

	if got := gaugeValue(t, c.tasks); got != 1 {
		t.Errorf("tasks_active = %v, want 1", got)
	}
	if got := counterValue(t, c.tasksCancelled); got != 1 {
		t.Errorf("tasks_cancelled = %v, want 1", got)
	}
}

func TestObserveHydration(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.ObserveHydration(hydration.Stats{})
	c.ObserveHydration(hydration.Stats{EmptyTextRemoved: 2})
	c.ObserveHydration(hydration.Stats{NodesAdded: 1, AttributesSet: 3})

	for _, tt := range []struct {
		result string
		want   float64
	}{
		{"exact", 1},
		{"whitespace", 1},
		{"repaired", 1},
	} {
		if got := counterValue(t, c.hydrations.WithLabelValues(tt.result)); got != tt.want {
			t.Errorf("hydrations{result=%q} = %v, want %v", tt.result, got, tt.want)
		}
	}
	if got := counterValue(t, c.hydrationNodes.WithLabelValues("empty_text_removed")); got != 2 {
		t.Errorf("empty_text_removed = %v, want 2", got)
	}
	if got := counterValue(t, c.hydrationAttrs.WithLabelValues("set")); got != 3 {
		t.Errorf("attributes set = %v, want 3", got)
	}
}
