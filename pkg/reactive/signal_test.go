package reactive

import (
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

func newTestEnv() (*element.Env, *scheduler.ManualFrames) {
	frames := scheduler.NewManualFrames()
	sched := scheduler.New(frames, scheduler.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return element.NewEnv(dom.NewDocument(), sched), frames
}

func TestBatchedSetsRegenerateOnce(t *testing.T) {
	env, frames := newTestEnv()
	count := New(env.Scheduler(), 0)
	renders := 0
	view := count.Read().With(func(n int) *element.Element {
		renders++
		return env.Text(strconv.Itoa(n))
	})
	root := env.Tag("div").Child(view).Build()

	count.Write().Set(1)
	count.Write().Set(2)
	if got := root.DomNode().TextContent(); got != "0" {
		t.Fatalf("text before flush = %q, want 0", got)
	}
	if frames.Requests() != 1 {
		t.Errorf("Requests = %d, want 1", frames.Requests())
	}

	frames.Tick()
	if got := root.DomNode().TextContent(); got != "2" {
		t.Errorf("text after flush = %q, want 2", got)
	}
	if renders != 2 {
		t.Errorf("renders = %d, want 2 (initial plus one regeneration)", renders)
	}
	if count.HasPending() {
		t.Error("mutation still pending after flush")
	}
}

func TestEditsComposeInCallOrder(t *testing.T) {
	env, frames := newTestEnv()
	s := New(env.Scheduler(), "")
	w := s.Write()
	w.Edit(func(v *string) { *v += "a" })
	w.Map(func(v string) string { return v + "b" })
	w.Edit(func(v *string) { *v += "c" })

	if got := s.Read().Get(); got != "" {
		t.Fatalf("Get before flush = %q", got)
	}
	frames.Tick()
	if got := s.Read().Get(); got != "abc" {
		t.Errorf("Get = %q, want abc", got)
	}
}

func TestApplyWithoutPendingMutationIsFatal(t *testing.T) {
	env, _ := newTestEnv()
	s := New(env.Scheduler(), 0)

	defer func() {
		err, ok := recover().(error)
		if !ok {
			t.Fatal("applyPending did not panic with an error")
		}
		if code := errors.Code(err); code != "E001" {
			t.Errorf("Code = %q, want E001", code)
		}
	}()
	s.applyPending()
}

func TestAncestorRegenerationDropsDescendantUpdate(t *testing.T) {
	env, frames := newTestEnv()
	outer := New(env.Scheduler(), "a")
	inner := New(env.Scheduler(), 1)

	var order []string
	innerRenders := 0
	view := outer.Read().With(func(o string) *element.Element {
		order = append(order, "outer")
		return env.Tag("div").
			Text(o).
			Child(inner.Read().With(func(i int) *element.Element {
				innerRenders++
				order = append(order, "inner")
				return env.Text(strconv.Itoa(i))
			})).
			Build()
	})
	root := env.Tag("main").Child(view).Build()
	order = nil

	// The inner signal is written first so its regeneration is queued
	// first. Depth ordering must still run the outer one first.
	inner.Write().Set(2)
	outer.Write().Set("b")
	frames.Tick()

	if got := root.DomNode().TextContent(); got != "b2" {
		t.Errorf("text = %q, want b2", got)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
	if innerRenders != 2 {
		t.Errorf("inner renders = %d, want 2", innerRenders)
	}
	if n := inner.Dependents(); n != 1 {
		t.Errorf("inner dependents = %d, want 1", n)
	}
}

func TestTeardownUnsubscribes(t *testing.T) {
	env, frames := newTestEnv()
	s := New(env.Scheduler(), 0)
	renders := 0
	el := s.Read().With(func(n int) *element.Element {
		renders++
		return env.Text(strconv.Itoa(n))
	})
	if s.Dependents() != 1 {
		t.Fatalf("Dependents = %d, want 1", s.Dependents())
	}

	s.Write().Set(1)
	el.Teardown()
	frames.Tick()

	if s.Dependents() != 0 {
		t.Errorf("Dependents = %d after teardown, want 0", s.Dependents())
	}
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got := s.Read().Get(); got != 1 {
		t.Errorf("Get = %d, want 1", got)
	}
}

func TestOptionalFillsAndClearsGroup(t *testing.T) {
	env, frames := newTestEnv()
	visible := New(env.Scheduler(), false)
	root := env.Tag("p").
		Text("[").
		Dynamic(visible.Read().Optional(func(v bool) *element.Element {
			if !v {
				return nil
			}
			return env.Tag("b").Text("shown").Build()
		})).
		Text("]").
		Build()

	if got := dom.InnerHTML(root.DomNode()); got != "[]" {
		t.Errorf("InnerHTML = %s, want []", got)
	}
	visible.Write().Set(true)
	frames.Tick()
	if got := dom.InnerHTML(root.DomNode()); got != "[<b>shown</b>]" {
		t.Errorf("InnerHTML = %s", got)
	}
	visible.Write().Set(false)
	frames.Tick()
	if got := dom.InnerHTML(root.DomNode()); got != "[]" {
		t.Errorf("InnerHTML = %s, want []", got)
	}
}

func TestWriteDuringCommitAppliesInSameFrame(t *testing.T) {
	env, frames := newTestEnv()
	celsius := New(env.Scheduler(), 0)
	fahrenheit := New(env.Scheduler(), 32)
	celsius.Read().Subscribe(func(c int) {
		fahrenheit.Write().Set(c*9/5 + 32)
	})
	view := Text(env, fahrenheit.Read(), strconv.Itoa)

	celsius.Write().Set(100)
	frames.Tick()

	if got := view.DomNode().Text(); got != "212" {
		t.Errorf("text = %q, want 212", got)
	}
	if frames.PendingFrames() != 0 {
		t.Errorf("PendingFrames = %d, want 0", frames.PendingFrames())
	}
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	env, frames := newTestEnv()
	s := New(env.Scheduler(), 0)
	var order []string
	s.Read().Subscribe(func(int) { order = append(order, "first") })
	unsubscribe := s.Read().Subscribe(func(int) { order = append(order, "second") })
	s.Read().Subscribe(func(int) { order = append(order, "third") })
	unsubscribe()

	s.Write().Set(1)
	frames.Tick()
	if len(order) != 2 || order[0] != "first" || order[1] != "third" {
		t.Errorf("order = %v, want [first third]", order)
	}
}

func TestPanickingGeneratorLeavesOtherRegionsLive(t *testing.T) {
	env, frames := newTestEnv()
	bad := New(env.Scheduler(), 0)
	good := New(env.Scheduler(), 0)
	root := env.Tag("div").
		Child(bad.Read().With(func(n int) *element.Element {
			if n == 1 {
				panic("render failed")
			}
			return env.Text(strconv.Itoa(n))
		})).
		Child(Text(env, good.Read(), strconv.Itoa)).
		Build()

	bad.Write().Set(1)
	good.Write().Set(1)
	func() {
		defer func() {
			if r := recover(); r != "render failed" {
				t.Fatalf("Tick recovered %v, want render failed", r)
			}
		}()
		frames.Tick()
	}()

	good.Write().Set(2)
	frames.Tick()
	frames.Tick()
	if got := root.DomNode().TextContent(); got != "02" {
		t.Errorf("text = %q, want 02", got)
	}

	bad.Write().Set(3)
	frames.Tick()
	if got := root.DomNode().TextContent(); got != "32" {
		t.Errorf("text = %q, want 32", got)
	}
}
