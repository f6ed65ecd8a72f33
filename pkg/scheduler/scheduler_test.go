package scheduler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeTarget struct {
	alive bool
	depth int
}

func (o *fakeTarget) Alive() bool { return o.alive }
func (o *fakeTarget) Depth() int  { return o.depth }

func newTestScheduler(opts ...Option) (*Scheduler, *ManualFrames) {
	frames := NewManualFrames()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(frames, opts...), frames
}

func TestQueueUpdateRequestsSingleFrame(t *testing.T) {
	s, frames := newTestScheduler()
	applied := 0
	for i := 0; i < 3; i++ {
		s.QueueUpdate(NewUpdate(nil, func() { applied++ }))
	}

	if frames.Requests() != 1 {
		t.Fatalf("Requests = %d, want 1", frames.Requests())
	}
	if applied != 0 {
		t.Fatalf("updates applied before the frame: %d", applied)
	}

	if n := frames.Tick(); n != 1 {
		t.Errorf("Tick ran %d frames, want 1", n)
	}
	if applied != 3 {
		t.Errorf("applied = %d, want 3", applied)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}

	// A new batch requests a new frame.
	s.QueueUpdate(NewUpdate(nil, func() {}))
	if frames.Requests() != 2 {
		t.Errorf("Requests = %d, want 2", frames.Requests())
	}
}

func TestFlushOrdersByDepth(t *testing.T) {
	s, frames := newTestScheduler()
	var order []string
	queue := func(name string, depth int) {
		s.QueueUpdate(NewUpdate(&fakeTarget{alive: true, depth: depth}, func() {
			order = append(order, name)
		}))
	}
	queue("deep", 5)
	queue("shallow-a", 1)
	queue("mid", 3)
	queue("shallow-b", 1)
	s.QueueUpdate(NewUpdate(nil, func() { order = append(order, "unowned") }))

	frames.Tick()

	want := []string{"unowned", "shallow-a", "shallow-b", "mid", "deep"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("apply order mismatch (-want +got):\n%s", diff)
	}
}

func TestFlushDropsDeadTargets(t *testing.T) {
	s, _ := newTestScheduler()
	applied := false
	s.QueueUpdate(NewUpdate(&fakeTarget{alive: false}, func() { applied = true }))

	report := s.Flush()
	if applied {
		t.Error("update of a dead target was applied")
	}
	if report.Dropped != 1 || report.Applied != 0 {
		t.Errorf("report = %+v, want 1 dropped", report)
	}
}

func TestAncestorUpdateDiscardsDescendant(t *testing.T) {
	s, _ := newTestScheduler()
	child := &fakeTarget{alive: true, depth: 4}
	parent := &fakeTarget{alive: true, depth: 2}

	var order []string
	s.QueueUpdate(NewUpdate(child, func() { order = append(order, "child") }))
	s.QueueUpdate(NewUpdate(parent, func() {
		order = append(order, "parent")
		child.alive = false
	}))

	report := s.Flush()
	if diff := cmp.Diff([]string{"parent"}, order); diff != "" {
		t.Errorf("apply order mismatch (-want +got):\n%s", diff)
	}
	if report.Applied != 1 || report.Dropped != 1 {
		t.Errorf("report = %+v, want 1 applied and 1 dropped", report)
	}
}

func TestUpdatesQueuedDuringFlushApplyInSameFrame(t *testing.T) {
	s, frames := newTestScheduler()
	second := false
	s.QueueUpdate(NewUpdate(nil, func() {
		s.QueueUpdate(NewUpdate(nil, func() { second = true }))
	}))

	frames.Tick()
	if !second {
		t.Fatal("update queued during flush was not applied in the same frame")
	}
	if frames.PendingFrames() != 0 {
		t.Errorf("PendingFrames = %d, want 0", frames.PendingFrames())
	}
	if frames.Requests() != 1 {
		t.Errorf("Requests = %d, want 1", frames.Requests())
	}
}

func TestEffectsRunAfterUpdates(t *testing.T) {
	s, frames := newTestScheduler()
	var order []string
	s.QueueEffect(func() { order = append(order, "effect") })
	s.QueueUpdate(NewUpdate(nil, func() {
		order = append(order, "update")
		s.QueueUpdate(NewUpdate(nil, func() { order = append(order, "nested update") }))
	}))

	if frames.Requests() != 1 {
		t.Fatalf("Requests = %d, want 1", frames.Requests())
	}
	frames.Tick()
	want := []string{"update", "nested update", "effect"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestEffectQueueingUpdateRequestsNextFrame(t *testing.T) {
	s, frames := newTestScheduler()
	applied := false
	s.QueueEffect(func() {
		s.QueueUpdate(NewUpdate(nil, func() { applied = true }))
	})

	frames.Tick()
	if applied {
		t.Fatal("update queued by an effect applied in the same frame")
	}
	if frames.PendingFrames() != 1 {
		t.Fatalf("PendingFrames = %d, want 1", frames.PendingFrames())
	}
	frames.Tick()
	if !applied {
		t.Error("update queued by an effect was not applied on the next frame")
	}
}

func TestMaxRoundsDefersRemainder(t *testing.T) {
	s, frames := newTestScheduler(WithMaxRounds(3))
	runs := 0
	var requeue func()
	requeue = func() {
		runs++
		s.QueueUpdate(NewUpdate(nil, requeue))
	}
	s.QueueUpdate(NewUpdate(nil, requeue))

	var report FlushReport
	s.OnFlush(func(r FlushReport) { report = r })
	frames.Tick()
	if report.Rounds != 3 || runs != 3 {
		t.Errorf("rounds = %d, runs = %d, want 3/3", report.Rounds, runs)
	}
	if report.Deferred != 1 {
		t.Errorf("Deferred = %d, want 1", report.Deferred)
	}
	if frames.PendingFrames() != 1 {
		t.Errorf("PendingFrames = %d, want 1", frames.PendingFrames())
	}
}

type recordingObserver struct {
	reports []FlushReport
}

func (r *recordingObserver) ObserveFlush(report FlushReport) {
	r.reports = append(r.reports, report)
}

func TestObserverAndHooks(t *testing.T) {
	obs := &recordingObserver{}
	s, frames := newTestScheduler(WithObserver(obs))

	var hooked []uint64
	remove := s.OnFlush(func(r FlushReport) { hooked = append(hooked, r.Frame) })

	s.QueueUpdate(NewUpdate(nil, func() {}))
	frames.Tick()
	remove()
	s.QueueUpdate(NewUpdate(nil, func() {}))
	frames.Tick()

	if len(obs.reports) != 2 {
		t.Fatalf("observer saw %d reports, want 2", len(obs.reports))
	}
	if obs.reports[1].Frame != 2 || obs.reports[1].Applied != 1 {
		t.Errorf("second report = %+v", obs.reports[1])
	}
	if diff := cmp.Diff([]uint64{1}, hooked); diff != "" {
		t.Errorf("hook frames mismatch (-want +got):\n%s", diff)
	}
}

func TestReentrantFlushIsNoop(t *testing.T) {
	s, _ := newTestScheduler()
	var inner FlushReport
	s.QueueUpdate(NewUpdate(nil, func() { inner = s.Flush() }))
	outer := s.Flush()
	if inner.Frame != 0 {
		t.Errorf("reentrant flush ran: %+v", inner)
	}
	if outer.Applied != 1 {
		t.Errorf("outer Applied = %d, want 1", outer.Applied)
	}
}

func TestPostRunsOnTick(t *testing.T) {
	s, frames := newTestScheduler()
	ran := false
	s.Post(func() { ran = true })
	if ran {
		t.Fatal("posted callback ran synchronously")
	}
	frames.Tick()
	if !ran {
		t.Error("posted callback did not run on Tick")
	}
}

// tickRecover runs one Tick and returns the value it panicked with, if any.
func tickRecover(frames *ManualFrames) (recovered any) {
	defer func() { recovered = recover() }()
	frames.Tick()
	return nil
}

func TestPanickingUpdateRequeuesRestOfRound(t *testing.T) {
	s, frames := newTestScheduler()
	var order []string
	s.QueueUpdate(NewUpdate(&fakeTarget{alive: true, depth: 0}, func() { panic("boom") }))
	s.QueueUpdate(NewUpdate(&fakeTarget{alive: true, depth: 1}, func() { order = append(order, "after") }))
	s.QueueUpdate(NewUpdate(&fakeTarget{alive: true, depth: 2}, func() { order = append(order, "last") }))

	if r := tickRecover(frames); r != "boom" {
		t.Fatalf("Tick recovered %v, want boom", r)
	}
	if s.Flushing() {
		t.Fatal("scheduler still flushing after a panic")
	}
	if s.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", s.Pending())
	}
	if frames.PendingFrames() != 1 {
		t.Fatalf("PendingFrames = %d, want 1", frames.PendingFrames())
	}

	frames.Tick()
	if diff := cmp.Diff([]string{"after", "last"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Later updates are scheduled normally.
	s.QueueUpdate(NewUpdate(nil, func() { order = append(order, "later") }))
	frames.Tick()
	if len(order) != 3 || order[2] != "later" {
		t.Errorf("order = %v, want a later update applied", order)
	}
}

func TestPanickingEffectRequeuesRemainingEffects(t *testing.T) {
	s, frames := newTestScheduler()
	ran := 0
	s.QueueEffect(func() { panic("boom") })
	s.QueueEffect(func() { ran++ })

	if r := tickRecover(frames); r != "boom" {
		t.Fatalf("Tick recovered %v, want boom", r)
	}
	if s.PendingEffects() != 1 {
		t.Fatalf("PendingEffects = %d, want 1", s.PendingEffects())
	}
	frames.Tick()
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
}

func TestDirectFlushCancelsRequestedFrame(t *testing.T) {
	obs := &recordingObserver{}
	s, frames := newTestScheduler(WithObserver(obs))
	hooks := 0
	s.OnFlush(func(FlushReport) { hooks++ })

	s.QueueUpdate(NewUpdate(nil, func() {}))
	s.Flush()
	s.QueueUpdate(NewUpdate(nil, func() {}))
	frames.Tick()

	if len(obs.reports) != 2 {
		t.Fatalf("observer saw %d reports, want 2", len(obs.reports))
	}
	if hooks != 2 {
		t.Errorf("hooks ran %d times, want 2", hooks)
	}
	if obs.reports[1].Frame != 2 || obs.reports[1].Applied != 1 {
		t.Errorf("second report = %+v", obs.reports[1])
	}

	// A stale frame with nothing queued does not flush.
	s.QueueUpdate(NewUpdate(nil, func() {}))
	s.Flush()
	frames.Tick()
	if len(obs.reports) != 3 {
		t.Errorf("observer saw %d reports, want 3", len(obs.reports))
	}
}
