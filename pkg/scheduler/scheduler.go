package scheduler

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/internal/errors"
)

// DefaultMaxRounds bounds the number of rounds a single flush may run.
const DefaultMaxRounds = 64

const tracerName = "github.com/vango-dev/ripple/pkg/scheduler"

// FlushReport summarizes one flush.
type FlushReport struct {
	// Frame is the sequence number of the flush, starting at 1.
	Frame uint64

	// Rounds is the number of update rounds drained.
	Rounds int

	// Applied is the number of updates applied.
	Applied int

	// Dropped is the number of updates discarded because their target was
	// gone by the time they were due.
	Dropped int

	// Effects is the number of effects run.
	Effects int

	// Deferred is the number of updates left for the next frame because the
	// round limit was reached.
	Deferred int

	// Duration is the wall time of the flush.
	Duration time.Duration
}

// Observer receives a report after every flush.
type Observer interface {
	ObserveFlush(FlushReport)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithObserver adds a flush observer, e.g. a metrics collector.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, o)
	}
}

// WithTracer sets the tracer used for flush spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) {
		s.tracer = t
	}
}

// WithMaxRounds bounds the number of rounds per flush.
func WithMaxRounds(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// Scheduler queues updates and effects and applies them on paint
// opportunities. It is not safe for concurrent use; call Post to reach it
// from other goroutines.
type Scheduler struct {
	frames    FrameSource
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []Observer
	maxRounds int

	pending []Update
	effects []func()

	// frameRequested is set between requesting a paint opportunity and
	// receiving it.
	frameRequested bool
	flushing       bool
	frame          uint64

	// frameGen identifies the latest frame request. A callback carrying an
	// older generation was superseded by a direct Flush.
	frameGen uint64

	hooks      map[uint64]func(FlushReport)
	nextHookID uint64
}

// New creates a Scheduler driven by frames.
func New(frames FrameSource, opts ...Option) *Scheduler {
	s := &Scheduler{
		frames:    frames,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		maxRounds: DefaultMaxRounds,
		hooks:     make(map[uint64]func(FlushReport)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frames returns the frame source driving the scheduler.
func (s *Scheduler) Frames() FrameSource {
	return s.frames
}

// Logger returns the scheduler's logger.
func (s *Scheduler) Logger() *slog.Logger {
	return s.logger
}

// QueueUpdate appends u to the pending queue. The first update queued
// after a flush requests a paint opportunity.
func (s *Scheduler) QueueUpdate(u Update) {
	s.pending = append(s.pending, u)
	if len(s.pending) == 1 {
		s.requestFrame()
	}
}

// QueueEffect defers fn until the structural updates of the next flush
// have been applied.
func (s *Scheduler) QueueEffect(fn func()) {
	s.effects = append(s.effects, fn)
	s.requestFrame()
}

// Post runs fn on the scheduler's goroutine. It is safe to call from any
// goroutine.
func (s *Scheduler) Post(fn func()) {
	s.frames.Post(fn)
}

// Pending returns the number of queued updates.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// PendingEffects returns the number of queued effects.
func (s *Scheduler) PendingEffects() int {
	return len(s.effects)
}

// Flushing reports whether a flush is in progress.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

// OnFlush registers fn to run after every flush. The returned function
// removes the hook.
func (s *Scheduler) OnFlush(fn func(FlushReport)) (remove func()) {
	s.nextHookID++
	id := s.nextHookID
	s.hooks[id] = fn
	return func() {
		delete(s.hooks, id)
	}
}

func (s *Scheduler) requestFrame() {
	if s.frameRequested || s.flushing {
		return
	}
	s.frameRequested = true
	s.frameGen++
	gen := s.frameGen
	s.frames.RequestFrame(func() { s.onFrame(gen) })
}

func (s *Scheduler) onFrame(gen uint64) {
	if !s.frameRequested || gen != s.frameGen {
		return
	}
	s.Flush()
}

// Flush applies all pending updates and then all pending effects. It is
// called on paint opportunities and may be called directly to flush
// synchronously. A reentrant call is a no-op.
//
// If an update or effect panics, the flush is aborted and the panic
// propagates. Work not yet applied stays queued for the next frame.
func (s *Scheduler) Flush() FlushReport {
	if s.flushing {
		return FlushReport{}
	}
	s.frameRequested = false
	s.flushing = true
	defer func() {
		if s.flushing {
			s.flushing = false
			if len(s.pending) > 0 || len(s.effects) > 0 {
				s.requestFrame()
			}
		}
	}()

	start := time.Now()
	_, span := s.tracer.Start(context.Background(), "ripple.flush")
	defer span.End()

	s.frame++
	report := FlushReport{Frame: s.frame}

	for len(s.pending) > 0 {
		if report.Rounds == s.maxRounds {
			report.Deferred = len(s.pending)
			err := errors.New("E005").WithDetail("%d rounds, %d updates deferred", report.Rounds, report.Deferred)
			s.logger.Warn("flush round limit reached", "error", err, "frame", report.Frame)
			span.SetStatus(codes.Error, err.Error())
			break
		}
		report.Rounds++

		batch := s.pending
		s.pending = nil
		applied, dropped := s.applyRound(batch)
		report.Applied += applied
		report.Dropped += dropped
	}

	report.Effects = s.runEffects()

	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int64("ripple.frame", int64(report.Frame)),
		attribute.Int("ripple.rounds", report.Rounds),
		attribute.Int("ripple.applied", report.Applied),
		attribute.Int("ripple.dropped", report.Dropped),
		attribute.Int("ripple.effects", report.Effects),
	)

	s.flushing = false
	if len(s.pending) > 0 || len(s.effects) > 0 {
		s.requestFrame()
	}

	s.logger.Debug("flush",
		"frame", report.Frame,
		"rounds", report.Rounds,
		"applied", report.Applied,
		"dropped", report.Dropped,
		"effects", report.Effects,
		"duration", report.Duration,
	)
	for _, o := range s.observers {
		o.ObserveFlush(report)
	}
	for _, id := range s.hookIDs() {
		if fn, ok := s.hooks[id]; ok {
			fn(report)
		}
	}
	return report
}

func (s *Scheduler) hookIDs() []uint64 {
	ids := make([]uint64, 0, len(s.hooks))
	for id := range s.hooks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type keyedUpdate struct {
	depth  int
	update Update
}

// applyRound applies one drained batch in depth order. If an update
// panics, the updates after it go back to the front of the queue.
func (s *Scheduler) applyRound(batch []Update) (applied, dropped int) {
	keyed := make([]keyedUpdate, 0, len(batch))
	for _, u := range batch {
		if !u.Alive() {
			dropped++
			continue
		}
		keyed = append(keyed, keyedUpdate{depth: u.Depth(), update: u})
	}
	slices.SortStableFunc(keyed, func(a, b keyedUpdate) int {
		return cmp.Compare(a.depth, b.depth)
	})

	i := 0
	defer func() {
		if i >= len(keyed) {
			return
		}
		rest := make([]Update, 0, len(keyed)-i-1+len(s.pending))
		for _, k := range keyed[i+1:] {
			rest = append(rest, k.update)
		}
		s.pending = append(rest, s.pending...)
	}()

	for ; i < len(keyed); i++ {
		k := keyed[i]
		// An ancestor applied earlier in this round may have discarded the
		// target.
		if !k.update.Alive() {
			dropped++
			continue
		}
		k.update.Apply()
		applied++
	}
	return applied, dropped
}

// runEffects runs the queued effects. If one panics, the effects after it
// go back to the front of the effect queue.
func (s *Scheduler) runEffects() (ran int) {
	effects := s.effects
	s.effects = nil

	i := 0
	defer func() {
		if i < len(effects) {
			s.effects = append(slices.Clone(effects[i+1:]), s.effects...)
		}
	}()

	for ; i < len(effects); i++ {
		effects[i]()
		ran++
	}
	return ran
}
