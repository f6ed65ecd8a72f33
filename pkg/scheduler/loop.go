package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a running loop.
	ErrLoopAlreadyRunning = errors.New("scheduler: loop is already running")

	// ErrLoopTerminated is returned when a stopped loop is used.
	ErrLoopTerminated = errors.New("scheduler: loop has been terminated")
)

const postBuffer = 256

// Loop is a FrameSource that owns the UI goroutine. Paint opportunities are
// delivered by a ticker at the configured frame rate; posted callbacks run
// between frames.
type Loop struct {
	interval time.Duration
	logger   *slog.Logger

	posted chan func()
	done   chan struct{}

	mu     sync.Mutex
	frames []func()

	running    atomic.Bool
	terminated atomic.Bool
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used to report recovered panics.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a Loop delivering frameRate paint opportunities per
// second. A non-positive frameRate defaults to 60.
func NewLoop(frameRate int, opts ...LoopOption) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	l := &Loop{
		interval: time.Second / time.Duration(frameRate),
		logger:   slog.Default(),
		posted:   make(chan func(), postBuffer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the time between paint opportunities.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// RequestFrame implements FrameSource.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames = append(l.frames, fn)
}

// Post implements FrameSource. Callbacks posted after the loop stopped are
// discarded.
func (l *Loop) Post(fn func()) {
	if l.terminated.Load() {
		return
	}
	select {
	case l.posted <- fn:
	case <-l.done:
	}
}

// Do runs fn on the UI goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.terminated.Load() {
		return ErrLoopTerminated
	}
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the loop until ctx is cancelled. It returns nil on
// cancellation.
func (l *Loop) Run(ctx context.Context) error {
	if l.terminated.Load() {
		return ErrLoopTerminated
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer func() {
		l.terminated.Store(true)
		close(l.done)
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.posted:
			l.safeRun("post", fn)
		case <-ticker.C:
			l.runFrames()
		}
	}
}

func (l *Loop) runFrames() {
	l.mu.Lock()
	frames := l.frames
	l.frames = nil
	l.mu.Unlock()

	for _, fn := range frames {
		l.safeRun("frame", fn)
	}
}

// safeRun isolates a panicking callback so the loop keeps running.
func (l *Loop) safeRun(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("callback panicked", "kind", kind, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
