package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func startLoop(t *testing.T, l *Loop) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	return func() {
		cancelCtx()
		if err := <-errc; err != nil {
			t.Errorf("Run returned %v", err)
		}
	}
}

func TestLoopDeliversFramesAndPosts(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop(200)
	stop := startLoop(t, l)
	defer stop()

	s := New(l, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	applied := make(chan struct{})
	err := l.Do(context.Background(), func() {
		s.QueueUpdate(NewUpdate(nil, func() { close(applied) }))
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-applied:
	case <-time.After(2 * time.Second):
		t.Fatal("update was not applied on a frame")
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop(100, WithLoopLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	stop := startLoop(t, l)
	defer stop()

	l.Post(func() { panic("boom") })
	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("loop stopped after a panicking callback")
	}
}

func TestLoopRunTwice(t *testing.T) {
	l := NewLoop(100)
	stop := startLoop(t, l)

	// Wait until the loop is serving.
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, ErrLoopAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrLoopAlreadyRunning", err)
	}
	stop()

	if err := l.Run(context.Background()); !errors.Is(err, ErrLoopTerminated) {
		t.Errorf("Run after stop = %v, want ErrLoopTerminated", err)
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopTerminated) {
		t.Errorf("Do after stop = %v, want ErrLoopTerminated", err)
	}
}

func TestLoopDoHonorsContext(t *testing.T) {
	l := NewLoop(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The loop is not running, so only the context can end the wait.
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.Canceled) {
		t.Errorf("Do = %v, want context.Canceled", err)
	}
}
