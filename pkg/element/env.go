package element

import (
	"context"

	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// ResourceObserver is notified when resources are acquired and released.
type ResourceObserver interface {
	ListenerAdded()
	ListenerRemoved()
	TaskStarted()
	TaskCancelled()
}

type noopObserver struct{}

func (noopObserver) ListenerAdded()   {}
func (noopObserver) ListenerRemoved() {}
func (noopObserver) TaskStarted()     {}
func (noopObserver) TaskCancelled()   {}

// Env is the document and scheduler that elements are created in.
type Env struct {
	doc      *dom.Document
	sched    *scheduler.Scheduler
	observer ResourceObserver
	taskCtx  context.Context

	// held counts elements with effects waiting for connection.
	held int
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithResourceObserver sets the observer notified of listener and task
// lifetimes.
func WithResourceObserver(o ResourceObserver) EnvOption {
	return func(e *Env) {
		e.observer = o
	}
}

// WithTaskContext sets the parent context of every spawned task.
func WithTaskContext(ctx context.Context) EnvOption {
	return func(e *Env) {
		e.taskCtx = ctx
	}
}

// NewEnv creates an Env.
func NewEnv(doc *dom.Document, sched *scheduler.Scheduler, opts ...EnvOption) *Env {
	e := &Env{
		doc:      doc,
		sched:    sched,
		observer: noopObserver{},
		taskCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the document nodes are created in.
func (e *Env) Document() *dom.Document { return e.doc }

// Scheduler returns the scheduler deferred mutations are queued on.
func (e *Env) Scheduler() *scheduler.Scheduler { return e.sched }

// ReleaseEffects queues the waiting effects of every element in the subtree
// rooted at n, if n is part of the document. Callers that attach nodes
// without going through a DomElement call it afterwards.
func (e *Env) ReleaseEffects(n *dom.Node) {
	if e.held == 0 || n == nil || !n.IsConnected() {
		return
	}
	dom.Walk(n, func(c *dom.Node) bool {
		if el, ok := c.Data().(*DomElement); ok && len(el.held) > 0 {
			el.releaseHeld()
		}
		return e.held > 0
	})
}
