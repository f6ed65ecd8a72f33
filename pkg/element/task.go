package element

import "context"

// TaskFunc is the body of a spawned task. It runs on its own goroutine and
// should return when ctx is cancelled. A non-nil result is run on the UI
// goroutine after the task returns, unless the task was cancelled first.
type TaskFunc func(ctx context.Context) (apply func())

// Task is an asynchronous job tied to an element's lifetime.
type Task struct {
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	cancelled bool
	env       *Env
}

func spawnTask(env *Env, fn TaskFunc) *Task {
	ctx, cancel := context.WithCancel(env.taskCtx)
	t := &Task{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		env:    env,
	}
	env.observer.TaskStarted()

	go func() {
		defer close(t.done)
		apply := fn(ctx)
		if apply == nil || ctx.Err() != nil {
			return
		}
		env.sched.Post(func() {
			if t.cancelled || ctx.Err() != nil {
				return
			}
			apply()
		})
	}()
	return t
}

// Done is closed when the task body has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancelled reports whether Cancel has been called.
func (t *Task) Cancelled() bool { return t.cancelled }

// Cancel cancels the task's context. Only the first call has an effect.
func (t *Task) Cancel() {
	if t.cancelled {
		return
	}
	t.cancelled = true
	t.cancel()
	t.env.observer.TaskCancelled()
}
