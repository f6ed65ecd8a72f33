package element

// Owner holds everything that must be released when a node is torn down:
// merged child owners, event callbacks, spawned tasks and cleanups.
//
// Owners form a tree mirroring the element tree. Dispose releases the
// subtree exactly once; a second call is a no-op, including calls made
// reentrantly from a cleanup.
type Owner struct {
	children []*Owner
	events   []*EventCallback
	tasks    []*Task
	cleanups []func()
	disposed bool
}

// NewOwner creates an empty Owner.
func NewOwner() *Owner {
	return &Owner{}
}

// Disposed reports whether Dispose has been called.
func (o *Owner) Disposed() bool {
	return o.disposed
}

// Adopt makes child part of o, so disposing o disposes child. Adopting into
// a disposed owner disposes child immediately.
func (o *Owner) Adopt(child *Owner) {
	if child == nil || child == o {
		return
	}
	if o.disposed {
		child.Dispose()
		return
	}
	o.children = append(o.children, child)
}

// OnCleanup registers fn to run on Dispose. On a disposed owner fn runs
// immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) addEvent(cb *EventCallback) {
	o.events = append(o.events, cb)
}

func (o *Owner) addTask(t *Task) {
	o.tasks = append(o.tasks, t)
}

// Dispose releases all resources. Children are disposed in reverse order,
// then event callbacks are unregistered, tasks cancelled and cleanups run
// in reverse registration order.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	events := o.events
	o.events = nil
	for _, cb := range events {
		cb.remove()
	}

	tasks := o.tasks
	o.tasks = nil
	for _, t := range tasks {
		t.Cancel()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
