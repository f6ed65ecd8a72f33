package reactive

import (
	"slices"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// dependent is an update closure registered on a signal.
type dependent struct {
	id     uint64
	notify func()
}

// Signal is a value plus the update closures rendered from it. It is only
// used on the UI goroutine.
type Signal[T any] struct {
	sched *scheduler.Scheduler
	value T

	// pending is the composed mutation awaiting the next flush. A non-nil
	// pending means a commit is queued.
	pending func(*T)

	dependents []dependent
	nextID     uint64
}

// New creates a signal with no dependents.
func New[T any](sched *scheduler.Scheduler, initial T) *Signal[T] {
	return &Signal[T]{sched: sched, value: initial}
}

// Read returns the read-only view of s.
func (s *Signal[T]) Read() ReadSignal[T] { return ReadSignal[T]{s: s} }

// Write returns the write handle of s.
func (s *Signal[T]) Write() Setter[T] { return Setter[T]{s: s} }

// Dependents returns the number of registered update closures.
func (s *Signal[T]) Dependents() int { return len(s.dependents) }

// HasPending reports whether a mutation is waiting for the next flush.
func (s *Signal[T]) HasPending() bool { return s.pending != nil }

func (s *Signal[T]) subscribe(notify func()) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.dependents = append(s.dependents, dependent{id: id, notify: notify})
	return func() {
		s.dependents = slices.DeleteFunc(s.dependents, func(d dependent) bool {
			return d.id == id
		})
	}
}

func (s *Signal[T]) edit(fn func(*T)) {
	if prev := s.pending; prev != nil {
		s.pending = func(v *T) {
			prev(v)
			fn(v)
		}
		return
	}
	s.pending = fn
	s.sched.QueueUpdate(scheduler.NewUpdate(nil, s.applyPending))
}

// applyPending commits the pending mutation and notifies dependents in
// registration order. It is only called by the update queued in edit.
func (s *Signal[T]) applyPending() {
	fn := s.pending
	if fn == nil {
		errors.Fatal("E001", "%T", s.value)
	}
	s.pending = nil
	fn(&s.value)

	for _, d := range slices.Clone(s.dependents) {
		d.notify()
	}
}

// =============================================================================
// Setter
// =============================================================================

// Setter is the write handle of a Signal.
type Setter[T any] struct {
	s *Signal[T]
}

// Set replaces the value on the next flush.
func (w Setter[T]) Set(v T) {
	w.s.edit(func(p *T) { *p = v })
}

// Edit mutates the value in place on the next flush. Edits issued before
// the flush are applied in call order.
func (w Setter[T]) Edit(fn func(*T)) {
	w.s.edit(fn)
}

// Map replaces the value with fn of the value on the next flush.
func (w Setter[T]) Map(fn func(T) T) {
	w.s.edit(func(p *T) { *p = fn(*p) })
}

// =============================================================================
// ReadSignal
// =============================================================================

// ReadSignal is the read-only view of a Signal.
type ReadSignal[T any] struct {
	s *Signal[T]
}

// Get returns the committed value.
func (r ReadSignal[T]) Get() T { return r.s.value }

// Subscribe registers fn to run with the committed value after each
// commit, during the flush. The returned function unregisters it.
func (r ReadSignal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s := r.s
	return s.subscribe(func() { fn(s.value) })
}

// With returns an Element rendered by gen from the current value and
// regenerated by gen after every commit. The first render is synchronous.
// Regeneration replaces the whole subtree and tears the old one down.
func (r ReadSignal[T]) With(gen func(T) *element.Element) *element.Element {
	s := r.s
	region := element.NewRegion(gen(s.value))

	queued := false
	regenerate := scheduler.NewUpdate(region, func() {
		queued = false
		region.Replace(gen(s.value))
	})
	unsubscribe := s.subscribe(func() {
		if queued {
			return
		}
		queued = true
		s.sched.QueueUpdate(regenerate)
	})
	region.Owner().OnCleanup(unsubscribe)
	return region.Element()
}

// Optional returns dynamic content for a child group. gen may return nil
// to leave the group empty.
func (r ReadSignal[T]) Optional(gen func(T) *element.Element) element.Dynamic {
	s := r.s
	return element.DynamicFunc(func(slot *element.Slot) {
		render := func() {
			if el := gen(s.value); el != nil {
				slot.Set(el)
			} else {
				slot.Clear()
			}
		}
		render()

		queued := false
		update := scheduler.NewUpdate(slot, func() {
			queued = false
			render()
		})
		slot.OnCleanup(s.subscribe(func() {
			if queued {
				return
			}
			queued = true
			s.sched.QueueUpdate(update)
		}))
	})
}

// Text returns a text Element showing format of the value.
func Text[T any](env *element.Env, r ReadSignal[T], format func(T) string) *element.Element {
	return r.With(func(v T) *element.Element {
		return env.Text(format(v))
	})
}
