package reactive

import (
	"github.com/vango-dev/ripple/pkg/element"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// List renders one Element per item of a ChangeTrackingVec into a child
// group. After each commit it applies the container's delta to the
// rendered items when the delta follows the last state it rendered, and
// rebuilds every item otherwise.
func List[T any](r ReadSignal[ChangeTrackingVec[T]], render func(T) *element.Element) element.Dynamic {
	return element.DynamicFunc(func(slot *element.Slot) {
		l := &list[T]{
			slot:   slot,
			groups: slot.Groups(),
			render: render,
		}
		l.rebuild(&r.s.value)
		slot.OnCleanup(l.teardown)

		queued := false
		update := scheduler.NewUpdate(slot, func() {
			queued = false
			l.sync(&r.s.value)
		})
		slot.OnCleanup(r.s.subscribe(func() {
			if queued {
				return
			}
			queued = true
			r.s.sched.QueueUpdate(update)
		}))
	})
}

type list[T any] struct {
	slot   *element.Slot
	groups *element.ChildGroups
	render func(T) *element.Element
	items  []*element.Element
	seen   DeltaID
}

func (l *list[T]) parent() *element.DomElement { return l.groups.Parent() }

func (l *list[T]) sync(v *ChangeTrackingVec[T]) {
	d, ok := v.Delta(l.seen)
	if !ok {
		if v.ID() != l.seen {
			l.rebuild(v)
		}
		return
	}
	l.seen = v.ID()

	switch d.Kind {
	case DeltaExtend:
		for _, item := range v.Data()[d.Index:] {
			l.append(l.render(item))
		}
	case DeltaInsert:
		el := l.render(v.At(d.Index))
		if d.Index == len(l.items) {
			l.append(el)
			return
		}
		l.parent().InsertChildBeforeNow(el.Node(), l.items[d.Index].Node())
		l.items = append(l.items[:d.Index], append([]*element.Element{el}, l.items[d.Index:]...)...)
	case DeltaRemove:
		old := l.items[d.Index]
		l.parent().RemoveChildNow(old.Node())
		l.items = append(l.items[:d.Index], l.items[d.Index+1:]...)
		old.Teardown()
	case DeltaSet:
		el := l.render(v.At(d.Index))
		old := l.items[d.Index]
		l.parent().ReplaceChildNow(el.Node(), old.Node())
		l.items[d.Index] = el
		old.Teardown()
	}
	l.markFirst()
}

func (l *list[T]) append(el *element.Element) {
	l.groups.InsertLastChild(l.slot.Index(), el)
	l.items = append(l.items, el)
	l.markFirst()
}

// markFirst records the first item as the group's anchor for the groups in
// front of it.
func (l *list[T]) markFirst() {
	if len(l.items) == 0 {
		l.groups.ClearFirstChild(l.slot.Index())
		return
	}
	l.groups.SetFirstChild(l.slot.Index(), l.items[0])
}

func (l *list[T]) rebuild(v *ChangeTrackingVec[T]) {
	l.teardown()
	for _, item := range v.Data() {
		l.append(l.render(item))
	}
	l.markFirst()
	l.seen = v.ID()
}

func (l *list[T]) teardown() {
	for _, el := range l.items {
		if n := el.DomNode(); n.Parent() != nil {
			l.parent().RemoveChildNow(el.Node())
		}
		el.Teardown()
	}
	l.items = nil
}
