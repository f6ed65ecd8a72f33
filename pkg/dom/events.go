package dom

import "slices"

// ListenerID identifies a registered event listener.
type ListenerID uint64

// Event is dispatched to listeners registered on a node and its ancestors.
type Event struct {
	// Type is the event name, e.g. "click".
	Type string

	// Target is the node the event was dispatched on.
	Target *Node

	// CurrentTarget is the node whose listener is being invoked.
	CurrentTarget *Node

	// Data carries an event payload, e.g. an input value.
	Data any
}

// Listener handles an event.
type Listener func(Event)

type listenerEntry struct {
	id   ListenerID
	name string
	fn   Listener
}

// AddEventListener registers fn for events named name on n.
func (n *Node) AddEventListener(name string, fn Listener) ListenerID {
	n.doc.nextListener++
	id := n.doc.nextListener
	n.listeners = append(n.listeners, listenerEntry{id: id, name: name, fn: fn})
	return id
}

// RemoveEventListener unregisters the listener with the given id.
// Returns false if it was not registered on n.
func (n *Node) RemoveEventListener(id ListenerID) bool {
	for i, l := range n.listeners {
		if l.id == id {
			n.listeners = slices.Delete(n.listeners, i, i+1)
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered on n for name,
// or for all events when name is empty.
func (n *Node) ListenerCount(name string) int {
	if name == "" {
		return len(n.listeners)
	}
	count := 0
	for _, l := range n.listeners {
		if l.name == name {
			count++
		}
	}
	return count
}

// Dispatch delivers ev to the listeners on n and then bubbles it through
// n's ancestors. Returns the number of listeners invoked.
func (n *Node) Dispatch(ev Event) int {
	ev.Target = n
	invoked := 0
	for cur := n; cur != nil; cur = cur.parent {
		// Listeners may add or remove listeners while running.
		entries := slices.Clone(cur.listeners)
		ev.CurrentTarget = cur
		for _, l := range entries {
			if l.name == ev.Type {
				l.fn(ev)
				invoked++
			}
		}
	}
	return invoked
}
