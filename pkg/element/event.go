package element

import "github.com/vango-dev/ripple/pkg/dom"

// EventCallback is a listener registration owned by an element. It is
// registered on creation and unregistered exactly once on teardown.
type EventCallback struct {
	env     *Env
	node    *dom.Node
	name    string
	fn      dom.Listener
	id      dom.ListenerID
	removed bool
}

func newEventCallback(env *Env, node *dom.Node, name string, fn dom.Listener) *EventCallback {
	cb := &EventCallback{env: env, node: node, name: name, fn: fn}
	cb.id = node.AddEventListener(name, fn)
	env.observer.ListenerAdded()
	return cb
}

// Name returns the event name.
func (cb *EventCallback) Name() string { return cb.name }

// Removed reports whether the callback has been unregistered.
func (cb *EventCallback) Removed() bool { return cb.removed }

func (cb *EventCallback) remove() {
	if cb.removed {
		return
	}
	cb.removed = true
	cb.node.RemoveEventListener(cb.id)
	cb.env.observer.ListenerRemoved()
}

// rebind moves the registration to node.
func (cb *EventCallback) rebind(node *dom.Node) {
	if cb.removed || cb.node == node {
		return
	}
	cb.node.RemoveEventListener(cb.id)
	cb.node = node
	cb.id = node.AddEventListener(cb.name, cb.fn)
}
