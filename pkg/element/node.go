package element

import (
	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// Kind is the Node variant discriminator.
type Kind uint8

const (
	KindNone Kind = iota
	KindElement
	KindText
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "None"
	}
}

// Node is a handle to either a DomElement or a DomText. The zero Node is
// empty.
type Node struct {
	elem *DomElement
	text *DomText
}

// ElementNode wraps e as a Node.
func ElementNode(e *DomElement) Node { return Node{elem: e} }

// TextNode wraps t as a Node.
func TextNode(t *DomText) Node { return Node{text: t} }

// Kind returns the variant held by n.
func (n Node) Kind() Kind {
	switch {
	case n.elem != nil:
		return KindElement
	case n.text != nil:
		return KindText
	default:
		return KindNone
	}
}

// IsZero reports whether n is empty.
func (n Node) IsZero() bool { return n.elem == nil && n.text == nil }

// Element returns the element handle, or nil.
func (n Node) Element() *DomElement { return n.elem }

// Text returns the text handle, or nil.
func (n Node) Text() *DomText { return n.text }

// DomNode returns the live node, or nil for the zero Node.
func (n Node) DomNode() *dom.Node {
	switch {
	case n.elem != nil:
		return n.elem.node
	case n.text != nil:
		return n.text.node
	default:
		return nil
	}
}

func (n Node) env() *Env {
	switch {
	case n.elem != nil:
		return n.elem.env
	case n.text != nil:
		return n.text.env
	default:
		return nil
	}
}

// Adopt rebinds the handle to an existing live node.
func (n Node) Adopt(existing *dom.Node) {
	switch {
	case n.elem != nil:
		n.elem.Adopt(existing)
	case n.text != nil:
		n.text.Adopt(existing)
	}
}

// Adopter is implemented by handles that can be rebound to an existing
// node. The handle is stored as the node's data.
type Adopter interface {
	Adopt(existing *dom.Node)
}

func must(op string, err error) {
	if err != nil {
		panic(errors.New("E004").WithDetail("%s", op).Wrap(err))
	}
}

// =============================================================================
// DomElement
// =============================================================================

// DomElement is a shared handle to a live element and the resources owned
// on its behalf.
type DomElement struct {
	env       *Env
	node      *dom.Node
	owner     *Owner
	callbacks []*EventCallback

	// held are effects waiting for the element to be connected.
	held []func(*dom.Node)
}

var _ scheduler.Target = (*DomElement)(nil)

// NewElement creates a detached element.
func (env *Env) NewElement(tag string) *DomElement {
	return env.wrapElement(env.doc.CreateElement(tag))
}

// NewElementNS creates a detached element in a namespace.
func (env *Env) NewElementNS(namespace, tag string) *DomElement {
	return env.wrapElement(env.doc.CreateElementNS(namespace, tag))
}

func (env *Env) wrapElement(node *dom.Node) *DomElement {
	e := &DomElement{env: env, node: node, owner: NewOwner()}
	node.SetData(e)
	return e
}

// DomNode returns the live node.
func (e *DomElement) DomNode() *dom.Node { return e.node }

// Owner returns the resources owned by the element.
func (e *DomElement) Owner() *Owner { return e.owner }

// Alive implements scheduler.Target.
func (e *DomElement) Alive() bool { return !e.owner.Disposed() }

// Depth implements scheduler.Target.
func (e *DomElement) Depth() int { return e.node.Depth() }

// Adopt rebinds e to existing, moving its listeners there.
func (e *DomElement) Adopt(existing *dom.Node) {
	if existing == e.node {
		return
	}
	if e.node.Data() == e {
		e.node.SetData(nil)
	}
	for _, cb := range e.callbacks {
		cb.rebind(existing)
	}
	e.node = existing
	existing.SetData(e)
}

// --- synchronous mutations ---

// AppendChildNow appends child immediately.
func (e *DomElement) AppendChildNow(child Node) {
	must("append child", e.node.AppendChild(child.DomNode()))
	e.env.ReleaseEffects(child.DomNode())
}

// InsertChildBeforeNow inserts child before next immediately. A zero next
// appends.
func (e *DomElement) InsertChildBeforeNow(child, next Node) {
	must("insert child", e.node.InsertBefore(child.DomNode(), next.DomNode()))
	e.env.ReleaseEffects(child.DomNode())
}

// ReplaceChildNow replaces oldChild with newChild immediately.
func (e *DomElement) ReplaceChildNow(newChild, oldChild Node) {
	must("replace child", e.node.ReplaceChild(newChild.DomNode(), oldChild.DomNode()))
	e.env.ReleaseEffects(newChild.DomNode())
}

// RemoveChildNow removes child immediately.
func (e *DomElement) RemoveChildNow(child Node) {
	must("remove child", e.node.RemoveChild(child.DomNode()))
}

// ClearChildrenNow removes all children immediately.
func (e *DomElement) ClearChildrenNow() {
	e.node.ClearChildren()
}

// --- deferred mutations ---

func (e *DomElement) queue(apply func()) {
	e.env.sched.QueueUpdate(scheduler.NewUpdate(e, apply))
}

// AppendChild appends child on the next flush.
func (e *DomElement) AppendChild(child Node) {
	e.queue(func() { e.AppendChildNow(child) })
}

// InsertChildBefore inserts child before next on the next flush.
func (e *DomElement) InsertChildBefore(child, next Node) {
	e.queue(func() { e.InsertChildBeforeNow(child, next) })
}

// ReplaceChild replaces oldChild with newChild on the next flush.
func (e *DomElement) ReplaceChild(newChild, oldChild Node) {
	e.queue(func() { e.ReplaceChildNow(newChild, oldChild) })
}

// RemoveChild removes child on the next flush.
func (e *DomElement) RemoveChild(child Node) {
	e.queue(func() { e.RemoveChildNow(child) })
}

// ClearChildren removes all children on the next flush.
func (e *DomElement) ClearChildren() {
	e.queue(e.ClearChildrenNow)
}

// --- attributes ---

// SetAttribute sets an attribute immediately.
func (e *DomElement) SetAttribute(name, value string) {
	e.node.SetAttribute(name, value)
}

// RemoveAttribute removes an attribute immediately.
func (e *DomElement) RemoveAttribute(name string) {
	e.node.RemoveAttribute(name)
}

// AddClass adds a class immediately.
func (e *DomElement) AddClass(name string) {
	e.node.AddClass(name)
}

// RemoveClass removes a class immediately.
func (e *DomElement) RemoveClass(name string) {
	e.node.RemoveClass(name)
}

// --- resources ---

// On registers an event listener owned by e.
func (e *DomElement) On(name string, fn dom.Listener) *EventCallback {
	cb := newEventCallback(e.env, e.node, name, fn)
	e.callbacks = append(e.callbacks, cb)
	e.owner.addEvent(cb)
	return cb
}

// Spawn starts a task owned by e. The task is cancelled when e is torn
// down.
func (e *DomElement) Spawn(fn TaskFunc) *Task {
	t := spawnTask(e.env, fn)
	e.owner.addTask(t)
	return t
}

// Effect runs fn with the live node after the structural updates of the
// next flush have been applied. If e is not part of the document by then,
// fn waits until e is attached or hydrated. It is skipped if e was torn
// down.
func (e *DomElement) Effect(fn func(*dom.Node)) {
	e.env.sched.QueueEffect(func() { e.runEffect(fn) })
}

func (e *DomElement) runEffect(fn func(*dom.Node)) {
	if !e.Alive() {
		return
	}
	if !e.node.IsConnected() {
		e.hold(fn)
		return
	}
	fn(e.node)
}

func (e *DomElement) hold(fn func(*dom.Node)) {
	if len(e.held) == 0 {
		e.env.held++
		e.owner.OnCleanup(e.dropHeld)
	}
	e.held = append(e.held, fn)
}

func (e *DomElement) dropHeld() {
	if len(e.held) > 0 {
		e.held = nil
		e.env.held--
	}
}

// releaseHeld queues the held effects again.
func (e *DomElement) releaseHeld() {
	held := e.held
	e.dropHeld()
	for _, fn := range held {
		e.Effect(fn)
	}
}

// StoreChild merges a child's resources into e.
func (e *DomElement) StoreChild(child *Owner) {
	e.owner.Adopt(child)
}

// Teardown releases all resources owned by e.
func (e *DomElement) Teardown() {
	e.owner.Dispose()
}

// =============================================================================
// DomText
// =============================================================================

// DomText is a shared handle to a live text node.
type DomText struct {
	env   *Env
	node  *dom.Node
	owner *Owner
}

var _ scheduler.Target = (*DomText)(nil)

// NewText creates a detached text node.
func (env *Env) NewText(text string) *DomText {
	t := &DomText{env: env, node: env.doc.CreateTextNode(text), owner: NewOwner()}
	t.node.SetData(t)
	return t
}

// DomNode returns the live node.
func (t *DomText) DomNode() *dom.Node { return t.node }

// Owner returns the owner whose disposal ends the text's lifetime.
func (t *DomText) Owner() *Owner { return t.owner }

// Alive implements scheduler.Target.
func (t *DomText) Alive() bool { return !t.owner.Disposed() }

// Depth implements scheduler.Target.
func (t *DomText) Depth() int { return t.node.Depth() }

// Adopt rebinds t to an existing node.
func (t *DomText) Adopt(existing *dom.Node) {
	if existing == t.node {
		return
	}
	if t.node.Data() == t {
		t.node.SetData(nil)
	}
	t.node = existing
	existing.SetData(t)
}

// SetTextNow replaces the text immediately.
func (t *DomText) SetTextNow(text string) {
	t.node.SetText(text)
}

// SetText replaces the text on the next flush.
func (t *DomText) SetText(text string) {
	t.env.sched.QueueUpdate(scheduler.NewUpdate(t, func() { t.SetTextNow(text) }))
}
