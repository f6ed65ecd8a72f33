package element

import "github.com/vango-dev/ripple/pkg/dom"

// Builder constructs an element synchronously. Everything added through a
// Builder is visible in the tree as soon as the call returns.
type Builder struct {
	env    *Env
	elem   *DomElement
	groups *ChildGroups
}

// Tag starts building an element.
func (env *Env) Tag(tag string) *Builder {
	return env.newBuilder(env.NewElement(tag))
}

// TagNS starts building an element in a namespace.
func (env *Env) TagNS(namespace, tag string) *Builder {
	return env.newBuilder(env.NewElementNS(namespace, tag))
}

func (env *Env) newBuilder(e *DomElement) *Builder {
	return &Builder{env: env, elem: e, groups: NewChildGroups(e)}
}

// Attribute sets an attribute.
func (b *Builder) Attribute(name, value string) *Builder {
	b.elem.SetAttribute(name, value)
	return b
}

// ID sets the id attribute.
func (b *Builder) ID(id string) *Builder {
	return b.Attribute("id", id)
}

// Class adds classes.
func (b *Builder) Class(names ...string) *Builder {
	for _, name := range names {
		b.elem.AddClass(name)
	}
	return b
}

// Child appends child and takes ownership of it.
func (b *Builder) Child(child *Element) *Builder {
	b.groups.AppendNewGroupSync(child)
	b.elem.StoreChild(child.Owner())
	return b
}

// Children appends each child in order.
func (b *Builder) Children(children ...*Element) *Builder {
	for _, c := range children {
		b.Child(c)
	}
	return b
}

// Text appends a text child.
func (b *Builder) Text(text string) *Builder {
	return b.Child(b.env.Text(text))
}

// On registers an event listener.
func (b *Builder) On(name string, fn dom.Listener) *Builder {
	b.elem.On(name, fn)
	return b
}

// Effect runs fn with the live node after the next flush in which the
// element is part of the document.
func (b *Builder) Effect(fn func(*dom.Node)) *Builder {
	b.elem.Effect(fn)
	return b
}

// Spawn starts a task tied to the element's lifetime.
func (b *Builder) Spawn(fn TaskFunc) *Builder {
	b.elem.Spawn(fn)
	return b
}

// OnCleanup registers fn to run when the element is torn down.
func (b *Builder) OnCleanup(fn func()) *Builder {
	b.elem.owner.OnCleanup(fn)
	return b
}

// Dynamic reserves a group for content that changes over time and binds d
// to it.
func (b *Builder) Dynamic(d Dynamic) *Builder {
	slot := NewSlot(b.groups)
	b.elem.StoreChild(slot.owner)
	d.Bind(slot)
	return b
}

// DomElement returns the element under construction.
func (b *Builder) DomElement() *DomElement { return b.elem }

// Build finishes the element.
func (b *Builder) Build() *Element {
	return FromElement(b.elem)
}
