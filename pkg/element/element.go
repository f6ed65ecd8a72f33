package element

import (
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// Element is a node together with everything that must live as long as it
// is mounted. It is exclusively owned by its parent or by a mount root.
//
// The node of a derived Element changes each time it is regenerated, so
// callers resolve it with Node at the point of use instead of caching it.
type Element struct {
	node  Node
	dyn   func() Node
	owner *Owner
}

// FromElement wraps a DomElement.
func FromElement(e *DomElement) *Element {
	return &Element{node: ElementNode(e), owner: e.owner}
}

// FromText wraps a DomText.
func FromText(t *DomText) *Element {
	return &Element{node: TextNode(t), owner: t.owner}
}

// Text creates a text Element.
func (env *Env) Text(text string) *Element {
	return FromText(env.NewText(text))
}

// Node returns the node currently representing e.
func (e *Element) Node() Node {
	if e.dyn != nil {
		return e.dyn()
	}
	return e.node
}

// DomNode returns the live node currently representing e.
func (e *Element) DomNode() *dom.Node {
	return e.Node().DomNode()
}

// Owner returns the resources owned by e.
func (e *Element) Owner() *Owner { return e.owner }

// Alive reports whether e has not been torn down.
func (e *Element) Alive() bool { return !e.owner.Disposed() }

// Teardown releases every resource owned by e. Only the first call has an
// effect.
func (e *Element) Teardown() { e.owner.Dispose() }

// =============================================================================
// Region
// =============================================================================

// Region is a place in the tree whose content is replaced wholesale on
// regeneration. Its facade Element always resolves to the current
// content, so parents and child groups holding the facade stay valid
// across replacements.
type Region struct {
	current *Element
	owner   *Owner
	facade  *Element
}

var _ scheduler.Target = (*Region)(nil)

// NewRegion creates a Region showing initial.
func NewRegion(initial *Element) *Region {
	r := &Region{current: initial, owner: NewOwner()}
	r.facade = &Element{
		dyn:   func() Node { return r.current.Node() },
		owner: r.owner,
	}
	r.owner.OnCleanup(func() { r.current.Teardown() })
	return r
}

// Element returns the facade Element.
func (r *Region) Element() *Element { return r.facade }

// Current returns the Element the region currently shows.
func (r *Region) Current() *Element { return r.current }

// Owner returns the region's owner. Subscriptions tied to the region are
// registered here.
func (r *Region) Owner() *Owner { return r.owner }

// Alive implements scheduler.Target.
func (r *Region) Alive() bool { return !r.owner.Disposed() }

// Depth implements scheduler.Target.
func (r *Region) Depth() int {
	if n := r.current.DomNode(); n != nil {
		return n.Depth()
	}
	return 0
}

// Replace swaps the current content for next immediately and tears the old
// content down. If the region is detached only the bookkeeping changes.
func (r *Region) Replace(next *Element) {
	old := r.current
	if old == next {
		return
	}
	oldNode := old.DomNode()
	r.current = next
	if parent := oldNode.Parent(); parent != nil {
		must("replace region", parent.ReplaceChild(next.DomNode(), oldNode))
		if env := next.Node().env(); env != nil {
			env.ReleaseEffects(next.DomNode())
		}
	}
	old.Teardown()
}
