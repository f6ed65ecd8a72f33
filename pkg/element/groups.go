package element

import (
	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// ChildGroups lets one parent host several independently updating regions
// while keeping them in declaration order.
//
// Each dynamic group owns a slot holding at most one Element. Static
// content appended directly after a dynamic group is recorded too, so the
// group in front of it has an anchor to insert before. Insertion points
// are always computed by scanning forward from the slot, never cached.
type ChildGroups struct {
	parent        *DomElement
	children      []*Element
	lastIsDynamic bool
	groupCount    int
}

// NewChildGroups creates the group registry for parent.
func NewChildGroups(parent *DomElement) *ChildGroups {
	return &ChildGroups{parent: parent}
}

// Parent returns the element hosting the groups.
func (g *ChildGroups) Parent() *DomElement { return g.parent }

// Len returns the number of recorded slots.
func (g *ChildGroups) Len() int { return len(g.children) }

// GroupCount returns the number of groups, static or dynamic.
func (g *ChildGroups) GroupCount() int { return g.groupCount }

// IsSingleGroup reports whether the parent hosts exactly one group, in
// which case the group may manage the parent's children wholesale.
func (g *ChildGroups) IsSingleGroup() bool { return g.groupCount == 1 }

// NewGroup reserves an empty dynamic slot at the end and returns its index.
func (g *ChildGroups) NewGroup() int {
	index := len(g.children)
	g.children = append(g.children, nil)
	g.lastIsDynamic = true
	g.groupCount++
	return index
}

// Get returns the content of a slot, or nil if it is empty.
func (g *ChildGroups) Get(index int) *Element {
	g.check(index)
	return g.children[index]
}

// AppendNewGroupSync appends static content immediately. It is recorded
// only when it follows a dynamic group, where it closes that group.
func (g *ChildGroups) AppendNewGroupSync(child *Element) {
	if g.lastIsDynamic {
		g.children = append(g.children, child)
	}
	g.lastIsDynamic = false
	g.groupCount++
	g.parent.AppendChildNow(child.Node())
}

// NextGroupNode returns the node of the first occupied slot after index,
// or the zero Node if there is none.
func (g *ChildGroups) NextGroupNode(index int) Node {
	g.check(index)
	for _, c := range g.children[index+1:] {
		if c != nil {
			return c.Node()
		}
	}
	return Node{}
}

// InsertOnlyChild places child in an empty slot. Inserting into an
// occupied slot is a contract violation.
func (g *ChildGroups) InsertOnlyChild(index int, child *Element) {
	g.check(index)
	if g.children[index] != nil {
		errors.Fatal("E003", "slot %d", index)
	}
	g.insert(index, child)
}

// UpsertOnlyChild places child in a slot, detaching any previous occupant
// first. It reports whether there was a previous occupant.
func (g *ChildGroups) UpsertOnlyChild(index int, child *Element) bool {
	g.check(index)
	existed := false
	if old := g.children[index]; old != nil {
		existed = true
		g.parent.RemoveChildNow(old.Node())
		g.children[index] = nil
	}
	g.insert(index, child)
	return existed
}

// RemoveChild detaches and clears a slot. An empty slot is left as is.
func (g *ChildGroups) RemoveChild(index int) {
	g.check(index)
	old := g.children[index]
	if old == nil {
		return
	}
	g.parent.RemoveChildNow(old.Node())
	g.children[index] = nil
}

// InsertLastChild inserts child at the end of a group holding several
// nodes, before the next occupied group. The slot's recorded first node is
// not changed.
func (g *ChildGroups) InsertLastChild(index int, child *Element) {
	g.parent.InsertChildBeforeNow(child.Node(), g.NextGroupNode(index))
}

// SetFirstChild records child as the first node of a group holding several
// nodes. The tree is not changed.
func (g *ChildGroups) SetFirstChild(index int, child *Element) {
	g.check(index)
	g.children[index] = child
}

// ClearFirstChild records a group holding several nodes as empty. The tree
// is not changed.
func (g *ChildGroups) ClearFirstChild(index int) {
	g.check(index)
	g.children[index] = nil
}

func (g *ChildGroups) insert(index int, child *Element) {
	g.InsertLastChild(index, child)
	g.children[index] = child
}

func (g *ChildGroups) check(index int) {
	if index < 0 || index >= len(g.children) {
		errors.Fatal("E002", "index %d, %d slots", index, len(g.children))
	}
}

// =============================================================================
// Slot
// =============================================================================

// Slot is one dynamic group. Content placed in a slot is owned by it and
// torn down when replaced, cleared or when the slot itself is torn down.
type Slot struct {
	groups  *ChildGroups
	index   int
	current *Element
	owner   *Owner
}

var _ scheduler.Target = (*Slot)(nil)

// NewSlot reserves a new group in groups.
func NewSlot(groups *ChildGroups) *Slot {
	s := &Slot{groups: groups, index: groups.NewGroup(), owner: NewOwner()}
	s.owner.OnCleanup(func() {
		if s.current != nil {
			s.current.Teardown()
			s.current = nil
		}
	})
	return s
}

// Index returns the slot's group index.
func (s *Slot) Index() int { return s.index }

// Current returns the slot's content, or nil.
func (s *Slot) Current() *Element { return s.current }

// Groups returns the registry the slot belongs to. Content spanning
// several nodes is placed with InsertLastChild and SetFirstChild.
func (s *Slot) Groups() *ChildGroups { return s.groups }

// Owner returns the slot's owner.
func (s *Slot) Owner() *Owner { return s.owner }

// Env returns the environment of the parent element.
func (s *Slot) Env() *Env { return s.groups.parent.env }

// Alive implements scheduler.Target.
func (s *Slot) Alive() bool { return !s.owner.Disposed() }

// Depth implements scheduler.Target. A slot sorts with the children of its
// parent.
func (s *Slot) Depth() int { return s.groups.parent.Depth() + 1 }

// Set replaces the slot's content immediately.
func (s *Slot) Set(el *Element) {
	if s.owner.Disposed() {
		errors.Fatal("E006", "slot %d", s.index)
	}
	old := s.current
	if old == el {
		return
	}
	s.groups.UpsertOnlyChild(s.index, el)
	s.current = el
	if old != nil {
		old.Teardown()
	}
}

// Clear empties the slot immediately.
func (s *Slot) Clear() {
	if s.current == nil {
		return
	}
	s.groups.RemoveChild(s.index)
	old := s.current
	s.current = nil
	old.Teardown()
}

// OnCleanup registers fn to run when the slot is torn down.
func (s *Slot) OnCleanup(fn func()) {
	s.owner.OnCleanup(fn)
}

// Dynamic is content bound to a slot that updates it over time.
type Dynamic interface {
	Bind(slot *Slot)
}

// DynamicFunc adapts a function to Dynamic.
type DynamicFunc func(slot *Slot)

// Bind implements Dynamic.
func (f DynamicFunc) Bind(slot *Slot) { f(slot) }
