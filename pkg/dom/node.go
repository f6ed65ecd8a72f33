package dom

import (
	"slices"
	"strings"
)

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	default:
		return "Unknown"
	}
}

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Name  string
	Value string
}

// Node is a node in a live document.
type Node struct {
	typ       NodeType
	tag       string
	namespace string
	text      string
	attrs     []Attribute

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	listeners []listenerEntry

	// data is an opaque value attached by the layer that owns the node.
	data any

	doc *Document
}

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the lower-case tag name for element nodes.
func (n *Node) Tag() string { return n.tag }

// Namespace returns the namespace URI of an element, or "" for HTML.
func (n *Node) Namespace() string { return n.namespace }

// OwnerDocument returns the document that created this node.
func (n *Node) OwnerDocument() *Document { return n.doc }

// Parent returns the parent node, or nil if detached.
func (n *Node) Parent() *Node { return n.parent }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.lastChild }

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node { return n.nextSibling }

// PrevSibling returns the previous sibling, or nil.
func (n *Node) PrevSibling() *Node { return n.prevSibling }

// Data returns the value attached with SetData.
func (n *Node) Data() any { return n.data }

// SetData attaches an opaque value to the node.
func (n *Node) SetData(v any) { n.data = v }

// Children returns a snapshot of the child list.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.firstChild; c != nil; c = c.nextSibling {
		count++
	}
	return count
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether the node is attached to its document.
func (n *Node) IsConnected() bool {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root.typ == DocumentNode
}

// Text returns the character data of a text or comment node.
func (n *Node) Text() string { return n.text }

// SetText replaces the character data of a text or comment node.
// On elements it replaces all children with a single text node.
func (n *Node) SetText(text string) {
	if n.typ == TextNode || n.typ == CommentNode {
		n.text = text
		return
	}
	n.ClearChildren()
	if text != "" {
		n.link(n.doc.CreateTextNode(text), nil)
	}
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.typ {
	case TextNode:
		return n.text
	case CommentNode:
		return ""
	}
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		switch c.typ {
		case TextNode:
			sb.WriteString(c.text)
		case ElementNode:
			c.collectText(sb)
		}
	}
}

// IsWhitespaceText reports whether n is a text node containing only
// whitespace.
func (n *Node) IsWhitespaceText() bool {
	return n.typ == TextNode && strings.TrimSpace(n.text) == ""
}

// =============================================================================
// Attributes
// =============================================================================

// Attributes returns a copy of the element's attributes in document order.
func (n *Node) Attributes() []Attribute {
	return slices.Clone(n.attrs)
}

// GetAttribute returns the value of the named attribute.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets the named attribute, preserving its position if it
// already exists.
func (n *Node) SetAttribute(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
}

// RemoveAttribute removes the named attribute. Returns true if it existed.
func (n *Node) RemoveAttribute(name string) bool {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = slices.Delete(n.attrs, i, i+1)
			return true
		}
	}
	return false
}

// ClassList returns the whitespace separated entries of the class attribute.
func (n *Node) ClassList() []string {
	class, _ := n.GetAttribute("class")
	return strings.Fields(class)
}

// AddClass adds name to the class attribute if missing.
func (n *Node) AddClass(name string) {
	classes := n.ClassList()
	if slices.Contains(classes, name) {
		return
	}
	n.SetAttribute("class", strings.Join(append(classes, name), " "))
}

// RemoveClass removes name from the class attribute.
func (n *Node) RemoveClass(name string) {
	classes := n.ClassList()
	idx := slices.Index(classes, name)
	if idx < 0 {
		return
	}
	classes = slices.Delete(classes, idx, idx+1)
	if len(classes) == 0 {
		n.RemoveAttribute("class")
		return
	}
	n.SetAttribute("class", strings.Join(classes, " "))
}

// =============================================================================
// Tree mutation
// =============================================================================

// AppendChild appends child as the last child of n. A child that is
// already in the tree is moved.
func (n *Node) AppendChild(child *Node) error {
	if err := n.checkInsert(child); err != nil {
		return err
	}
	child.detach()
	n.link(child, nil)
	return nil
}

// InsertBefore inserts child immediately before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) error {
	if err := n.checkInsert(child); err != nil {
		return err
	}
	if ref == nil {
		child.detach()
		n.link(child, nil)
		return nil
	}
	if ref.parent != n {
		return ErrNotChild
	}
	if child == ref {
		return nil
	}
	child.detach()
	n.link(child, ref)
	return nil
}

// ReplaceChild replaces oldChild with newChild.
func (n *Node) ReplaceChild(newChild, oldChild *Node) error {
	if oldChild == nil {
		return ErrNilNode
	}
	if oldChild.parent != n {
		return ErrNotChild
	}
	if err := n.checkInsert(newChild); err != nil {
		return err
	}
	if newChild == oldChild {
		return nil
	}
	newChild.detach()
	n.link(newChild, oldChild)
	oldChild.detach()
	return nil
}

// RemoveChild removes child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if child.parent != n {
		return ErrNotChild
	}
	child.detach()
	return nil
}

// ClearChildren removes all children of n.
func (n *Node) ClearChildren() {
	for n.firstChild != nil {
		n.firstChild.detach()
	}
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	n.detach()
}

// CloneNode returns a copy of n. Listeners and attached data are not
// copied. When deep is true the subtree is copied too.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		typ:       n.typ,
		tag:       n.tag,
		namespace: n.namespace,
		text:      n.text,
		attrs:     slices.Clone(n.attrs),
		doc:       n.doc,
	}
	if deep {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			clone.link(c.CloneNode(true), nil)
		}
	}
	return clone
}

func (n *Node) checkInsert(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if n.typ != ElementNode && n.typ != DocumentNode {
		return ErrHierarchy
	}
	if child.typ == DocumentNode || child.Contains(n) {
		return ErrHierarchy
	}
	if child.doc != n.doc {
		return ErrWrongDocument
	}
	return nil
}

// link inserts a detached child before ref, or at the end if ref is nil.
func (n *Node) link(child, ref *Node) {
	child.parent = n
	if ref == nil {
		child.prevSibling = n.lastChild
		child.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
		return
	}
	child.nextSibling = ref
	child.prevSibling = ref.prevSibling
	if ref.prevSibling != nil {
		ref.prevSibling.nextSibling = child
	} else {
		n.firstChild = child
	}
	ref.prevSibling = child
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if n.prevSibling != nil {
		n.prevSibling.nextSibling = n.nextSibling
	} else {
		p.firstChild = n.nextSibling
	}
	if n.nextSibling != nil {
		n.nextSibling.prevSibling = n.prevSibling
	} else {
		p.lastChild = n.prevSibling
	}
	n.parent = nil
	n.prevSibling = nil
	n.nextSibling = nil
}
