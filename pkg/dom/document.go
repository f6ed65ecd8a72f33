package dom

import "strings"

// Namespace URIs understood by the markup layer.
const (
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
)

// Document owns a tree of nodes rooted at a document node.
type Document struct {
	root *Node

	// nextListener is the source of listener IDs for this document.
	nextListener ListenerID
}

// NewDocument creates an empty HTML document with html, head and body
// elements.
func NewDocument() *Document {
	d := newEmptyDocument()
	html := d.CreateElement("html")
	d.root.link(html, nil)
	html.link(d.CreateElement("head"), nil)
	html.link(d.CreateElement("body"), nil)
	return d
}

func newEmptyDocument() *Document {
	d := &Document{}
	d.root = &Node{typ: DocumentNode, doc: d}
	return d
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// DocumentElement returns the <html> element, or nil.
func (d *Document) DocumentElement() *Node {
	for c := d.root.firstChild; c != nil; c = c.nextSibling {
		if c.typ == ElementNode {
			return c
		}
	}
	return nil
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Node {
	html := d.DocumentElement()
	if html == nil {
		return nil
	}
	for c := html.firstChild; c != nil; c = c.nextSibling {
		if c.typ == ElementNode && c.tag == "body" {
			return c
		}
	}
	return nil
}

// CreateElement creates a detached HTML element.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{typ: ElementNode, tag: strings.ToLower(tag), doc: d}
}

// CreateElementNS creates a detached element in the given namespace.
// Tag case is preserved for non-HTML namespaces.
func (d *Document) CreateElementNS(namespace, tag string) *Node {
	if namespace == "" {
		return d.CreateElement(tag)
	}
	return &Node{typ: ElementNode, tag: tag, namespace: namespace, doc: d}
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) *Node {
	return &Node{typ: TextNode, text: text, doc: d}
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(text string) *Node {
	return &Node{typ: CommentNode, text: text, doc: d}
}

// GetElementByID returns the first connected element whose id attribute
// equals id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	return findByID(d.root, id)
}

func findByID(n *Node, id string) *Node {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.typ != ElementNode {
			continue
		}
		if v, ok := c.GetAttribute("id"); ok && v == id {
			return c
		}
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in document order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for c := n.firstChild; c != nil; {
		next := c.nextSibling
		Walk(c, fn)
		c = next
	}
}
