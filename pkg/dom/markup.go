package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a document from HTML markup.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := newEmptyDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := fromHTML(d, c); n != nil {
			d.root.link(n, nil)
		}
	}
	return d, nil
}

// ParseString is Parse for a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// ParseFragment parses markup as the content of context and returns the
// resulting detached nodes, owned by context's document.
func (d *Document) ParseFragment(context *Node, r io.Reader) ([]*Node, error) {
	if context == nil {
		context = d.Body()
	}
	var hctx *html.Node
	if context != nil && context.typ == ElementNode {
		hctx = &html.Node{
			Type:     html.ElementNode,
			Data:     context.tag,
			DataAtom: atom.Lookup([]byte(context.tag)),
		}
	}
	nodes, err := html.ParseFragment(r, hctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(nodes))
	for _, hn := range nodes {
		if n := fromHTML(d, hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// SetInnerHTML replaces the children of n with the parsed markup.
func (n *Node) SetInnerHTML(markup string) error {
	nodes, err := n.doc.ParseFragment(n, strings.NewReader(markup))
	if err != nil {
		return err
	}
	n.ClearChildren()
	for _, c := range nodes {
		n.link(c, nil)
	}
	return nil
}

// Render writes the HTML serialization of n, including n itself.
func Render(w io.Writer, n *Node) error {
	return html.Render(w, toHTML(n))
}

// OuterHTML returns the HTML serialization of n.
func OuterHTML(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the HTML serialization of n's children.
func InnerHTML(n *Node) string {
	var buf bytes.Buffer
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if err := Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

func fromHTML(d *Document, hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		n = &Node{typ: ElementNode, tag: hn.Data, namespace: namespaceURI(hn.Namespace), doc: d}
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attribute{Name: name, Value: a.Val})
		}
	case html.TextNode:
		return &Node{typ: TextNode, text: hn.Data, doc: d}
	case html.CommentNode:
		return &Node{typ: CommentNode, text: hn.Data, doc: d}
	default:
		// Doctype and raw nodes have no live counterpart.
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := fromHTML(d, c); child != nil {
			n.link(child, nil)
		}
	}
	return n
}

func toHTML(n *Node) *html.Node {
	var hn *html.Node
	switch n.typ {
	case ElementNode:
		hn = &html.Node{
			Type:      html.ElementNode,
			Data:      n.tag,
			Namespace: namespaceShort(n.namespace),
		}
		if hn.Namespace == "" {
			hn.DataAtom = atom.Lookup([]byte(n.tag))
		}
		for _, a := range n.attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.text}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.text}
	default:
		hn = &html.Node{Type: html.DocumentNode}
	}
	for c := n.firstChild; c != nil; c = c.nextSibling {
		hn.AppendChild(toHTML(c))
	}
	return hn
}

func namespaceURI(short string) string {
	switch short {
	case "svg":
		return NamespaceSVG
	case "math":
		return NamespaceMathML
	default:
		return short
	}
}

func namespaceShort(uri string) string {
	switch uri {
	case NamespaceSVG:
		return "svg"
	case NamespaceMathML:
		return "math"
	default:
		return uri
	}
}
