package markup

import (
	"strings"

	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/element"
)

// Build turns a parsed node into an element tree built in env. Comments
// are dropped. It returns nil for nodes that produce no element.
func Build(env *element.Env, n *dom.Node) *element.Element {
	switch n.Type() {
	case dom.TextNode:
		return env.Text(n.Text())
	case dom.ElementNode:
		b := env.TagNS(n.Namespace(), n.Tag())
		for _, attr := range n.Attributes() {
			b.Attribute(attr.Name, attr.Value)
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if child := Build(env, c); child != nil {
				b.Child(child)
			}
		}
		return b.Build()
	default:
		return nil
	}
}

// BuildString parses markup as a fragment and builds its first element
// or text node.
func BuildString(env *element.Env, markup string) (*element.Element, error) {
	nodes, err := env.Document().ParseFragment(nil, strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.IsWhitespaceText() {
			continue
		}
		if el := Build(env, n); el != nil {
			return el, nil
		}
	}
	return env.Text(""), nil
}
