package hydration

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/element"
)

// DefaultReservedPrefix marks attributes owned by the runtime. They are
// left as they are in the existing markup.
const DefaultReservedPrefix = "data-ripple"

const tracerName = "github.com/vango-dev/ripple/pkg/hydration"

type options struct {
	reservedPrefix string
	tracer         trace.Tracer
}

// Option configures Hydrate.
type Option func(*options)

// WithReservedPrefix sets the attribute name prefix left untouched.
func WithReservedPrefix(prefix string) Option {
	return func(o *options) {
		o.reservedPrefix = prefix
	}
}

// WithTracer sets the tracer used for the hydration span.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// Hydrate attaches root to the first child of anchor. Existing siblings
// after the hydrated node are removed. If anchor has no children the
// generated tree is appended.
//
// Handles in the generated tree are rebound to the existing nodes they
// matched, so root and its descendants refer to the live tree afterwards.
func Hydrate(ctx context.Context, anchor *dom.Node, root *element.Element, opts ...Option) Stats {
	o := options{
		reservedPrefix: DefaultReservedPrefix,
		tracer:         otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	_, span := o.tracer.Start(ctx, "ripple.hydrate")
	defer span.End()

	h := &hydrator{prefix: o.reservedPrefix}
	generated := root.DomNode()
	if first := anchor.FirstChild(); first != nil {
		node := h.hydrateChild(anchor, first, generated)
		h.removeFrom(anchor, node.NextSibling())
	} else {
		h.append(anchor, generated)
	}

	span.SetAttributes(
		attribute.Int("ripple.nodes_added", h.stats.NodesAdded),
		attribute.Int("ripple.nodes_removed", h.stats.NodesRemoved),
		attribute.Int("ripple.empty_text_removed", h.stats.EmptyTextRemoved),
		attribute.Int("ripple.attributes_set", h.stats.AttributesSet),
		attribute.Int("ripple.attributes_removed", h.stats.AttributesRemoved),
		attribute.Bool("ripple.exact_match", h.stats.ExactMatch()),
	)
	return h.stats
}

type hydrator struct {
	prefix string
	stats  Stats
}

// hydrateChild hydrates generated against existing, a child of parent, and
// returns the node that now stands for generated in parent.
func (h *hydrator) hydrateChild(parent, existing, generated *dom.Node) *dom.Node {
	for existing != nil && existing.IsWhitespaceText() && generated.Type() != dom.TextNode {
		next := existing.NextSibling()
		h.remove(parent, existing)
		existing = next
	}
	if existing == nil {
		h.append(parent, generated)
		return generated
	}

	if !h.matches(existing, generated) {
		must("insert", parent.InsertBefore(generated, existing))
		h.stats.NodesAdded++
		h.remove(parent, existing)
		return generated
	}

	if existing.Type() == dom.ElementNode {
		h.reconcileAttributes(existing, generated)
		h.hydrateChildren(existing, generated)
	}
	adopt(generated, existing)
	return existing
}

func (h *hydrator) hydrateChildren(existing, generated *dom.Node) {
	cursor := existing.FirstChild()
	for _, child := range generated.Children() {
		node := h.hydrateChild(existing, cursor, child)
		cursor = node.NextSibling()
	}
	h.removeFrom(existing, cursor)
}

func (h *hydrator) matches(existing, generated *dom.Node) bool {
	if existing.Type() != generated.Type() {
		return false
	}
	switch existing.Type() {
	case dom.ElementNode:
		return existing.Tag() == generated.Tag() && existing.Namespace() == generated.Namespace()
	case dom.TextNode:
		return existing.Text() == generated.Text()
	default:
		return false
	}
}

func (h *hydrator) reconcileAttributes(existing, generated *dom.Node) {
	want := make(map[string]struct{})
	for _, attr := range generated.Attributes() {
		if h.reserved(attr.Name) {
			continue
		}
		want[attr.Name] = struct{}{}
		if v, ok := existing.GetAttribute(attr.Name); !ok || v != attr.Value {
			existing.SetAttribute(attr.Name, attr.Value)
			h.stats.AttributesSet++
		}
	}
	for _, attr := range existing.Attributes() {
		if h.reserved(attr.Name) {
			continue
		}
		if _, ok := want[attr.Name]; !ok {
			existing.RemoveAttribute(attr.Name)
			h.stats.AttributesRemoved++
		}
	}
}

func (h *hydrator) reserved(name string) bool {
	return h.prefix != "" && strings.HasPrefix(name, h.prefix)
}

func (h *hydrator) append(parent, generated *dom.Node) {
	must("append", parent.AppendChild(generated))
	h.stats.NodesAdded++
}

func (h *hydrator) remove(parent, existing *dom.Node) {
	must("remove", parent.RemoveChild(existing))
	if existing.IsWhitespaceText() {
		h.stats.EmptyTextRemoved++
	} else {
		h.stats.NodesRemoved++
	}
}

// removeFrom removes start and every sibling after it.
func (h *hydrator) removeFrom(parent, start *dom.Node) {
	for n := start; n != nil; {
		next := n.NextSibling()
		h.remove(parent, n)
		n = next
	}
}

// adopt rebinds the handle of generated, if any, to existing.
func adopt(generated, existing *dom.Node) {
	if a, ok := generated.Data().(element.Adopter); ok {
		a.Adopt(existing)
	}
}

func must(op string, err error) {
	if err != nil {
		panic(errors.New("E004").WithDetail("hydrate: %s", op).Wrap(err))
	}
}
