package hydration

import (
	"fmt"
	"log/slog"
	"strings"
)

// Stats counts the repairs made by one hydration pass.
type Stats struct {
	// NodesAdded is the number of generated nodes inserted because no
	// matching existing node was found.
	NodesAdded int

	// NodesRemoved is the number of existing nodes discarded, not counting
	// whitespace-only text.
	NodesRemoved int

	// EmptyTextRemoved is the number of whitespace-only existing text
	// nodes discarded.
	EmptyTextRemoved int

	// AttributesSet is the number of attributes added or changed.
	AttributesSet int

	// AttributesRemoved is the number of existing attributes removed.
	AttributesRemoved int
}

// OnlyWhitespaceDiffs reports whether the only differences were
// whitespace-only text nodes.
func (s Stats) OnlyWhitespaceDiffs() bool {
	return s.NodesAdded == 0 &&
		s.NodesRemoved == 0 &&
		s.AttributesSet == 0 &&
		s.AttributesRemoved == 0
}

// ExactMatch reports whether the existing markup matched exactly.
func (s Stats) ExactMatch() bool {
	return s.EmptyTextRemoved == 0 && s.OnlyWhitespaceDiffs()
}

// String returns a multi-line summary.
func (s Stats) String() string {
	var b strings.Builder
	b.WriteString("Hydration stats:\n")
	fmt.Fprintf(&b, "    nodes added = %d\n", s.NodesAdded)
	fmt.Fprintf(&b, "    nodes removed = %d\n", s.NodesRemoved)
	fmt.Fprintf(&b, "    empty text removed = %d\n", s.EmptyTextRemoved)
	fmt.Fprintf(&b, "    attributes set = %d\n", s.AttributesSet)
	fmt.Fprintf(&b, "    attributes removed = %d\n", s.AttributesRemoved)
	return b.String()
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("nodes_added", s.NodesAdded),
		slog.Int("nodes_removed", s.NodesRemoved),
		slog.Int("empty_text_removed", s.EmptyTextRemoved),
		slog.Int("attributes_set", s.AttributesSet),
		slog.Int("attributes_removed", s.AttributesRemoved),
		slog.Bool("exact_match", s.ExactMatch()),
	)
}
