package dom

import "errors"

var (
	// ErrNotChild is returned when a reference node is not a child of the
	// node being mutated.
	ErrNotChild = errors.New("dom: node is not a child of this node")

	// ErrHierarchy is returned when an insertion would make a node its own
	// ancestor, or would insert under a node that cannot have children.
	ErrHierarchy = errors.New("dom: hierarchy request error")

	// ErrWrongDocument is returned when a node from another document is
	// inserted.
	ErrWrongDocument = errors.New("dom: node belongs to a different document")

	// ErrNilNode is returned when a nil node is passed to a mutation.
	ErrNilNode = errors.New("dom: nil node")
)
