package scheduler

// Target is the node an update belongs to.
type Target interface {
	// Alive reports whether the target still exists. Updates of dead
	// targets are dropped.
	Alive() bool

	// Depth returns the document depth of the target. Lower depths apply
	// first within a flush round.
	Depth() int
}

// Update is a single-shot pending change.
type Update struct {
	// Target is the node the update belongs to. A nil Target is always
	// alive and sorts before every node.
	Target Target

	// Apply performs the change.
	Apply func()
}

// NewUpdate returns an Update targeting target.
func NewUpdate(target Target, apply func()) Update {
	return Update{Target: target, Apply: apply}
}

// Alive reports whether the update should still be applied. This is the
// explicit liveness check performed before every Apply.
func (u Update) Alive() bool {
	return u.Target == nil || u.Target.Alive()
}

// Depth returns the sort key of the update.
func (u Update) Depth() int {
	if u.Target == nil {
		return -1
	}
	return u.Target.Depth()
}
