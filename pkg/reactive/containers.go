package reactive

import (
	"fmt"
	"slices"
	"sync/atomic"
)

var lastTag atomic.Uint64

func newTag() uint64 { return lastTag.Add(1) }

// DeltaID identifies one state of a ChangeTrackingVec: a sequence number
// plus the identity tag of the container instance.
type DeltaID struct {
	seq uint64
	tag uint64
}

// Seq returns the sequence number.
func (id DeltaID) Seq() uint64 { return id.seq }

// IsNext reports whether id directly follows prev in the same container.
func (id DeltaID) IsNext(prev DeltaID) bool {
	return id.tag != 0 && id.tag == prev.tag && id.seq == prev.seq+1
}

// DeltaKind is the kind of change recorded by a VecDelta.
type DeltaKind uint8

const (
	// DeltaExtend appended the items from Index to the end.
	DeltaExtend DeltaKind = iota + 1
	// DeltaInsert inserted the item at Index.
	DeltaInsert
	// DeltaRemove removed Item from Index.
	DeltaRemove
	// DeltaSet replaced the item at Index.
	DeltaSet
)

// String returns the string representation of the DeltaKind.
func (k DeltaKind) String() string {
	switch k {
	case DeltaExtend:
		return "Extend"
	case DeltaInsert:
		return "Insert"
	case DeltaRemove:
		return "Remove"
	case DeltaSet:
		return "Set"
	default:
		return fmt.Sprintf("DeltaKind(%d)", k)
	}
}

// VecDelta is the most recent change made to a ChangeTrackingVec.
type VecDelta[T any] struct {
	Kind  DeltaKind
	Index int

	// Item is the removed item for DeltaRemove.
	Item T
}

// ChangeTrackingVec is a sequence that records its most recent change.
//
// A consumer that mirrors the sequence keeps the DeltaID it last saw and
// asks Delta for the change since then. The delta is only handed out when
// exactly one change happened since, on this same instance; otherwise the
// consumer must treat the whole sequence as changed.
//
// Mutations never write to storage another copy can see, so a copy made
// by assignment keeps its items when the original changes. Such a copy
// shares the original's identity; use Clone for a fresh one.
type ChangeTrackingVec[T any] struct {
	data  []T
	delta *VecDelta[T]
	id    DeltaID
}

// NewChangeTrackingVec creates a container holding items.
func NewChangeTrackingVec[T any](items ...T) ChangeTrackingVec[T] {
	return ChangeTrackingVec[T]{
		data: slices.Clone(items),
		id:   DeltaID{tag: newTag()},
	}
}

// ID returns the id of the current state.
func (v *ChangeTrackingVec[T]) ID() DeltaID { return v.id }

// Len returns the number of items.
func (v *ChangeTrackingVec[T]) Len() int { return len(v.data) }

// Data returns the items. The slice must not be modified.
func (v *ChangeTrackingVec[T]) Data() []T { return v.data }

// At returns the item at i.
func (v *ChangeTrackingVec[T]) At(i int) T { return v.data[i] }

// Snapshot returns a copy of the items.
func (v *ChangeTrackingVec[T]) Snapshot() []T { return slices.Clone(v.data) }

// Delta returns the most recent change if prev is the state directly
// before it.
func (v *ChangeTrackingVec[T]) Delta(prev DeltaID) (VecDelta[T], bool) {
	if v.delta == nil || !v.id.IsNext(prev) {
		return VecDelta[T]{}, false
	}
	return *v.delta, true
}

// Clone returns an independent copy with a fresh identity, so deltas of
// one are never applied against the other.
func (v *ChangeTrackingVec[T]) Clone() ChangeTrackingVec[T] {
	return ChangeTrackingVec[T]{
		data: slices.Clone(v.data),
		id:   DeltaID{tag: newTag()},
	}
}

func (v *ChangeTrackingVec[T]) record(d *VecDelta[T]) {
	if v.id.tag == 0 {
		v.id.tag = newTag()
	}
	v.id.seq++
	v.delta = d
}

// Push appends item.
func (v *ChangeTrackingVec[T]) Push(item T) {
	v.Extend(item)
}

// Extend appends items.
func (v *ChangeTrackingVec[T]) Extend(items ...T) {
	start := len(v.data)
	v.data = append(v.data[:start:start], items...)
	v.record(&VecDelta[T]{Kind: DeltaExtend, Index: start})
}

// Insert inserts item at index.
func (v *ChangeTrackingVec[T]) Insert(index int, item T) {
	v.data = slices.Concat(v.data[:index], []T{item}, v.data[index:])
	v.record(&VecDelta[T]{Kind: DeltaInsert, Index: index})
}

// Pop removes and returns the last item. It panics if v is empty.
func (v *ChangeTrackingVec[T]) Pop() T {
	if len(v.data) == 0 {
		panic("reactive: Pop on empty ChangeTrackingVec")
	}
	return v.Remove(len(v.data) - 1)
}

// Remove removes and returns the item at index.
func (v *ChangeTrackingVec[T]) Remove(index int) T {
	item := v.data[index]
	v.data = slices.Concat(v.data[:index], v.data[index+1:])
	v.record(&VecDelta[T]{Kind: DeltaRemove, Index: index, Item: item})
	return item
}

// Set replaces the item at index.
func (v *ChangeTrackingVec[T]) Set(index int, item T) {
	data := slices.Clone(v.data)
	data[index] = item
	v.data = data
	v.record(&VecDelta[T]{Kind: DeltaSet, Index: index})
}

// Clear removes every item. It records no delta, so consumers rebuild.
func (v *ChangeTrackingVec[T]) Clear() {
	v.data = nil
	v.record(nil)
}
