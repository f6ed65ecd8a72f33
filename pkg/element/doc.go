// Package element wraps live document nodes with the resources that must
// live as long as they are mounted.
//
// # Nodes
//
// Node is a closed variant over *DomElement and *DomText. Both handles
// expose synchronous *Now mutations, used while a tree is first built, and
// deferred mutations that are queued on the scheduler and applied on the
// next flush.
//
// # Ownership
//
// Every DomElement has an Owner holding its event callbacks, spawned tasks
// and cleanups. Building a child into a parent merges the child's Owner
// into the parent's (StoreChild), so tearing down the root releases the
// whole tree exactly once.
//
// # Child groups
//
// ChildGroups lets one parent host several independently changing regions
// while keeping document order: each slot's content is inserted before the
// first non-empty slot that follows it.
package element
