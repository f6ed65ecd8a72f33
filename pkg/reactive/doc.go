// Package reactive provides signals and the elements derived from them.
//
// A Signal holds a value and the update closures of everything rendered
// from it. Writes go through a Setter and are batched: every Set, Edit or
// Map issued before the next flush is composed into one pending mutation,
// committed once, and each dependent region is regenerated once.
//
//	count := reactive.New(sched, 0)
//	view := count.Read().With(func(n int) *element.Element {
//		return env.Text(strconv.Itoa(n))
//	})
//	count.Write().Set(1)
//
// ChangeTrackingVec is a sequence that remembers its most recent change so
// a List can patch its rendered items instead of rebuilding them.
package reactive
