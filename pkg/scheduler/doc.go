// Package scheduler batches document updates and applies them on paint
// opportunities.
//
// A Scheduler is the single explicit context for pending work: signal
// commits, deferred document mutations and subtree regenerations are
// queued as Updates, and post-apply callbacks are queued as effects. The
// first enqueue after a flush requests exactly one paint opportunity from
// the FrameSource; further enqueues before that frame are coalesced.
//
// # Flush
//
// Flush drains the queue in rounds. Each round orders its updates by the
// document depth of their target, ancestors first, and drops updates whose
// target is no longer alive. Updates queued while a round is applied are
// handled by the next round of the same flush. Once the queue is empty the
// effect queue runs, so effects observe the final document for the frame.
//
// # Frame sources
//
// ManualFrames delivers paint opportunities when Tick is called and is
// meant for tests and synchronous tools. Loop owns a UI goroutine and
// delivers paint opportunities from a ticker.
package scheduler
