// Package undo provides reversible-mutation infrastructure for an in-memory
// target value.
//
// Every mutation is expressed as a Command that knows how to apply itself to
// the target and how to undo that application. The package stores the
// sequence of applied commands and exposes two timeline engines:
//
//   - Record: a linear undo/redo stack with a cursor, an optional entry
//     limit, a saved-state marker, and manual command merging.
//   - History: a branching undo/redo tree built on top of a Record. Forking
//     (applying a command while commands are available to redo) salvages the
//     displaced commands into a new branch instead of discarding them.
//
// Two transactional wrappers sit on top of either engine:
//
//   - RecordQueue / HistoryQueue defer a batch of operations and apply them
//     all at once, stopping at the first error.
//   - RecordCheckpoint / HistoryCheckpoint record the inverse of every
//     operation they perform so the whole scope can be rolled back on
//     demand.
//
// # Basic usage
//
//	type Add struct {
//		Char rune
//		text string
//	}
//
//	func (a *Add) Apply(target *string) error {
//		*target += string(a.Char)
//		return nil
//	}
//
//	func (a *Add) Undo(target *string) error {
//		r := []rune(*target)
//		*target = string(r[:len(r)-1])
//		return nil
//	}
//
//	r := undo.NewRecord("")
//	r.Apply(&Add{Char: 'a'})
//	r.Apply(&Add{Char: 'b'})
//	r.Apply(&Add{Char: 'c'})
//	fmt.Println(*r.Target()) // "abc"
//	r.Undo()
//	r.Undo()
//	fmt.Println(*r.Target()) // "a"
//
// # Merging
//
// A Command may implement Merger[T] to coalesce itself with the entry that
// immediately precedes it, collapsing several small edits into one undo
// step. See Merger for the contract.
//
// # Branching
//
// History never silently drops commands. Applying a command while the
// cursor is behind the end of the timeline displaces the tail into a new
// branch, reachable again via GoTo or JumpTo. See History for the full
// branch-forest semantics.
//
// # Observing state changes
//
// Both engines accept an Observer via WithObserver. The observer is called
// synchronously, in the textual order the transitions occur: capability
// signals first, then Current, then Saved, then Branch. Observers must not
// re-enter the engine that invoked them.
//
// # Concurrency
//
// Record and History are single-owner types: there is no internal locking,
// and concurrent use from multiple goroutines is the caller's
// responsibility to serialize. This is a deliberate simplification over
// multi-threaded designs — the cost of a mutex is not worth paying for a
// data structure whose whole point is synchronous, in-process bookkeeping.
package undo
