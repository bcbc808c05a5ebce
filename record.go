package undo

// Record is a linear undo/redo timeline over a target of type T. It holds
// an ordered sequence of entries, a cursor splitting "already applied"
// (indices < cursor) from "available to redo" (indices >= cursor), an
// optional entry limit, and an optional saved-state marker.
//
// Record is single-owner: it does no internal locking, and concurrent use
// from multiple goroutines must be serialized by the caller.
type Record[T any] struct {
	target   T
	entries  []Entry[T]
	cursor   int
	limit    int // 0 means unbounded
	saved    *int
	observer Observer
}

// NewRecord returns a new Record wrapping target, configured by opts.
func NewRecord[T any](target T, opts ...RecordOption[T]) *Record[T] {
	cfg := newRecordConfig(opts)
	r := &Record[T]{
		target:   target,
		entries:  make([]Entry[T], 0, cfg.capacity),
		limit:    cfg.limit,
		observer: cfg.observer,
	}
	if cfg.saved {
		zero := 0
		r.saved = &zero
	}
	return r
}

// Target returns a pointer to the wrapped target. Mutating it directly
// bypasses the undo/redo machinery entirely and is the caller's
// responsibility to use sparingly.
func (r *Record[T]) Target() *T { return &r.target }

// Len returns the number of entries currently stored.
func (r *Record[T]) Len() int { return len(r.entries) }

// IsEmpty reports whether the Record holds no entries.
func (r *Record[T]) IsEmpty() bool { return len(r.entries) == 0 }

// Capacity returns the preallocated capacity of the entry storage.
func (r *Record[T]) Capacity() int { return cap(r.entries) }

// Reserve grows the entry storage so it can hold at least additional more
// entries without reallocating, without changing Len.
func (r *Record[T]) Reserve(additional int) {
	if additional <= 0 {
		return
	}
	if cap(r.entries)-len(r.entries) >= additional {
		return
	}
	grown := make([]Entry[T], len(r.entries), len(r.entries)+additional)
	copy(grown, r.entries)
	r.entries = grown
}

// Cursor returns the current cursor position.
func (r *Record[T]) Cursor() int { return r.cursor }

// Limit returns the configured entry limit, or 0 if unbounded.
func (r *Record[T]) Limit() int { return r.limit }

// CanUndo reports whether there is an entry available to undo.
func (r *Record[T]) CanUndo() bool { return r.cursor > 0 }

// CanRedo reports whether there is an entry available to redo.
func (r *Record[T]) CanRedo() bool { return r.cursor < len(r.entries) }

// IsSaved reports whether the target is currently in the saved state.
func (r *Record[T]) IsSaved() bool { return r.saved != nil && *r.saved == r.cursor }

// SavedIndex returns the entry index the target was last declared saved
// at, and whether a saved marker is set at all. Exposed read-only for
// external inspection (e.g. a serializer projecting the persisted state
// layout); Record itself only ever needs the bool form, IsSaved.
func (r *Record[T]) SavedIndex() (int, bool) {
	if r.saved == nil {
		return 0, false
	}
	return *r.saved, true
}

// Entries returns a defensive copy of the stored entries in order.
func (r *Record[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Record[T]) isDirty() bool { return r.cursor < len(r.entries) }

func (r *Record[T]) emit(signals []Signal) {
	if r.observer == nil {
		return
	}
	for _, s := range signals {
		r.observer(s)
	}
}

// SetSaved marks the target as currently saved (true) or unsaved (false) at
// the current cursor position. A Saved signal is always emitted, regardless
// of whether the saved state actually changes.
func (r *Record[T]) SetSaved(saved bool) {
	if saved {
		c := r.cursor
		r.saved = &c
	} else {
		r.saved = nil
	}
	r.emit([]Signal{{Kind: SignalSaved, Available: saved}})
}

// Apply performs cmd's forward mutation against the target.
//
// If the cursor is behind the end of the timeline, the discarded tail is
// returned so a wrapper (History) can salvage it into a branch instead of
// losing it. evictedFront reports whether appending cmd caused the oldest
// entry to be evicted because the configured limit was reached while the
// cursor was already at the end — History uses this to keep branch
// parentage consistent.
func (r *Record[T]) Apply(cmd Command[T]) (discarded []Entry[T], evictedFront bool, err error) {
	oldCanUndo := r.CanUndo()
	oldCanRedo := r.CanRedo()
	cursor := r.cursor

	if applyErr := cmd.Apply(&r.target); applyErr != nil {
		return nil, false, newCommandError(cmd, applyErr)
	}

	discarded = append([]Entry[T](nil), r.entries[cursor:]...)
	savedInTail := r.saved != nil && *r.saved > cursor
	r.entries = r.entries[:cursor]

	emitCurrent := false
	currentNew := cursor
	savedInvalidated := savedInTail

	if len(r.entries) > 0 {
		back := r.entries[len(r.entries)-1]
		result := merge(back.Command, cmd)
		switch result.Outcome {
		case Merged:
			emitCurrent = true
			currentNew = cursor
			if r.saved != nil && *r.saved >= r.cursor {
				savedInvalidated = true
			}
		case Annulled:
			r.entries = r.entries[:len(r.entries)-1]
			r.cursor = cursor - 1
			emitCurrent = true
			currentNew = r.cursor
			if r.saved != nil && *r.saved >= r.cursor+1 {
				savedInvalidated = true
			}
		case NotMerged:
			cmd = result.Command
			evicted, invalidated := r.appendNew(cmd)
			evictedFront = evicted
			savedInvalidated = savedInvalidated || invalidated
			emitCurrent = true
			currentNew = r.cursor
		}
	} else {
		evicted, invalidated := r.appendNew(cmd)
		evictedFront = evicted
		savedInvalidated = savedInvalidated || invalidated
		emitCurrent = true
		currentNew = r.cursor
	}

	var pending []Signal
	if !oldCanUndo && r.CanUndo() {
		pending = append(pending, Signal{Kind: SignalUndo, Available: true})
	}
	if oldCanRedo && !r.CanRedo() {
		pending = append(pending, Signal{Kind: SignalRedo, Available: false})
	}
	if emitCurrent {
		pending = append(pending, Signal{Kind: SignalCurrent, Old: cursor, New: currentNew})
	}
	if savedInvalidated {
		r.saved = nil
		pending = append(pending, Signal{Kind: SignalSaved, Available: false})
	}
	r.emit(pending)

	return discarded, evictedFront, nil
}

// appendNew appends cmd as a brand-new entry, evicting the oldest entry
// first if the configured limit has been reached (or already exceeded, so
// a Record left oversized by a capped SetLimit still converges back under
// its limit one Apply at a time). It reports whether the oldest entry was
// evicted, and whether that eviction invalidated the saved marker (the
// marker was at position 0).
func (r *Record[T]) appendNew(cmd Command[T]) (evicted, invalidatedSaved bool) {
	if r.limit > 0 && len(r.entries) >= r.limit {
		r.entries = r.entries[1:]
		evicted = true
		if r.saved != nil {
			if *r.saved == 0 {
				invalidatedSaved = true
			} else {
				*r.saved--
			}
		}
	} else {
		r.cursor++
	}
	r.entries = append(r.entries, newEntry(cmd))
	return evicted, invalidatedSaved
}

// Undo calls Undo on the most recently applied entry and moves the cursor
// back one step. It reports false with a nil error if there is nothing to
// undo.
func (r *Record[T]) Undo() (bool, error) {
	if r.cursor == 0 {
		return false, nil
	}
	oldCanRedo := r.CanRedo()
	wasSaved := r.IsSaved()
	idx := r.cursor - 1

	if err := r.entries[idx].undo(&r.target); err != nil {
		return false, newCommandError(r.entries[idx].Command, err)
	}
	r.cursor = idx

	var pending []Signal
	if !r.CanUndo() {
		pending = append(pending, Signal{Kind: SignalUndo, Available: false})
	}
	if !oldCanRedo && r.CanRedo() {
		pending = append(pending, Signal{Kind: SignalRedo, Available: true})
	}
	pending = append(pending, Signal{Kind: SignalCurrent, Old: idx + 1, New: idx})
	if nowSaved := r.IsSaved(); nowSaved != wasSaved {
		pending = append(pending, Signal{Kind: SignalSaved, Available: nowSaved})
	}
	r.emit(pending)
	return true, nil
}

// Redo calls Redo on the next available entry and moves the cursor forward
// one step. It reports false with a nil error if there is nothing to redo.
func (r *Record[T]) Redo() (bool, error) {
	if r.cursor >= len(r.entries) {
		return false, nil
	}
	oldCanUndo := r.CanUndo()
	wasSaved := r.IsSaved()
	idx := r.cursor

	if err := r.entries[idx].redo(&r.target); err != nil {
		return false, newCommandError(r.entries[idx].Command, err)
	}
	r.cursor = idx + 1

	var pending []Signal
	if !oldCanUndo && r.CanUndo() {
		pending = append(pending, Signal{Kind: SignalUndo, Available: true})
	}
	if !r.CanRedo() {
		pending = append(pending, Signal{Kind: SignalRedo, Available: false})
	}
	pending = append(pending, Signal{Kind: SignalCurrent, Old: idx, New: r.cursor})
	if nowSaved := r.IsSaved(); nowSaved != wasSaved {
		pending = append(pending, Signal{Kind: SignalSaved, Available: nowSaved})
	}
	r.emit(pending)
	return true, nil
}

// GoTo repeatedly undoes or redoes until the cursor reaches index, clamped
// to [0, Len()]. It stops at the first failing step, leaving the cursor
// wherever it got to, and coalesces all the intermediate Current signals
// into a single one for the whole move.
func (r *Record[T]) GoTo(index int) (bool, error) {
	index = clamp(index, 0, len(r.entries))
	if index == r.cursor {
		return false, nil
	}
	oldCanUndo := r.CanUndo()
	oldCanRedo := r.CanRedo()
	wasSaved := r.IsSaved()
	start := r.cursor

	obs := r.observer
	r.observer = nil
	var err error
	for r.cursor < index {
		if _, err = r.Redo(); err != nil {
			break
		}
	}
	for err == nil && r.cursor > index {
		if _, err = r.Undo(); err != nil {
			break
		}
	}
	r.observer = obs

	r.emit(transitionSignals(oldCanUndo, oldCanRedo, wasSaved, start, r))
	return r.cursor != start, err
}

// JumpTo moves the cursor directly to index by invoking Undo or Redo only
// on the single entry at the destination, skipping every entry in between.
// This is only correct when entries are snapshot commands whose lone
// invocation fully determines the resulting state.
func (r *Record[T]) JumpTo(index int) (bool, error) {
	index = clamp(index, 0, len(r.entries))
	if index == r.cursor {
		return false, nil
	}
	oldCanUndo := r.CanUndo()
	oldCanRedo := r.CanRedo()
	wasSaved := r.IsSaved()
	start := r.cursor

	var failCmd Command[T]
	var failErr error
	if index < r.cursor {
		failCmd = r.entries[index].Command
		failErr = r.entries[index].undo(&r.target)
	} else {
		failCmd = r.entries[index-1].Command
		failErr = r.entries[index-1].redo(&r.target)
	}
	if failErr != nil {
		return false, newCommandError(failCmd, failErr)
	}
	r.cursor = index

	r.emit(transitionSignals(oldCanUndo, oldCanRedo, wasSaved, start, r))
	return true, nil
}

// transitionSignals computes the capability/current/saved signals for a
// jump-style operation (GoTo/JumpTo) that moves the cursor from start to
// its current value in one logical step.
func transitionSignals[T any](oldCanUndo, oldCanRedo, wasSaved bool, start int, r *Record[T]) []Signal {
	var pending []Signal
	if canUndo := r.CanUndo(); oldCanUndo != canUndo {
		pending = append(pending, Signal{Kind: SignalUndo, Available: canUndo})
	}
	if canRedo := r.CanRedo(); oldCanRedo != canRedo {
		pending = append(pending, Signal{Kind: SignalRedo, Available: canRedo})
	}
	if r.cursor != start {
		pending = append(pending, Signal{Kind: SignalCurrent, Old: start, New: r.cursor})
	}
	if nowSaved := r.IsSaved(); nowSaved != wasSaved {
		pending = append(pending, Signal{Kind: SignalSaved, Available: nowSaved})
	}
	return pending
}

// Extend applies each command in order, stopping at the first error.
func (r *Record[T]) Extend(cmds ...Command[T]) error {
	for _, c := range cmds {
		if _, _, err := r.Apply(c); err != nil {
			return err
		}
	}
	return nil
}

// SetLimit caps the number of retained entries at limit, evicting the
// oldest entries if necessary. It panics if limit is not positive. If
// evicting down to limit would remove the most recently applied entry, the
// eviction is capped short to preserve it instead, and the limit itself is
// raised to the number of entries actually retained rather than the
// requested (too-low) value, so it stays enforceable against future Apply
// calls. SetLimit returns the number of entries actually evicted.
func (r *Record[T]) SetLimit(limit int) int {
	if limit <= 0 {
		panic("undo: limit must be positive")
	}
	n := len(r.entries)
	if n <= limit {
		r.limit = limit
		return 0
	}
	popped := n - limit
	capped := false
	if r.cursor > 0 && popped >= r.cursor {
		popped = r.cursor - 1
		capped = true
	}
	if popped > 0 {
		r.entries = r.entries[popped:]
		r.cursor -= popped
		if r.saved != nil {
			if *r.saved < popped {
				r.saved = nil
				r.emit([]Signal{{Kind: SignalSaved, Available: false}})
			} else {
				*r.saved -= popped
			}
		}
	}
	if capped {
		r.limit = len(r.entries)
	} else {
		r.limit = limit
	}
	return popped
}

// Clear removes every entry without undoing them, resetting the cursor and
// saved marker.
func (r *Record[T]) Clear() {
	oldCanUndo := r.CanUndo()
	oldCanRedo := r.CanRedo()
	wasSaved := r.IsSaved()
	start := r.cursor

	r.entries = r.entries[:0]
	r.cursor = 0
	r.saved = nil

	var pending []Signal
	if oldCanUndo {
		pending = append(pending, Signal{Kind: SignalUndo, Available: false})
	}
	if oldCanRedo {
		pending = append(pending, Signal{Kind: SignalRedo, Available: false})
	}
	if start != 0 {
		pending = append(pending, Signal{Kind: SignalCurrent, Old: start, New: 0})
	}
	if wasSaved {
		pending = append(pending, Signal{Kind: SignalSaved, Available: false})
	}
	r.emit(pending)
}

// Queue returns a RecordQueue that defers operations against r until
// Commit or Cancel is called.
func (r *Record[T]) Queue() *RecordQueue[T] {
	return &RecordQueue[T]{inner: r}
}

// Checkpoint returns a RecordCheckpoint that records the inverse of every
// operation performed through it, so the scope can be rolled back.
func (r *Record[T]) Checkpoint() *RecordCheckpoint[T] {
	return &RecordCheckpoint[T]{inner: r}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
