package undo

// at is a position in the branch forest: a branch id and a cursor within
// that branch's timeline.
type at struct {
	branch int
	cursor int
}

// branch holds a displaced tail of entries together with the position in
// the forest it forked from.
type branch[T any] struct {
	parent   at
	commands []Entry[T]
}

// History is a branching undo/redo engine: like Record, but instead of
// discarding the tail on Apply, it keeps it reachable as a sibling branch,
// similar to Vim's undo-tree.
//
// History embeds a Record as its active timeline and maintains a forest of
// branches keyed by id, each one pointing at the branch and cursor it
// forked from.
type History[T any] struct {
	record   *Record[T]
	root     int
	next     int
	saved    *at
	branches map[int]*branch[T]
}

// NewHistory returns a new History wrapping target, configured by opts.
func NewHistory[T any](target T, opts ...RecordOption[T]) *History[T] {
	return &History[T]{
		record:   NewRecord(target, opts...),
		root:     0,
		next:     1,
		branches: make(map[int]*branch[T]),
	}
}

// Target returns a pointer to the wrapped target.
func (h *History[T]) Target() *T { return h.record.Target() }

// Reserve hints that additional entries are expected in the active branch.
func (h *History[T]) Reserve(additional int) {
	h.record.Reserve(additional)
}

// Capacity returns the capacity of the active branch's entry storage.
func (h *History[T]) Capacity() int { return h.record.Capacity() }

// Len returns the number of entries in the active branch.
func (h *History[T]) Len() int { return h.record.Len() }

// IsEmpty reports whether the active branch is empty.
func (h *History[T]) IsEmpty() bool { return h.record.IsEmpty() }

// Limit returns the configured entry limit, or 0 if unbounded.
func (h *History[T]) Limit() int { return h.record.Limit() }

// CanUndo reports whether the active branch can undo.
func (h *History[T]) CanUndo() bool { return h.record.CanUndo() }

// CanRedo reports whether the active branch can redo.
func (h *History[T]) CanRedo() bool { return h.record.CanRedo() }

// IsSaved reports whether the target is in a saved state.
func (h *History[T]) IsSaved() bool { return h.record.IsSaved() }

// SavedIndex forwards to the active branch's Record.SavedIndex. It only
// ever reports a position while the saved marker is on the active branch;
// once a fork parks it on a sibling, SavedAt is the relevant accessor.
func (h *History[T]) SavedIndex() (int, bool) { return h.record.SavedIndex() }

// SetSaved marks the target as saved or unsaved at the current position,
// dropping any saved marker parked on an inactive branch.
func (h *History[T]) SetSaved(saved bool) {
	h.record.SetSaved(saved)
	h.saved = nil
}

// Root returns the id of the currently active branch.
func (h *History[T]) Root() int { return h.root }

// Cursor returns the cursor position within the active branch.
func (h *History[T]) Cursor() int { return h.record.Cursor() }

// Entries returns a defensive copy of the active branch's entries.
func (h *History[T]) Entries() []Entry[T] { return h.record.Entries() }

// Clear removes every branch and resets the active branch to empty,
// without undoing anything.
func (h *History[T]) Clear() {
	old := h.root
	h.root = 0
	h.next = 1
	h.saved = nil
	h.record.Clear()
	h.branches = make(map[int]*branch[T])
	emitMove(h.record.observer, SignalBranch, old, 0)
}

// SetLimit caps the number of retained entries in the active branch,
// removing child branches whose fork point is evicted and shifting the
// fork points of the remaining children of the active branch. It panics if
// limit is not positive.
func (h *History[T]) SetLimit(limit int) int {
	root := h.root
	popped := h.record.SetLimit(limit)
	for cursor := 0; cursor < popped; cursor++ {
		h.removeChildren(at{branch: root, cursor: cursor})
	}
	if popped > 0 {
		for _, b := range h.branches {
			if b.parent.branch == root {
				b.parent.cursor -= popped
			}
		}
	}
	return popped
}

// Apply pushes cmd onto the active branch. If the cursor was behind the end
// of the branch, the discarded tail becomes a new sibling branch instead of
// being lost, and Apply returns the id that branch is stored under (the id
// of the branch that was active before the fork) together with true. If
// nothing was forked off, it returns (0, false, nil).
func (h *History[T]) Apply(cmd Command[T]) (int, bool, error) {
	cursor := h.Cursor()
	var savedFilter *int
	if h.record.saved != nil && *h.record.saved > cursor {
		v := *h.record.saved
		savedFilter = &v
	}

	discarded, evicted, err := h.record.Apply(cmd)
	if err != nil {
		return 0, false, err
	}

	if evicted {
		root := h.root
		h.removeChildren(at{branch: root, cursor: 0})
		for _, b := range h.branches {
			if b.parent.branch == root {
				b.parent.cursor--
			}
		}
	}

	if len(discarded) == 0 {
		return 0, false, nil
	}

	old := h.root
	newID := h.next
	h.next++
	h.branches[old] = &branch[T]{parent: at{branch: newID, cursor: cursor}, commands: discarded}
	if h.record.saved == nil {
		h.record.saved = savedFilter
	}
	h.setRoot(newID, cursor)
	h.resolveSaved(newID, old, cursor, savedFilter)
	emitMove(h.record.observer, SignalBranch, old, newID)
	return old, true, nil
}

// Undo forwards to the active branch's Record.
func (h *History[T]) Undo() (bool, error) { return h.record.Undo() }

// Redo forwards to the active branch's Record.
func (h *History[T]) Redo() (bool, error) { return h.record.Redo() }

// GoTo walks from the current position to the command at (branchID,
// cursor), undoing and redoing along the way and re-rooting through any
// intermediate branches. It returns the id of the branch that was active
// before the move.
func (h *History[T]) GoTo(branchID, cursor int) (int, error) {
	root := h.root
	if root == branchID {
		if _, err := h.record.GoTo(cursor); err != nil {
			return 0, err
		}
		return root, nil
	}

	path, ok := h.createPath(branchID)
	if !ok {
		return 0, ErrNotFound
	}

	for _, step := range path {
		newID, b := step.id, step.branch
		old := h.root
		if _, err := h.record.GoTo(b.parent.cursor); err != nil {
			return 0, err
		}
		for _, entry := range b.commands {
			cur := h.Cursor()
			var saved *int
			if h.record.saved != nil && *h.record.saved > cur {
				v := *h.record.saved
				saved = &v
			}
			discarded, evicted, err := h.record.Apply(entry.Command)
			if err != nil {
				return 0, err
			}
			if evicted {
				r := h.root
				h.removeChildren(at{branch: r, cursor: 0})
				for _, ob := range h.branches {
					if ob.parent.branch == r {
						ob.parent.cursor--
					}
				}
			}
			if len(discarded) > 0 {
				h.branches[h.root] = &branch[T]{parent: at{branch: newID, cursor: cur}, commands: discarded}
				if h.record.saved == nil {
					h.record.saved = saved
				}
				h.setRoot(newID, cur)
				h.resolveSaved(newID, old, cur, saved)
			}
		}
	}

	if _, err := h.record.GoTo(cursor); err != nil {
		return 0, err
	}
	emitMove(h.record.observer, SignalBranch, root, h.root)
	return root, nil
}

// JumpTo moves directly to the command at (branchID, cursor) the same way
// Record.JumpTo does within a branch, splicing intermediate branches in
// wholesale rather than replaying their commands.
func (h *History[T]) JumpTo(branchID, cursor int) (int, error) {
	root := h.root
	if root == branchID {
		if _, err := h.record.JumpTo(cursor); err != nil {
			return 0, err
		}
		return root, nil
	}

	path, ok := h.createPath(branchID)
	if !ok {
		return 0, ErrNotFound
	}

	for _, step := range path {
		newID, b := step.id, step.branch
		old := h.root
		if _, err := h.record.JumpTo(b.parent.cursor); err != nil {
			return 0, err
		}

		cur := h.Cursor()
		var saved *int
		if h.record.saved != nil && *h.record.saved > cur {
			v := *h.record.saved
			saved = &v
		}
		discarded := append([]Entry[T](nil), h.record.entries[cur:]...)
		h.record.entries = h.record.entries[:cur]
		h.record.entries = append(h.record.entries, b.commands...)

		if len(discarded) > 0 {
			h.branches[h.root] = &branch[T]{parent: at{branch: newID, cursor: cur}, commands: discarded}
			if h.record.saved == nil {
				h.record.saved = saved
			}
			h.setRoot(newID, cur)
			h.resolveSaved(newID, old, cur, saved)
		}
	}

	if _, err := h.record.JumpTo(cursor); err != nil {
		return 0, err
	}
	emitMove(h.record.observer, SignalBranch, root, h.root)
	return root, nil
}

// At identifies a position in the branch forest: a branch id and a cursor
// within that branch's timeline. It is the exported counterpart of the
// internal at type, for read-only consumers outside this package.
type At struct {
	Branch int
	Cursor int
}

// Next returns the id that will be assigned to the next branch a fork
// creates.
func (h *History[T]) Next() int { return h.next }

// SavedAt returns the branch-forest position the saved marker is parked
// at when it is not on the active branch, and whether one is parked at
// all. While the saved marker is on the active branch, IsSaved/SetSaved
// are the relevant API; SavedAt only ever reports a position once a fork
// has moved the saved entry onto a sibling branch.
func (h *History[T]) SavedAt() (At, bool) {
	if h.saved == nil {
		return At{}, false
	}
	return At{Branch: h.saved.branch, Cursor: h.saved.cursor}, true
}

// BranchInfo is a read-only view of one branch in the forest: the
// position it forked from, and the entries displaced onto it.
type BranchInfo[T any] struct {
	Parent   At
	Commands []Entry[T]
}

// Branches returns a defensive copy of every inactive branch in the
// forest, keyed by branch id. The active branch (Root) is not included;
// its entries are Entries(). Exposed read-only for external inspection,
// e.g. a serializer projecting the persisted state layout.
func (h *History[T]) Branches() map[int]BranchInfo[T] {
	out := make(map[int]BranchInfo[T], len(h.branches))
	for id, b := range h.branches {
		out[id] = BranchInfo[T]{
			Parent:   At{Branch: b.parent.branch, Cursor: b.parent.cursor},
			Commands: append([]Entry[T](nil), b.commands...),
		}
	}
	return out
}

// Queue returns a HistoryQueue that defers operations against h until
// Commit or Cancel is called.
func (h *History[T]) Queue() *HistoryQueue[T] {
	return &HistoryQueue[T]{inner: h}
}

// Checkpoint returns a HistoryCheckpoint that records the inverse of every
// operation performed through it, so the scope can be rolled back.
func (h *History[T]) Checkpoint() *HistoryCheckpoint[T] {
	return &HistoryCheckpoint[T]{inner: h}
}

// setRoot reparents every branch whose fork point is at or before cursor on
// the old root onto the new root.
func (h *History[T]) setRoot(root, cursor int) {
	old := h.root
	h.root = root
	for _, b := range h.branches {
		if b.parent.branch == old && b.parent.cursor <= cursor {
			b.parent.branch = root
		}
	}
}

// resolveSaved migrates the saved marker between the active Record and the
// auxiliary per-branch slot when a fork changes which branch is active.
func (h *History[T]) resolveSaved(newID, oldID, cursor int, saved *int) {
	switch {
	case h.record.saved != nil && saved == nil && h.saved == nil:
		h.swapSaved(newID, oldID, cursor)
	case h.record.saved == nil && saved == nil && h.saved != nil:
		h.swapSaved(newID, oldID, cursor)
	case h.record.saved != nil && saved != nil && h.saved == nil:
		h.swapSaved(oldID, newID, cursor)
	}
}

// swapSaved moves the saved marker between h.saved (parked on branch old)
// and h.record.saved (active on the current root), depending on which side
// the marker currently lives and whether it is reachable from new.
func (h *History[T]) swapSaved(old, newID, cursor int) {
	if h.saved != nil && h.saved.branch == newID && h.saved.cursor <= cursor {
		savedCursor := h.saved.cursor
		h.saved = nil
		v := savedCursor
		h.record.saved = &v
		emitBool(h.record.observer, SignalSaved, true)
		return
	}
	if h.record.saved != nil {
		h.saved = &at{branch: old, cursor: *h.record.saved}
		h.record.saved = nil
		emitBool(h.record.observer, SignalSaved, false)
	}
}

// removeChildren deletes every branch that transitively forked from pos,
// and clears the saved marker if it lived on one of them.
func (h *History[T]) removeChildren(pos at) {
	dead := make(map[int]bool)
	var stack []int
	for id, b := range h.branches {
		if b.parent == pos && !dead[id] {
			dead[id] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for id, b := range h.branches {
			if b.parent.branch == parent && !dead[id] {
				dead[id] = true
				stack = append(stack, id)
			}
		}
	}
	for id := range dead {
		delete(h.branches, id)
		if h.saved != nil && h.saved.branch == id {
			h.saved = nil
		}
	}
}

type pathStep[T any] struct {
	id     int
	branch branch[T]
}

// createPath removes and returns the chain of branches from the current
// root down to (and including) to, ordered so that replaying them in
// sequence walks from root to to.
func (h *History[T]) createPath(to int) ([]pathStep[T], bool) {
	dest, ok := h.branches[to]
	if !ok {
		return nil, false
	}
	delete(h.branches, to)

	path := []pathStep[T]{{id: to, branch: *dest}}
	i := dest.parent.branch
	for i != h.root {
		b, ok := h.branches[i]
		if !ok {
			return nil, false
		}
		delete(h.branches, i)
		path = append(path, pathStep[T]{id: i, branch: *b})
		i = b.parent.branch
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, true
}
