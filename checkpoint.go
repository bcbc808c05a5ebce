package undo

// checkpointAction records enough information to invert one step performed
// through a checkpoint.
type checkpointAction[T any] struct {
	kind      actionKind
	discarded []Entry[T]
	branch    int
	cursor    int
}

// RecordCheckpoint wraps a Record and records the inverse of every
// operation performed through it, so the whole scope can be rolled back
// with Cancel. Commit simply drops the recorded log, keeping every change
// made so far.
type RecordCheckpoint[T any] struct {
	inner *Record[T]
	stack []checkpointAction[T]
}

// Len returns the number of actions recorded so far.
func (c *RecordCheckpoint[T]) Len() int { return len(c.stack) }

// IsEmpty reports whether no actions have been recorded yet.
func (c *RecordCheckpoint[T]) IsEmpty() bool { return len(c.stack) == 0 }

// Apply applies cmd through the wrapped Record and records how to reverse
// it.
func (c *RecordCheckpoint[T]) Apply(cmd Command[T]) error {
	discarded, _, err := c.inner.Apply(cmd)
	if err != nil {
		return err
	}
	c.stack = append(c.stack, checkpointAction[T]{kind: actionApply, discarded: discarded})
	return nil
}

// Undo calls Undo through the wrapped Record and records how to reverse it.
func (c *RecordCheckpoint[T]) Undo() (bool, error) {
	ok, err := c.inner.Undo()
	if err != nil {
		return false, err
	}
	if ok {
		c.stack = append(c.stack, checkpointAction[T]{kind: actionUndo})
	}
	return ok, nil
}

// Redo calls Redo through the wrapped Record and records how to reverse it.
func (c *RecordCheckpoint[T]) Redo() (bool, error) {
	ok, err := c.inner.Redo()
	if err != nil {
		return false, err
	}
	if ok {
		c.stack = append(c.stack, checkpointAction[T]{kind: actionRedo})
	}
	return ok, nil
}

// GoTo calls GoTo through the wrapped Record and records how to reverse it.
func (c *RecordCheckpoint[T]) GoTo(cursor int) (bool, error) {
	old := c.inner.Cursor()
	ok, err := c.inner.GoTo(cursor)
	if err != nil {
		return false, err
	}
	if ok {
		c.stack = append(c.stack, checkpointAction[T]{kind: actionGoTo, cursor: old})
	}
	return ok, nil
}

// Extend applies each command in turn, stopping at the first error.
func (c *RecordCheckpoint[T]) Extend(cmds ...Command[T]) error {
	for _, cmd := range cmds {
		if err := c.Apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Checkpoint returns a nested checkpoint over the same underlying Record.
func (c *RecordCheckpoint[T]) Checkpoint() *RecordCheckpoint[T] { return c.inner.Checkpoint() }

// Commit drops the recorded log, keeping every change made through the
// checkpoint.
func (c *RecordCheckpoint[T]) Commit() { c.stack = nil }

// Cancel reverses every recorded action, in reverse order, restoring the
// Record to the state it was in before the checkpoint began. Unlike Queue's
// Commit, Cancel does not stop at the first failing step: it keeps
// attempting every remaining inverse action and returns the first error
// encountered, so a single bad rollback step never leaves the rest of the
// checkpoint's changes stranded.
func (c *RecordCheckpoint[T]) Cancel() error {
	var firstErr error
	for i := len(c.stack) - 1; i >= 0; i-- {
		a := c.stack[i]
		switch a.kind {
		case actionApply:
			if _, err := c.inner.Undo(); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			cursor := c.inner.Cursor()
			c.inner.entries = c.inner.entries[:cursor]
			c.inner.entries = append(c.inner.entries, a.discarded...)
		case actionUndo:
			if _, err := c.inner.Redo(); err != nil && firstErr == nil {
				firstErr = err
			}
		case actionRedo:
			if _, err := c.inner.Undo(); err != nil && firstErr == nil {
				firstErr = err
			}
		case actionGoTo:
			if _, err := c.inner.GoTo(a.cursor); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	c.stack = nil
	return firstErr
}

// HistoryCheckpoint wraps a History and records the inverse of every
// operation performed through it. Because History never truly discards a
// timeline (displaced commands survive as a sibling branch), every
// recorded Apply or GoTo can be inverted with a single GoTo back to where
// it was taken from; Undo and Redo are inverted by their opposite.
type HistoryCheckpoint[T any] struct {
	inner *History[T]
	stack []checkpointAction[T]
}

// Len returns the number of actions recorded so far.
func (c *HistoryCheckpoint[T]) Len() int { return len(c.stack) }

// IsEmpty reports whether no actions have been recorded yet.
func (c *HistoryCheckpoint[T]) IsEmpty() bool { return len(c.stack) == 0 }

// Apply applies cmd through the wrapped History and records how to reverse
// it.
func (c *HistoryCheckpoint[T]) Apply(cmd Command[T]) error {
	branch, old := c.inner.Root(), c.inner.Cursor()
	if _, _, err := c.inner.Apply(cmd); err != nil {
		return err
	}
	c.stack = append(c.stack, checkpointAction[T]{kind: actionGoTo, branch: branch, cursor: old})
	return nil
}

// Undo calls Undo through the wrapped History and records how to reverse
// it.
func (c *HistoryCheckpoint[T]) Undo() (bool, error) {
	ok, err := c.inner.Undo()
	if err != nil {
		return false, err
	}
	if ok {
		c.stack = append(c.stack, checkpointAction[T]{kind: actionUndo})
	}
	return ok, nil
}

// Redo calls Redo through the wrapped History and records how to reverse
// it.
func (c *HistoryCheckpoint[T]) Redo() (bool, error) {
	ok, err := c.inner.Redo()
	if err != nil {
		return false, err
	}
	if ok {
		c.stack = append(c.stack, checkpointAction[T]{kind: actionRedo})
	}
	return ok, nil
}

// GoTo calls GoTo through the wrapped History and records how to reverse
// it.
func (c *HistoryCheckpoint[T]) GoTo(branch, cursor int) (int, error) {
	oldBranch, oldCursor := c.inner.Root(), c.inner.Cursor()
	prev, err := c.inner.GoTo(branch, cursor)
	if err != nil {
		return 0, err
	}
	c.stack = append(c.stack, checkpointAction[T]{kind: actionGoTo, branch: oldBranch, cursor: oldCursor})
	return prev, nil
}

// Extend applies each command in turn, stopping at the first error.
func (c *HistoryCheckpoint[T]) Extend(cmds ...Command[T]) error {
	for _, cmd := range cmds {
		if err := c.Apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Commit drops the recorded log, keeping every change made through the
// checkpoint.
func (c *HistoryCheckpoint[T]) Commit() { c.stack = nil }

// Cancel reverses every recorded action, in reverse order, restoring the
// History to the branch and cursor it was at before the checkpoint began.
// Unlike Queue's Commit, Cancel does not stop at the first failing step: it
// keeps attempting every remaining inverse action and returns the first
// error encountered, so a single bad rollback step never leaves the rest
// of the checkpoint's changes stranded.
func (c *HistoryCheckpoint[T]) Cancel() error {
	var firstErr error
	for i := len(c.stack) - 1; i >= 0; i-- {
		a := c.stack[i]
		switch a.kind {
		case actionUndo:
			if _, err := c.inner.Redo(); err != nil && firstErr == nil {
				firstErr = err
			}
		case actionRedo:
			if _, err := c.inner.Undo(); err != nil && firstErr == nil {
				firstErr = err
			}
		case actionGoTo:
			if _, err := c.inner.GoTo(a.branch, a.cursor); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	c.stack = nil
	return firstErr
}
