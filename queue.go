package undo

// action is a single deferred operation queued against a Record or History.
type action[T any] struct {
	kind   actionKind
	cmd    Command[T]
	branch int
	cursor int
}

type actionKind int

const (
	actionApply actionKind = iota
	actionUndo
	actionRedo
	actionGoTo
)

// RecordQueue batches operations against a Record so they can be applied
// together with Commit, or discarded with Cancel. Nothing reaches the
// wrapped Record until Commit runs.
type RecordQueue[T any] struct {
	inner *Record[T]
	queue []action[T]
}

// Apply queues an Apply action.
func (q *RecordQueue[T]) Apply(cmd Command[T]) { q.queue = append(q.queue, action[T]{kind: actionApply, cmd: cmd}) }

// Undo queues an Undo action.
func (q *RecordQueue[T]) Undo() { q.queue = append(q.queue, action[T]{kind: actionUndo}) }

// Redo queues a Redo action.
func (q *RecordQueue[T]) Redo() { q.queue = append(q.queue, action[T]{kind: actionRedo}) }

// GoTo queues a GoTo action.
func (q *RecordQueue[T]) GoTo(cursor int) {
	q.queue = append(q.queue, action[T]{kind: actionGoTo, cursor: cursor})
}

// Queue returns a nested queue over the same underlying Record.
func (q *RecordQueue[T]) Queue() *RecordQueue[T] { return q.inner.Queue() }

// Checkpoint returns a checkpoint over the same underlying Record.
func (q *RecordQueue[T]) Checkpoint() *RecordCheckpoint[T] { return q.inner.Checkpoint() }

// Cancel discards every queued action without touching the Record.
func (q *RecordQueue[T]) Cancel() { q.queue = nil }

// Commit runs every queued action in order against the wrapped Record,
// stopping at the first error.
func (q *RecordQueue[T]) Commit() error {
	for _, a := range q.queue {
		switch a.kind {
		case actionApply:
			if _, _, err := q.inner.Apply(a.cmd); err != nil {
				return err
			}
		case actionUndo:
			if _, err := q.inner.Undo(); err != nil {
				return err
			}
		case actionRedo:
			if _, err := q.inner.Redo(); err != nil {
				return err
			}
		case actionGoTo:
			if _, err := q.inner.GoTo(a.cursor); err != nil {
				return err
			}
		}
	}
	q.queue = nil
	return nil
}

// HistoryQueue batches operations against a History so they can be applied
// together with Commit, or discarded with Cancel.
type HistoryQueue[T any] struct {
	inner *History[T]
	queue []action[T]
}

// Apply queues an Apply action.
func (q *HistoryQueue[T]) Apply(cmd Command[T]) {
	q.queue = append(q.queue, action[T]{kind: actionApply, cmd: cmd})
}

// Undo queues an Undo action.
func (q *HistoryQueue[T]) Undo() { q.queue = append(q.queue, action[T]{kind: actionUndo}) }

// Redo queues a Redo action.
func (q *HistoryQueue[T]) Redo() { q.queue = append(q.queue, action[T]{kind: actionRedo}) }

// GoTo queues a GoTo action against the given branch and cursor.
func (q *HistoryQueue[T]) GoTo(branch, cursor int) {
	q.queue = append(q.queue, action[T]{kind: actionGoTo, branch: branch, cursor: cursor})
}

// Queue returns a nested queue over the same underlying History.
func (q *HistoryQueue[T]) Queue() *HistoryQueue[T] { return q.inner.Queue() }

// Checkpoint returns a checkpoint over the same underlying History.
func (q *HistoryQueue[T]) Checkpoint() *HistoryCheckpoint[T] { return q.inner.Checkpoint() }

// Cancel discards every queued action without touching the History.
func (q *HistoryQueue[T]) Cancel() { q.queue = nil }

// Commit runs every queued action in order against the wrapped History,
// stopping at the first error.
func (q *HistoryQueue[T]) Commit() error {
	for _, a := range q.queue {
		switch a.kind {
		case actionApply:
			if _, _, err := q.inner.Apply(a.cmd); err != nil {
				return err
			}
		case actionUndo:
			if _, err := q.inner.Undo(); err != nil {
				return err
			}
		case actionRedo:
			if _, err := q.inner.Redo(); err != nil {
				return err
			}
		case actionGoTo:
			if _, err := q.inner.GoTo(a.branch, a.cursor); err != nil {
				return err
			}
		}
	}
	q.queue = nil
	return nil
}
