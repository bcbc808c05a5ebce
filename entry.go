package undo

import "time"

// Entry wraps a Command with per-entry metadata that is opaque to Record
// and History. The timestamp is recorded for the caller's benefit (display,
// time-travel UIs); the engines never read it back.
type Entry[T any] struct {
	Command   Command[T]
	Timestamp time.Time
}

func newEntry[T any](cmd Command[T]) Entry[T] {
	return Entry[T]{Command: cmd, Timestamp: time.Now()}
}

// apply/undo/redo forward to the wrapped command so an Entry can be
// used anywhere a Command is expected internally.

func (e Entry[T]) apply(target *T) error { return e.Command.Apply(target) }
func (e Entry[T]) undo(target *T) error  { return e.Command.Undo(target) }
func (e Entry[T]) redo(target *T) error  { return redo(e.Command, target) }
