package snapshot

import (
	"encoding/json"
	"time"

	undo "github.com/dshills/undo"
)

// Marshaler is implemented by commands that know how to represent
// themselves as plain data. A command that doesn't implement it is still
// snapshotted, just without a "command" field beyond its timestamp: the
// core's plain-data Non-goal binds the target, not arbitrary command
// bodies, which may close over state (callbacks, file handles) that has
// no sensible JSON form.
type Marshaler interface {
	MarshalSnapshot() ([]byte, error)
}

type entryView struct {
	Timestamp time.Time       `json:"timestamp"`
	Command   json.RawMessage `json:"command,omitempty"`
}

func entriesJSON[T any](entries []undo.Entry[T]) ([]byte, error) {
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{Timestamp: e.Timestamp}
		if m, ok := e.Command.(Marshaler); ok {
			raw, err := m.MarshalSnapshot()
			if err != nil {
				return nil, err
			}
			views[i].Command = raw
		}
	}
	return json.Marshal(views)
}
