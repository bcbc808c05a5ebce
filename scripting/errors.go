package scripting

import "errors"

// Sentinel errors returned by scripting state operations.
var (
	// ErrStateClosed is returned when operating on a closed State.
	ErrStateClosed = errors.New("scripting: lua state is closed")
)
