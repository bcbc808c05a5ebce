package undo

// RecordOption configures a Record at construction time.
type RecordOption[T any] func(*recordConfig[T])

type recordConfig[T any] struct {
	capacity int
	limit    int
	saved    bool
	observer Observer
}

// WithCapacity sets a preallocation hint for the number of entries the
// Record or History is expected to hold. It never bounds growth.
func WithCapacity[T any](capacity int) RecordOption[T] {
	return func(c *recordConfig[T]) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}

// WithLimit caps the number of entries retained; the oldest are evicted
// once the cap is exceeded. Unset (or zero) means unbounded.
func WithLimit[T any](limit int) RecordOption[T] {
	return func(c *recordConfig[T]) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithSaved marks the target as initially saved (true) or unsaved (false).
// The target is considered saved by default.
func WithSaved[T any](saved bool) RecordOption[T] {
	return func(c *recordConfig[T]) {
		c.saved = saved
	}
}

// WithObserver registers a callback invoked synchronously for every state
// transition signal. At most one observer is supported; the last one wins.
func WithObserver[T any](obs Observer) RecordOption[T] {
	return func(c *recordConfig[T]) {
		c.observer = obs
	}
}

func newRecordConfig[T any](opts []RecordOption[T]) recordConfig[T] {
	cfg := recordConfig[T]{saved: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
