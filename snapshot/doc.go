// Package snapshot projects a Record or History onto the "persisted state
// layout" plain-data shape: target, entry sequence, cursor/limit/saved
// bookkeeping for Record; root/next/saved/branch-forest for History. It is
// an external collaborator in the sense the core package documents - it
// only ever reads a Record/History through their exported accessors, never
// reaches into their internals, and the core never calls back into it.
//
// Encoding is built incrementally with sjson (only the per-entry view
// carries json tags of its own, besides the target type's), and read back with
// gjson so a caller can inspect or diff a projection's fields without a
// full unmarshal.
package snapshot
