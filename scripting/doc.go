// Package scripting adapts Lua-defined operations into undo.Command[T]
// values, so a host application can hand its users a scripting surface
// for defining undoable edits instead of compiling Go types for each one.
//
// A Command built from this package names a pair of global Lua functions
// (apply and undo, plus optional redo and merge) that each receive the
// current target value - converted to a Lua table via Bridge - and return
// the next value in the same shape. State sandboxes the interpreter the
// way a plugin host would: no filesystem, process, or dynamic-load access,
// only the base, table, string, and math libraries.
package scripting
