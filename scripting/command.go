package scripting

import (
	"encoding/json"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	undo "github.com/dshills/undo"
)

// CommandSpec names the Lua functions and static parameters behind one
// Command instance. Name and Args are passed to MergeFn so Lua-side logic
// can decide whether two instances coalesce without either one seeing the
// other's target value.
type CommandSpec struct {
	// Name identifies the kind of edit (e.g. "insert-char"). It has no
	// meaning to the engine; it exists so MergeFn can distinguish command
	// kinds without inspecting target state.
	Name string
	// Args are the static parameters of this instance (e.g. which
	// character was inserted and at what offset).
	Args []interface{}

	ApplyFn string
	UndoFn  string
	// RedoFn is called instead of ApplyFn on redo, for commands whose
	// redo differs from a plain re-apply. Empty reuses ApplyFn.
	RedoFn string
	// MergeFn is called to coalesce with the command immediately before
	// this one. Empty disables merging for this command.
	MergeFn string
}

// Command adapts a CommandSpec into an undo.Command[T]: Apply, Undo, Redo,
// and Merge each call into the named Lua functions in state, converting T
// to and from a Lua table via Bridge (struct fields keyed by their json
// tag, the same convention the rest of this module's persisted-state
// layout uses).
//
// Every Lua function receives the current target value as its first
// argument, followed by spec.Args, and must return the next target value
// in the same shape. MergeFn instead receives (selfName, selfArgs,
// otherName, otherArgs) and returns (merged bool, newArgs table|nil).
type Command[T any] struct {
	state  *State
	bridge *Bridge
	spec   CommandSpec
}

// New builds a Command bound to state, running spec's named functions.
func New[T any](state *State, spec CommandSpec) *Command[T] {
	return &Command[T]{state: state, bridge: NewBridge(state.LuaState()), spec: spec}
}

// Spec returns the command's current spec, reflecting any Args update a
// prior Merge made.
func (c *Command[T]) Spec() CommandSpec { return c.spec }

func (c *Command[T]) call(fn string, target *T) error {
	args := make([]lua.LValue, 0, len(c.spec.Args)+1)
	args = append(args, c.bridge.ToLuaValue(*target))
	for _, a := range c.spec.Args {
		args = append(args, c.bridge.ToLuaValue(a))
	}

	results, err := c.state.Call(fn, args...)
	if err != nil {
		return fmt.Errorf("scripting: %s %q: %w", fn, c.spec.Name, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("scripting: %s %q returned no value", fn, c.spec.Name)
	}
	return c.unmarshalInto(target, results[0])
}

func (c *Command[T]) unmarshalInto(target *T, lv lua.LValue) error {
	raw, err := json.Marshal(c.bridge.ToGoValue(lv))
	if err != nil {
		return fmt.Errorf("scripting: encode result of %q: %w", c.spec.Name, err)
	}
	var next T
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("scripting: decode result of %q: %w", c.spec.Name, err)
	}
	*target = next
	return nil
}

// Apply calls spec.ApplyFn.
func (c *Command[T]) Apply(target *T) error { return c.call(c.spec.ApplyFn, target) }

// Undo calls spec.UndoFn.
func (c *Command[T]) Undo(target *T) error { return c.call(c.spec.UndoFn, target) }

// Redo calls spec.RedoFn, or re-applies via spec.ApplyFn if RedoFn is
// empty. Always implemented, satisfying undo.Redoer[T] unconditionally -
// the redo-differs-from-apply case is an opt-in inside the spec, not a
// separate Go type.
func (c *Command[T]) Redo(target *T) error {
	if c.spec.RedoFn == "" {
		return c.Apply(target)
	}
	return c.call(c.spec.RedoFn, target)
}

// Merge calls spec.MergeFn with both commands' name and args. If it
// reports a merge, this command's Args are replaced with the returned
// array and the caller (other) is discarded. A Command with no MergeFn,
// or paired against a non-*Command[T] value, always rejects.
func (c *Command[T]) Merge(other undo.Command[T]) undo.MergeResult[T] {
	if c.spec.MergeFn == "" {
		return undo.MergeReject[T](other)
	}
	peer, ok := other.(*Command[T])
	if !ok {
		return undo.MergeReject[T](other)
	}

	results, err := c.state.Call(c.spec.MergeFn,
		c.bridge.ToLuaValue(c.spec.Name), c.bridge.ToLuaValue(c.spec.Args),
		c.bridge.ToLuaValue(peer.spec.Name), c.bridge.ToLuaValue(peer.spec.Args),
	)
	if err != nil || len(results) == 0 {
		return undo.MergeReject[T](other)
	}

	merged, _ := results[0].(lua.LBool)
	if !bool(merged) {
		return undo.MergeReject[T](other)
	}
	if len(results) > 1 {
		if args, ok := c.bridge.ToGoValue(results[1]).([]interface{}); ok {
			c.spec.Args = args
		}
	}
	return undo.MergeInto[T]()
}
