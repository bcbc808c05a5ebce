package scripting

import (
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Defaults for a State's best-effort limits.
const (
	DefaultExecutionTimeout = 5 * time.Second
	DefaultInstructionLimit = 10_000_000
)

// State wraps a sandboxed gopher-lua interpreter.
//
// gopher-lua's LState is not goroutine-safe; every method here takes a
// mutex, but Lua code itself still runs single-threaded. The instruction
// limit and execution timeout are stored on the State but not enforced:
// no instruction is counted and no deadline is applied to a running
// script.
type State struct {
	L  *lua.LState
	mu sync.Mutex

	executionTimeout time.Duration
	instructionLimit int64

	sandbox *sandbox
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the advisory execution timeout.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) { s.executionTimeout = d }
}

// WithInstructionLimit sets the advisory instruction limit.
func WithInstructionLimit(limit int64) StateOption {
	return func(s *State) { s.instructionLimit = limit }
}

// NewState creates a new sandboxed Lua state with only the base, table,
// string, and math libraries open.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		instructionLimit: DefaultInstructionLimit,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	state.L = L

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// Intentionally not opened: io, os, debug, package - a command script
	// has no legitimate reason to touch the filesystem, a process, or the
	// host's module loader.

	state.sandbox = newSandbox(L, state.instructionLimit)
	state.sandbox.install()

	return state, nil
}

// DoString loads and executes code, for installing the global apply/undo/
// redo/merge functions a Command will later call.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	s.sandbox.resetInstructionCount()
	return s.doWithRecovery(func() error { return s.L.DoString(code) })
}

func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scripting: lua panic: %v", r)
		}
	}()
	return fn()
}

// Call invokes a global Lua function by name with the given arguments,
// returning every value it pushed back.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}
	s.sandbox.resetInstructionCount()

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("scripting: function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("scripting: %q is not a function (got %s)", fn, fnVal.Type())
	}

	stackTop := s.L.GetTop()
	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("scripting: lua panic: %v", r)
			}
		}()
		callErr = s.L.PCall(len(args), lua.MultRet, nil)
	}()
	if callErr != nil {
		return nil, callErr
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)
	return results, nil
}

// GetGlobal returns a global variable's value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// LuaState returns the underlying interpreter. Direct access bypasses the
// mutex and the sandbox; callers are responsible for both.
func (s *State) LuaState() *lua.LState { return s.L }

// Close releases the interpreter. After Close, every other method returns
// ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
