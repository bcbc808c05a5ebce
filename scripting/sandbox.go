package scripting

import lua "github.com/yuin/gopher-lua"

// sandbox strips a Lua state down to the capabilities a command script
// needs: arithmetic, string and table manipulation, nothing that reaches
// the filesystem, a process, or the host's module path. Command scripts
// only ever see the value they are mutating and their own static
// arguments; they have no business touching the outside world.
type sandbox struct {
	L                *lua.LState
	instructionLimit int64
	instructionCount int64
}

func newSandbox(L *lua.LState, instructionLimit int64) *sandbox {
	return &sandbox{L: L, instructionLimit: instructionLimit}
}

// install removes the functions that could be used to escape the sandbox
// and replaces require with a whitelist-based version.
func (s *sandbox) install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installSafeRequire()
}

// installSafeRequire clears package.path/cpath so nothing can be loaded
// from disk, then replaces require with a version that only allows the
// built-in libraries already open on this state.
func (s *sandbox) installSafeRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	safeModules := map[string]bool{
		"string": true, "table": true, "math": true, "bit32": true, "utf8": true,
	}
	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safeModules[name] {
			L.RaiseError("module %q is not available to command scripts", name)
			return 0
		}
		L.Push(originalRequire)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

func (s *sandbox) resetInstructionCount() { s.instructionCount = 0 }
