package vm

import "github.com/wudi/threadvm/values"

// EnvID identifies an Environment within a Runtime's registry. Threads and
// runtime frames refer to environments by EnvID. A Closure carries its
// defining *Environment (which implements values.Env, so the values package
// needs no import of package vm); the VM reads only its id and resolves it
// through the registry.
type EnvID uint64

func (id EnvID) ID() uint64 { return uint64(id) }

// Environment is a lexical frame: a symbol-to-value mapping plus an
// optional parent. Lookup walks the chain parent-wards; assignment writes
// into the nearest frame that already binds the symbol; declaration (via
// ENTERSCOPE) always writes into the newly created frame itself (core spec
// §3).
type Environment struct {
	id        EnvID
	parent    EnvID
	hasParent bool
	vars      map[string]*values.Value
}

func newEnvironment(id EnvID, parent EnvID, hasParent bool) *Environment {
	return &Environment{id: id, parent: parent, hasParent: hasParent, vars: make(map[string]*values.Value)}
}

func (e *Environment) ID() uint64 { return uint64(e.id) }

// EnvRegistry is the sole strong-reference holder for every Environment
// ever created. Threads refer to environments by EnvID, and closures reach
// theirs through the registry by the id of the *Environment they carry;
// MarkAndSweep (vm/gc.go) is the only thing that removes entries.
type EnvRegistry struct {
	next    EnvID
	entries map[EnvID]*Environment
}

func newEnvRegistry() *EnvRegistry {
	return &EnvRegistry{entries: make(map[EnvID]*Environment)}
}

// new creates a fresh environment, records it in the registry, and returns
// its ID. parent is ignored when hasParent is false (the root/global
// environment).
func (r *EnvRegistry) new(parent EnvID, hasParent bool) EnvID {
	r.next++
	id := r.next
	r.entries[id] = newEnvironment(id, parent, hasParent)
	return id
}

func (r *EnvRegistry) get(id EnvID) *Environment {
	env, ok := r.entries[id]
	if !ok {
		panic("environment not in registry: this is a GC soundness bug")
	}
	return env
}

func (r *EnvRegistry) len() int { return len(r.entries) }

// lookup walks the parent chain starting at id looking for sym, returning
// the bound value and true, or (nil, false) if no frame in the chain binds
// it.
func (r *EnvRegistry) lookup(id EnvID, sym string) (*values.Value, bool) {
	for {
		env := r.get(id)
		if v, ok := env.vars[sym]; ok {
			return v, true
		}
		if !env.hasParent {
			return nil, false
		}
		id = env.parent
	}
}

// assign writes val into the nearest frame in the chain starting at id
// that already binds sym, returning false if no such frame exists.
func (r *EnvRegistry) assign(id EnvID, sym string, val *values.Value) bool {
	for {
		env := r.get(id)
		if _, ok := env.vars[sym]; ok {
			env.vars[sym] = val
			return true
		}
		if !env.hasParent {
			return false
		}
		id = env.parent
	}
}

// declare binds sym to val directly in the frame id, as ENTERSCOPE does for
// each declared symbol (bound to Uninitialized) and as the global
// bootstrap does for constants and builtins.
func (r *EnvRegistry) declare(id EnvID, sym string, val *values.Value) {
	r.get(id).vars[sym] = val
}
