// Package registry describes builtin functions and constants before they
// are installed into a live environment, following the teacher's
// registry.Function descriptor pattern (registry/registry.go,
// registry/types.go) generalized from PHP's function table to this
// language's flat global-environment model.
package registry

import "github.com/wudi/threadvm/values"

// Builtin describes a single host function available to compiled programs.
// Package runtime constructs a slice of these; package vm installs each one
// as a values.Closure bound in the global environment.
type Builtin struct {
	Name string
	Fn   func(args []*values.Value) (*values.Value, error)
}

// Constant describes a single named value installed into the global
// environment alongside the builtins (PI, MAX_INT, and so on).
type Constant struct {
	Name  string
	Value *values.Value
}

// Table is the full set of bindings a fresh global environment starts
// with.
type Table struct {
	Constants []Constant
	Builtins  []Builtin
}
