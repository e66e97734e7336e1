// Package runtime assembles the host builtin/constant table core spec §6
// defines, the same table the vm package's New installs into a
// fresh global environment (vm.bootstrapGlobals). Splitting this out of
// package vm mirrors the teacher's split between runtime (function
// implementations) and vm (the engine that hosts them).
package runtime

import (
	"io"
	"math"

	"github.com/wudi/threadvm/registry"
	"github.com/wudi/threadvm/values"
)

// Bootstrap builds the registry.Table a fresh global environment starts
// with: the constants and builtins core spec §6 names, plus the sem
// builtin SPEC_FULL.md adds so programs can construct semaphores. stdin
// and stdout back read_line/print/println.
func Bootstrap(stdin io.Reader, stdout io.Writer) *registry.Table {
	t := &registry.Table{Constants: constants()}
	t.Builtins = append(t.Builtins, mathFunctions()...)
	t.Builtins = append(t.Builtins, stringFunctions()...)
	t.Builtins = append(t.Builtins, convertFunctions()...)
	t.Builtins = append(t.Builtins, ioFunctions(stdin, stdout)...)
	t.Builtins = append(t.Builtins, concurrencyFunctions()...)
	return t
}

// Filter restricts t to the named builtins, leaving every constant in
// place. An empty allow list is a no-op (returns t unchanged), matching
// config.Config.Builtins' "empty means everything" default.
func Filter(t *registry.Table, allow []string) *registry.Table {
	if len(allow) == 0 {
		return t
	}
	keep := make(map[string]bool, len(allow))
	for _, name := range allow {
		keep[name] = true
	}
	filtered := &registry.Table{Constants: t.Constants}
	for _, b := range t.Builtins {
		if keep[b.Name] {
			filtered.Builtins = append(filtered.Builtins, b)
		}
	}
	return filtered
}

func constants() []registry.Constant {
	return []registry.Constant{
		{Name: "true", Value: values.NewBool(true)},
		{Name: "false", Value: values.NewBool(false)},
		{Name: "PI", Value: values.NewFloat(math.Pi)},
		{Name: "E", Value: values.NewFloat(math.E)},
		{Name: "MAX_INT", Value: values.NewInt(math.MaxInt64)},
		{Name: "MIN_INT", Value: values.NewInt(math.MinInt64)},
		{Name: "MAX_FLOAT", Value: values.NewFloat(math.MaxFloat64)},
		{Name: "MIN_FLOAT", Value: values.NewFloat(-math.MaxFloat64)},
		{Name: "EPSILON", Value: values.NewFloat(2.220446049250313e-16)},
	}
}
