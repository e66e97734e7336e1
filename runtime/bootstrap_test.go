package runtime

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootstrap_RegistersExpectedConstantsAndBuiltins(t *testing.T) {
	table := Bootstrap(strings.NewReader(""), io.Discard)

	names := make(map[string]bool, len(table.Builtins))
	for _, b := range table.Builtins {
		names[b.Name] = true
	}
	for _, want := range []string{"abs", "sqrt", "pow", "min", "max", "len", "int_to_float", "float_to_int", "atoi", "itoa", "read_line", "print", "println", "sem"} {
		assert.True(t, names[want], "expected builtin %q to be registered", want)
	}

	consts := make(map[string]bool, len(table.Constants))
	for _, c := range table.Constants {
		consts[c.Name] = true
	}
	for _, want := range []string{"true", "false", "PI", "E", "MAX_INT", "MIN_INT", "MAX_FLOAT", "MIN_FLOAT", "EPSILON"} {
		assert.True(t, consts[want], "expected constant %q to be registered", want)
	}
}

func TestFilter_EmptyAllowListIsNoOp(t *testing.T) {
	table := Bootstrap(strings.NewReader(""), io.Discard)
	filtered := Filter(table, nil)
	assert.Same(t, table, filtered)
}

func TestFilter_RestrictsToNamedBuiltinsButKeepsAllConstants(t *testing.T) {
	table := Bootstrap(strings.NewReader(""), io.Discard)
	filtered := Filter(table, []string{"print", "println"})

	assert.Len(t, filtered.Builtins, 2)
	names := map[string]bool{}
	for _, b := range filtered.Builtins {
		names[b.Name] = true
	}
	assert.True(t, names["print"])
	assert.True(t, names["println"])
	assert.False(t, names["sem"], "sem was not in the allow list and must be dropped")

	assert.Equal(t, len(table.Constants), len(filtered.Constants), "constants are never filtered")
}
