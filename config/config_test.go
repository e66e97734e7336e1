package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasNoQuantumOverrideAndDebugOff(t *testing.T) {
	c := Default()
	assert.Equal(t, time.Duration(0), c.TimeQuantum())
	assert.False(t, c.Debug)
	assert.Empty(t, c.Builtins)
}

func TestLoad_DecodesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vm-demo.toml")
	contents := []byte(`
time_quantum_ms = 50
debug = true
builtins = ["print", "println", "sem"]
`)
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(50), c.TimeQuantumMs)
	assert.True(t, c.Debug)
	assert.Equal(t, []string{"print", "println", "sem"}, c.Builtins)
	assert.Equal(t, 50*time.Millisecond, c.TimeQuantum())
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}

func TestTimeQuantum_ZeroOrNegativeMeansUnset(t *testing.T) {
	assert.Equal(t, time.Duration(0), Config{TimeQuantumMs: 0}.TimeQuantum())
	assert.Equal(t, time.Duration(0), Config{TimeQuantumMs: -5}.TimeQuantum())
	assert.Equal(t, 5*time.Millisecond, Config{TimeQuantumMs: 5}.TimeQuantum())
}
