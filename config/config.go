// Package config loads vm-demo's runtime configuration from a TOML file
// (github.com/BurntSushi/toml). The teacher has no direct equivalent — it
// reads PHP's php.ini format instead — so this package follows the pack's
// joeycumines-go-utilpkg example for the load-a-struct-from-a-file-by-path
// shape, applied to this VM's much smaller knob set.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk shape of a vm-demo configuration file.
type Config struct {
	// TimeQuantumMs is the scheduler's preemption quantum, in
	// milliseconds. Zero means "use vm.DefaultTimeQuantum".
	TimeQuantumMs int64 `toml:"time_quantum_ms"`

	// Debug enables verbose scheduler/GC logging.
	Debug bool `toml:"debug"`

	// Builtins, if non-empty, restricts the global environment to exactly
	// these builtin names (plus every constant) instead of the full
	// runtime.Bootstrap table — useful for demos that want to prove a
	// program doesn't depend on an I/O builtin it shouldn't need.
	Builtins []string `toml:"builtins"`
}

// Default returns the configuration vm-demo runs with when no file is
// given: no quantum override, debug off, every builtin available.
func Default() Config {
	return Config{}
}

// TimeQuantum returns the configured quantum, or 0 if unset (callers fall
// back to vm.DefaultTimeQuantum).
func (c Config) TimeQuantum() time.Duration {
	if c.TimeQuantumMs <= 0 {
		return 0
	}
	return time.Duration(c.TimeQuantumMs) * time.Millisecond
}

// Load decodes a TOML configuration file at path.
func Load(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return c, nil
}
