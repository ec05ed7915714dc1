// Package config provides the Runtime's tunables: step budget, which
// backend to use, optimization level, and where diagnostic IR dumps go.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig is read once when a Runtime is constructed and held for
// its lifetime; nothing in pkg/vm or pkg/jit reaches back into it.
type RuntimeConfig struct {
	// MaxSteps bounds one VM run before it aborts with a step-limit error.
	MaxSteps int `yaml:"max_steps"`
	// OptimizationLevel (0-3) is loaded and defaulted here but read by no
	// other package; pkg/jit always builds its MCJIT engine at level 3.
	OptimizationLevel int `yaml:"optimization_level"`
	// EnableJIT turns on tiered promotion from the VM to the LLVM backend.
	// Disabled, a Runtime always executes through the VM.
	EnableJIT bool `yaml:"enable_jit"`
	// HotPathThreshold is the run count after which a compiled Program is
	// promoted from the VM to the JIT backend. Ignored if EnableJIT is false.
	HotPathThreshold int `yaml:"hot_path_threshold"`
	// DiagnosticsDir, if non-empty, receives unoptimized/optimized LLVM IR
	// dumps for every JIT-compiled program.
	DiagnosticsDir string `yaml:"diagnostics_dir"`
}

// Default matches the teacher's package-level constant-default pattern
// (config.DefaultPort), extended to a struct now that the runtime has more
// than one tunable.
func Default() RuntimeConfig {
	return RuntimeConfig{
		MaxSteps:          1_000_000,
		OptimizationLevel: 3,
		EnableJIT:         true,
		HotPathThreshold:  64,
		DiagnosticsDir:    "",
	}
}

// Load reads a YAML config file over Default, so an omitted field keeps
// its default rather than zeroing out.
func Load(path string) (RuntimeConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, the inverse of Load.
func Save(cfg RuntimeConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
