// Package config loads the optional pendragon.toml settings file read
// by lvm and lasm: a struct with TOML tags, a DefaultConfig
// constructor, and tolerant loading (a missing file is not an error).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds every setting lvm and lasm read at startup.
type Config struct {
	Execution struct {
		DefaultLoadAddress uint32 `toml:"default_load_address"`
		StackContextSize   uint32 `toml:"stack_context_size"`
		MaxSteps           uint64 `toml:"max_steps"`
		FlushOnPrint       bool   `toml:"flush_on_print"`
	} `toml:"execution"`

	Assembler struct {
		DefaultOutputPath string `toml:"default_output_path"`
		VerboseByDefault  bool   `toml:"verbose_by_default"`
	} `toml:"assembler"`

	Logging struct {
		Format string `toml:"format"` // "text" or "json"
		Level  string `toml:"level"`  // "trace", "info", "error"
	} `toml:"logging"`
}

// DefaultConfig returns the settings lvm/lasm use when no
// pendragon.toml is found.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.DefaultLoadAddress = 0
	cfg.Execution.StackContextSize = 64 * 1024
	cfg.Execution.MaxSteps = 10_000_000
	cfg.Execution.FlushOnPrint = true

	cfg.Assembler.DefaultOutputPath = "out.bin"
	cfg.Assembler.VerboseByDefault = false

	cfg.Logging.Format = "text"
	cfg.Logging.Level = "info"

	return cfg
}

// configFileName is the fixed name lvm/lasm look for.
const configFileName = "pendragon.toml"

// findConfigPath looks for pendragon.toml next to the running binary,
// then in the current directory. Absence of either is not reported
// here; the caller falls back to DefaultConfig.
func findConfigPath() (string, bool) {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}
	return "", false
}

// Load looks for pendragon.toml next to the binary or in the current
// directory and applies it over DefaultConfig; absence is not an
// error.
func Load() (*Config, error) {
	path, found := findConfigPath()
	if !found {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from the specified file, applying it
// over DefaultConfig. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the configuration to path in TOML form, for tooling
// that wants to seed a pendragon.toml from DefaultConfig.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	f, err := os.Create(path) // #nosec G304 -- user-provided config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
