package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Execution.DefaultLoadAddress != 0 {
		t.Errorf("Expected DefaultLoadAddress=0, got %d", cfg.Execution.DefaultLoadAddress)
	}
	if cfg.Execution.StackContextSize != 64*1024 {
		t.Errorf("Expected StackContextSize=65536, got %d", cfg.Execution.StackContextSize)
	}
	if cfg.Execution.MaxSteps != 10_000_000 {
		t.Errorf("Expected MaxSteps=10000000, got %d", cfg.Execution.MaxSteps)
	}
	if !cfg.Execution.FlushOnPrint {
		t.Error("Expected FlushOnPrint=true")
	}

	if cfg.Assembler.DefaultOutputPath != "out.bin" {
		t.Errorf("Expected DefaultOutputPath=out.bin, got %s", cfg.Assembler.DefaultOutputPath)
	}
	if cfg.Assembler.VerboseByDefault {
		t.Error("Expected VerboseByDefault=false")
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected Format=text, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected Level=info, got %s", cfg.Logging.Level)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "pendragon.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxSteps = 500
	cfg.Execution.DefaultLoadAddress = 0x1000
	cfg.Assembler.VerboseByDefault = true
	cfg.Logging.Level = "trace"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Execution.MaxSteps != 500 {
		t.Errorf("Expected MaxSteps=500, got %d", loaded.Execution.MaxSteps)
	}
	if loaded.Execution.DefaultLoadAddress != 0x1000 {
		t.Errorf("Expected DefaultLoadAddress=0x1000, got %d", loaded.Execution.DefaultLoadAddress)
	}
	if !loaded.Assembler.VerboseByDefault {
		t.Error("Expected VerboseByDefault=true")
	}
	if loaded.Logging.Level != "trace" {
		t.Errorf("Expected Level=trace, got %s", loaded.Logging.Level)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Execution.MaxSteps != 10_000_000 {
		t.Error("Expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[execution]
max_steps = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("Expected error when loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subdir1", "subdir2", "pendragon.toml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}
