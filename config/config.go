// Package config loads the optional TOML configuration file. Values from the
// file override the defaults; command-line flags override both.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the whole configuration file
type Config struct {
	Artifacts ArtifactsConfig          `toml:"artifacts"`
	Toolchain ToolchainConfig          `toml:"toolchain"`
	Output    OutputConfig             `toml:"output"`
	Log       LogConfig                `toml:"log"`
	Circuits  map[string]CircuitConfig `toml:"circuits"`
}

// ArtifactsConfig lists the directories searched for circuit artifacts
type ArtifactsConfig struct {
	SearchDirs []string `toml:"search_dirs"`
	CacheSize  int      `toml:"cache_size"`
}

// ToolchainConfig selects the proving toolchain command
type ToolchainConfig struct {
	SnarkJS     []string `toml:"snarkjs"`
	TempDir     string   `toml:"temp_dir"`
	Concurrency int      `toml:"concurrency"`
}

// OutputConfig holds where proving runs are persisted
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// CircuitConfig pins explicit artifact paths for one circuit
type CircuitConfig struct {
	Wasm string `toml:"wasm"`
	Zkey string `toml:"zkey"`
	Vkey string `toml:"vkey"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Artifacts: ArtifactsConfig{
			SearchDirs: []string{"build", "circuits/build", "artifacts"},
			CacheSize:  64,
		},
		Toolchain: ToolchainConfig{
			SnarkJS:     []string{"snarkjs"},
			Concurrency: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Circuits: map[string]CircuitConfig{},
	}
}

// Load reads a TOML file on top of Default. An empty path returns Default.
// Unknown keys are rejected so a misspelt setting is not silently ignored.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	for i, dir := range cfg.Artifacts.SearchDirs {
		cfg.Artifacts.SearchDirs[i] = ExpandPath(dir)
	}
	cfg.Output.Dir = ExpandPath(cfg.Output.Dir)
	cfg.Toolchain.TempDir = ExpandPath(cfg.Toolchain.TempDir)
	for name, c := range cfg.Circuits {
		c.Wasm = ExpandPath(c.Wasm)
		c.Zkey = ExpandPath(c.Zkey)
		c.Vkey = ExpandPath(c.Vkey)
		cfg.Circuits[name] = c
	}

	if len(cfg.Toolchain.SnarkJS) == 0 {
		return nil, fmt.Errorf("toolchain.snarkjs must name a command")
	}
	return &cfg, nil
}

// Circuit returns the explicit artifact paths configured for name
func (c *Config) Circuit(name string) CircuitConfig {
	return c.Circuits[name]
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
