package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepfamily/identity-zk/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zkpi.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[artifacts]
search_dirs = ["/opt/circuits"]

[toolchain]
snarkjs = ["npx", "snarkjs"]

[output]
dir = "runs"

[circuits.person-hash]
wasm = "/opt/ph.wasm"
zkey = "/opt/ph_final.zkey"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/opt/circuits"}, cfg.Artifacts.SearchDirs)
	assert.Equal(t, []string{"npx", "snarkjs"}, cfg.Toolchain.SnarkJS)
	assert.Equal(t, "runs", cfg.Output.Dir)
	assert.Equal(t, "/opt/ph.wasm", cfg.Circuit("person-hash").Wasm)
	assert.Equal(t, "", cfg.Circuit("salted-name").Wasm)

	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 64, cfg.Artifacts.CacheSize)
	assert.Equal(t, 2, cfg.Toolchain.Concurrency)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := config.Load(writeConfig(t, "[artifacts]\nsearch_dir = [\"x\"]\n"))
	assert.Error(t, err)
}

func TestLoadRejectsEmptyToolchain(t *testing.T) {
	_, err := config.Load(writeConfig(t, "[toolchain]\nsnarkjs = []\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "zk"), config.ExpandPath("~/zk"))
	assert.Equal(t, "/abs", config.ExpandPath("/abs"))
	assert.Equal(t, "", config.ExpandPath(""))
}
