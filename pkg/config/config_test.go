package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/capabilities"
)

// isolate points the user config at an empty directory for the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return home
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	want := Defaults()
	assert.Equal(t, want.MaxIterations, cfg.MaxIterations)
	assert.Equal(t, want.MaxCallDepth, cfg.MaxCallDepth)
	assert.Equal(t, want.Timeout, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"."}, cfg.ModulePaths)
	assert.Empty(t, cfg.Sources)
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)
	dir := t.TempDir()

	write(t, filepath.Join(home, UserFile), `
max_iterations: 500
max_call_depth: 64
log_level: info
`)
	write(t, filepath.Join(dir, FileName), `
max_iterations: 100
timeout: 2s
module_paths: [lib, vendor/scripts]
deny: [physics]
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 100, cfg.MaxIterations)
	assert.Equal(t, 64, cfg.MaxCallDepth)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"lib", "vendor/scripts"}, cfg.ModulePaths)
	assert.Equal(t, []string{
		filepath.Join(dir, FileName),
		filepath.Join(home, UserFile),
	}, cfg.Sources)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.False(t, policy.IsAllowed(capabilities.CapPhysics))
	assert.True(t, policy.IsAllowed(capabilities.CapTransform))
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	write(t, filepath.Join(dir, FileName), "max_iterations: 100\nstrict: true\n")
	write(t, filepath.Join(dir, ".env"), "AXSCRIPT_MAX_ITERATIONS=200\nAXSCRIPT_DENY=input, scene\nOTHER=1\n")
	t.Setenv("AXSCRIPT_STRICT", "false")
	t.Setenv("AXSCRIPT_TIMEOUT", "250ms")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 200, cfg.MaxIterations)
	assert.False(t, cfg.Strict)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"input", "scene"}, cfg.Deny)

	t.Setenv("AXSCRIPT_MAX_ITERATIONS", "300")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.EqualValues(t, 300, cfg.MaxIterations)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	write(t, filepath.Join(dir, FileName), "max_iteration: 5\n")
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")

	dir = t.TempDir()
	write(t, filepath.Join(dir, FileName), "deny: [teleport]\n")
	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `config deny: unknown capability "teleport"`)

	dir = t.TempDir()
	t.Setenv("AXSCRIPT_MAX_CALL_DEPTH", "deep")
	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AXSCRIPT_MAX_CALL_DEPTH")
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	write(t, path, "")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.MaxIterations)
	assert.Equal(t, []string{path}, cfg.Sources)
}

func TestYAMLRoundTrip(t *testing.T) {
	out, err := Defaults().YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "max_iterations: 1000000")
	assert.Contains(t, out, "timeout: 10s")
	assert.NotContains(t, out, "sources")
}
