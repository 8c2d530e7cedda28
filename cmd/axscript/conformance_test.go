package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/internal/testutil"
)

const scenariosRoot = "testdata/scenarios"

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(scenariosRoot)
	require.NoError(t, err)
	require.NotEmpty(t, dirs)

	for _, dir := range dirs {
		scenario, err := testutil.LoadScenario(dir)
		require.NoError(t, err)

		t.Run(scenario.Name(), func(t *testing.T) {
			workdir := t.TempDir()
			require.NoError(t, testutil.CopyScenario(scenario, workdir))
			isolateConfig(t)
			for k, v := range scenario.Env {
				t.Setenv(k, v)
			}

			args := append([]string{"-C", workdir, "--no-color"}, scenario.Cmd...)
			var stdout, stderr bytes.Buffer
			code := Execute(context.Background(), args, strings.NewReader(scenario.Stdin), &stdout, &stderr)

			expect := scenario.Expect
			assert.Equal(t, expect.ExitCode, code, "stdout: %s\nstderr: %s", stdout.String(), stderr.String())
			if expect.Stdout != nil {
				assert.Equal(t, *expect.Stdout, stdout.String())
			}
			for _, s := range expect.StdoutContains {
				assert.Contains(t, stdout.String(), s)
			}
			if expect.Stderr != nil {
				assert.Equal(t, *expect.Stderr, stderr.String())
			}
			for _, s := range expect.StderrContains {
				assert.Contains(t, stderr.String(), s)
			}
			if expect.StdoutJSONSubset != nil {
				var actual any
				require.NoError(t, json.Unmarshal(stdout.Bytes(), &actual), stdout.String())
				assert.True(t, testutil.IsSubset(expect.StdoutJSONSubset, actual),
					"stdout JSON subset mismatch:\n  expected subset: %v\n  got: %v", expect.StdoutJSONSubset, actual)
			}
			for name, want := range expect.Files {
				got, err := os.ReadFile(filepath.Join(workdir, name))
				require.NoError(t, err)
				assert.Equal(t, want, string(got), name)
			}
		})
	}
}

// isolateConfig keeps the user's config and AXSCRIPT_* variables out of a test.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "AXSCRIPT_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}
