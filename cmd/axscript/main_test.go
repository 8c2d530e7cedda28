package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/diagnostics"
)

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	isolateConfig(t)
	code, out, _ := execute(t, "", "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, version)
}

func TestUnknownCommand(t *testing.T) {
	isolateConfig(t)
	code, _, errOut := execute(t, "", "--no-color", "launch")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "error: unknown command")
}

func TestMissingFile(t *testing.T) {
	isolateConfig(t)
	code, _, errOut := execute(t, "", "--no-color", "-C", t.TempDir(), "run", "nope.axs")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "cannot read file nope.axs")
}

func TestHelpFallsBackToCommands(t *testing.T) {
	isolateConfig(t)
	code, out, _ := execute(t, "", "help", "run")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Run a script")
	assert.Contains(t, out, "--max-iterations")

	code, out, _ = execute(t, "", "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "quick reference")
}

func TestHelpIndexNeedsSupportedTopic(t *testing.T) {
	isolateConfig(t)
	code, _, errOut := execute(t, "", "--no-color", "help", "syntax", "--index")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, `--index is not available for topic "syntax"`)

	code, out, _ := execute(t, "", "help", "stdlib", "--index")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Global builtins:")
}

func TestConfigPath(t *testing.T) {
	isolateConfig(t)
	code, out, _ := execute(t, "", "config", "--path")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "axscript", "config.yaml")+"\n", out)
}

func TestBadConfigIsUsageError(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".axscript.yaml"), []byte("max_iterations: lots\n"), 0o644))
	code, _, errOut := execute(t, "", "--no-color", "-C", dir, "config")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "error: ")
}

func TestRunThenSummarizeTrace(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	script := `
function f(n) { return n + 1; }
f(1);
f(2);
try { throw "boom"; } catch (e) { }
print(len("abc"));
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.axs"), []byte(script), 0o644))

	code, out, _ := execute(t, "", "-C", dir, "run", "main.axs", "--trace", "trace.jsonl")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "3\n", out)

	f, err := os.Open(filepath.Join(dir, "trace.jsonl"))
	require.NoError(t, err)
	defer f.Close()
	summary, err := computeTraceSummary(f)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.FnCalls)
	assert.Equal(t, 2, summary.FnCallsByName["f"])
	assert.Equal(t, 1, summary.BuiltinCalls["len"])
	assert.Equal(t, 1, summary.Throws)
	require.NotNil(t, summary.OK)
	assert.True(t, *summary.OK)
	assert.NotEmpty(t, summary.RunID)

	code, out, _ = execute(t, "", "-C", dir, "trace", "trace.jsonl", "--text")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Function calls: 2\n  f: 2\n")
	assert.Contains(t, out, "OK: true")
}

func TestTraceSummarySkipsMalformedLines(t *testing.T) {
	trace := strings.Join([]string{
		`{"ts":"2026-01-02T03:04:05.000Z","runId":"r1","event":"run_start"}`,
		`not json`,
		`{"ts":"2026-01-02T03:04:05.001Z","runId":"r1","event":"import","data":{"module":"Math"}}`,
		``,
		`{"ts":"2026-01-02T03:04:05.002Z","runId":"r1","event":"budget_exceeded"}`,
		`{"ts":"2026-01-02T03:04:05.250Z","runId":"r1","event":"run_end","data":{"ok":"false"}}`,
	}, "\n")

	summary, err := computeTraceSummary(strings.NewReader(trace))
	require.NoError(t, err)
	assert.Equal(t, "r1", summary.RunID)
	assert.Equal(t, 4, summary.TotalEvents)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"Math"}, summary.Imports)
	assert.Equal(t, 1, summary.BudgetExceeded)
	require.NotNil(t, summary.OK)
	assert.False(t, *summary.OK)
	assert.InDelta(t, 250.0, summary.DurationMs, 0.001)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, exitInvalid, exitCodeFor(diagnostics.EParse))
	assert.Equal(t, exitInvalid, exitCodeFor(diagnostics.ELex))
	assert.Equal(t, exitDenied, exitCodeFor(diagnostics.ECapDenied))
	assert.Equal(t, exitRuntime, exitCodeFor(diagnostics.EUndefined))
	assert.Equal(t, exitRuntime, exitCodeFor(diagnostics.EBudget))
	assert.Equal(t, exitRuntime, exitCodeFor(""))
}

func TestFmtRejectsConflictingFlags(t *testing.T) {
	isolateConfig(t)
	code, _, errOut := execute(t, "print(1);", "--no-color", "fmt", "--write", "--check", "-")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, errOut, "mutually exclusive")
}

func TestFmtWriteLeavesCommentedFiles(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()
	src := "// keep me\nvar  a=1;\n"
	path := filepath.Join(dir, "main.axs")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	code, _, errOut := execute(t, "", "--no-color", "-C", dir, "fmt", "--write", "main.axs")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "warning: main.axs: contains comments, not rewritten")
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, src, string(got))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"/a", "/b"}, dedupe([]string{"/a", "/b", "/a"}))
}
