// Package testutil provides shared test helpers for AXScript Go tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ScenarioFile is the file that marks a directory as a scenario.
const ScenarioFile = "scenario.yaml"

// Scenario is one CLI invocation and the outcome it must produce. Paths in
// Cmd are relative to the scenario directory.
type Scenario struct {
	Dir    string            `yaml:"-"`
	Cmd    []string          `yaml:"cmd"`
	Stdin  string            `yaml:"stdin,omitempty"`
	Env    map[string]string `yaml:"env,omitempty"`
	Tags   []string          `yaml:"tags,omitempty"`
	Expect ExpectedResult    `yaml:"expect"`
}

// Name is the scenario's directory name.
func (s *Scenario) Name() string {
	return filepath.Base(s.Dir)
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int      `yaml:"exit_code"`
	Stdout           *string  `yaml:"stdout,omitempty"`
	StdoutContains   []string `yaml:"stdout_contains,omitempty"`
	StdoutJSONSubset any      `yaml:"stdout_json_subset,omitempty"`
	Stderr           *string  `yaml:"stderr,omitempty"`
	StderrContains   []string `yaml:"stderr_contains,omitempty"`
	// Files maps paths relative to the scenario directory to the content
	// they must have after the run.
	Files map[string]string `yaml:"files,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Join(dir, ScenarioFile))
	}
	if len(s.Cmd) == 0 {
		return nil, errors.Errorf("%s: cmd is empty", dir)
	}
	s.Dir = dir
	return &s, nil
}

// ListScenarios returns all scenario directories under root in sorted order.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "list scenarios")
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), ScenarioFile)); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// CopyScenario copies the scenario's files into dst so commands that write
// files leave the checked-in copy untouched.
func CopyScenario(s *Scenario, dst string) error {
	return filepath.WalkDir(s.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Dir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}

// IsSubset reports whether expected is contained in actual. Maps match when
// every expected key matches; arrays match element-wise on a prefix. Numbers
// decoded from YAML as int compare equal to JSON float64.
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists || !IsSubset(ev, av) {
				return false
			}
		}
		return true
	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true
	case int:
		af, ok := actual.(float64)
		return ok && float64(e) == af
	case float64:
		af, ok := actual.(float64)
		return ok && e == af
	case string:
		as, ok := actual.(string)
		return ok && e == as
	case bool:
		ab, ok := actual.(bool)
		return ok && e == ab
	case nil:
		return actual == nil
	}
	return false
}
