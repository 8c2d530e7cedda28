package capabilities

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// InputState is a fixed snapshot of one frame of input. It implements Input
// for tests and for running scripts from the command line.
type InputState struct {
	Pressed     []string           `yaml:"pressed"`
	JustPressed []string           `yaml:"just_pressed"`
	Held        []int              `yaml:"buttons"`
	Clicked     []int              `yaml:"clicked"`
	Mouse       Vec                `yaml:"mouse"`
	Axes        map[string]float64 `yaml:"axes"`
}

func (s *InputState) KeyPressed(key string) bool {
	return containsString(s.Pressed, key) || containsString(s.JustPressed, key)
}

func (s *InputState) KeyJustPressed(key string) bool {
	return containsString(s.JustPressed, key)
}

func (s *InputState) MouseClicked(button int) bool {
	return containsInt(s.Clicked, button)
}

func (s *InputState) MousePressed(button int) bool {
	return containsInt(s.Held, button) || containsInt(s.Clicked, button)
}

func (s *InputState) MousePosition() (float64, float64) {
	return s.Mouse.X, s.Mouse.Y
}

// Axis returns the named axis clamped to [-1, 1]; unknown axes read 0.
func (s *InputState) Axis(name string) float64 {
	v := s.Axes[name]
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// LoadInput reads an InputState from a YAML file.
func LoadInput(path string) (*InputState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read input file %s", path)
	}
	var s InputState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decode input file %s", path)
	}
	return &s, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
