package capabilities

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// GameObject is a self-contained context object implementing every
// capability. Hosts with their own entity model implement the interfaces
// directly; GameObject serves tests and the CLI.
type GameObject struct {
	mu       sync.Mutex
	name     string
	kind     string
	x, y     float64
	rotation float64
	vx, vy   float64
	onGround bool
	tags     map[string]bool
	props    map[string]any
	scene    *SimpleScene
}

// NewGameObject returns a visible, active object at the origin.
func NewGameObject(name string, tags ...string) *GameObject {
	g := &GameObject{
		name:  name,
		kind:  "object",
		tags:  make(map[string]bool),
		props: map[string]any{"visible": true, "active": true},
	}
	for _, t := range tags {
		g.tags[t] = true
	}
	return g
}

// Name returns the object's name.
func (g *GameObject) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name
}

func (g *GameObject) GetProperty(name string) (any, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch name {
	case "name":
		return g.name, true
	case "type":
		return g.kind, true
	case "rotation":
		return g.rotation, true
	case "position":
		return map[string]any{"x": g.x, "y": g.y}, true
	case "velocity":
		return map[string]any{"x": g.vx, "y": g.vy}, true
	}
	v, ok := g.props[name]
	return v, ok
}

func (g *GameObject) SetProperty(name string, value any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch name {
	case "name":
		if s, ok := value.(string); ok {
			g.name = s
		}
		return
	case "rotation":
		if f, ok := value.(float64); ok {
			g.rotation = f
		}
		return
	case "position":
		if x, y, ok := vecOf(value); ok {
			g.x, g.y = x, y
		}
		return
	case "velocity":
		if x, y, ok := vecOf(value); ok {
			g.vx, g.vy = x, y
		}
		return
	}
	g.props[name] = value
}

func (g *GameObject) Position() (float64, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.x, g.y
}

func (g *GameObject) SetPosition(x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.x, g.y = x, y
}

func (g *GameObject) Rotation() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *GameObject) SetRotation(deg float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = deg
}

func (g *GameObject) Velocity() (float64, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vx, g.vy
}

func (g *GameObject) SetVelocity(vx, vy float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vx, g.vy = vx, vy
}

func (g *GameObject) HasTag(tag string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tags[tag]
}

// ApplyForce adds the force to the velocity (unit mass, one step).
func (g *GameObject) ApplyForce(fx, fy float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vx += fx
	g.vy += fy
}

func (g *GameObject) IsOnGround() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.onGround
}

// SetOnGround is the host-side setter used by physics or fixtures.
func (g *GameObject) SetOnGround(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onGround = v
}

// Jump launches the object upward (negative y) when it is grounded.
func (g *GameObject) Jump(force float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.onGround {
		return
	}
	g.vy = -force
	g.onGround = false
}

func (g *GameObject) Scene() Scene {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.scene == nil {
		return nil
	}
	return g.scene
}

// SimpleScene is a flat list of objects.
type SimpleScene struct {
	mu      sync.RWMutex
	objects []*GameObject
}

// NewScene creates a scene and attaches the given objects to it.
func NewScene(objs ...*GameObject) *SimpleScene {
	s := &SimpleScene{}
	for _, o := range objs {
		s.Add(o)
	}
	return s
}

// Add attaches an object to the scene.
func (s *SimpleScene) Add(o *GameObject) {
	s.mu.Lock()
	s.objects = append(s.objects, o)
	s.mu.Unlock()
	o.mu.Lock()
	o.scene = s
	o.mu.Unlock()
}

func (s *SimpleScene) FindByTag(tag string) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []any
	for _, o := range s.objects {
		if o.HasTag(tag) {
			out = append(out, o)
		}
	}
	return out
}

// ObjectSpec is the YAML form of a GameObject.
type ObjectSpec struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Position   Vec            `yaml:"position"`
	Rotation   float64        `yaml:"rotation"`
	Velocity   Vec            `yaml:"velocity"`
	OnGround   bool           `yaml:"on_ground"`
	Tags       []string       `yaml:"tags"`
	Properties map[string]any `yaml:"properties"`
}

// Vec is an x/y pair.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// EntityFile is a context object plus the rest of its scene.
type EntityFile struct {
	ObjectSpec `yaml:",inline"`
	Scene      []ObjectSpec `yaml:"scene"`
}

// Build creates the GameObject described by the spec.
func (spec ObjectSpec) Build() *GameObject {
	g := NewGameObject(spec.Name, spec.Tags...)
	if spec.Type != "" {
		g.kind = spec.Type
	}
	g.x, g.y = spec.Position.X, spec.Position.Y
	g.rotation = spec.Rotation
	g.vx, g.vy = spec.Velocity.X, spec.Velocity.Y
	g.onGround = spec.OnGround
	for k, v := range spec.Properties {
		g.props[k] = normalizeYAML(v)
	}
	return g
}

// Spec snapshots the object's current state in its YAML form.
func (g *GameObject) Spec() ObjectSpec {
	g.mu.Lock()
	defer g.mu.Unlock()
	spec := ObjectSpec{
		Name:       g.name,
		Type:       g.kind,
		Position:   Vec{X: g.x, Y: g.y},
		Rotation:   g.rotation,
		Velocity:   Vec{X: g.vx, Y: g.vy},
		OnGround:   g.onGround,
		Properties: make(map[string]any, len(g.props)),
	}
	for t := range g.tags {
		spec.Tags = append(spec.Tags, t)
	}
	sort.Strings(spec.Tags)
	for k, v := range g.props {
		spec.Properties[k] = v
	}
	return spec
}

// LoadEntity reads an EntityFile and returns its object, attached to a scene
// holding the other listed objects.
func LoadEntity(path string) (*GameObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open entity file %s", path)
	}
	defer f.Close()
	return DecodeEntity(f, path)
}

// DecodeEntity decodes an EntityFile from r; name is used in errors.
func DecodeEntity(r io.Reader, name string) (*GameObject, error) {
	var ef EntityFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ef); err != nil {
		return nil, errors.Wrapf(err, "decode entity file %s", name)
	}
	if strings.TrimSpace(ef.Name) == "" {
		return nil, errors.Errorf("entity file %s: name is required", name)
	}
	obj := ef.ObjectSpec.Build()
	scene := NewScene(obj)
	for _, spec := range ef.Scene {
		scene.Add(spec.Build())
	}
	return obj, nil
}

func vecOf(v any) (float64, float64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, 0, false
	}
	x, xok := m["x"].(float64)
	y, yok := m["y"].(float64)
	return x, y, xok && yok
}

// normalizeYAML converts decoded YAML scalars to the boundary's value set.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	}
	return v
}
