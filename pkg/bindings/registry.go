// Package bindings provides the builtins that let scripts drive the game
// object they are attached to, plus the input queries.
package bindings

import (
	"sort"

	"github.com/axarion/axscript/pkg/interpreter"
)

// Def represents a binding available to AXScript programs.
type Def struct {
	Name       string
	Mode       string // "read" or "effect"
	Capability string
	Usage      string
	// Default is returned, with a warning, when no target supports Capability.
	Default func() interpreter.Value
	Execute func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error)
}

// Registry holds registered bindings.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates a new empty binding registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Def),
	}
}

// Register adds a binding to the registry.
func (r *Registry) Register(def Def) {
	r.defs[def.Name] = &def
}

// Get retrieves a binding by name.
func (r *Registry) Get(name string) *Def {
	return r.defs[name]
}

// All returns all registered bindings.
func (r *Registry) All() map[string]*Def {
	return r.defs
}

// Names returns the binding names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins wraps every binding as a script builtin.
func (r *Registry) Builtins() map[string]*interpreter.Builtin {
	out := make(map[string]*interpreter.Builtin, len(r.defs))
	for name, def := range r.defs {
		out[name] = interpreter.NewBuiltin(name, def.call)
	}
	return out
}

// RegisterDefaults adds all built-in bindings.
func RegisterDefaults(r *Registry) {
	for _, def := range objectBindings() {
		r.Register(def)
	}
	for _, def := range inputBindings() {
		r.Register(def)
	}
}

// Defaults returns a registry populated by RegisterDefaults.
func Defaults() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// call enforces the policy, finds the target and falls back to the safe
// default when there is none.
func (d *Def) call(c *interpreter.Call, args []interpreter.Value) (interpreter.Value, error) {
	if err := c.Require(d.Capability); err != nil {
		return nil, err
	}
	target, reason := resolveTarget(c, d.Capability)
	if target == nil {
		c.Warn("%s(): %s; returning default", d.Name, reason)
		return d.Default(), nil
	}
	return d.Execute(c, target, args)
}
