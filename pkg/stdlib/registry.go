// Package stdlib provides the AXScript global builtins, the standard modules
// (Math, String, Array, Console, JSON) and the module registry.
package stdlib

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/interpreter"
)

// Registry holds global builtin functions by name.
type Registry struct {
	fns map[string]*interpreter.Builtin
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]*interpreter.Builtin)}
}

// Register adds a builtin to the registry, replacing any previous one.
func (r *Registry) Register(name string, fn interpreter.BuiltinFunc) {
	r.fns[name] = interpreter.NewBuiltin(name, fn)
}

// Get retrieves a builtin by name.
func (r *Registry) Get(name string) *interpreter.Builtin {
	return r.fns[name]
}

// All returns all registered builtins.
func (r *Registry) All() map[string]*interpreter.Builtin {
	return r.fns
}

// Loader produces the exports of a module that was not registered up front.
type Loader interface {
	Load(ctx context.Context, name string) (*interpreter.Object, error)
}

// ErrModuleNotFound is returned (wrapped) when no module has the requested name.
var ErrModuleNotFound = errors.New("module not found")

// ModuleSystem is the registry of importable modules. Registration usually
// happens at startup; lookups may run concurrently from many executions.
type ModuleSystem struct {
	mu      sync.RWMutex
	modules map[string]*interpreter.Object
	loader  Loader
}

// NewModuleSystem returns an empty module system.
func NewModuleSystem() *ModuleSystem {
	return &ModuleSystem{modules: make(map[string]*interpreter.Object)}
}

// Standard returns a module system holding Math, String, Array, Console and JSON.
func Standard() *ModuleSystem {
	m := NewModuleSystem()
	m.RegisterModule("Math", MathModule())
	m.RegisterModule("String", StringModule())
	m.RegisterModule("Array", ArrayModule())
	m.RegisterModule("Console", ConsoleModule())
	m.RegisterModule("JSON", JSONModule())
	return m
}

// Prototypes returns the method tables for array and string receivers:
// `arr.push(x)` runs Array.push(arr, x).
func Prototypes() map[string]*interpreter.Object {
	return map[string]*interpreter.Object{
		"array":  ArrayModule(),
		"string": StringModule(),
	}
}

// RegisterModule makes exports importable under name.
func (m *ModuleSystem) RegisterModule(name string, exports *interpreter.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[name] = exports
}

// SetLoader installs a fallback for names that are not registered.
func (m *ModuleSystem) SetLoader(l Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loader = l
}

// Module returns a registered module's exports.
func (m *ModuleSystem) Module(name string) (*interpreter.Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exports, ok := m.modules[name]
	return exports, ok
}

// Names lists the registered modules in sorted order.
func (m *ModuleSystem) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.modules))
	for name := range m.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImportFrom returns the named exports of a registered module. Every name
// must exist.
func (m *ModuleSystem) ImportFrom(module string, names []string) (map[string]interpreter.Value, error) {
	exports, ok := m.Module(module)
	if !ok {
		return nil, errors.Wrap(ErrModuleNotFound, module)
	}
	out := make(map[string]interpreter.Value, len(names))
	for _, name := range names {
		v, ok := exports.Get(name)
		if !ok {
			return nil, errors.Errorf("Module '%s' has no export '%s'", module, name)
		}
		out[name] = v
	}
	return out, nil
}

// Resolve implements interpreter.ModuleResolver. Modules produced by the
// loader are cached, so each file runs at most once per module system.
func (m *ModuleSystem) Resolve(ctx context.Context, name string) (*interpreter.Object, error) {
	if exports, ok := m.Module(name); ok {
		return exports, nil
	}
	m.mu.RLock()
	loader := m.loader
	m.mu.RUnlock()
	if loader == nil {
		return nil, notFound(name)
	}
	exports, err := loader.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return nil, notFound(name)
		}
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.modules[name]; ok {
		return cached, nil
	}
	m.modules[name] = exports
	return exports, nil
}

func notFound(name string) error {
	return &interpreter.RuntimeError{Code: diagnostics.EModule, Message: "Module not found: " + name}
}
