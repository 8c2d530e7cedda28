package interpreter

import "fmt"

// Env is a lexical scope with three independent namespaces: variables,
// functions and classes. A variable and a function may share a name.
type Env struct {
	vars      map[string]Value
	functions map[string]Value
	classes   map[string]*Class
	parent    *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		vars:   make(map[string]Value),
		parent: parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Parent returns the enclosing scope, nil for the global scope.
func (e *Env) Parent() *Env {
	return e.parent
}

// Define binds a variable in this scope, shadowing any outer binding.
func (e *Env) Define(name string, val Value) {
	e.vars[name] = val
}

// Lookup finds a variable by name, traversing parent scopes.
func (e *Env) Lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if val, ok := s.vars[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Get is Lookup with the script-visible error for missing names.
func (e *Env) Get(name string) (Value, error) {
	if val, ok := e.Lookup(name); ok {
		return val, nil
	}
	return nil, fmt.Errorf("Undefined variable: %s", name)
}

// Update assigns to the nearest existing binding and reports whether one was found.
func (e *Env) Update(name string, val Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = val
			return true
		}
	}
	return false
}

// Set assigns to the nearest existing binding, or defines the name in this
// scope when no binding exists anywhere in the chain.
func (e *Env) Set(name string, val Value) {
	if !e.Update(name, val) {
		e.vars[name] = val
	}
}

// Has checks whether a variable is defined in this scope or any parent.
func (e *Env) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// DefineFunction binds a callable in the function namespace of this scope.
func (e *Env) DefineFunction(name string, fn Value) {
	if e.functions == nil {
		e.functions = make(map[string]Value)
	}
	e.functions[name] = fn
}

// LookupFunction finds a callable in the function namespace.
func (e *Env) LookupFunction(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if fn, ok := s.functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// DefineClass binds a class in the class namespace of this scope.
func (e *Env) DefineClass(name string, c *Class) {
	if e.classes == nil {
		e.classes = make(map[string]*Class)
	}
	e.classes[name] = c
}

// LookupClass finds a class in the class namespace.
func (e *Env) LookupClass(name string) (*Class, bool) {
	for s := e; s != nil; s = s.parent {
		if c, ok := s.classes[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// Names returns the variable names bound directly in this scope.
func (e *Env) Names() []string {
	out := make([]string, 0, len(e.vars))
	for k := range e.vars {
		out = append(out, k)
	}
	return out
}
