package runtime

import (
	"fmt"
	"sort"
)

// Environment is one frame of the lexical scope chain. Frames are shared by
// every closure that captured them and live as long as any holder does.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the enclosing frame (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the current frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign updates an existing binding in the first frame where it appears.
// Assigning an unknown name is an error, never an implicit definition.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("Undefined variable '%s'.", name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("Undefined variable '%s'.", name)
}

// Ancestor walks exactly distance parent links.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from the frame distance hops out. The resolver guarantees
// the binding exists there.
func (e *Environment) GetAt(distance int, name string) Value {
	return e.Ancestor(distance).values[name]
}

func (e *Environment) AssignAt(distance int, name string, value Value) {
	e.Ancestor(distance).values[name] = value
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
