package runtime

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUndefined is wrapped by Get and Assign so the evaluator can attach the
// offending node's location before reporting.
var ErrUndefined = errors.New("undefined variable")

// Environment provides lexical scoping for bhasha values. Lookup and
// assignment walk outward through the parent chain; the parent reference is
// lookup-only, never ownership.
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

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the innermost scope. Redefining a
// name in the same scope is declaration-as-assignment, not an error.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// Assign updates an existing binding in the first scope where it appears.
// Assignment never creates a binding.
func (e *Environment) Assign(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// Extend creates a child scope chained to the receiver.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// Keys returns the local bindings in sorted order (useful for determinism in
// tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
