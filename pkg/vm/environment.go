package vm

import (
	"sort"
	"strings"

	"github.com/zurustar/bna/pkg/value"
)

// Environment maps variable names to values for one run.
//
// An Environment is owned by a single run and is not safe for concurrent use.
// There is a single flat namespace; the language has no procedures and so no
// nested scopes.
type Environment struct {
	variables map[string]value.Value
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		variables: make(map[string]value.Value),
	}
}

// EnvironmentOf creates an environment holding copies of vars.
func EnvironmentOf(vars map[string]value.Value) *Environment {
	env := NewEnvironment()
	for name, v := range vars {
		env.variables[name] = v.Clone()
	}
	return env
}

// Get retrieves a variable value by name.
//
// Returns:
//   - value.Value: The variable value
//   - bool: true if the variable was found, false otherwise
func (e *Environment) Get(name string) (value.Value, bool) {
	v, ok := e.variables[name]
	return v, ok
}

// Set creates or replaces a variable.
func (e *Environment) Set(name string, v value.Value) {
	e.variables[name] = v
}

// Has checks if a variable exists.
func (e *Environment) Has(name string) bool {
	_, ok := e.variables[name]
	return ok
}

// Len returns the number of variables.
func (e *Environment) Len() int { return len(e.variables) }

// Keys returns all variable names in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.variables))
	for k := range e.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy. Lists are copied too, so the clone never aliases e.
func (e *Environment) Clone() *Environment {
	return EnvironmentOf(e.variables)
}

// Equal reports whether both environments hold the same names and values.
func (e *Environment) Equal(o *Environment) bool {
	if e.Len() != o.Len() {
		return false
	}
	for k, v := range e.variables {
		ov, ok := o.variables[k]
		if !ok || v.Kind() != ov.Kind() || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String renders the environment as "name=value" pairs in name order.
func (e *Environment) String() string {
	parts := make([]string, 0, len(e.variables))
	for _, k := range e.Keys() {
		parts = append(parts, k+"="+e.variables[k].GoString())
	}
	return "{" + strings.Join(parts, " ") + "}"
}
