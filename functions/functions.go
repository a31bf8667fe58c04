// Package functions implements the named function registry the bytecode
// loader resolves FN/FN0../FN3 operands against (spec §4.6): the standard
// functions every bytecode producer may assume exist, plus a place for a
// host or extension to register more before loading a program.
package functions

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/mna/endpointvm/values"
)

// Function is a named, fixed-arity callable the VM's FN family of opcodes
// invokes by index. Implementations must be pure and non-blocking: the VM
// calls them synchronously from inside its evaluation loop (spec §5).
type Function interface {
	Name() string
	Arity() int
	Apply(args []values.Value) (values.Value, error)
}

// funcRef is the straightforward Function implementation used for both the
// standard library and caller-registered extensions.
type funcRef struct {
	name  string
	arity int
	apply func(args []values.Value) (values.Value, error)
}

func (f *funcRef) Name() string  { return f.name }
func (f *funcRef) Arity() int    { return f.arity }
func (f *funcRef) Apply(args []values.Value) (values.Value, error) {
	if len(args) != f.arity {
		return nil, fmt.Errorf("function %s: expected %d argument(s), got %d", f.name, f.arity, len(args))
	}
	return f.apply(args)
}

// New returns a Function named name, accepting exactly arity arguments and
// implemented by apply. Used by hosts registering custom_functions (§6).
func New(name string, arity int, apply func(args []values.Value) (values.Value, error)) Function {
	return &funcRef{name: name, arity: arity, apply: apply}
}

// Registry resolves function names to implementations at bytecode-load
// time. The zero value is not usable; construct one with NewRegistry or
// NewStandardRegistry.
type Registry struct {
	byName map[string]Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Function)}
}

// NewStandardRegistry returns a registry pre-populated with the standard
// functions spec §4.6 requires: stringEquals, booleanEquals,
// isValidHostLabel, parseURL, uriEncode.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, fn := range standardFunctions() {
		r.Register(fn)
	}
	return r
}

// Register adds fn to the registry, overwriting any existing function of
// the same name. Used to install custom_functions (§6) before loading
// bytecode.
func (r *Registry) Register(fn Function) { r.byName[fn.Name()] = fn }

// Resolve looks up a function by name.
func (r *Registry) Resolve(name string) (Function, bool) {
	fn, ok := r.byName[name]
	return fn, ok
}

// Names returns the registered function names, sorted, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
