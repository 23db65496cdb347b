// Package builtins implements the built-in registry (component C5): the
// closed set of primitive operations the staged evaluator can call that
// are not expressible as user-defined functions, each given a pure
// (fully-known-arguments) shape, a staged shape, or both: abs, min, max
// and length have only a pure shape, and map, filter, fold and print only
// a staged one.
package builtins

import (
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

// Apply invokes a callable SValue (a Closure or a nested Builtin) with the
// given arguments. internal/stage supplies the real implementation at
// call time so that higher-order built-ins (map, filter, fold) can drive
// evaluation without this package importing internal/stage — the
// dependency runs the other way, stage depends on builtins.
type Apply func(fn *values.SValue, args []*values.SValue) (*values.SValue, *values.EvalError)

// PureFn computes a result from fully-known argument values. Called only
// when every argument is Stage Now.
type PureFn func(args []values.Value) (values.Value, *values.EvalError)

// StagedFn computes a result whenever the pure shape does not apply: when
// at least one argument is residual, or when the built-in has no pure
// shape at all (then even with every argument Now). It receives the Apply
// callback so higher-order built-ins can invoke
// closures (or other built-ins) against array elements.
type StagedFn func(apply Apply, args []*values.SValue) (*values.SValue, *values.EvalError)

// ResultConstraint derives the constraint a Later result should carry from
// the (possibly partial) constraints already known about the arguments,
// used when a built-in with no staged shape gets a residual argument (e.g.
// abs of a Later number) and when forceLater derives a call's constraint
// without evaluating it.
type ResultConstraint func(argConstraints []constraint.Constraint) constraint.Constraint

// Definition describes one registered built-in.
type Definition struct {
	Name          string
	Arity         int // -1 for variadic
	IsMethod      bool // callable as recv.Name(...) sugar
	SideEffecting bool // only config.PrintFuncName should set this

	Pure             PureFn
	Staged           StagedFn
	ResultConstraint ResultConstraint
}

// Registry is the closed set of built-ins available to a program.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry returns a registry pre-populated with the standard library
// of built-ins (abs, min, max, length, the higher-order array operations,
// and print).
func NewRegistry() *Registry {
	r := &Registry{defs: map[string]*Definition{}}
	registerArithmetic(r)
	registerHigherOrder(r)
	registerPrint(r)
	return r
}

func (r *Registry) register(d *Definition) {
	r.defs[d.Name] = d
}

// Lookup returns the definition for name, if registered.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns every registered built-in name, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.defs))
	for n := range r.defs {
		out = append(out, n)
	}
	return out
}

// IsSideEffecting reports whether name is allowed to perform I/O at
// evaluation time; only config.PrintFuncName is, per the evaluator's
// staging discipline (§1: compile-time evaluation must be pure).
func (r *Registry) IsSideEffecting(name string) bool {
	d, ok := r.defs[name]
	return ok && d.SideEffecting
}
