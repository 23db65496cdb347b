// Package stage implements the staged evaluator (component C4): the
// engine that walks an ast.Expression and produces a values.SValue,
// folding what is known now and residualizing what is not.
package stage

import (
	"github.com/google/uuid"

	"github.com/refinex-lang/refinex/internal/builtins"
	"github.com/refinex-lang/refinex/internal/constraint"
)

// maxEvalDepth guards against runaway recursion in pathological or
// accidentally-infinite user programs, mirroring the teacher's own
// recursion-depth counter in its core Eval loop.
const maxEvalDepth = 10000

// Evaluator is the staged evaluator. Each instance owns its own inference
// variable generator and a built-in registry; instances are cheap to
// create and carry no implicit global state, so a host embedding refinex
// (e.g. to evaluate several independent modules) can run many
// concurrently.
type Evaluator struct {
	ID uuid.UUID

	Builtins *builtins.Registry
	Resolver Resolver

	vars  constraint.VarGen
	depth int
}

// New returns an evaluator with the standard built-in registry and no
// module resolver; import expressions fail until one is attached via
// WithResolver.
func New() *Evaluator {
	return &Evaluator{
		ID:       uuid.New(),
		Builtins: builtins.NewRegistry(),
	}
}

// WithResolver attaches a module resolver (internal/modules implements one
// for the proto: and config: schemes) and returns the same evaluator for
// chaining.
func (e *Evaluator) WithResolver(r Resolver) *Evaluator {
	e.Resolver = r
	return e
}

// FreshVar hands out a new inference variable from this evaluator's own
// counter; nothing in this package calls it.
func (e *Evaluator) FreshVar() constraint.Var {
	return e.vars.Fresh()
}
