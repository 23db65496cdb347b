package refine

import (
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

// Prove decides whether the facts known about sv — its own narrowed
// constraint plus whatever the context has accumulated about its
// provenance term — entail goal. The procedure is sound but incomplete:
// a false result means "not provably true", not "provably false".
//
// Steps:
//  1. Check sv's own constraint directly (cheap, covers the common case
//     of a value whose shape was already pinned down at construction).
//  2. If sv has no stable term identity (e.g. it is a residual conditional
//     or an operator result over an array or closure operand),
//     stop there; there is nothing further to combine.
//  3. Combine sv's constraint with every fact the context has recorded
//     about the same term (one level of lookup — this is the "bounded
//     one-step" in bounded one-step transitivity) and recheck.
func Prove(ctx *Context, sv *values.SValue, goal constraint.Constraint) bool {
	if constraint.Implies(sv.Constraint, goal) {
		return true
	}
	term := values.ProvenanceToTerm(sv.Provenance)
	if term == nil {
		return false
	}
	combined := constraint.Simplify(constraint.And{Children: []constraint.Constraint{sv.Constraint, ctx.Combined(term)}})
	return constraint.Implies(combined, goal)
}

// Refute decides whether the known facts entail the negation of goal,
// i.e. whether goal is provably false. Like Prove, a false result does
// not mean goal is provably true — the guard may simply be undecidable
// given what is known.
func Refute(ctx *Context, sv *values.SValue, goal constraint.Constraint) bool {
	return Prove(ctx, sv, constraint.Negate(goal))
}

// ExtendTerm narrows the context with a new fact about sv's own
// provenance term, if it has one; a provenance-less value (e.g. a residual
// conditional) yields the context unchanged since there is no
// stable identity to key the fact on.
func ExtendTerm(ctx *Context, sv *values.SValue, fact constraint.Constraint) *Context {
	term := values.ProvenanceToTerm(sv.Provenance)
	if term == nil {
		return ctx
	}
	return ctx.Extend(term, fact)
}
