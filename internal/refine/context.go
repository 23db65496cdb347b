// Package refine implements the refinement context and prover (component
// C3): an immutable chain of accumulated facts about named terms, and a
// sound-but-incomplete decision procedure for checking whether those facts
// entail a goal constraint.
package refine

import (
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

// Context is a persistent chain of facts, extended once per narrowing
// event (each branch of a conditional the prover could not decide, a let
// or import binding's own constraint). Like values.Environment, extending never mutates an
// existing Context, so a closure captured mid-chain keeps seeing the
// facts that were live when it was captured.
type Context struct {
	parent *Context
	term   values.Term
	fact   constraint.Constraint
}

// Empty is the context with no accumulated facts.
func Empty() *Context { return nil }

// Extend returns a new context with an additional fact about term.
func (c *Context) Extend(term values.Term, fact constraint.Constraint) *Context {
	if term == nil {
		return c
	}
	return &Context{parent: c, term: term, fact: fact}
}

// factsFor collects every fact this chain has recorded about term, in
// newest-first order.
func (c *Context) factsFor(term values.Term) []constraint.Constraint {
	if term == nil {
		return nil
	}
	var out []constraint.Constraint
	for cur := c; cur != nil; cur = cur.parent {
		if cur.term != nil && cur.term.Key() == term.Key() {
			out = append(out, cur.fact)
		}
	}
	return out
}

// Combined returns the conjunction of every fact known about term,
// simplified to a single constraint (Any if nothing is known).
func (c *Context) Combined(term values.Term) constraint.Constraint {
	facts := c.factsFor(term)
	if len(facts) == 0 {
		return constraint.Any{}
	}
	return constraint.Simplify(constraint.And{Children: facts})
}
