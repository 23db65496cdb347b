package refine

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

// Explanation is a human-readable account of why a Prove call failed,
// built by Explain; cmd/refinex has no flag that prints one.
type Explanation struct {
	Goal      string
	Known     string
	FactCount int
	Reason    string
}

// Explain builds an Explanation for a failed Prove(ctx, sv, goal) call.
func Explain(ctx *Context, sv *values.SValue, goal constraint.Constraint) Explanation {
	term := values.ProvenanceToTerm(sv.Provenance)
	facts := ctx.factsFor(term)
	known := constraint.Simplify(constraint.And{Children: append([]constraint.Constraint{sv.Constraint}, facts...)})

	return Explanation{
		Goal:      goal.String(),
		Known:     known.String(),
		FactCount: len(facts),
		Reason:    constraint.DescribeFailure(known, goal),
	}
}

func (e Explanation) String() string {
	return fmt.Sprintf(
		"%s\n  known: %s (%s)\n  wanted: %s",
		e.Reason,
		e.Known,
		humanize.Comma(int64(e.FactCount))+" accumulated fact(s)",
		e.Goal,
	)
}
