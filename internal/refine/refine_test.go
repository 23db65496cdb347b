package refine

import (
	"testing"

	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

func lvar(name string) *values.Provenance {
	return &values.Provenance{Kind: values.ProvVariable, Name: name}
}

func TestProveUsesOwnConstraintDirectly(t *testing.T) {
	sv := values.Now(values.Number(5))
	if !Prove(Empty(), sv, constraint.Classify{Tag: constraint.IsNumber}) {
		t.Fatalf("expected Now(5) to prove isNumber directly")
	}
}

func TestProveCombinesContextFactsByTerm(t *testing.T) {
	x := lvar("x")
	sv := values.Later(nil, constraint.Classify{Tag: constraint.IsNumber}, x)

	ctx := Empty().Extend(values.ProvenanceToTerm(x), constraint.NumBound{Kind: constraint.Gt, N: 0})

	if Prove(Empty(), sv, constraint.NumBound{Kind: constraint.Gt, N: 0}) {
		t.Fatalf("did not expect the bare value to prove gt(0) without the context fact")
	}
	if !Prove(ctx, sv, constraint.NumBound{Kind: constraint.Gt, N: 0}) {
		t.Fatalf("expected the context-extended value to prove gt(0)")
	}
}

func TestRefuteDetectsContradiction(t *testing.T) {
	x := lvar("x")
	sv := values.Later(nil, constraint.Any{}, x)
	ctx := Empty().Extend(values.ProvenanceToTerm(x), constraint.Classify{Tag: constraint.IsString})

	if !Refute(ctx, sv, constraint.Classify{Tag: constraint.IsNumber}) {
		t.Fatalf("expected isString fact to refute isNumber goal")
	}
}

func TestExtendTermNoopWithoutProvenance(t *testing.T) {
	sv := values.Now(values.Number(1)) // Now values carry no provenance
	ctx := ExtendTerm(Empty(), sv, constraint.Classify{Tag: constraint.IsNumber})
	if ctx != Empty() {
		t.Fatalf("expected ExtendTerm to be a no-op when sv has no provenance")
	}
}

func TestExplainReportsAccumulatedFacts(t *testing.T) {
	x := lvar("x")
	sv := values.Later(nil, constraint.Classify{Tag: constraint.IsNumber}, x)
	ctx := Empty().Extend(values.ProvenanceToTerm(x), constraint.NumBound{Kind: constraint.Lt, N: 0})

	goal := constraint.NumBound{Kind: constraint.Gt, N: 0}
	if Prove(ctx, sv, goal) {
		t.Fatalf("expected lt(0) fact not to prove gt(0)")
	}
	ex := Explain(ctx, sv, goal)
	if ex.FactCount != 1 {
		t.Fatalf("expected 1 accumulated fact, got %d", ex.FactCount)
	}
}
