package constraint

import "testing"

func TestSimplifyIdempotent(t *testing.T) {
	c := And{Children: []Constraint{
		Classify{Tag: IsNumber},
		Or{Children: []Constraint{Any{}, NumBound{Kind: Gt, N: 0}}},
		And{Children: []Constraint{Classify{Tag: IsNumber}}},
	}}
	once := Simplify(c)
	twice := Simplify(once)
	if !structEqual(once, twice) {
		t.Fatalf("simplify not idempotent: once=%s twice=%s", once, twice)
	}
}

func TestAndContradictionCollapsesToNever(t *testing.T) {
	c := Simplify(And{Children: []Constraint{Classify{Tag: IsNumber}, Classify{Tag: IsString}}})
	if _, ok := c.(Never); !ok {
		t.Fatalf("expected never, got %s", c)
	}
}

func TestNumericBoundContradiction(t *testing.T) {
	c := Simplify(And{Children: []Constraint{
		NumBound{Kind: Gte, N: 10},
		NumBound{Kind: Lte, N: 5},
	}})
	if _, ok := c.(Never); !ok {
		t.Fatalf("expected never, got %s", c)
	}
}

func TestEqualsInsideAndWithIncompatibleClassCollapses(t *testing.T) {
	c := Simplify(And{Children: []Constraint{
		Classify{Tag: IsString},
		Equals{Value: NumberLit(5)},
	}})
	if _, ok := c.(Never); !ok {
		t.Fatalf("expected never, got %s", c)
	}
}

func TestNegationInvolution(t *testing.T) {
	c := And{Children: []Constraint{Classify{Tag: IsNumber}, NumBound{Kind: Gt, N: 0}}}
	twice := Negate(Negate(c))
	if !Equals(c, twice) {
		t.Fatalf("negate(negate(c)) != c: got %s want %s", twice, Simplify(c))
	}
}

func TestUnifyCommutative(t *testing.T) {
	a := NumBound{Kind: Gt, N: 0}
	b := NumBound{Kind: Lt, N: 10}
	ab := Simplify(Unify(a, b))
	ba := Simplify(Unify(b, a))
	if !structEqual(ab, ba) {
		t.Fatalf("unify not commutative: %s vs %s", ab, ba)
	}
}

func TestImpliesReflexiveAndTransitive(t *testing.T) {
	a := NumBound{Kind: Gt, N: 10}
	b := NumBound{Kind: Gt, N: 5}
	d := NumBound{Kind: Gt, N: 0}
	if !Implies(a, a) {
		t.Fatalf("implies not reflexive")
	}
	if !Implies(a, b) {
		t.Fatalf("expected gt(10) implies gt(5)")
	}
	if !Implies(b, d) {
		t.Fatalf("expected gt(5) implies gt(0)")
	}
	if !Implies(a, d) {
		t.Fatalf("transitivity failed: gt(10) should imply gt(0)")
	}
}

func TestHierarchyImplication(t *testing.T) {
	if !Implies(Classify{Tag: IsArray}, Classify{Tag: IsObject}) {
		t.Fatalf("expected isArray implies isObject")
	}
	if !Implies(Classify{Tag: IsFunction}, Classify{Tag: IsObject}) {
		t.Fatalf("expected isFunction implies isObject")
	}
	if Implies(Classify{Tag: IsObject}, Classify{Tag: IsArray}) {
		t.Fatalf("isObject should not imply isArray")
	}
}

func TestUnionFieldAccessScenario(t *testing.T) {
	// Scenario 5: or(hasField(kind, equals(A)) and hasField(v, isNumber),
	//              hasField(kind, equals(B)) and hasField(v, isString))
	branchA := And{Children: []Constraint{
		HasField{Name: "kind", Field: Equals{Value: StringLit("A")}},
		HasField{Name: "v", Field: Classify{Tag: IsNumber}},
	}}
	branchB := And{Children: []Constraint{
		HasField{Name: "kind", Field: Equals{Value: StringLit("B")}},
		HasField{Name: "v", Field: Classify{Tag: IsString}},
	}}
	union := Or{Children: []Constraint{branchA, branchB}}

	fc, ok := FieldConstraint(union, "v")
	if !ok {
		t.Fatalf("expected field constraint for v")
	}
	want := Simplify(Or{Children: []Constraint{Classify{Tag: IsNumber}, Classify{Tag: IsString}}})
	if !structEqual(fc, want) {
		t.Fatalf("got %s want %s", fc, want)
	}
}

func TestRecursiveListScenario(t *testing.T) {
	// Scenario 6: rec(L, or(isNull, isObject and hasField(head,isNumber) and hasField(tail, recVar(L))))
	list := Rec{Name: "L", Body: Or{Children: []Constraint{
		Classify{Tag: IsNull},
		And{Children: []Constraint{
			Classify{Tag: IsObject},
			HasField{Name: "head", Field: Classify{Tag: IsNumber}},
			HasField{Name: "tail", Field: RecVar{Name: "L"}},
		}},
	}}}

	if !Implies(Classify{Tag: IsNull}, list) {
		t.Fatalf("expected isNull implies the recursive list type via one-step unrolling")
	}

	illTyped := And{Children: []Constraint{
		Classify{Tag: IsObject},
		HasField{Name: "head", Field: Classify{Tag: IsString}},
		HasField{Name: "tail", Field: Classify{Tag: IsNull}},
	}}
	if Implies(illTyped, list) {
		t.Fatalf("expected ill-typed head to fail implication")
	}
}

func TestSolveBindsVariable(t *testing.T) {
	v := Var{ID: 0}
	s, ok := Solve(v, Classify{Tag: IsNumber})
	if !ok {
		t.Fatalf("expected solve to succeed")
	}
	if !structEqual(s.Apply(v), Classify{Tag: IsNumber}) {
		t.Fatalf("expected var bound to isNumber, got %s", s.Apply(v))
	}
}

func TestSolveOccursCheckFails(t *testing.T) {
	v := Var{ID: 1}
	cyclic := HasField{Name: "self", Field: v}
	if _, ok := Solve(v, cyclic); ok {
		t.Fatalf("expected occurs check to reject cyclic binding")
	}
}

func TestSolveAndSubtyping(t *testing.T) {
	left := And{Children: []Constraint{Classify{Tag: IsNumber}, NumBound{Kind: Gt, N: 0}}}
	right := And{Children: []Constraint{NumBound{Kind: Gt, N: 0}, Classify{Tag: IsNumber}}}
	if _, ok := Solve(left, right); !ok {
		t.Fatalf("expected solve to succeed matching each right conjunct against a left conjunct")
	}
}
