package values

import (
	"testing"

	"github.com/refinex-lang/refinex/internal/constraint"
)

func TestConstraintOfScalars(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want constraint.Constraint
	}{
		{"number", Number(5), constraint.Equals{Value: constraint.NumberLit(5)}},
		{"string", String("hi"), constraint.Equals{Value: constraint.StringLit("hi")}},
		{"bool", Bool(true), constraint.Equals{Value: constraint.BoolLit(true)}},
		{"null", Null{}, constraint.Equals{Value: constraint.NullLit()}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ConstraintOf(c.v)
			if !constraint.Equals(got, c.want) {
				t.Fatalf("got %s want %s", got, c.want)
			}
		})
	}
}

func TestConstraintOfObjectHasFields(t *testing.T) {
	obj := NewObject().With("x", Number(1)).With("y", String("a"))
	c := ConstraintOf(obj)
	if !constraint.Implies(c, constraint.HasField{Name: "x", Field: constraint.Classify{Tag: constraint.IsNumber}}) {
		t.Fatalf("expected object constraint to imply hasField(x, isNumber), got %s", c)
	}
	if !constraint.Implies(c, constraint.Classify{Tag: constraint.IsObject}) {
		t.Fatalf("expected object constraint to imply isObject")
	}
}

func TestConstraintOfArrayTracksElements(t *testing.T) {
	arr := Array{Elements: []Value{Number(1), Number(2)}}
	c := ConstraintOf(arr)
	if !constraint.Implies(c, constraint.ElementAt{Index: 0, Elem: constraint.Equals{Value: constraint.NumberLit(1)}}) {
		t.Fatalf("expected array constraint to pin element 0, got %s", c)
	}
}

func TestEnvironmentExtendIsImmutable(t *testing.T) {
	root := NewEnvironment()
	env1 := root.Bind("x", Now(Number(1)))
	env2 := env1.Bind("x", Now(Number(2)))

	v1, ok := env1.Get("x")
	if !ok || v1.Value.(Number) != 1 {
		t.Fatalf("expected env1's x to remain 1, got %v", v1)
	}
	v2, ok := env2.Get("x")
	if !ok || v2.Value.(Number) != 2 {
		t.Fatalf("expected env2's x to be 2, got %v", v2)
	}
}

func TestEnvironmentLooksUpParentChain(t *testing.T) {
	root := NewEnvironment().Bind("outer", Now(String("o")))
	inner := root.Bind("inner", Now(String("i")))

	if _, ok := inner.Get("outer"); !ok {
		t.Fatalf("expected inner scope to see outer binding")
	}
	if _, ok := root.Get("inner"); ok {
		t.Fatalf("did not expect outer scope to see inner binding")
	}
}

func TestSameTermRecognizesRepeatedFieldAccess(t *testing.T) {
	x := &Provenance{Kind: ProvVariable, Name: "x"}
	xFoo := &Provenance{Kind: ProvField, Name: "foo", Base: x}
	xFoo2 := &Provenance{Kind: ProvField, Name: "foo", Base: x}
	xBar := &Provenance{Kind: ProvField, Name: "bar", Base: x}

	if !SameTerm(xFoo, xFoo2) {
		t.Fatalf("expected x.foo and x.foo to be the same term")
	}
	if SameTerm(xFoo, xBar) {
		t.Fatalf("did not expect x.foo and x.bar to be the same term")
	}
}
