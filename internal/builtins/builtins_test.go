package builtins

import (
	"testing"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/values"
)

func identityApply(fn *values.SValue, args []*values.SValue) (*values.SValue, *values.EvalError) {
	// Stand-in Apply used by tests that don't need real closures: treats
	// fn as a doubling function when it is a Now Number, otherwise echoes
	// the first argument back.
	if fn.IsNow() {
		if _, ok := fn.Value.(values.Number); ok {
			a := args[0].Value.(values.Number)
			return values.Now(a * 2), nil
		}
	}
	return args[0], nil
}

func TestMapSpecializesConstantArray(t *testing.T) {
	r := NewRegistry()
	d, ok := r.Lookup("map")
	if !ok {
		t.Fatalf("expected map to be registered")
	}
	arr := values.Now(values.Array{Elements: []values.Value{values.Number(1), values.Number(2), values.Number(3)}})
	fn := values.Now(values.Number(0)) // a Now Number triggers doubling in identityApply
	result, errv := d.Staged(identityApply, []*values.SValue{arr, fn})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if !result.IsNow() {
		t.Fatalf("expected a fully specialized Now array")
	}
	got := result.Value.(values.Array)
	want := []float64{2, 4, 6}
	for i, w := range want {
		if float64(got.Elements[i].(values.Number)) != w {
			t.Fatalf("element %d: got %v want %v", i, got.Elements[i], w)
		}
	}
}

func TestMapOnResidualArrayFallsBackToArrayShape(t *testing.T) {
	r := NewRegistry()
	d, _ := r.Lookup("map")
	residualArr := values.Later(&ast.Identifier{Name: "arr"}, values.ConstraintOf(values.Array{}), nil)
	fn := values.Now(values.Number(0))
	result, errv := d.Staged(identityApply, []*values.SValue{residualArr, fn})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if result.IsNow() {
		t.Fatalf("expected a residual result when the array itself is unknown")
	}
	call, ok := result.Residual.(*ast.MethodCallExpr)
	if !ok {
		t.Fatalf("expected the residual to be a method call, got %T", result.Residual)
	}
	if call.Name != "map" {
		t.Fatalf("expected residual method name %q, got %q", "map", call.Name)
	}
	if recv, ok := call.Receiver.(*ast.Identifier); !ok || recv.Name != "arr" {
		t.Fatalf("expected residual receiver to be the original array identifier, got %#v", call.Receiver)
	}
}

func TestFilterKeepsMatchingElements(t *testing.T) {
	r := NewRegistry()
	d, _ := r.Lookup("filter")
	arr := values.Now(values.Array{Elements: []values.Value{values.Bool(true), values.Bool(false), values.Bool(true)}})
	passthroughFn := values.Now(values.String("predicate"))
	apply := func(fn *values.SValue, args []*values.SValue) (*values.SValue, *values.EvalError) {
		return args[0], nil // the element itself is the boolean predicate result
	}
	result, errv := d.Staged(apply, []*values.SValue{arr, passthroughFn})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	got := result.Value.(values.Array)
	if len(got.Elements) != 2 {
		t.Fatalf("expected 2 surviving elements, got %d", len(got.Elements))
	}
}

func TestAbsNegatesNegativeNumber(t *testing.T) {
	r := NewRegistry()
	d, _ := r.Lookup("abs")
	v, errv := d.Pure([]values.Value{values.Number(-5)})
	if errv != nil {
		t.Fatalf("unexpected error: %v", errv)
	}
	if v.(values.Number) != 5 {
		t.Fatalf("expected abs(-5) == 5, got %v", v)
	}
}

func TestPrintIsTheOnlySideEffectingBuiltin(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		d, _ := r.Lookup(name)
		if d.SideEffecting && name != "print" {
			t.Fatalf("unexpected side-effecting builtin: %s", name)
		}
	}
	if !r.IsSideEffecting("print") {
		t.Fatalf("expected print to be marked side-effecting")
	}
}
