package stage

import (
	"testing"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/values"
)

func num(n float64) ast.Expression { return &ast.NumberLiteral{Value: n} }
func id(name string) ast.Expression { return &ast.Identifier{Name: name} }

func laterInt(name string) *values.SValue {
	return values.Later(&ast.Identifier{Name: name}, constraint.Classify{Tag: constraint.IsNumber}, &values.Provenance{Kind: values.ProvVariable, Name: name})
}

// add3(a,b,c) = a+b+c, specialized with b=10, a and c Later: the residual
// folds the known operand and keeps the rest, per spec scenario 1.
func TestAdd3FoldsKnownOperand(t *testing.T) {
	e := New()
	body := &ast.BinaryExpr{Op: ast.OpAdd,
		Left:  &ast.BinaryExpr{Op: ast.OpAdd, Left: id("a"), Right: id("b")},
		Right: id("c"),
	}
	env := values.NewEnvironment().
		Bind("a", laterInt("a")).
		Bind("b", values.Now(values.Number(10))).
		Bind("c", laterInt("c"))

	result, err := e.Eval(body, env, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNow() {
		t.Fatalf("expected a residual value, got Now(%v)", result.Value)
	}
	if !constraint.Implies(result.Constraint, constraint.Classify{Tag: constraint.IsNumber}) {
		t.Fatalf("expected residual to still be known as a number, got %s", result.Constraint.String())
	}

	callEnv := values.NewEnvironment().
		Bind("a", values.Now(values.Number(3))).
		Bind("b", values.Now(values.Number(10))).
		Bind("c", values.Now(values.Number(7)))
	full, err := e.Eval(body, callEnv, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !full.IsNow() || full.Value.(values.Number) != 20 {
		t.Fatalf("expected 20, got %v", full)
	}
}

// maybeDouble(x, flag) = if flag then x*2 else x, specialized with
// flag=true and x Later: the conditional is eliminated entirely.
func TestMaybeDoubleEliminatesConditional(t *testing.T) {
	e := New()
	body := &ast.CondExpr{
		Cond: id("flag"),
		Then: &ast.BinaryExpr{Op: ast.OpMul, Left: id("x"), Right: num(2)},
		Else: id("x"),
	}
	env := values.NewEnvironment().
		Bind("flag", values.Now(values.Bool(true))).
		Bind("x", laterInt("x"))

	result, err := e.Eval(body, env, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNow() {
		t.Fatalf("expected residual, got Now(%v)", result.Value)
	}
	bin, ok := result.Residual.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpMul {
		t.Fatalf("expected residual x * 2, got %T", result.Residual)
	}
}

// redundant(x) = if x<0 then 0 else (if x<0 then 1 else 2), x Later: the
// inner branch returning 1 is unreachable because the outer else already
// proved x>=0, and evalCond's context narrowing eliminates it.
func TestRedundantBranchElimination(t *testing.T) {
	e := New()
	xLtZero := &ast.BinaryExpr{Op: ast.OpLt, Left: id("x"), Right: num(0)}
	body := &ast.CondExpr{
		Cond: xLtZero,
		Then: num(0),
		Else: &ast.CondExpr{Cond: xLtZero, Then: num(1), Else: num(2)},
	}
	env := values.NewEnvironment().Bind("x", laterInt("x"))

	result, err := e.Eval(body, env, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNow() {
		t.Fatalf("expected residual, got Now(%v)", result.Value)
	}
	cond, ok := result.Residual.(*ast.CondExpr)
	if !ok {
		t.Fatalf("expected a residual conditional, got %T", result.Residual)
	}
	lit, ok := cond.Else.(*ast.NumberLiteral)
	if !ok || lit.Value != 2 {
		t.Fatalf("expected the redundant inner branch eliminated to 2, got %#v", cond.Else)
	}
}

// classify(s) = nested nested if/else by score threshold, s Later:
// residualizes to a nested ternary; executed concretely at each boundary.
func classifyBody() ast.Expression {
	grade := func(threshold float64, letter string, rest ast.Expression) ast.Expression {
		return &ast.CondExpr{
			Cond: &ast.BinaryExpr{Op: ast.OpGtEq, Left: id("s"), Right: num(threshold)},
			Then: &ast.StringLiteral{Value: letter},
			Else: rest,
		}
	}
	return grade(90, "A", grade(80, "B", grade(70, "C", grade(60, "D", &ast.StringLiteral{Value: "F"}))))
}

func TestClassifyExecutesAtEachBoundary(t *testing.T) {
	e := New()
	body := classifyBody()
	cases := map[float64]string{95: "A", 85: "B", 75: "C", 65: "D", 55: "F"}
	for score, want := range cases {
		env := values.NewEnvironment().Bind("s", values.Now(values.Number(score)))
		result, err := e.Eval(body, env, refine.Empty())
		if err != nil {
			t.Fatalf("score %v: unexpected error: %v", score, err)
		}
		if !result.IsNow() || string(result.Value.(values.String)) != want {
			t.Fatalf("score %v: expected %q, got %v", score, want, result)
		}
	}
}

func TestClassifyResidualizesForLaterScore(t *testing.T) {
	e := New()
	body := classifyBody()
	env := values.NewEnvironment().Bind("s", laterInt("s"))
	result, err := e.Eval(body, env, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNow() {
		t.Fatalf("expected residual nested ternary, got Now(%v)", result.Value)
	}
	if !constraint.Implies(result.Constraint, constraint.Classify{Tag: constraint.IsString}) {
		t.Fatalf("expected result still known as a string, got %s", result.Constraint.String())
	}
}

// map([1,2,3], (x) => x + k) with k=10 and the array Now specializes fully;
// with the array Later it residualizes as a call retaining the array shape.
func TestMapFullySpecializesWhenArrayIsNow(t *testing.T) {
	e := New()
	arr := &ast.ArrayExpr{Elements: []ast.Expression{num(1), num(2), num(3)}}
	fn := &ast.FuncExpr{Params: []string{"x"}, Body: &ast.BinaryExpr{Op: ast.OpAdd, Left: id("x"), Right: id("k")}}
	call := &ast.MethodCallExpr{Receiver: arr, Name: "map", Args: []ast.Expression{fn}}

	env := values.NewEnvironment().Bind("k", values.Now(values.Number(10)))
	result, err := e.Eval(call, env, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNow() {
		t.Fatalf("expected a fully known array, got residual %s", result.Constraint.String())
	}
	got, ok := result.Value.(values.Array)
	if !ok || len(got.Elements) != 3 {
		t.Fatalf("expected a 3-element array, got %v", result.Value)
	}
	want := []float64{11, 12, 13}
	for i, w := range want {
		if float64(got.Elements[i].(values.Number)) != w {
			t.Fatalf("element %d: expected %v, got %v", i, w, got.Elements[i])
		}
	}
}

func TestMapResidualizesWhenArrayIsLater(t *testing.T) {
	e := New()
	fn := &ast.FuncExpr{Params: []string{"x"}, Body: &ast.BinaryExpr{Op: ast.OpAdd, Left: id("x"), Right: num(10)}}
	call := &ast.MethodCallExpr{Receiver: id("arr"), Name: "map", Args: []ast.Expression{fn}}

	laterArr := values.Later(&ast.Identifier{Name: "arr"},
		constraint.Simplify(constraint.And{Children: []constraint.Constraint{
			constraint.Classify{Tag: constraint.IsArray},
			constraint.Length{N: constraint.Equals{Value: constraint.NumberLit(3)}},
		}}), &values.Provenance{Kind: values.ProvVariable, Name: "arr"})
	env := values.NewEnvironment().Bind("arr", laterArr)

	result, err := e.Eval(call, env, refine.Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNow() {
		t.Fatalf("expected residual, got Now(%v)", result.Value)
	}
	if !constraint.Implies(result.Constraint, constraint.Classify{Tag: constraint.IsArray}) {
		t.Fatalf("expected array shape preserved, got %s", result.Constraint.String())
	}
}
