package stage

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/values"
)

func (e *Evaluator) evalUnary(n *ast.UnaryExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	sv, err := e.Eval(n.Operand, env, ctx)
	if err != nil {
		return nil, err
	}
	if sv.IsNow() {
		switch n.Op {
		case ast.OpNeg:
			num, ok := sv.Value.(values.Number)
			if !ok {
				return nil, values.NewError(values.TypeMismatch, n.GetPos(), "unary - expects a number")
			}
			return values.Now(-num), nil
		case ast.OpNot:
			b, ok := sv.Value.(values.Bool)
			if !ok {
				return nil, values.NewError(values.TypeMismatch, n.GetPos(), "unary ! expects a boolean")
			}
			return values.Now(!b), nil
		}
	}
	var resultConstraint constraint.Constraint = constraint.Any{}
	if n.Op == ast.OpNot {
		resultConstraint = constraint.Classify{Tag: constraint.IsBool}
	} else {
		resultConstraint = constraint.Classify{Tag: constraint.IsNumber}
	}
	prov := operatorProvenance(string(n.Op), sv)
	return values.Later(&ast.UnaryExpr{Op: n.Op, Operand: reify(sv)}, resultConstraint, prov), nil
}

// operatorProvenance builds the ProvOperator identity an operator result
// should carry, so that two evaluations of the same operator over the same
// operands (e.g. a guard re-checked in a nested branch) are recognized as
// the same term by the prover. Any operand lacking a stable identity
// (arrays, closures, other operator results whose own operands are
// untracked) makes the whole operator result untracked too.
func operatorProvenance(op string, operands ...*values.SValue) *values.Provenance {
	args := make([]*values.Provenance, len(operands))
	for i, o := range operands {
		p := values.OperandProvenance(o)
		if p == nil {
			return nil
		}
		args[i] = p
	}
	return &values.Provenance{Kind: values.ProvOperator, Name: op, Args: args}
}

// evalBinary implements left-to-right, inside-out evaluation (§5
// Ordering). && and || short-circuit only when the left operand is Now
// and already determines the result; a Later left always evaluates the
// right operand too, even though that means a side-effecting built-in on
// the right would run at compile time (the spec permits this only for
// print, which is the one built-in allowed to execute eagerly).
func (e *Evaluator) evalBinary(n *ast.BinaryExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	left, err := e.Eval(n.Left, env, ctx)
	if err != nil {
		return nil, err
	}

	if left.IsNow() {
		if n.Op == ast.OpAnd || n.Op == ast.OpOr {
			lb, ok := left.Value.(values.Bool)
			if !ok {
				return nil, values.NewError(values.TypeMismatch, n.GetPos(), "%s expects a boolean left operand", n.Op)
			}
			if (n.Op == ast.OpAnd && !bool(lb)) || (n.Op == ast.OpOr && bool(lb)) {
				return values.Now(lb), nil
			}
		}
	}

	right, err := e.Eval(n.Right, env, ctx)
	if err != nil {
		return nil, err
	}

	if left.IsNow() && right.IsNow() {
		return evalBinaryNow(n.Op, left.Value, right.Value, n.GetPos())
	}

	residual := &ast.BinaryExpr{Op: n.Op, Left: reify(left), Right: reify(right)}
	prov := operatorProvenance(string(n.Op), left, right)
	return values.Later(residual, binaryResultConstraint(n.Op, left.Constraint, right.Constraint), prov), nil
}

func evalBinaryNow(op ast.BinOp, l, r values.Value, pos ast.Pos) (*values.SValue, *values.EvalError) {
	// string concatenation is the one operator whose runtime meaning
	// depends on operand kind rather than a fixed arithmetic/comparison
	// reading: + on two strings concatenates instead of adding.
	if op == ast.OpAdd {
		if ls, ok := l.(values.String); ok {
			if rs, ok := r.(values.String); ok {
				return values.Now(ls + rs), nil
			}
		}
	}

	switch op {
	case ast.OpAnd:
		lb, lok := l.(values.Bool)
		rb, rok := r.(values.Bool)
		if !lok || !rok {
			return nil, values.NewError(values.TypeMismatch, pos, "&& expects two booleans")
		}
		return values.Now(lb && rb), nil
	case ast.OpOr:
		lb, lok := l.(values.Bool)
		rb, rok := r.(values.Bool)
		if !lok || !rok {
			return nil, values.NewError(values.TypeMismatch, pos, "|| expects two booleans")
		}
		return values.Now(lb || rb), nil
	case ast.OpEq:
		return values.Now(values.Bool(values.Equal(l, r))), nil
	case ast.OpNotEq:
		return values.Now(values.Bool(!values.Equal(l, r))), nil
	}

	ln, lok := l.(values.Number)
	rn, rok := r.(values.Number)
	if !lok || !rok {
		return nil, values.NewError(values.TypeMismatch, pos, "operator %s expects two numbers", op)
	}
	switch op {
	case ast.OpAdd:
		return values.Now(ln + rn), nil
	case ast.OpSub:
		return values.Now(ln - rn), nil
	case ast.OpMul:
		return values.Now(ln * rn), nil
	case ast.OpDiv:
		if rn == 0 {
			return nil, values.NewError(values.TypeMismatch, pos, "division by zero")
		}
		return values.Now(ln / rn), nil
	case ast.OpMod:
		if rn == 0 {
			return nil, values.NewError(values.TypeMismatch, pos, "division by zero")
		}
		return values.Now(values.Number(int64(ln) % int64(rn))), nil
	case ast.OpLt:
		return values.Now(values.Bool(ln < rn)), nil
	case ast.OpGt:
		return values.Now(values.Bool(ln > rn)), nil
	case ast.OpLtEq:
		return values.Now(values.Bool(ln <= rn)), nil
	case ast.OpGtEq:
		return values.Now(values.Bool(ln >= rn)), nil
	}
	return nil, values.NewError(values.Unimplemented, pos, "unhandled operator %s", op)
}

func binaryResultConstraint(op ast.BinOp, l, r constraint.Constraint) constraint.Constraint {
	switch op {
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq, ast.OpAnd, ast.OpOr:
		return constraint.Classify{Tag: constraint.IsBool}
	case ast.OpAdd:
		if constraint.Implies(l, constraint.Classify{Tag: constraint.IsString}) ||
			constraint.Implies(r, constraint.Classify{Tag: constraint.IsString}) {
			return constraint.Classify{Tag: constraint.IsString}
		}
		return constraint.Classify{Tag: constraint.IsNumber}
	default:
		return constraint.Classify{Tag: constraint.IsNumber}
	}
}

// evalCond implements the prove-based branch elimination (§4.4): prove
// the condition to decide Then, refute it to decide Else, and only when
// neither succeeds does the conditional residualize with both branches
// evaluated under the narrowed context each would see at runtime.
func (e *Evaluator) evalCond(n *ast.CondExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	cond, err := e.Eval(n.Cond, env, ctx)
	if err != nil {
		return nil, err
	}

	truth := constraint.Equals{Value: constraint.BoolLit(true)}
	falsehood := constraint.Equals{Value: constraint.BoolLit(false)}

	if cond.IsNow() {
		b, ok := cond.Value.(values.Bool)
		if !ok {
			return nil, values.NewError(values.TypeMismatch, n.GetPos(), "if condition must be a boolean")
		}
		if bool(b) {
			return e.Eval(n.Then, env, ctx)
		}
		return e.Eval(n.Else, env, ctx)
	}

	if refine.Prove(ctx, cond, truth) {
		return e.Eval(n.Then, env, ctx)
	}
	if refine.Prove(ctx, cond, falsehood) {
		return e.Eval(n.Else, env, ctx)
	}

	thenCtx := refine.ExtendTerm(ctx, cond, truth)
	elseCtx := refine.ExtendTerm(ctx, cond, falsehood)

	thenSV, err := e.Eval(n.Then, env, thenCtx)
	if err != nil {
		return nil, err
	}
	elseSV, err := e.Eval(n.Else, env, elseCtx)
	if err != nil {
		return nil, err
	}

	residual := &ast.CondExpr{Cond: reify(cond), Then: reify(thenSV), Else: reify(elseSV)}
	merged := constraint.Simplify(constraint.Or{Children: []constraint.Constraint{thenSV.Constraint, elseSV.Constraint}})
	return values.Later(residual, merged, nil), nil
}

func (e *Evaluator) evalForceNow(n *ast.ForceNowExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	sv, err := e.Eval(n.Body, env, ctx)
	if err != nil {
		return nil, err
	}
	if !sv.IsNow() {
		return nil, values.NewError(values.ForceNowFailed, n.GetPos(), "forceNow: value did not reduce to a compile-time constant")
	}
	return sv, nil
}

// evalForceLater never evaluates Body at all, even when it could be
// computed now: it cannot, since evaluating would run side effects (print)
// and fail on errors the spec means to model as simply unevaluated inputs.
// Only Body's constraint is derived, via the purely syntactic analysis in
// constraintOnly, and the residual is Body itself, unevaluated.
func (e *Evaluator) evalForceLater(n *ast.ForceLaterExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	return values.Later(n.Body, e.constraintOnly(n.Body, env), nil), nil
}

// evalAssert fails when the asserted constraint is provably false, and
// also when sv is a Now value that simply does not imply it: Refute only
// fails an assertion the known facts contradict (e.g. 5 against
// isString), not one they merely leave unproven (e.g. an object asserted
// to have a field it lacks), so a Now value whose own exact constraint
// fails to imply the assertion is rejected directly rather than narrowed
// to a constraint it does not satisfy (§4.3, §8 Stage soundness). A Later value, or a Now value whose constraint does imply
// the assertion, narrows to the intersection so later code benefits from
// the stronger fact (an undecided assert is a trusted guarantee, not a
// runtime check).
func (e *Evaluator) evalAssert(n *ast.AssertExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	sv, err := e.Eval(n.Body, env, ctx)
	if err != nil {
		return nil, err
	}
	fails := refine.Refute(ctx, sv, n.Constraint)
	if sv.IsNow() && !fails {
		fails = !constraint.Implies(sv.Constraint, n.Constraint)
	}
	if fails {
		msg := n.Message
		if msg == "" {
			msg = "assertion failed: " + n.Constraint.String()
		}
		return nil, values.NewError(values.AssertionFailed, n.GetPos(), "%s", msg)
	}
	return narrow(sv, n.Constraint), nil
}

// evalTrust narrows unconditionally without proving anything; it never
// fails, trading soundness for an explicit, auditable escape hatch.
func (e *Evaluator) evalTrust(n *ast.TrustExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	sv, err := e.Eval(n.Body, env, ctx)
	if err != nil {
		return nil, err
	}
	return narrow(sv, n.Constraint), nil
}

func narrow(sv *values.SValue, c constraint.Constraint) *values.SValue {
	merged := constraint.Unify(sv.Constraint, c)
	if sv.IsNow() {
		return &values.SValue{Stage: values.StageNow, Value: sv.Value, Constraint: merged, Provenance: sv.Provenance}
	}
	return &values.SValue{Stage: values.StageLater, Residual: sv.Residual, Constraint: merged, Provenance: sv.Provenance}
}

func (e *Evaluator) evalTypeOf(n *ast.TypeOfExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	sv, err := e.Eval(n.Body, env, ctx)
	if err != nil {
		return nil, err
	}
	return values.Now(values.TypeValue{Constraint: sv.Constraint}), nil
}
