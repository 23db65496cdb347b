package stage

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/values"
)

// Eval evaluates expr under env (variable bindings) and ctx (accumulated
// refinement facts), producing a staged value or a first-class error.
func (e *Evaluator) Eval(expr ast.Expression, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxEvalDepth {
		return nil, values.NewError(values.Unimplemented, expr.GetPos(), "maximum evaluation depth exceeded")
	}

	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return values.Now(values.Number(n.Value)), nil
	case *ast.StringLiteral:
		return values.Now(values.String(n.Value)), nil
	case *ast.BoolLiteral:
		return values.Now(values.Bool(n.Value)), nil
	case *ast.NullLiteral:
		return values.Now(values.Null{}), nil
	case *ast.Identifier:
		return e.evalIdentifier(n, env)
	case *ast.BinaryExpr:
		return e.evalBinary(n, env, ctx)
	case *ast.UnaryExpr:
		return e.evalUnary(n, env, ctx)
	case *ast.CondExpr:
		return e.evalCond(n, env, ctx)
	case *ast.BlockExpr:
		return e.evalBlock(n, env, ctx)
	case *ast.LetExpr:
		return e.evalLet(n, env, ctx)
	case *ast.FuncExpr:
		return values.Now(values.Closure{Params: n.Params, Body: n.Body, Env: env}), nil
	case *ast.NamedFuncExpr:
		return e.evalNamedFunc(n, env)
	case *ast.CallExpr:
		return e.evalCall(n, env, ctx)
	case *ast.MethodCallExpr:
		return e.evalMethodCall(n, env, ctx)
	case *ast.ObjectExpr:
		return e.evalObject(n, env, ctx)
	case *ast.FieldAccessExpr:
		return e.evalFieldAccess(n, env, ctx)
	case *ast.ArrayExpr:
		return e.evalArray(n, env, ctx)
	case *ast.IndexExpr:
		return e.evalIndex(n, env, ctx)
	case *ast.ForceNowExpr:
		return e.evalForceNow(n, env, ctx)
	case *ast.ForceLaterExpr:
		return e.evalForceLater(n, env, ctx)
	case *ast.AssertExpr:
		return e.evalAssert(n, env, ctx)
	case *ast.TrustExpr:
		return e.evalTrust(n, env, ctx)
	case *ast.TypeOfExpr:
		return e.evalTypeOf(n, env, ctx)
	case *ast.ImportExpr:
		return e.evalImport(n, env, ctx)
	}
	return nil, values.NewError(values.Unimplemented, expr.GetPos(), "unhandled expression %T", expr)
}

func (e *Evaluator) evalIdentifier(n *ast.Identifier, env *values.Environment) (*values.SValue, *values.EvalError) {
	sv, ok := env.Get(n.Name)
	if !ok {
		return nil, values.NewError(values.UnboundVariable, n.GetPos(), "unbound variable %q", n.Name)
	}
	return sv, nil
}

func (e *Evaluator) evalBlock(n *ast.BlockExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	if len(n.Exprs) == 0 {
		return values.Now(values.Null{}), nil
	}
	var result *values.SValue
	for _, ex := range n.Exprs {
		sv, err := e.Eval(ex, env, ctx)
		if err != nil {
			return nil, err
		}
		result = sv
	}
	return result, nil
}

func (e *Evaluator) evalLet(n *ast.LetExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	sv, err := e.Eval(n.Value, env, ctx)
	if err != nil {
		return nil, err
	}
	bodyEnv, bodyCtx, bindErr := bindPattern(n.Pattern, sv, env, ctx)
	if bindErr != nil {
		return nil, bindErr
	}
	return e.Eval(n.Body, bodyEnv, bodyCtx)
}

// bindPattern destructures sv against pat, extending env with the bound
// names and ctx with a provenance-keyed fact per bound variable so later
// lookups narrow the same way a direct identifier reference would.
func bindPattern(pat ast.Pattern, sv *values.SValue, env *values.Environment, ctx *refine.Context) (*values.Environment, *refine.Context, *values.EvalError) {
	switch p := pat.(type) {
	case *ast.VarPattern:
		bound := withProvenance(sv, &values.Provenance{Kind: values.ProvVariable, Name: p.Name})
		env = env.Bind(p.Name, bound)
		ctx = refine.ExtendTerm(ctx, bound, bound.Constraint)
		return env, ctx, nil

	case *ast.ArrayPattern:
		if sv.IsNow() {
			arr, ok := sv.Value.(values.Array)
			if !ok {
				return nil, nil, values.NewError(values.TypeMismatch, pat.GetPos(), "cannot destructure a non-array value as an array pattern")
			}
			if len(arr.Elements) < len(p.Elements) {
				return nil, nil, values.NewError(values.TypeMismatch, pat.GetPos(), "array pattern expects at least %d elements, got %d", len(p.Elements), len(arr.Elements))
			}
			for i, sub := range p.Elements {
				elSV := values.Now(arr.Elements[i])
				var err *values.EvalError
				env, ctx, err = bindPattern(sub, elSV, env, ctx)
				if err != nil {
					return nil, nil, err
				}
			}
			return env, ctx, nil
		}
		for i, sub := range p.Elements {
			elC, _ := elementAtConstraint(sv.Constraint, i)
			elResidual := &ast.IndexExpr{Array: reify(sv), Index: &ast.NumberLiteral{Value: float64(i)}}
			elSV := values.Later(elResidual, elC, derivedFieldProvenance(sv.Provenance, i))
			var err *values.EvalError
			env, ctx, err = bindPattern(sub, elSV, env, ctx)
			if err != nil {
				return nil, nil, err
			}
		}
		return env, ctx, nil

	case *ast.ObjectPattern:
		for i, field := range p.Fields {
			var fieldSV *values.SValue
			if sv.IsNow() {
				obj, ok := sv.Value.(values.Object)
				if !ok {
					return nil, nil, values.NewError(values.TypeMismatch, pat.GetPos(), "cannot destructure a non-object value as an object pattern")
				}
				v, ok := obj.Get(field)
				if !ok {
					return nil, nil, values.NewError(values.TypeMismatch, pat.GetPos(), "object has no field %q", field)
				}
				fieldSV = values.Now(v)
			} else {
				fc, _ := constraint.FieldConstraint(sv.Constraint, field)
				if fc == nil {
					fc = constraint.Any{}
				}
				var prov *values.Provenance
				if sv.Provenance != nil {
					prov = &values.Provenance{Kind: values.ProvField, Name: field, Base: sv.Provenance}
				}
				fieldResidual := &ast.FieldAccessExpr{Object: reify(sv), Name: field}
				fieldSV = values.Later(fieldResidual, fc, prov)
			}
			var err *values.EvalError
			env, ctx, err = bindPattern(p.Names[i], fieldSV, env, ctx)
			if err != nil {
				return nil, nil, err
			}
		}
		return env, ctx, nil
	}
	return env, ctx, values.NewError(values.Unimplemented, pat.GetPos(), "unhandled pattern %T", pat)
}

// withProvenance returns sv unchanged if it already carries provenance
// (e.g. it is itself a bare variable reference being re-bound), and
// otherwise attaches prov so the new binding participates in context
// lookups by term identity.
func withProvenance(sv *values.SValue, prov *values.Provenance) *values.SValue {
	if sv.Provenance != nil {
		return sv
	}
	if sv.IsNow() {
		return &values.SValue{Stage: values.StageNow, Value: sv.Value, Constraint: sv.Constraint, Provenance: prov}
	}
	return &values.SValue{Stage: values.StageLater, Residual: sv.Residual, Constraint: sv.Constraint, Provenance: prov}
}

func derivedFieldProvenance(base *values.Provenance, index int) *values.Provenance {
	if base == nil {
		return nil
	}
	return &values.Provenance{Kind: values.ProvField, Name: indexName(index), Base: base}
}
