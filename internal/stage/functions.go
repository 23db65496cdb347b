package stage

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/builtins"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/values"
)

// evalNamedFunc builds a self-recursive closure via a forward-binding
// slot: the environment the closure captures already contains a binding
// for its own name, pointing at a placeholder that is filled in with the
// finished closure immediately after construction. Any recursive call
// inside Body resolves that name through the same pointer.
func (e *Evaluator) evalNamedFunc(n *ast.NamedFuncExpr, env *values.Environment) (*values.SValue, *values.EvalError) {
	placeholder := &values.SValue{}
	recEnv := env.Bind(n.SelfName, placeholder)
	closure := values.Closure{Params: n.Params, Body: n.Body, Env: recEnv, RecName: n.SelfName}
	*placeholder = *values.Now(closure)
	return placeholder, nil
}

func (e *Evaluator) evalCall(n *ast.CallExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	callee, err := e.Eval(n.Callee, env, ctx)
	if err != nil {
		return nil, err
	}
	args := make([]*values.SValue, len(n.Args))
	for i, a := range n.Args {
		av, err := e.Eval(a, env, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = av
	}
	return e.applyCallable(callee, args, n.GetPos())
}

// evalMethodCall desugars recv.name(args) into a built-in dispatch with
// the receiver prepended, the same sugar the teacher's evaluator uses for
// its own extension-method syntax.
func (e *Evaluator) evalMethodCall(n *ast.MethodCallExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	recv, err := e.Eval(n.Receiver, env, ctx)
	if err != nil {
		return nil, err
	}
	args := make([]*values.SValue, len(n.Args)+1)
	args[0] = recv
	for i, a := range n.Args {
		av, err := e.Eval(a, env, ctx)
		if err != nil {
			return nil, err
		}
		args[i+1] = av
	}

	def, ok := e.Builtins.Lookup(n.Name)
	if !ok || !def.IsMethod {
		return nil, values.NewError(values.Unimplemented, n.GetPos(), "no method named %q", n.Name)
	}
	return e.callBuiltin(def, args, n.GetPos())
}

// applyCallable dispatches a call to whatever the callee evaluated to: a
// user closure, a built-in handle, or — when the callee itself hasn't
// resolved yet — a residual call expression.
func (e *Evaluator) applyCallable(callee *values.SValue, args []*values.SValue, pos ast.Pos) (*values.SValue, *values.EvalError) {
	if !callee.IsNow() {
		argExprs := make([]ast.Expression, len(args))
		for i, a := range args {
			argExprs[i] = reify(a)
		}
		return values.Later(&ast.CallExpr{Callee: reify(callee), Args: argExprs}, constraint.Any{}, nil), nil
	}

	switch v := callee.Value.(type) {
	case values.Closure:
		return e.applyClosure(v, args, pos)
	case values.Builtin:
		def, ok := e.Builtins.Lookup(v.Name)
		if !ok {
			return nil, values.NewError(values.Unimplemented, pos, "unregistered builtin %q", v.Name)
		}
		return e.callBuiltin(def, args, pos)
	}
	return nil, values.NewError(values.TypeMismatch, pos, "value is not callable")
}

func (e *Evaluator) applyClosure(c values.Closure, args []*values.SValue, pos ast.Pos) (*values.SValue, *values.EvalError) {
	if len(args) != len(c.Params) {
		return nil, values.NewError(values.TypeMismatch, pos, "function expects %d argument(s), got %d", len(c.Params), len(args))
	}
	callEnv := c.Env
	names := make([]string, len(c.Params))
	bound := make([]*values.SValue, len(c.Params))
	for i, p := range c.Params {
		names[i] = p
		bound[i] = withProvenance(args[i], &values.Provenance{Kind: values.ProvVariable, Name: p})
	}
	callEnv = callEnv.Extend(names, bound)
	return e.Eval(c.Body, callEnv, refine.Empty())
}

// callBuiltin dispatches to the pure shape when the built-in has one and
// every argument is fully known; otherwise it falls to the staged shape,
// which some built-ins (map, filter, fold) are the only shape they have,
// since applying a callback is inherent to what they do.
func (e *Evaluator) callBuiltin(def *builtins.Definition, args []*values.SValue, pos ast.Pos) (*values.SValue, *values.EvalError) {
	if def.Arity >= 0 && len(args) != def.Arity {
		return nil, values.NewError(values.TypeMismatch, pos, "%s expects %d argument(s), got %d", def.Name, def.Arity, len(args))
	}

	allNow := true
	now := make([]values.Value, len(args))
	for i, a := range args {
		if !a.IsNow() {
			allNow = false
			break
		}
		now[i] = a.Value
	}

	if allNow && def.Pure != nil {
		v, err := def.Pure(now)
		if err != nil {
			return nil, err
		}
		return values.Now(v), nil
	}

	if def.Staged != nil {
		return def.Staged(e.applyCallableAsBuiltinCallback, args)
	}

	argConstraints := make([]constraint.Constraint, len(args))
	for i, a := range args {
		argConstraints[i] = a.Constraint
	}
	var resultC constraint.Constraint = constraint.Any{}
	if def.ResultConstraint != nil {
		resultC = def.ResultConstraint(argConstraints)
	}
	argExprs := make([]ast.Expression, len(args))
	for i, a := range args {
		argExprs[i] = reify(a)
	}
	callee := &ast.Identifier{Name: def.Name}
	return values.Later(&ast.CallExpr{Callee: callee, Args: argExprs}, resultC, nil), nil
}

// applyCallableAsBuiltinCallback adapts applyCallable to builtins.Apply's
// signature (no position, since higher-order built-ins call back into
// user closures whose own call sites have no meaningful position here).
func (e *Evaluator) applyCallableAsBuiltinCallback(fn *values.SValue, args []*values.SValue) (*values.SValue, *values.EvalError) {
	return e.applyCallable(fn, args, ast.Pos{})
}
