package builtins

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/config"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

// residualMethodCall builds the `recv.name(args)` residual a give-up path
// should emit, reifying the receiver and every argument so that a codegen
// collaborator (§6) walking the result always finds a real Expression, not
// a nil one, at exactly the Later values whose Residual §8's "residual
// faithfulness" property requires evaluating back to the original result.
func residualMethodCall(name string, recv *values.SValue, rest ...*values.SValue) ast.Expression {
	args := make([]ast.Expression, len(rest))
	for i, a := range rest {
		args[i] = values.Reify(a)
	}
	return &ast.MethodCallExpr{Receiver: values.Reify(recv), Name: name, Args: args}
}

// registerHigherOrder wires the array combinators named in config's
// function-name constants. None of the three has a Pure shape: even when
// every argument is fully known, applying the callback requires Apply,
// which only the staged evaluator can provide (the callback may itself be
// a user closure whose body has to be evaluated).
func registerHigherOrder(r *Registry) {
	r.register(&Definition{
		Name: "map", Arity: 2, IsMethod: true,
		Staged: stagedMap,
		ResultConstraint: func(args []constraint.Constraint) constraint.Constraint {
			return preserveArrayShape(args)
		},
	})
	r.register(&Definition{
		Name: "filter", Arity: 2, IsMethod: true,
		Staged: stagedFilter,
		ResultConstraint: func(args []constraint.Constraint) constraint.Constraint {
			return constraint.Classify{Tag: constraint.IsArray}
		},
	})
	r.register(&Definition{
		Name: "fold", Arity: 3, IsMethod: true,
		Staged: stagedFold,
		ResultConstraint: func(args []constraint.Constraint) constraint.Constraint {
			return constraint.Any{}
		},
	})
}

func asArray(sv *values.SValue) (values.Array, bool) {
	if !sv.IsNow() {
		return values.Array{}, false
	}
	arr, ok := sv.Value.(values.Array)
	return arr, ok
}

// stagedMap specializes element-by-element when the array is fully known
// (§8 scenario 7): each call is a separate Apply, so an array literal of
// constant elements folds all the way down to a constant result array.
// When the array itself is residual, map cannot specialize and falls back
// to a conservative Later result that only preserves "is an array" (and
// length, if the source array's length was pinned).
func stagedMap(apply Apply, args []*values.SValue) (*values.SValue, *values.EvalError) {
	arrSV, fn := args[0], args[1]
	arr, ok := asArray(arrSV)
	if !ok {
		residual := residualMethodCall(config.MapFuncName, arrSV, fn)
		return values.Later(residual, preserveArrayShape([]constraint.Constraint{arrSV.Constraint}), nil), nil
	}

	out := make([]values.Value, len(arr.Elements))
	allNow := true
	residuals := make([]*values.SValue, len(arr.Elements))
	for i, el := range arr.Elements {
		res, errv := apply(fn, []*values.SValue{values.Now(el)})
		if errv != nil {
			return nil, errv
		}
		residuals[i] = res
		if res.IsNow() {
			out[i] = res.Value
		} else {
			allNow = false
		}
	}
	if allNow {
		return values.Now(values.Array{Elements: out}), nil
	}

	// At least one element didn't reduce to Now; the map as a whole is
	// residual, but length is still known.
	elemConstraints := make([]constraint.Constraint, len(residuals))
	for i, r := range residuals {
		elemConstraints[i] = r.Constraint
	}
	children := []constraint.Constraint{
		constraint.Classify{Tag: constraint.IsArray},
		constraint.Length{N: constraint.Equals{Value: constraint.NumberLit(float64(len(residuals)))}},
	}
	for i, c := range elemConstraints {
		children = append(children, constraint.ElementAt{Index: i, Elem: c})
	}
	residual := residualMethodCall(config.MapFuncName, arrSV, fn)
	return values.Later(residual, constraint.Simplify(constraint.And{Children: children}), nil), nil
}

// stagedFilter specializes fully when the array and every predicate call
// resolve to a known boolean; otherwise it conservatively gives up
// precision past the first undecidable element (partial evaluation is not
// required to reduce everything, only to never reduce incorrectly).
func stagedFilter(apply Apply, args []*values.SValue) (*values.SValue, *values.EvalError) {
	arrSV, fn := args[0], args[1]
	arr, ok := asArray(arrSV)
	if !ok {
		residual := residualMethodCall(config.FilterFuncName, arrSV, fn)
		return values.Later(residual, constraint.Classify{Tag: constraint.IsArray}, nil), nil
	}

	var out []values.Value
	for _, el := range arr.Elements {
		res, errv := apply(fn, []*values.SValue{values.Now(el)})
		if errv != nil {
			return nil, errv
		}
		if !res.IsNow() {
			residual := residualMethodCall(config.FilterFuncName, arrSV, fn)
			return values.Later(residual, constraint.Classify{Tag: constraint.IsArray}, nil), nil
		}
		b, ok := res.Value.(values.Bool)
		if !ok {
			return nil, values.NewError(values.TypeMismatch, ast.Pos{}, "filter predicate must return a boolean")
		}
		if bool(b) {
			out = append(out, el)
		}
	}
	return values.Now(values.Array{Elements: out}), nil
}

// stagedFold threads an accumulator through the array sequentially; it
// gives up precision (falls to Any) as soon as either the array or any
// intermediate accumulator is not fully known, since a partial fold's
// shape depends entirely on the combining function.
func stagedFold(apply Apply, args []*values.SValue) (*values.SValue, *values.EvalError) {
	arrSV, initSV, fn := args[0], args[1], args[2]
	arr, ok := asArray(arrSV)
	if !ok {
		residual := residualMethodCall(config.FoldFuncName, arrSV, initSV, fn)
		return values.Later(residual, constraint.Any{}, nil), nil
	}

	acc := initSV
	for _, el := range arr.Elements {
		res, errv := apply(fn, []*values.SValue{acc, values.Now(el)})
		if errv != nil {
			return nil, errv
		}
		acc = res
		if !acc.IsNow() {
			residual := residualMethodCall(config.FoldFuncName, arrSV, initSV, fn)
			return values.Later(residual, constraint.Any{}, nil), nil
		}
	}
	return acc, nil
}

// preserveArrayShape keeps whatever length information the source array
// carried; used when map cannot specialize but the input length is known.
func preserveArrayShape(args []constraint.Constraint) constraint.Constraint {
	base := constraint.Classify{Tag: constraint.IsArray}
	if len(args) == 0 {
		return base
	}
	if length, ok := findLength(constraint.Simplify(args[0])); ok {
		return constraint.Simplify(constraint.And{Children: []constraint.Constraint{base, length}})
	}
	return base
}

func findLength(c constraint.Constraint) (constraint.Length, bool) {
	switch n := c.(type) {
	case constraint.Length:
		return n, true
	case constraint.And:
		for _, ch := range n.Children {
			if l, ok := findLength(ch); ok {
				return l, true
			}
		}
	}
	return constraint.Length{}, false
}
