package builtins

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

func registerArithmetic(r *Registry) {
	r.register(&Definition{
		Name: "abs", Arity: 1,
		Pure: func(args []values.Value) (values.Value, *values.EvalError) {
			n, ok := args[0].(values.Number)
			if !ok {
				return nil, values.NewError(values.TypeMismatch, ast.Pos{}, "abs expects a number")
			}
			if n < 0 {
				return -n, nil
			}
			return n, nil
		},
		ResultConstraint: func(args []constraint.Constraint) constraint.Constraint {
			return constraint.And{Children: []constraint.Constraint{
				constraint.Classify{Tag: constraint.IsNumber},
				constraint.NumBound{Kind: constraint.Gte, N: 0},
			}}
		},
	})

	r.register(&Definition{
		Name: "min", Arity: 2,
		Pure: func(args []values.Value) (values.Value, *values.EvalError) {
			a, ok1 := args[0].(values.Number)
			b, ok2 := args[1].(values.Number)
			if !ok1 || !ok2 {
				return nil, values.NewError(values.TypeMismatch, ast.Pos{}, "min expects two numbers")
			}
			if a < b {
				return a, nil
			}
			return b, nil
		},
	})

	r.register(&Definition{
		Name: "max", Arity: 2,
		Pure: func(args []values.Value) (values.Value, *values.EvalError) {
			a, ok1 := args[0].(values.Number)
			b, ok2 := args[1].(values.Number)
			if !ok1 || !ok2 {
				return nil, values.NewError(values.TypeMismatch, ast.Pos{}, "max expects two numbers")
			}
			if a > b {
				return a, nil
			}
			return b, nil
		},
	})

	r.register(&Definition{
		Name: "length", Arity: 1, IsMethod: true,
		Pure: func(args []values.Value) (values.Value, *values.EvalError) {
			switch v := args[0].(type) {
			case values.Array:
				return values.Number(len(v.Elements)), nil
			case values.String:
				return values.Number(len(string(v))), nil
			}
			return nil, values.NewError(values.TypeMismatch, ast.Pos{}, "length expects an array or string")
		},
		ResultConstraint: func(args []constraint.Constraint) constraint.Constraint {
			return constraint.And{Children: []constraint.Constraint{
				constraint.Classify{Tag: constraint.IsNumber},
				constraint.NumBound{Kind: constraint.Gte, N: 0},
			}}
		},
	})
}
