package stage

import (
	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/values"
)

// constraintOnly derives the constraint expr would carry without ever
// evaluating it for a runtime value (§4.3 force-Later): a literal gets its
// singleton constraint, a bound variable's own constraint is read straight
// from env, a built-in call consults its declared ResultConstraint, and
// every other compound form recurses the same way its value-evaluating
// counterpart derives a Later result's constraint elsewhere in this
// package. Forms this cannot analyze syntactically (closures, user
// function calls, blocks, lets, nested staging directives) fall back to
// constraint.Any{}, the same conservative bound a Later result gets
// anywhere else when nothing more specific can be said.
func (e *Evaluator) constraintOnly(expr ast.Expression, env *values.Environment) constraint.Constraint {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return constraint.Equals{Value: constraint.NumberLit(n.Value)}
	case *ast.StringLiteral:
		return constraint.Equals{Value: constraint.StringLit(n.Value)}
	case *ast.BoolLiteral:
		return constraint.Equals{Value: constraint.BoolLit(n.Value)}
	case *ast.NullLiteral:
		return constraint.Equals{Value: constraint.NullLit()}

	case *ast.Identifier:
		if sv, ok := env.Get(n.Name); ok {
			return sv.Constraint
		}
		return constraint.Any{}

	case *ast.UnaryExpr:
		if n.Op == ast.OpNot {
			return constraint.Classify{Tag: constraint.IsBool}
		}
		return constraint.Classify{Tag: constraint.IsNumber}

	case *ast.BinaryExpr:
		return binaryResultConstraint(n.Op, e.constraintOnly(n.Left, env), e.constraintOnly(n.Right, env))

	case *ast.CondExpr:
		return constraint.Simplify(constraint.Or{Children: []constraint.Constraint{
			e.constraintOnly(n.Then, env),
			e.constraintOnly(n.Else, env),
		}})

	case *ast.ObjectExpr:
		children := []constraint.Constraint{constraint.Classify{Tag: constraint.IsObject}}
		for _, f := range n.Fields {
			children = append(children, constraint.HasField{Name: f.Name, Field: e.constraintOnly(f.Value, env)})
		}
		return constraint.Simplify(constraint.And{Children: children})

	case *ast.ArrayExpr:
		children := []constraint.Constraint{
			constraint.Classify{Tag: constraint.IsArray},
			constraint.Length{N: constraint.Equals{Value: constraint.NumberLit(float64(len(n.Elements)))}},
		}
		for i, el := range n.Elements {
			children = append(children, constraint.ElementAt{Index: i, Elem: e.constraintOnly(el, env)})
		}
		return constraint.Simplify(constraint.And{Children: children})

	case *ast.FieldAccessExpr:
		if fc, ok := constraint.FieldConstraint(e.constraintOnly(n.Object, env), n.Name); ok {
			return fc
		}
		return constraint.Any{}

	case *ast.IndexExpr:
		if lit, ok := n.Index.(*ast.NumberLiteral); ok {
			if ec, ok := elementAtConstraint(e.constraintOnly(n.Array, env), int(lit.Value)); ok {
				return ec
			}
		}
		return constraint.Any{}

	case *ast.CallExpr:
		if callee, ok := n.Callee.(*ast.Identifier); ok {
			if def, ok := e.Builtins.Lookup(callee.Name); ok && def.ResultConstraint != nil {
				argConstraints := make([]constraint.Constraint, len(n.Args))
				for i, a := range n.Args {
					argConstraints[i] = e.constraintOnly(a, env)
				}
				return def.ResultConstraint(argConstraints)
			}
		}
		return constraint.Any{}

	default:
		return constraint.Any{}
	}
}
