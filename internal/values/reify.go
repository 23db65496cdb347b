package values

import "github.com/refinex-lang/refinex/internal/ast"

// Reify turns a staged value back into the ast.Expression a residual
// should embed in its place: a Later value's own Residual verbatim, or a
// freshly built literal/structural node for a Now value's Value. It lives
// here (rather than in internal/stage, where most of its call sites are)
// so that internal/builtins — which must not import internal/stage — can
// reify its own arguments when a staged built-in gives up precision and
// has to residualize a call expression.
func Reify(sv *SValue) ast.Expression {
	if !sv.IsNow() {
		return sv.Residual
	}
	return ReifyValue(sv.Value)
}

// ReifyValue turns a fully known Value into the literal/structural
// ast.Expression it denotes.
func ReifyValue(v Value) ast.Expression {
	switch vv := v.(type) {
	case Number:
		return &ast.NumberLiteral{Value: float64(vv)}
	case String:
		return &ast.StringLiteral{Value: string(vv)}
	case Bool:
		return &ast.BoolLiteral{Value: bool(vv)}
	case Null:
		return &ast.NullLiteral{}
	case Array:
		elems := make([]ast.Expression, len(vv.Elements))
		for i, e := range vv.Elements {
			elems[i] = ReifyValue(e)
		}
		return &ast.ArrayExpr{Elements: elems}
	case Object:
		fields := make([]ast.ObjectField, len(vv.Order))
		for i, name := range vv.Order {
			fields[i] = ast.ObjectField{Name: name, Value: ReifyValue(vv.Fields[name])}
		}
		return &ast.ObjectExpr{Fields: fields}
	default:
		return &ast.NullLiteral{}
	}
}
