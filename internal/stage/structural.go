package stage

import (
	"strconv"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/refine"
	"github.com/refinex-lang/refinex/internal/values"
)

func (e *Evaluator) evalObject(n *ast.ObjectExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	fields := make([]*values.SValue, len(n.Fields))
	allNow := true
	for i, f := range n.Fields {
		sv, err := e.Eval(f.Value, env, ctx)
		if err != nil {
			return nil, err
		}
		fields[i] = sv
		if !sv.IsNow() {
			allNow = false
		}
	}

	if allNow {
		obj := values.NewObject()
		for i, f := range n.Fields {
			obj = obj.With(f.Name, fields[i].Value)
		}
		return values.Now(obj), nil
	}

	children := []constraint.Constraint{constraint.Classify{Tag: constraint.IsObject}}
	residualFields := make([]ast.ObjectField, len(n.Fields))
	for i, f := range n.Fields {
		children = append(children, constraint.HasField{Name: f.Name, Field: fields[i].Constraint})
		residualFields[i] = ast.ObjectField{Name: f.Name, Value: reify(fields[i])}
	}
	return values.Later(&ast.ObjectExpr{Fields: residualFields}, constraint.Simplify(constraint.And{Children: children}), nil), nil
}

func (e *Evaluator) evalFieldAccess(n *ast.FieldAccessExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	obj, err := e.Eval(n.Object, env, ctx)
	if err != nil {
		return nil, err
	}
	if obj.IsNow() {
		o, ok := obj.Value.(values.Object)
		if !ok {
			return nil, values.NewError(values.TypeMismatch, n.GetPos(), "field access on a non-object value")
		}
		v, ok := o.Get(n.Name)
		if !ok {
			return nil, values.NewError(values.TypeMismatch, n.GetPos(), "object has no field %q", n.Name)
		}
		result := values.Now(v)
		if obj.Provenance != nil {
			result.Provenance = &values.Provenance{Kind: values.ProvField, Name: n.Name, Base: obj.Provenance}
		}
		return result, nil
	}

	fc, ok := constraint.FieldConstraint(obj.Constraint, n.Name)
	if !ok {
		fc = constraint.Any{}
	}
	var prov *values.Provenance
	if obj.Provenance != nil {
		prov = &values.Provenance{Kind: values.ProvField, Name: n.Name, Base: obj.Provenance}
	}
	return values.Later(&ast.FieldAccessExpr{Object: reify(obj), Name: n.Name}, fc, prov), nil
}

func (e *Evaluator) evalArray(n *ast.ArrayExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	elems := make([]*values.SValue, len(n.Elements))
	allNow := true
	for i, el := range n.Elements {
		sv, err := e.Eval(el, env, ctx)
		if err != nil {
			return nil, err
		}
		elems[i] = sv
		if !sv.IsNow() {
			allNow = false
		}
	}

	if allNow {
		out := make([]values.Value, len(elems))
		for i, sv := range elems {
			out[i] = sv.Value
		}
		return values.Now(values.Array{Elements: out}), nil
	}

	children := []constraint.Constraint{
		constraint.Classify{Tag: constraint.IsArray},
		constraint.Length{N: constraint.Equals{Value: constraint.NumberLit(float64(len(elems)))}},
	}
	residualElems := make([]ast.Expression, len(elems))
	for i, sv := range elems {
		children = append(children, constraint.ElementAt{Index: i, Elem: sv.Constraint})
		residualElems[i] = reify(sv)
	}
	return values.Later(&ast.ArrayExpr{Elements: residualElems}, constraint.Simplify(constraint.And{Children: children}), nil), nil
}

func (e *Evaluator) evalIndex(n *ast.IndexExpr, env *values.Environment, ctx *refine.Context) (*values.SValue, *values.EvalError) {
	arr, err := e.Eval(n.Array, env, ctx)
	if err != nil {
		return nil, err
	}
	idx, err := e.Eval(n.Index, env, ctx)
	if err != nil {
		return nil, err
	}

	if arr.IsNow() && idx.IsNow() {
		a, ok := arr.Value.(values.Array)
		if !ok {
			return nil, values.NewError(values.TypeMismatch, n.GetPos(), "index access on a non-array value")
		}
		in, ok := idx.Value.(values.Number)
		if !ok {
			return nil, values.NewError(values.TypeMismatch, n.GetPos(), "array index must be a number")
		}
		i := int(in)
		if i < 0 || i >= len(a.Elements) {
			return nil, values.NewError(values.TypeMismatch, n.GetPos(), "index %d out of bounds for array of length %d", i, len(a.Elements))
		}
		result := values.Now(a.Elements[i])
		if arr.Provenance != nil {
			result.Provenance = &values.Provenance{Kind: values.ProvField, Name: indexName(i), Base: arr.Provenance}
		}
		return result, nil
	}

	var fc constraint.Constraint = constraint.Any{}
	if idx.IsNow() {
		if in, ok := idx.Value.(values.Number); ok {
			if c, ok := elementAtConstraint(arr.Constraint, int(in)); ok {
				fc = c
			}
		}
	}
	var prov *values.Provenance
	if arr.Provenance != nil && idx.IsNow() {
		if in, ok := idx.Value.(values.Number); ok {
			prov = &values.Provenance{Kind: values.ProvField, Name: indexName(int(in)), Base: arr.Provenance}
		}
	}
	return values.Later(&ast.IndexExpr{Array: reify(arr), Index: reify(idx)}, fc, prov), nil
}

func indexName(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// elementAtConstraint finds the constraint for a specific index within a
// (possibly And-wrapped) array constraint: an ElementAt pinned to that
// index if there is one, otherwise the general Elements bound.
func elementAtConstraint(c constraint.Constraint, index int) (constraint.Constraint, bool) {
	switch n := constraint.Simplify(c).(type) {
	case constraint.ElementAt:
		if n.Index == index {
			return n.Elem, true
		}
	case constraint.Elements:
		return n.Elem, true
	case constraint.And:
		for _, ch := range n.Children {
			if ea, ok := ch.(constraint.ElementAt); ok && ea.Index == index {
				return ea.Elem, true
			}
		}
		for _, ch := range n.Children {
			if ec, ok := elementAtConstraint(ch, index); ok {
				return ec, true
			}
		}
	}
	return nil, false
}
