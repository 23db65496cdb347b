// Package values implements the value and type representation (component
// C2): runtime values, closures, persistent environments, and the staged
// value wrapper that every evaluated expression produces.
package values

import (
	"fmt"
	"strings"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
)

// Kind discriminates the value variants.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNull
	KindArray
	KindObject
	KindClosure
	KindType
	KindBuiltin
)

// Value is a fully known, compile-time value (the "Now" half of staging).
// Unlike Constraint, Value can describe arrays, objects, and closures in
// full, not just the scalar literals Equals pins down.
type Value interface {
	Kind() Kind
	String() string
	valueNode()
}

type Number float64

func (Number) Kind() Kind        { return KindNumber }
func (n Number) String() string  { return fmt.Sprintf("%g", float64(n)) }
func (Number) valueNode()        {}

type String string

func (String) Kind() Kind       { return KindString }
func (s String) String() string { return fmt.Sprintf("%q", string(s)) }
func (String) valueNode()       {}

type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if bool(b) {
		return "true"
	}
	return "false"
}
func (Bool) valueNode() {}

type Null struct{}

func (Null) Kind() Kind     { return KindNull }
func (Null) String() string { return "null" }
func (Null) valueNode()     {}

// Array is an ordered, immutable sequence of values.
type Array struct{ Elements []Value }

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (Array) valueNode() {}

// Object is an immutable record. Fields preserves insertion order so that
// String() and field-constraint extraction are deterministic.
type Object struct {
	Fields map[string]Value
	Order  []string
}

func NewObject() Object {
	return Object{Fields: map[string]Value{}, Order: nil}
}

// With returns a new Object with name bound to v (copy-on-write).
func (o Object) With(name string, v Value) Object {
	next := make(map[string]Value, len(o.Fields)+1)
	for k, val := range o.Fields {
		next[k] = val
	}
	order := o.Order
	if _, exists := o.Fields[name]; !exists {
		order = append(append([]string{}, o.Order...), name)
	}
	next[name] = v
	return Object{Fields: next, Order: order}
}

func (o Object) Get(name string) (Value, bool) {
	v, ok := o.Fields[name]
	return v, ok
}

func (Object) Kind() Kind { return KindObject }
func (o Object) String() string {
	parts := make([]string, len(o.Order))
	for i, name := range o.Order {
		parts[i] = fmt.Sprintf("%s: %s", name, o.Fields[name].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (Object) valueNode() {}

// Closure is a function value: captured environment plus the syntax of its
// body. RecName is non-empty for a named function expression that may
// refer to itself recursively.
type Closure struct {
	Params  []string
	Body    ast.Expression
	Env     *Environment
	RecName string
}

func (Closure) Kind() Kind { return KindClosure }
func (c Closure) String() string {
	if c.RecName != "" {
		return fmt.Sprintf("<closure %s/%d>", c.RecName, len(c.Params))
	}
	return fmt.Sprintf("<closure/%d>", len(c.Params))
}
func (Closure) valueNode() {}

// TypeValue reifies a constraint as a first-class value, produced by
// typeOf; ConstraintOf describes it as isType of that constraint.
type TypeValue struct{ Constraint constraint.Constraint }

func (TypeValue) Kind() Kind       { return KindType }
func (t TypeValue) String() string { return fmt.Sprintf("<type %s>", t.Constraint.String()) }
func (TypeValue) valueNode()       {}

// Builtin is an opaque handle to a registered built-in; the registry
// (internal/builtins) owns the actual implementation.
type Builtin struct{ Name string }

func (Builtin) Kind() Kind       { return KindBuiltin }
func (b Builtin) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }
func (Builtin) valueNode()       {}

// ClassOf returns the classification tag a Now value naturally satisfies,
// mirroring Literal.classOf in internal/constraint for the compound kinds
// constraint.Literal cannot represent.
func ClassOf(v Value) constraint.ClassTag {
	switch v.Kind() {
	case KindNumber:
		return constraint.IsNumber
	case KindString:
		return constraint.IsString
	case KindBool:
		return constraint.IsBool
	case KindNull:
		return constraint.IsNull
	case KindArray:
		return constraint.IsArray
	case KindClosure, KindBuiltin:
		return constraint.IsFunction
	default:
		return constraint.IsObject
	}
}

// ConstraintOf computes the strongest constraint Simplify can express for a
// fully known value: an exact Equals for scalars, and a structural
// description for compounds built from their elements' own constraints
// (length plus one elementAt per slot for arrays, hasField per field for
// objects).
func ConstraintOf(v Value) constraint.Constraint {
	switch vv := v.(type) {
	case Number:
		return constraint.Equals{Value: constraint.NumberLit(float64(vv))}
	case String:
		return constraint.Equals{Value: constraint.StringLit(string(vv))}
	case Bool:
		return constraint.Equals{Value: constraint.BoolLit(bool(vv))}
	case Null:
		return constraint.Equals{Value: constraint.NullLit()}
	case Array:
		children := make([]constraint.Constraint, 0, len(vv.Elements)+1)
		children = append(children, constraint.Classify{Tag: constraint.IsArray})
		children = append(children, constraint.Length{N: constraint.Equals{Value: constraint.NumberLit(float64(len(vv.Elements)))}})
		for i, e := range vv.Elements {
			children = append(children, constraint.ElementAt{Index: i, Elem: ConstraintOf(e)})
		}
		return constraint.Simplify(constraint.And{Children: children})
	case Object:
		children := []constraint.Constraint{constraint.Classify{Tag: constraint.IsObject}}
		for _, name := range vv.Order {
			children = append(children, constraint.HasField{Name: name, Field: ConstraintOf(vv.Fields[name])})
		}
		return constraint.Simplify(constraint.And{Children: children})
	case TypeValue:
		return constraint.IsType{Inner: vv.Constraint}
	default:
		return constraint.Classify{Tag: ClassOf(v)}
	}
}
