package values

import (
	"fmt"

	"github.com/refinex-lang/refinex/internal/ast"
	"github.com/refinex-lang/refinex/internal/constraint"
)

// Stage discriminates a staged value's two shapes: known now, or deferred
// to a later stage of evaluation.
type Stage int

const (
	StageNow Stage = iota
	StageLater
)

// ProvKind discriminates how a Later value's identity was derived, which
// the prover consults to recognize when two residual expressions denote
// the same runtime value (e.g. x.foo compared against itself).
type ProvKind int

const (
	ProvVariable ProvKind = iota
	ProvField
	ProvOperator
	ProvLiteral
)

// Provenance records the syntactic origin of a residualized value.
type Provenance struct {
	Kind ProvKind
	Name string      // variable name, field name, or operator symbol
	Base *Provenance // for ProvField: the provenance of the object expression
	Args []*Provenance
	Lit  constraint.Literal // for ProvLiteral
}

// OperandProvenance returns the provenance an operator should record for
// one of its operands: the operand's own provenance if it has one, or (for
// a fully known scalar) a synthesized literal provenance, so that
// `x < 0` evaluated twice is still recognized as the same term even though
// the literal `0` itself carries no provenance of its own.
func OperandProvenance(sv *SValue) *Provenance {
	if sv.Provenance != nil {
		return sv.Provenance
	}
	if !sv.IsNow() {
		return nil
	}
	switch v := sv.Value.(type) {
	case Number:
		return &Provenance{Kind: ProvLiteral, Lit: constraint.NumberLit(float64(v))}
	case String:
		return &Provenance{Kind: ProvLiteral, Lit: constraint.StringLit(string(v))}
	case Bool:
		return &Provenance{Kind: ProvLiteral, Lit: constraint.BoolLit(bool(v))}
	case Null:
		return &Provenance{Kind: ProvLiteral, Lit: constraint.NullLit()}
	default:
		return nil
	}
}

// SValue is the result of evaluating any expression (§5): either a known
// value carrying the strongest constraint ConstraintOf can derive, or a
// residual expression carrying whatever constraint narrowing has proven
// about it so far.
type SValue struct {
	Stage      Stage
	Value      Value              // valid when Stage == StageNow
	Residual   ast.Expression     // valid when Stage == StageLater
	Constraint constraint.Constraint
	Provenance *Provenance // nil when untracked
}

// Now wraps a fully known value, deriving its constraint automatically.
func Now(v Value) *SValue {
	return &SValue{Stage: StageNow, Value: v, Constraint: ConstraintOf(v)}
}

// Later wraps a residual expression under the given narrowed constraint.
func Later(residual ast.Expression, c constraint.Constraint, prov *Provenance) *SValue {
	return &SValue{Stage: StageLater, Residual: residual, Constraint: c, Provenance: prov}
}

// IsNow reports whether the value is fully known.
func (s *SValue) IsNow() bool { return s.Stage == StageNow }

func (s *SValue) String() string {
	if s.IsNow() {
		return s.Value.String()
	}
	return fmt.Sprintf("<later %s>", s.Constraint.String())
}

// Term is the small symbolic-term language the prover uses to decide
// whether two Later provenances necessarily denote the same value (e.g.
// recognizing that x.foo == x.foo is trivially true without knowing x).
type Term interface {
	termNode()
	Key() string
}

type symbolTerm struct{ name string }

func (symbolTerm) termNode()     {}
func (t symbolTerm) Key() string { return "sym:" + t.name }

type fieldTerm struct {
	base Term
	name string
}

func (fieldTerm) termNode()     {}
func (t fieldTerm) Key() string { return t.base.Key() + "." + t.name }

type literalTerm struct{ lit constraint.Literal }

func (literalTerm) termNode()     {}
func (t literalTerm) Key() string { return "lit:" + t.lit.String() }

type opaqueTerm struct{ id string }

func (opaqueTerm) termNode()     {}
func (t opaqueTerm) Key() string { return "op:" + t.id }

// opTerm represents an operator applied to operand terms, e.g. `x < 0`.
// Two operator applications compare equal only when the operator and
// every operand term match — so `x < 0` evaluated twice is recognized as
// the same term (enabling redundant-branch elimination), while `x < y`
// and `x < z` are not confused with each other.
type opTerm struct {
	name string
	args []Term
}

func (opTerm) termNode() {}
func (t opTerm) Key() string {
	key := "op:" + t.name + "("
	for i, a := range t.args {
		if i > 0 {
			key += ","
		}
		key += a.Key()
	}
	return key + ")"
}

// ProvenanceToTerm converts a provenance chain into a comparable Term, or
// nil if some part of the chain has no stable identity (e.g. an operator
// argument that was itself produced by something untracked).
func ProvenanceToTerm(p *Provenance) Term {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case ProvVariable:
		return symbolTerm{name: p.Name}
	case ProvField:
		base := ProvenanceToTerm(p.Base)
		if base == nil {
			return nil
		}
		return fieldTerm{base: base, name: p.Name}
	case ProvLiteral:
		return literalTerm{lit: p.Lit}
	case ProvOperator:
		args := make([]Term, len(p.Args))
		for i, a := range p.Args {
			t := ProvenanceToTerm(a)
			if t == nil {
				return nil
			}
			args[i] = t
		}
		return opTerm{name: p.Name, args: args}
	default:
		return nil
	}
}

// SameTerm reports whether two provenances are syntactically guaranteed to
// denote the same value.
func SameTerm(a, b *Provenance) bool {
	ta, tb := ProvenanceToTerm(a), ProvenanceToTerm(b)
	if ta == nil || tb == nil {
		return false
	}
	return ta.Key() == tb.Key()
}
