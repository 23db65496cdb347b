package constraint

import "fmt"

// Substitution maps inference-variable ids to the constraints they were
// bound to.
type Substitution map[int]Constraint

// Apply replaces every Var in c with its binding in s (recursively).
func (s Substitution) Apply(c Constraint) Constraint {
	switch n := c.(type) {
	case Var:
		if bound, ok := s[n.ID]; ok {
			return s.Apply(bound)
		}
		return n
	case And:
		out := make([]Constraint, len(n.Children))
		for i, ch := range n.Children {
			out[i] = s.Apply(ch)
		}
		return And{Children: out}
	case Or:
		out := make([]Constraint, len(n.Children))
		for i, ch := range n.Children {
			out[i] = s.Apply(ch)
		}
		return Or{Children: out}
	case Not:
		return Not{Child: s.Apply(n.Child)}
	case HasField:
		return HasField{Name: n.Name, Field: s.Apply(n.Field)}
	case Elements:
		return Elements{Elem: s.Apply(n.Elem)}
	case ElementAt:
		return ElementAt{Index: n.Index, Elem: s.Apply(n.Elem)}
	case Length:
		return Length{N: s.Apply(n.N)}
	case IndexSignature:
		return IndexSignature{Elem: s.Apply(n.Elem)}
	case IsType:
		return IsType{Inner: s.Apply(n.Inner)}
	case Rec:
		return Rec{Name: n.Name, Body: s.Apply(n.Body)}
	default:
		return c
	}
}

// Compose returns a substitution equivalent to applying s first, then t.
func (s Substitution) Compose(t Substitution) Substitution {
	out := make(Substitution, len(s)+len(t))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range s {
		out[k] = t.Apply(v)
	}
	return out
}

// VarGen hands out fresh inference-variable ids. §5 calls for a
// process-wide counter with a test-mode reset; implementations may
// instead embed one VarGen per evaluator instance, which is what
// internal/stage does.
type VarGen struct{ next int }

func (g *VarGen) Fresh() Var {
	v := Var{ID: g.next}
	g.next++
	return v
}

func (g *VarGen) Reset() { g.next = 0 }

// occurs reports whether v occurs free inside c (ignoring rec binders
// that shadow the same name, which cannot happen for inference variables
// since their ids are distinct from rec binder names).
func occurs(v Var, c Constraint) bool {
	switch n := c.(type) {
	case Var:
		return n.ID == v.ID
	case And:
		for _, ch := range n.Children {
			if occurs(v, ch) {
				return true
			}
		}
	case Or:
		for _, ch := range n.Children {
			if occurs(v, ch) {
				return true
			}
		}
	case Not:
		return occurs(v, n.Child)
	case HasField:
		return occurs(v, n.Field)
	case Elements:
		return occurs(v, n.Elem)
	case ElementAt:
		return occurs(v, n.Elem)
	case Length:
		return occurs(v, n.N)
	case IndexSignature:
		return occurs(v, n.Elem)
	case IsType:
		return occurs(v, n.Inner)
	case Rec:
		return occurs(v, n.Body)
	}
	return false
}

// Solve is the inference-variable unifier: it finds a substitution making
// A and B compatible, in the subtyping direction documented in §4.1 —
// every conjunct on the right-hand side must be matched by some conjunct
// (or the whole) of the left. Returns (nil, false) on failure (⊥).
func Solve(a, b Constraint) (Substitution, bool) {
	s, ok := solve(a, b, Substitution{})
	if !ok {
		return nil, false
	}
	return s, true
}

func solve(a, b Constraint, s Substitution) (Substitution, bool) {
	a = s.Apply(a)
	b = s.Apply(b)

	if va, ok := a.(Var); ok {
		return bindVar(va, b, s)
	}
	if vb, ok := b.(Var); ok {
		return bindVar(vb, a, s)
	}

	if andB, ok := b.(And); ok {
		cur := s
		for _, bj := range andB.Children {
			matched := false
			candidates := []Constraint{a}
			if andA, ok := a.(And); ok {
				candidates = andA.Children
			}
			for _, ai := range candidates {
				if next, ok := solve(ai, bj, cur); ok {
					cur = next
					matched = true
					break
				}
			}
			if !matched {
				return nil, false
			}
		}
		return cur, true
	}

	switch av := a.(type) {
	case Classify:
		bv, ok := b.(Classify)
		return s, ok && av.Tag == bv.Tag
	case Equals:
		bv, ok := b.(Equals)
		return s, ok && structEqual(av, bv)
	case NumBound:
		bv, ok := b.(NumBound)
		return s, ok && av.Kind == bv.Kind && av.N == bv.N
	case HasField:
		bv, ok := b.(HasField)
		if !ok || av.Name != bv.Name {
			return nil, false
		}
		return solve(av.Field, bv.Field, s)
	case Elements:
		bv, ok := b.(Elements)
		if !ok {
			return nil, false
		}
		return solve(av.Elem, bv.Elem, s)
	case ElementAt:
		bv, ok := b.(ElementAt)
		if !ok || av.Index != bv.Index {
			return nil, false
		}
		return solve(av.Elem, bv.Elem, s)
	case IsType:
		bv, ok := b.(IsType)
		if !ok {
			return nil, false
		}
		return solve(av.Inner, bv.Inner, s)
	case Never:
		_, ok := b.(Never)
		return s, ok
	case Any:
		_, ok := b.(Any)
		return s, ok
	}

	if structEqual(a, b) {
		return s, true
	}
	return nil, false
}

func bindVar(v Var, c Constraint, s Substitution) (Substitution, bool) {
	if same, ok := c.(Var); ok && same.ID == v.ID {
		return s, true
	}
	if occurs(v, c) {
		return nil, false
	}
	next := make(Substitution, len(s)+1)
	for k, val := range s {
		next[k] = val
	}
	next[v.ID] = c
	return next, true
}

// DescribeFailure gives a human-readable reason why a known constraint
// does not yield a goal; refine.Explain uses it for a failed Prove. Solve
// itself just returns ok=false since the hot path has no use for the
// string.
func DescribeFailure(a, b Constraint) string {
	return fmt.Sprintf("cannot solve %s against %s", a.String(), b.String())
}
