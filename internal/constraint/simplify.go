package constraint

// Simplify rewrites a constraint to canonical form per §4.1:
//   - flatten nested and/or
//   - drop any from and, never from or
//   - and containing never collapses to never; or containing any collapses to any
//   - dedupe by structural equality
//   - detect contradictions inside and (disjoint tags, incompatible
//     equals/bounds, overlapping hasField collisions) and collapse to never
//   - unwrap singleton and/or
//   - push not through De Morgan
//
// rec binders are never unrolled here, to guarantee termination.
func Simplify(c Constraint) Constraint {
	switch n := c.(type) {
	case And:
		return simplifyAnd(n.Children)
	case Or:
		return simplifyOr(n.Children)
	case Not:
		return simplifyNot(n.Child)
	case HasField:
		return HasField{Name: n.Name, Field: Simplify(n.Field)}
	case Elements:
		return Elements{Elem: Simplify(n.Elem)}
	case ElementAt:
		return ElementAt{Index: n.Index, Elem: Simplify(n.Elem)}
	case Length:
		return Length{N: Simplify(n.N)}
	case IndexSignature:
		return IndexSignature{Elem: Simplify(n.Elem)}
	case IsType:
		return IsType{Inner: Simplify(n.Inner)}
	case Rec:
		// Do not unroll; only simplify directly-visible structure around
		// the binder (the body is left alone to guarantee termination).
		return n
	default:
		return c
	}
}

func simplifyAnd(children []Constraint) Constraint {
	flat := flatten(children, func(c Constraint) ([]Constraint, bool) {
		a, ok := c.(And)
		if !ok {
			return nil, false
		}
		return a.Children, true
	})

	simplified := make([]Constraint, 0, len(flat))
	for _, ch := range flat {
		s := Simplify(ch)
		if _, isAny := s.(Any); isAny {
			continue // drop Any from And
		}
		if _, isNever := s.(Never); isNever {
			return Never{}
		}
		simplified = append(simplified, s)
	}

	deduped := dedupe(simplified)

	if contradicts(deduped) {
		return Never{}
	}

	switch len(deduped) {
	case 0:
		return Any{}
	case 1:
		return deduped[0]
	default:
		return And{Children: deduped}
	}
}

func simplifyOr(children []Constraint) Constraint {
	flat := flatten(children, func(c Constraint) ([]Constraint, bool) {
		o, ok := c.(Or)
		if !ok {
			return nil, false
		}
		return o.Children, true
	})

	simplified := make([]Constraint, 0, len(flat))
	for _, ch := range flat {
		s := Simplify(ch)
		if _, isNever := s.(Never); isNever {
			continue // drop Never from Or
		}
		if _, isAny := s.(Any); isAny {
			return Any{}
		}
		simplified = append(simplified, s)
	}

	deduped := dedupe(simplified)

	switch len(deduped) {
	case 0:
		return Never{}
	case 1:
		return deduped[0]
	default:
		return Or{Children: deduped}
	}
}

// simplifyNot pushes a negation inward via De Morgan and turns a negated
// numeric bound into its complement bound; see also Negate, the public
// entry point. Every other leaf stays wrapped in a Not node.
func simplifyNot(child Constraint) Constraint {
	s := Simplify(child)
	switch n := s.(type) {
	case Not:
		return Simplify(n.Child) // not(not(x)) -> x
	case And:
		negated := make([]Constraint, len(n.Children))
		for i, ch := range n.Children {
			negated[i] = simplifyNot(ch)
		}
		return simplifyOr(negated)
	case Or:
		negated := make([]Constraint, len(n.Children))
		for i, ch := range n.Children {
			negated[i] = simplifyNot(ch)
		}
		return simplifyAnd(negated)
	case Never:
		return Any{}
	case Any:
		return Never{}
	case NumBound:
		return NumBound{Kind: n.Kind.flip(), N: n.N}
	default:
		// Classification and other opaque nodes are left structural: no
		// complement simplification (§4.1).
		return Not{Child: s}
	}
}

func flatten(children []Constraint, unwrap func(Constraint) ([]Constraint, bool)) []Constraint {
	out := make([]Constraint, 0, len(children))
	for _, c := range children {
		if nested, ok := unwrap(c); ok {
			out = append(out, flatten(nested, unwrap)...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func dedupe(children []Constraint) []Constraint {
	out := make([]Constraint, 0, len(children))
	for _, c := range children {
		dup := false
		for _, existing := range out {
			if structEqual(existing, c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// contradicts detects the And-level contradictions named in §4.1.
func contradicts(children []Constraint) bool {
	var tags []ClassTag
	var eqs []Equals
	var lowers, uppers []NumBound
	var fields []HasField

	for _, c := range children {
		switch n := c.(type) {
		case Classify:
			tags = append(tags, n.Tag)
		case Equals:
			eqs = append(eqs, n)
		case NumBound:
			switch n.Kind {
			case Gt, Gte:
				lowers = append(lowers, n)
			case Lt, Lte:
				uppers = append(uppers, n)
			}
		case HasField:
			fields = append(fields, n)
		}
	}

	// At most one classification tag.
	if len(tags) > 1 {
		for i := 1; i < len(tags); i++ {
			if tags[i] != tags[0] {
				return true
			}
		}
	}

	// equals(v) must be compatible with any accompanying classification.
	for _, e := range eqs {
		for _, t := range tags {
			if e.Value.classOf() != t {
				return true
			}
		}
		if e.Value.Kind == LitNumber {
			for _, lo := range lowers {
				if !boundHolds(lo, e.Value.Num) {
					return true
				}
			}
			for _, hi := range uppers {
				if !boundHolds(hi, e.Value.Num) {
					return true
				}
			}
		}
	}
	// Two different equals values contradict.
	for i := 0; i < len(eqs); i++ {
		for j := i + 1; j < len(eqs); j++ {
			if !structEqual(Equals{Value: eqs[i].Value}, Equals{Value: eqs[j].Value}) {
				return true
			}
		}
	}

	// Lower bound >= upper bound is a contradiction.
	for _, lo := range lowers {
		for _, hi := range uppers {
			if lo.N > hi.N {
				return true
			}
			if lo.N == hi.N && (lo.Kind == Gt || hi.Kind == Lt) {
				return true
			}
		}
	}

	// Two hasField(n, ...) constraints on the same field whose sub-constraints
	// are themselves contradictory.
	for i := 0; i < len(fields); i++ {
		for j := i + 1; j < len(fields); j++ {
			if fields[i].Name != fields[j].Name {
				continue
			}
			merged := Simplify(And{Children: []Constraint{fields[i].Field, fields[j].Field}})
			if _, never := merged.(Never); never {
				return true
			}
		}
	}

	return false
}

func boundHolds(b NumBound, v float64) bool {
	switch b.Kind {
	case Gt:
		return v > b.N
	case Gte:
		return v >= b.N
	case Lt:
		return v < b.N
	default:
		return v <= b.N
	}
}
