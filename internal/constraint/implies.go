package constraint

// assumption is a co-inductive guess used while checking recursive
// constraints: "we are already assuming Left implies Right somewhere up
// the call stack, so if we recurse back into the same pair, conclude
// true" (see §4.1 bullet on recursive constraints).
type assumption struct {
	left, right string
}

// Implies decides whether A is a subtype of B (A's values are a subset of
// B's). The procedure is sound but intentionally incomplete (§1 Non-goals).
func Implies(a, b Constraint) bool {
	return implies(Simplify(a), Simplify(b), nil)
}

func implies(a, b Constraint, assumed []assumption) bool {
	if _, never := a.(Never); never {
		return true
	}
	if _, any := b.(Any); any {
		return true
	}
	if _, never := b.(Never); never {
		_, aIsNever := a.(Never)
		return aIsNever
	}
	if _, any := a.(Any); any {
		_, bIsAny := b.(Any)
		return bIsAny
	}

	if structEqual(a, b) {
		return true
	}

	// Try the shape-specific rule for A's own node kind first.
	if impliesLeftShape(a, b, assumed) {
		return true
	}

	// Fall back to B's structural possibilities: A may imply an Or branch,
	// every conjunct of an And, or a one-step unrolling of a Rec, even when
	// A's own shape rule above didn't fire (e.g. A is a plain Classify and
	// B is a recursive list type).
	switch bv := b.(type) {
	case Or:
		for _, bj := range bv.Children {
			if implies(a, bj, assumed) {
				return true
			}
		}
		return false
	case And:
		for _, bj := range bv.Children {
			if !implies(a, bj, assumed) {
				return false
			}
		}
		return true
	case Rec:
		return implies(a, unroll(bv), assumed)
	case Not:
		// A implies not(C) when A and C cannot both hold. Simplify treats
		// distinct classification tags as disjoint, so a pair related by
		// the tag hierarchy (isArray/isFunction under isObject) is
		// excluded first.
		if implies(a, bv.Child, assumed) || implies(bv.Child, a, assumed) {
			return false
		}
		_, disjoint := Simplify(And{Children: []Constraint{a, bv.Child}}).(Never)
		return disjoint
	}

	return false
}

// impliesLeftShape implements the rules keyed on A's node kind (§4.1):
// same-tag recursion, the classification hierarchy, equals/bound
// arithmetic, structural recursion, and the Or/And/Rec rules for A.
func impliesLeftShape(a, b Constraint, assumed []assumption) bool {
	switch av := a.(type) {
	case Classify:
		if bv, ok := b.(Classify); ok {
			return av.Tag == bv.Tag || hierarchyImplies(av.Tag, bv.Tag)
		}
		return false

	case Equals:
		switch bv := b.(type) {
		case Classify:
			return av.Value.classOf() == bv.Tag
		case NumBound:
			return av.Value.Kind == LitNumber && boundHolds(bv, av.Value.Num)
		case Equals:
			return structEqual(av, bv)
		}
		return false

	case NumBound:
		switch bv := b.(type) {
		case NumBound:
			return numBoundImplies(av, bv)
		case Classify:
			return bv.Tag == IsNumber
		}
		return false

	case HasField:
		switch bv := b.(type) {
		case HasField:
			return av.Name == bv.Name && implies(av.Field, bv.Field, assumed)
		case Classify:
			return bv.Tag == IsObject
		}
		return false

	case Elements:
		switch bv := b.(type) {
		case Elements:
			return implies(av.Elem, bv.Elem, assumed)
		case Classify:
			return bv.Tag == IsArray
		}
		return false

	case ElementAt:
		bv, ok := b.(ElementAt)
		return ok && av.Index == bv.Index && implies(av.Elem, bv.Elem, assumed)

	case Length:
		bv, ok := b.(Length)
		return ok && implies(av.N, bv.N, assumed)

	case IndexSignature:
		bv, ok := b.(IndexSignature)
		return ok && implies(av.Elem, bv.Elem, assumed)

	case And:
		for _, ai := range av.Children {
			if implies(ai, b, assumed) {
				return true
			}
		}
		// A combination of conjuncts may directly witness B even when no
		// single conjunct does (e.g. gte(5) ∧ lte(5) ⟹ equals(5)).
		return witnessesCombined(av.Children, b)

	case Or:
		for _, ai := range av.Children {
			if !implies(ai, b, assumed) {
				return false
			}
		}
		return true

	case IsType:
		bv, ok := b.(IsType)
		return ok && implies(av.Inner, bv.Inner, assumed)

	case Rec:
		return impliesRecLeft(av, b, assumed)

	case RecVar:
		if bv, ok := b.(RecVar); ok {
			for _, as := range assumed {
				if as.left == av.Name && as.right == bv.Name {
					return true
				}
			}
		}
		return false

	case Satisfies:
		bv, ok := b.(Satisfies)
		return ok && av.Handle == bv.Handle

	case Not:
		if bv, ok := b.(Not); ok {
			return implies(bv.Child, av.Child, assumed) // contravariant
		}
		return false
	}

	return false
}

func hierarchyImplies(sub, super ClassTag) bool {
	if sub == IsArray && super == IsObject {
		return true
	}
	if sub == IsFunction && super == IsObject {
		return true
	}
	return false
}

func numBoundImplies(a, b NumBound) bool {
	lowerA := a.Kind == Gt || a.Kind == Gte
	lowerB := b.Kind == Gt || b.Kind == Gte
	if lowerA != lowerB {
		return false
	}
	if lowerA {
		if a.N > b.N {
			return true
		}
		return a.N == b.N && (a.Kind == Gt || b.Kind == Gte)
	}
	if a.N < b.N {
		return true
	}
	return a.N == b.N && (a.Kind == Lt || b.Kind == Lte)
}

// witnessesCombined checks whether a gte/lte pair in an And pins down an
// equals, or other simple multi-conjunct witnesses of B.
func witnessesCombined(children []Constraint, b Constraint) bool {
	var lo, hi *NumBound
	for _, c := range children {
		if nb, ok := c.(NumBound); ok {
			switch nb.Kind {
			case Gte:
				v := nb
				lo = &v
			case Lte:
				v := nb
				hi = &v
			}
		}
	}
	if lo != nil && hi != nil && lo.N == hi.N {
		pinned := Equals{Value: NumberLit(lo.N)}
		return implies(pinned, b, nil)
	}
	return false
}

// impliesRecLeft handles A = rec(X, body) implying B, via one-sided
// unrolling, and the fully co-inductive case when B is also a Rec.
func impliesRecLeft(a Rec, b Constraint, assumed []assumption) bool {
	if bRec, ok := b.(Rec); ok {
		for _, as := range assumed {
			if as.left == a.Name && as.right == bRec.Name {
				return true // already assumed compatible, co-induction closes
			}
		}
		nextAssumed := append(append([]assumption{}, assumed...), assumption{left: a.Name, right: bRec.Name})
		return implies(a.Body, bRec.Body, nextAssumed)
	}
	return implies(unroll(a), b, assumed)
}

// unroll substitutes one copy of the Rec binder for its own recVar
// occurrences, i.e. rec(X, body) -> body[X := rec(X, body)].
func unroll(r Rec) Constraint {
	return substRecVar(r.Body, r.Name, r)
}

func substRecVar(c Constraint, name string, replacement Constraint) Constraint {
	switch n := c.(type) {
	case RecVar:
		if n.Name == name {
			return replacement
		}
		return n
	case And:
		out := make([]Constraint, len(n.Children))
		for i, ch := range n.Children {
			out[i] = substRecVar(ch, name, replacement)
		}
		return And{Children: out}
	case Or:
		out := make([]Constraint, len(n.Children))
		for i, ch := range n.Children {
			out[i] = substRecVar(ch, name, replacement)
		}
		return Or{Children: out}
	case Not:
		return Not{Child: substRecVar(n.Child, name, replacement)}
	case HasField:
		return HasField{Name: n.Name, Field: substRecVar(n.Field, name, replacement)}
	case Elements:
		return Elements{Elem: substRecVar(n.Elem, name, replacement)}
	case ElementAt:
		return ElementAt{Index: n.Index, Elem: substRecVar(n.Elem, name, replacement)}
	case Length:
		return Length{N: substRecVar(n.N, name, replacement)}
	case IndexSignature:
		return IndexSignature{Elem: substRecVar(n.Elem, name, replacement)}
	case IsType:
		return IsType{Inner: substRecVar(n.Inner, name, replacement)}
	case Rec:
		if n.Name == name {
			return n // shadowed, inner binder wins
		}
		return Rec{Name: n.Name, Body: substRecVar(n.Body, name, replacement)}
	default:
		return c
	}
}
