package constraint

// Equals reports whether A and B denote the same constraint after
// simplification (structural equality, not mere string equality — two
// Satisfies nodes are equal only if they share the same predicate
// handle).
func Equals(a, b Constraint) bool {
	return structEqual(Simplify(a), Simplify(b))
}

func structEqual(a, b Constraint) bool {
	switch av := a.(type) {
	case Classify:
		bv, ok := b.(Classify)
		return ok && av.Tag == bv.Tag
	case Never:
		_, ok := b.(Never)
		return ok
	case Any:
		_, ok := b.(Any)
		return ok
	case Var:
		bv, ok := b.(Var)
		return ok && av.ID == bv.ID
	case RecVar:
		bv, ok := b.(RecVar)
		return ok && av.Name == bv.Name
	case Satisfies:
		bv, ok := b.(Satisfies)
		return ok && av.Handle == bv.Handle
	case Equals:
		bv, ok := b.(Equals)
		return ok && av.Value.Kind == bv.Value.Kind &&
			av.Value.Num == bv.Value.Num &&
			av.Value.Str == bv.Value.Str &&
			av.Value.Bool == bv.Value.Bool
	case NumBound:
		bv, ok := b.(NumBound)
		return ok && av.Kind == bv.Kind && av.N == bv.N
	case HasField:
		bv, ok := b.(HasField)
		return ok && av.Name == bv.Name && structEqual(av.Field, bv.Field)
	case Elements:
		bv, ok := b.(Elements)
		return ok && structEqual(av.Elem, bv.Elem)
	case ElementAt:
		bv, ok := b.(ElementAt)
		return ok && av.Index == bv.Index && structEqual(av.Elem, bv.Elem)
	case Length:
		bv, ok := b.(Length)
		return ok && structEqual(av.N, bv.N)
	case IndexSignature:
		bv, ok := b.(IndexSignature)
		return ok && structEqual(av.Elem, bv.Elem)
	case And:
		bv, ok := b.(And)
		return ok && equalSet(av.Children, bv.Children)
	case Or:
		bv, ok := b.(Or)
		return ok && equalSet(av.Children, bv.Children)
	case Not:
		bv, ok := b.(Not)
		return ok && structEqual(av.Child, bv.Child)
	case IsType:
		bv, ok := b.(IsType)
		return ok && structEqual(av.Inner, bv.Inner)
	case Rec:
		bv, ok := b.(Rec)
		return ok && av.Name == bv.Name && structEqual(av.Body, bv.Body)
	}
	return false
}

// equalSet compares two children slices order-independently; Simplify
// already deduplicates and the caller controls ordering determinism, but
// equality itself should not depend on incidental ordering.
func equalSet(a, b []Constraint) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for i, y := range b {
			if used[i] {
				continue
			}
			if structEqual(x, y) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
