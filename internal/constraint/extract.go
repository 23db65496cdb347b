package constraint

// AllFieldNames returns the union of field names appearing in HasField
// across And/Or branches and through Rec unrolling, memoized per-call to
// terminate on cyclic recursive constraints.
func AllFieldNames(c Constraint) []string {
	seen := map[string]struct{}{}
	visitedRec := map[string]bool{}
	collectFieldNames(c, seen, visitedRec)
	return sortedStrings(seen)
}

func collectFieldNames(c Constraint, out map[string]struct{}, visitedRec map[string]bool) {
	switch n := c.(type) {
	case HasField:
		out[n.Name] = struct{}{}
		collectFieldNames(n.Field, out, visitedRec)
	case And:
		for _, ch := range n.Children {
			collectFieldNames(ch, out, visitedRec)
		}
	case Or:
		for _, ch := range n.Children {
			collectFieldNames(ch, out, visitedRec)
		}
	case Not:
		collectFieldNames(n.Child, out, visitedRec)
	case Rec:
		if visitedRec[n.Name] {
			return
		}
		visitedRec[n.Name] = true
		collectFieldNames(n.Body, out, visitedRec)
	}
}

// FieldConstraint returns the constraint of the named field, or (nil,
// false) if the value described by c cannot be shown to have that field.
// For Or, this requires every branch to have the field (the sound
// reading: if even one branch lacks it, a value matching that branch
// might not have the field at all, so no single constraint can describe
// it across the whole union) rather than restricting to just the
// branches that do, which §4.1 literally describes but would let a
// caller access a field the value is not actually guaranteed to carry.
func FieldConstraint(c Constraint, name string) (Constraint, bool) {
	return fieldConstraint(Simplify(c), name, map[string]bool{})
}

func fieldConstraint(c Constraint, name string, visitedRec map[string]bool) (Constraint, bool) {
	switch n := c.(type) {
	case HasField:
		if n.Name == name {
			return n.Field, true
		}
		return nil, false
	case And:
		for _, ch := range n.Children {
			if fc, ok := fieldConstraint(ch, name, visitedRec); ok {
				return fc, true
			}
		}
		return nil, false
	case Or:
		var branches []Constraint
		for _, ch := range n.Children {
			fc, ok := fieldConstraint(ch, name, visitedRec)
			if !ok {
				return nil, false // not every branch guarantees the field
			}
			branches = append(branches, fc)
		}
		if len(branches) == 0 {
			return nil, false
		}
		return Simplify(Or{Children: branches}), true
	case Rec:
		if visitedRec[n.Name] {
			return nil, false
		}
		visitedRec[n.Name] = true
		return fieldConstraint(unroll(n), name, visitedRec)
	default:
		return nil, false
	}
}
