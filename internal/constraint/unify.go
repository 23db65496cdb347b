package constraint

// Unify narrows two constraints by conjunction — used on positive
// control-flow branches when a guard has been proven. It is not the
// inference-variable unifier; see Solve for that.
func Unify(a, b Constraint) Constraint {
	return Simplify(And{Children: []Constraint{a, b}})
}

// Negate computes the De Morgan dual of a constraint, used on
// else-branches once a guard's positive form has been tried.
func Negate(c Constraint) Constraint {
	return Simplify(simplifyNot(c))
}
