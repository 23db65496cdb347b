package values

// Equal reports whether two fully known values are equal by value
// (structural equality for arrays and objects, not reference identity).
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Bool:
		return av == b.(Bool)
	case Null:
		return true
	case Array:
		bv := b.(Array)
		if len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Object:
		bv := b.(Object)
		if len(av.Order) != len(bv.Order) {
			return false
		}
		for _, name := range av.Order {
			bval, ok := bv.Get(name)
			if !ok {
				return false
			}
			if !Equal(av.Fields[name], bval) {
				return false
			}
		}
		return true
	default:
		return false // closures, builtins, and type values are never equal by value
	}
}
