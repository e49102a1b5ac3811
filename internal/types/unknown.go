package types

// ContainsUnknown reports whether t is or recursively contains an Unknown
// placeholder (spec.md §4.3.1) — used by the IR generator to decide whether
// a sub-evaluation's failure should suppress further, likely-cascading
// diagnostics around it.
func ContainsUnknown(t Type) bool {
	switch v := t.(type) {
	case Unknown:
		return true
	case Pointer:
		return ContainsUnknown(v.Inner)
	case Array:
		return ContainsUnknown(v.Inner)
	case Function:
		if ContainsUnknown(v.Return) {
			return true
		}
		for _, p := range v.Params {
			if ContainsUnknown(p) {
				return true
			}
		}
		return false
	case TypeOf:
		return ContainsUnknown(v.Inner)
	case Group:
		return ContainsUnknown(v.First) || ContainsUnknown(v.Second)
	case Struct:
		for _, f := range v.Fields {
			if ContainsUnknown(f) {
				return true
			}
		}
		return false
	case Union:
		for _, f := range v.Fields {
			if ContainsUnknown(f) {
				return true
			}
		}
		return false
	case Enum:
		for _, variant := range v.Variants {
			if ContainsUnknown(variant) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
