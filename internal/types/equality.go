package types

// Level is one of the four comparison strictnesses spec.md §3.3 defines.
type Level int

const (
	// Permissive lets Unknown match anything — used while inferring
	// template arguments, where one side may still be a placeholder.
	Permissive Level = iota
	// Typewise ignores pointer constness.
	Typewise
	// Strict requires an exact match, including pointer constness.
	Strict
	// ConstStrict compares exactly as Strict does: constness must match on
	// every pointer level, nested ones included. The reference/pointer
	// distinction is checked at every level other than Permissive's Unknown
	// shortcut.
	ConstStrict
)

// Equal compares a and b at the given Level.
func Equal(a, b Type, level Level) bool {
	if level == Permissive {
		if _, ok := a.(Unknown); ok {
			return true
		}
		if _, ok := b.(Unknown); ok {
			return true
		}
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case IntType:
		bv := b.(IntType)
		return av.Signed == bv.Signed && av.Width == bv.Width
	case AnyInt:
		return true
	case FloatType:
		return av.Width == b.(FloatType).Width
	case AnyFloat:
		return true
	case Char, Void:
		return true
	case Pointer:
		bv := b.(Pointer)
		if av.IsReference != bv.IsReference {
			return false
		}
		if (level == Strict || level == ConstStrict) && av.IsConst != bv.IsConst {
			return false
		}
		innerLevel := level
		if level == Typewise {
			innerLevel = Typewise
		}
		return Equal(av.Inner, bv.Inner, innerLevel)
	case Array:
		bv := b.(Array)
		return av.Size == bv.Size && Equal(av.Inner, bv.Inner, level)
	case Function:
		bv := b.(Function)
		if len(av.Params) != len(bv.Params) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i], level) {
				return false
			}
		}
		return Equal(av.Return, bv.Return, level)
	case Struct:
		return av.FullName == b.(Struct).FullName
	case Union:
		return av.FullName == b.(Union).FullName
	case Enum:
		return av.FullName == b.(Enum).FullName
	case Namespace:
		return av.Name == b.(Namespace).Name
	case TypeOf:
		return Equal(av.Inner, b.(TypeOf).Inner, level)
	case Group:
		bv := b.(Group)
		return (Equal(av.First, bv.First, level) && Equal(av.Second, bv.Second, level)) ||
			(Equal(av.First, bv.Second, level) && Equal(av.Second, bv.First, level))
	case Template:
		return av.Name == b.(Template).Name
	case Macro:
		return av.Name == b.(Macro).Name
	case Unknown:
		return av.Name == b.(Unknown).Name
	default:
		return false
	}
}

// SatisfiesBound reports whether t is an acceptable argument for a generic
// parameter whose declared bound is bound (a Group, a concrete Type, or nil
// for unbounded).
func SatisfiesBound(t, bound Type) bool {
	if bound == nil {
		return true
	}
	if g, ok := bound.(Group); ok {
		return Equal(t, g.First, Typewise) || Equal(t, g.Second, Typewise)
	}
	return Equal(t, bound, Typewise)
}
