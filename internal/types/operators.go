package types

import "github.com/skye-lang/skyec/internal/token"

// Support classifies how a type backs one operator (spec.md §3.3): built in
// to the C lowering directly, routed through a user-defined operator
// method, or not supported at all.
type Support int

const (
	Native Support = iota
	ThirdParty
	No
)

// Operator method names a type may define to back an operator that isn't
// natively supported (spec.md §3.3).
const (
	MethodAdd            = "__add__"
	MethodSub            = "__sub__"
	MethodMul            = "__mul__"
	MethodDiv            = "__div__"
	MethodMod            = "__mod__"
	MethodShl            = "__shl__"
	MethodShr            = "__shr__"
	MethodBitAnd         = "__band__"
	MethodBitOr          = "__bor__"
	MethodBitXor         = "__bxor__"
	MethodEq             = "__eq__"
	MethodLt             = "__lt__"
	MethodGt             = "__gt__"
	MethodAnd            = "__and__"
	MethodOr             = "__or__"
	MethodNeg            = "__neg__"
	MethodInvert         = "__invert__"
	MethodNot            = "__not__"
	MethodInc            = "__inc__"
	MethodDec            = "__dec__"
	MethodDeref          = "__deref__"
	MethodCopy           = "__copy__"
	MethodDestruct       = "__destruct__"
	MethodSubscript      = "__subscript__"
	MethodConstSubscript = "__constsubscript__"
)

// BinaryMethodName maps a binary operator token to the user-method name a
// type may define for it. ok is false for operators with no overloadable
// method (e.g. logical &&/||, which always lower to control flow — spec.md
// §4.3.2 "Short-circuit && and || are lowered to if statements").
func BinaryMethodName(op token.Type) (string, bool) {
	switch op {
	case token.Plus:
		return MethodAdd, true
	case token.Minus:
		return MethodSub, true
	case token.Star:
		return MethodMul, true
	case token.Slash:
		return MethodDiv, true
	case token.Mod:
		return MethodMod, true
	case token.ShiftLeft:
		return MethodShl, true
	case token.ShiftRight:
		return MethodShr, true
	case token.Amp:
		return MethodBitAnd, true
	case token.Pipe:
		return MethodBitOr, true
	case token.Caret:
		return MethodBitXor, true
	case token.EqualEqual, token.BangEqual:
		return MethodEq, true
	case token.Less, token.LessEqual:
		return MethodLt, true
	case token.Greater, token.GreaterEqual:
		return MethodGt, true
	default:
		return "", false
	}
}

func isNumeric(t Type) bool {
	switch t.(type) {
	case IntType, AnyInt, FloatType, AnyFloat:
		return true
	default:
		return false
	}
}

// NativelySupportsBinary reports whether Go-level (i.e. direct C) lowering
// handles op between a left-hand value of type t and a right of type rhs
// without consulting a user method.
func NativelySupportsBinary(t Type, op token.Type, rhs Type) bool {
	switch op {
	case token.ShiftLeft, token.ShiftRight, token.Amp, token.Pipe, token.Caret:
		_, lInt := t.(IntType)
		_, lAny := t.(AnyInt)
		return (lInt || lAny) && isNumeric(rhs)
	case token.EqualEqual, token.BangEqual, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		if _, ok := t.(Pointer); ok {
			_, rhsPtr := rhs.(Pointer)
			return rhsPtr
		}
		return isNumeric(t) && isNumeric(rhs)
	case token.Plus, token.Minus:
		if _, ok := t.(Pointer); ok {
			return isNumeric(rhs)
		}
		return isNumeric(t) && isNumeric(rhs)
	case token.Star, token.Slash, token.Mod:
		return isNumeric(t) && isNumeric(rhs)
	default:
		return false
	}
}

// Classify combines native support with whatever the caller already found
// by looking up methodName on t's declared methods (symbols package owns
// that lookup; types stays unaware of the symbol table to avoid a cycle).
func Classify(t Type, op token.Type, rhs Type, hasMethod bool) Support {
	if NativelySupportsBinary(t, op, rhs) {
		return Native
	}
	if hasMethod {
		return ThirdParty
	}
	return No
}
