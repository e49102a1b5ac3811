package irgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skye-lang/skyec/internal/types"
)

// Mangle joins a namespace path and a name with the `_DOT_` separator
// (spec.md §3.6: "Namespace::Name becomes Namespace_DOT_Name").
func Mangle(namespacePath []string, name string) string {
	if len(namespacePath) == 0 {
		return name
	}
	return strings.Join(namespacePath, "_DOT_") + "_DOT_" + name
}

// MangleGeneric appends a generic instantiation's argument types to a
// mangled base name (spec.md §3.6: "`_GENOF_<mangled-args-joined-by-_GENAND_>_GENEND_`").
// Injective over (namespace path, generic arguments): arguments are joined by
// `_GENAND_`; the only separators inside one mangled argument are the `_DOT_`
// of a namespaced type name and, for a nested generic such as a core::Result
// or core::Option argument, its own balanced `_GENOF_`...`_GENEND_` pair
// (testable property 5).
func MangleGeneric(base string, args []types.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = mangleType(a)
	}
	return base + "_GENOF_" + strings.Join(parts, "_GENAND_") + "_GENEND_"
}

// mangleType renders a SkyeType as an identifier-safe fragment for use
// inside a generic instantiation's mangled name.
func mangleType(t types.Type) string {
	switch v := t.(type) {
	case types.IntType:
		if v.Signed {
			return "i" + v.Width.String()
		}
		return "u" + v.Width.String()
	case types.AnyInt:
		return "anyint"
	case types.FloatType:
		if v.Width == types.FW32 {
			return "f32"
		}
		return "f64"
	case types.AnyFloat:
		return "anyfloat"
	case types.Char:
		return "char"
	case types.Void:
		return "void"
	case types.Pointer:
		sigil := "PTR"
		if v.IsReference {
			sigil = "REF"
		}
		if v.IsConst {
			sigil += "CONST"
		}
		return sigil + mangleType(v.Inner)
	case types.Array:
		return "ARR" + strconv.Itoa(v.Size) + mangleType(v.Inner)
	case types.Struct:
		return strings.ReplaceAll(v.FullName, "::", "_DOT_")
	case types.Union:
		return strings.ReplaceAll(v.FullName, "::", "_DOT_")
	case types.Enum:
		return strings.ReplaceAll(v.FullName, "::", "_DOT_")
	default:
		return fmt.Sprintf("T%d", t.Kind())
	}
}

// VariantConstructorName is a sum-type variant's constructor function name
// (spec.md §3.6: "Sum-type variant constructors are `EnumName_DOT_VariantName`").
func VariantConstructorName(enumFullName, variant string) string {
	return enumFullName + "_DOT_" + variant
}

// VariantKindName is where a variant's discriminant constant lives (spec.md
// §3.6: "the discriminant kind lives at `EnumName_DOT_Kind_DOT_VariantName`").
func VariantKindName(enumFullName, variant string) string {
	return enumFullName + "_DOT_Kind_DOT_" + variant
}

func tempName(n int) string {
	return "__SKYE_TMP_" + strconv.Itoa(n)
}

func labelName(prefix string, n int) string {
	return "__SKYE_" + prefix + "_" + strconv.Itoa(n)
}
