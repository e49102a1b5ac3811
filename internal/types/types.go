// Package types implements SkyeType (spec.md §3.3): a closed, nominal set
// of semantic types the IR generator assigns to every evaluated expression.
// Unlike the teacher's typesystem package — a Hindley-Milner style Type
// interface with Apply/unification over free type variables — SkyeType
// never unifies; template inference (internal/irgen) resolves Unknown
// placeholders by direct comparison, not substitution search. Only the
// surface idiom (a narrow interface plus closed concrete structs, dispatched
// by a Kind tag) is carried over from the teacher.
package types

import "fmt"

type Kind int

const (
	KindInt Kind = iota
	KindAnyInt
	KindFloat
	KindAnyFloat
	KindChar
	KindVoid
	KindPointer
	KindArray
	KindFunction
	KindStruct
	KindEnum
	KindUnion
	KindNamespace
	KindTypeOf
	KindGroup
	KindTemplate
	KindMacro
	KindUnknown
)

// Type is implemented by every SkyeType variant.
type Type interface {
	Kind() Kind
	String() string
}

// IntWidth is the bit width of a pinned (non-Any) integer type.
type IntWidth int

const (
	W8 IntWidth = iota
	W16
	W32
	W64
	Wsz // usz — pointer-sized, platform width left to the C backend
)

func (w IntWidth) String() string {
	switch w {
	case W8:
		return "8"
	case W16:
		return "16"
	case W32:
		return "32"
	case W64:
		return "64"
	default:
		return "sz"
	}
}

// IntType is one of i8/i16/i32/i64/u8/u16/u32/u64/usz.
type IntType struct {
	Signed bool
	Width  IntWidth
}

func (IntType) Kind() Kind { return KindInt }
func (t IntType) String() string {
	if t.Signed {
		return "i" + t.Width.String()
	}
	return "u" + t.Width.String()
}

// AnyInt is the type of an integer literal not yet pinned to a width
// (spec.md §3.3).
type AnyInt struct{}

func (AnyInt) Kind() Kind     { return KindAnyInt }
func (AnyInt) String() string { return "<int>" }

type FloatWidth int

const (
	FW32 FloatWidth = iota
	FW64
)

type FloatType struct {
	Width FloatWidth
}

func (FloatType) Kind() Kind { return KindFloat }
func (t FloatType) String() string {
	if t.Width == FW32 {
		return "f32"
	}
	return "f64"
}

type AnyFloat struct{}

func (AnyFloat) Kind() Kind     { return KindAnyFloat }
func (AnyFloat) String() string { return "<float>" }

type Char struct{}

func (Char) Kind() Kind     { return KindChar }
func (Char) String() string { return "char" }

type Void struct{}

func (Void) Kind() Kind     { return KindVoid }
func (Void) String() string { return "void" }

// Pointer is `&T`/`&const T` (IsReference true) or `*T`/`*const T`
// (IsReference false).
type Pointer struct {
	Inner       Type
	IsConst     bool
	IsReference bool
}

func (Pointer) Kind() Kind { return KindPointer }
func (t Pointer) String() string {
	sigil := "*"
	if t.IsReference {
		sigil = "&"
	}
	if t.IsConst {
		return fmt.Sprintf("%sconst %s", sigil, t.Inner)
	}
	return sigil + t.Inner.String()
}

// Array is `[N]T`.
type Array struct {
	Inner Type
	Size  int
}

func (Array) Kind() Kind       { return KindArray }
func (t Array) String() string { return fmt.Sprintf("[%d]%s", t.Size, t.Inner) }

// Function is a function's (or function-pointer's) signature. HasBody
// distinguishes a concrete definition from a forward declaration / function
// pointer type, which matters for whether a call site may take its address
// directly versus needing it materialised as a value first.
type Function struct {
	Params  []Type
	Return  Type
	HasBody bool
}

func (Function) Kind() Kind { return KindFunction }
func (t Function) String() string {
	s := "fn("
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + "): " + t.Return.String()
}

// Struct is a struct or union-like aggregate's named type. Fields is nil for
// a forward-declared (incomplete) struct — using it by value is the
// "incomplete type" error in spec.md §7.
type Struct struct {
	FullName string
	Fields   map[string]Type // field name -> type; nil if forward-declared
	BaseName string          // unqualified name, for diagnostics
}

func (Struct) Kind() Kind       { return KindStruct }
func (t Struct) String() string { return t.FullName }

// Union is a plain (untagged) C union type — distinct from Enum, which
// covers Skye's tagged-union sum types.
type Union struct {
	FullName string
	Fields   map[string]Type // nil if forward-declared
}

func (Union) Kind() Kind       { return KindUnion }
func (t Union) String() string { return t.FullName }

// Enum is a simple enum or tagged-union sum type. Variants maps variant name
// to its payload type (Void for a payload-less variant); nil if
// forward-declared.
type Enum struct {
	FullName string
	Variants map[string]Type
	BaseName string
}

func (Enum) Kind() Kind       { return KindEnum }
func (t Enum) String() string { return t.FullName }

// IsTaggedUnion reports whether any variant carries a non-void payload —
// the enum lowers to a C tagged union rather than a plain C enum.
func (t Enum) IsTaggedUnion() bool {
	for _, payload := range t.Variants {
		if _, isVoid := payload.(Void); !isVoid {
			return true
		}
	}
	return false
}

// Namespace is the type of a namespace identifier used on the left of `::`.
type Namespace struct {
	Name string
}

func (Namespace) Kind() Kind       { return KindNamespace }
func (t Namespace) String() string { return t.Name }

// TypeOf is "the type of a type expression" — e.g. the type of `i32` itself,
// as opposed to a value of type i32 (spec.md §3.3 Type(inner)).
type TypeOf struct {
	Inner Type
}

func (TypeOf) Kind() Kind       { return KindTypeOf }
func (t TypeOf) String() string { return "Type[" + t.Inner.String() + "]" }

// Group is the union of two types usable as a generic bound (spec.md §3.3):
// a template argument satisfies Group(A, B) if it equals A or B.
type Group struct {
	First, Second Type
}

func (Group) Kind() Kind       { return KindGroup }
func (t Group) String() string { return t.First.String() + "|" + t.Second.String() }

// Template is a generic declaration awaiting instantiation. CapturedGlobals
// is opaque here (type any, asserted back to *symbols.Environment by
// internal/irgen) to avoid an import cycle between types and symbols —
// symbols.Environment stores Type values, so types cannot import symbols.
type Template struct {
	Name            string
	Declaration     any // ast.Statement; kept as any for the same reason
	Generics        []string
	GenericNames    []string
	EnclosingName   string
	CapturedGlobals any
}

func (Template) Kind() Kind       { return KindTemplate }
func (t Template) String() string { return "template " + t.Name }

// Macro is the type of a macro name used as a value before it is invoked.
type Macro struct {
	Name   string
	Params any // ast.MacroParams
	Body   any // ast.MacroBody
}

func (Macro) Kind() Kind       { return KindMacro }
func (t Macro) String() string { return "macro " + t.Name }

// Unknown is a placeholder used during template-argument inference (spec.md
// §4.3.1: evaluate(expr, allow_unknown) yields Unknown(name) for undefined
// references instead of erroring).
type Unknown struct {
	Name string
}

func (Unknown) Kind() Kind       { return KindUnknown }
func (t Unknown) String() string { return "?" + t.Name }
