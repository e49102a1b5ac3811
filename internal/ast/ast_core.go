// Package ast defines the two mutually recursive sum types — Expression and
// Statement — that every later pass walks and rewrites in place (spec.md
// §3.2). Each concrete node is a value type implementing one of the two
// marker interfaces; passes dispatch with a type switch rather than a
// Visitor, since every pass (import splice, fold, expand, generate) needs a
// different return shape per node and a switch expresses that more directly
// than a multi-method interface would.
package ast

import "github.com/skye-lang/skyec/internal/token"

// Node is implemented by both Expression and Statement.
type Node interface {
	GetPos() token.Span
}

// Expression is any node that can be evaluated to (or is itself) a value.
type Expression interface {
	Node
	exprNode()
	// ReplaceVariable returns a clone of the receiver with every free
	// occurrence of name substituted by replacement. Used by the macro
	// expander for hygienic parameter substitution; idempotent when applied
	// twice with the same arguments (testable property 2) as long as
	// replacement itself does not mention name, because every occurrence of
	// name has become a Grouping around replacement after the first pass.
	ReplaceVariable(name string, replacement Expression) Expression
	Clone() Expression
}

// Statement is any node that can appear in a statement list.
type Statement interface {
	Node
	stmtNode()
	ReplaceVariable(name string, replacement Expression) Statement
	Clone() Statement
}

// IntBits tags the declared width of an integer literal. AnyInt means the
// literal has not yet been pinned to a concrete width (spec.md §3.3
// SkyeType.AnyInt).
type IntBits int

const (
	B8 IntBits = iota
	B16
	B32
	B64
	Bsz // usz — width left unfolded by the constant folder (unknown at compile time)
	AnyInt
)

func (b IntBits) String() string {
	switch b {
	case B8:
		return "i8/u8"
	case B16:
		return "i16/u16"
	case B32:
		return "i32/u32"
	case B64:
		return "i64/u64"
	case Bsz:
		return "usz"
	default:
		return "<any int>"
	}
}

// FloatBits tags the declared width of a float literal.
type FloatBits int

const (
	F32 FloatBits = iota
	F64
	AnyFloat
)

// StringKind distinguishes the three string literal forms named in spec.md
// §3.2.
type StringKind int

const (
	RawString StringKind = iota
	CharString
	SliceString
)

// FunctionParam is one parameter in a function signature or function-pointer
// type.
type FunctionParam struct {
	Name    *token.Token // nil for unnamed function-pointer-type parameters
	Type    Expression
	IsConst bool
}

func (p FunctionParam) replace(name string, r Expression) FunctionParam {
	return FunctionParam{Name: p.Name, Type: p.Type.ReplaceVariable(name, r), IsConst: p.IsConst}
}

func (p FunctionParam) clone() FunctionParam {
	return FunctionParam{Name: p.Name, Type: p.Type.Clone(), IsConst: p.IsConst}
}

// StructField is one `name: expr` pair in a compound literal or a field
// declaration in a struct/union definition.
type StructField struct {
	Name    token.Token
	Expr    Expression
	IsConst bool
}

func (f StructField) replace(name string, r Expression) StructField {
	return StructField{Name: f.Name, Expr: f.Expr.ReplaceVariable(name, r), IsConst: f.IsConst}
}

func (f StructField) clone() StructField {
	return StructField{Name: f.Name, Expr: f.Expr.Clone(), IsConst: f.IsConst}
}

// EnumVariant is one `Name: Type` entry in an enum body; Type is VoidLiteral
// for a payload-less variant.
type EnumVariant struct {
	Name token.Token
	Type Expression
}

func (v EnumVariant) replace(name string, r Expression) EnumVariant {
	return EnumVariant{Name: v.Name, Type: v.Type.ReplaceVariable(name, r)}
}

func (v EnumVariant) clone() EnumVariant {
	return EnumVariant{Name: v.Name, Type: v.Type.Clone()}
}

// BitfieldField is one `name: bits` entry in a bitfield definition.
type BitfieldField struct {
	Name token.Token
	Bits uint8
}

// SwitchCase is one `case a, b:` / `default:` arm. Cases is nil for default.
type SwitchCase struct {
	Cases []Expression
	Code  []Statement
}

func (c SwitchCase) replace(name string, r Expression) SwitchCase {
	var cases []Expression
	if c.Cases != nil {
		cases = make([]Expression, len(c.Cases))
		for i, e := range c.Cases {
			cases[i] = e.ReplaceVariable(name, r)
		}
	}
	code := make([]Statement, len(c.Code))
	for i, s := range c.Code {
		code[i] = s.ReplaceVariable(name, r)
	}
	return SwitchCase{Cases: cases, Code: code}
}

func (c SwitchCase) clone() SwitchCase {
	var cases []Expression
	if c.Cases != nil {
		cases = make([]Expression, len(c.Cases))
		for i, e := range c.Cases {
			cases[i] = e.Clone()
		}
	}
	code := make([]Statement, len(c.Code))
	for i, s := range c.Code {
		code[i] = s.Clone()
	}
	return SwitchCase{Cases: cases, Code: code}
}

// Generic is one template type parameter, with optional bound and default.
type Generic struct {
	Name    token.Token
	Bounds  Expression // nil if unbounded
	Default Expression // nil if no default
}

func (g Generic) replace(name string, r Expression) Generic {
	out := Generic{Name: g.Name}
	if g.Bounds != nil {
		out.Bounds = g.Bounds.ReplaceVariable(name, r)
	}
	if g.Default != nil {
		out.Default = g.Default.ReplaceVariable(name, r)
	}
	return out
}

func (g Generic) clone() Generic {
	out := Generic{Name: g.Name}
	if g.Bounds != nil {
		out.Bounds = g.Bounds.Clone()
	}
	if g.Default != nil {
		out.Default = g.Default.Clone()
	}
	return out
}

// ImportType distinguishes the three import spellings in spec.md §6.
type ImportType int

const (
	ImportDefault ImportType = iota // import "name"
	ImportAngle                     // import <name>
	ImportLib                       // import "lib:name"
)

// MacroParamKind distinguishes the three macro parameter arities (spec.md
// §3.2, §4.4).
type MacroParamKind int

const (
	MacroParamsNone MacroParamKind = iota
	MacroParamsFixed
	MacroParamsVariable // one-or-more; rejects zero-argument calls
)

// MacroParams is the declared parameter list of a user macro.
type MacroParams struct {
	Kind     MacroParamKind
	Fixed    []token.Token // MacroParamsFixed
	Variable token.Token   // MacroParamsVariable
}

// MacroBodyKind distinguishes the three macro body shapes (spec.md §3.2).
type MacroBodyKind int

const (
	MacroBodyBinding MacroBodyKind = iota
	MacroBodyExpression
	MacroBodyBlock
)

// MacroBody is the body of a user macro definition.
type MacroBody struct {
	Kind       MacroBodyKind
	Expression Expression // Binding, Expression
	Block      []Statement
}

func (b MacroBody) ReplaceVariable(name string, r Expression) MacroBody {
	switch b.Kind {
	case MacroBodyBinding, MacroBodyExpression:
		return MacroBody{Kind: b.Kind, Expression: b.Expression.ReplaceVariable(name, r)}
	default:
		block := make([]Statement, len(b.Block))
		for i, s := range b.Block {
			block[i] = s.ReplaceVariable(name, r)
		}
		return MacroBody{Kind: b.Kind, Block: block}
	}
}

func (b MacroBody) Clone() MacroBody {
	switch b.Kind {
	case MacroBodyBinding, MacroBodyExpression:
		return MacroBody{Kind: b.Kind, Expression: b.Expression.Clone()}
	default:
		block := make([]Statement, len(b.Block))
		for i, s := range b.Block {
			block[i] = s.Clone()
		}
		return MacroBody{Kind: b.Kind, Block: block}
	}
}

func cloneExprSlice(in []Expression) []Expression {
	out := make([]Expression, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func replaceExprSlice(in []Expression, name string, r Expression) []Expression {
	out := make([]Expression, len(in))
	for i, e := range in {
		out[i] = e.ReplaceVariable(name, r)
	}
	return out
}

func cloneStmtSlice(in []Statement) []Statement {
	out := make([]Statement, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func replaceStmtSlice(in []Statement, name string, r Expression) []Statement {
	out := make([]Statement, len(in))
	for i, s := range in {
		out[i] = s.ReplaceVariable(name, r)
	}
	return out
}
