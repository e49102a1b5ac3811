package ir

import (
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// VarQualifier is a C storage-class qualifier on a variable declaration.
type VarQualifier int

const (
	VarStatic VarQualifier = iota
	VarExtern
	VarVolatile
)

// FnQualifier is a C storage-class/inline qualifier on a function
// definition.
type FnQualifier int

const (
	FnStatic FnQualifier = iota
	FnExtern
	FnInline
)

// Statement is one typed IR statement node.
type Statement struct {
	Data StatementData
	Pos  token.Span
}

// EmptyScope builds a fresh, empty Scope statement — the starting point for
// any new lexical block the generator opens.
func EmptyScope(pos token.Span) Statement {
	return Statement{Data: &Scope{Statements: new([]Statement)}, Pos: pos}
}

// StatementData is implemented by every IrStatement data shape.
type StatementData interface{ irStatementData() }

type Break struct{}

func (*Break) irStatementData() {}

// Define is a preprocessor-style `#define name value` (or, with Typedef
// set, a `typedef`).
type Define struct {
	Name    string
	Value   Value
	Typedef bool
}

func (*Define) irStatementData() {}

type Undefine struct{ Name string }

func (*Undefine) irStatementData() {}

type VarDecl struct {
	Name        string
	Type        types.Type
	Initializer *Value
	Qualifiers  []VarQualifier
}

func (*VarDecl) irStatementData() {}

type If struct {
	Condition  Value
	ThenBranch *Statement
	ElseBranch *Statement
}

func (*If) irStatementData() {}

// Scope is a reference-counted mutable list of statements: the generator
// holds a pointer to the *current* scope so subexpressions can append
// prelude statements to it as they're evaluated (spec.md §3.4, §5(d)). A
// pointer to a slice plays the Rc<RefCell<Vec<_>>> role — appends go through
// Append, which every holder of the same *Scope observes.
type Scope struct {
	Statements *[]Statement
}

func (s *Scope) Append(stmt Statement) {
	*s.Statements = append(*s.Statements, stmt)
}

func (*Scope) irStatementData() {}

type Return struct{ Value *Value }

func (*Return) irStatementData() {}

type Expression struct{ Value Value }

func (*Expression) irStatementData() {}

type Goto struct{ Label string }

func (*Goto) irStatementData() {}

type Label struct{ Name string }

func (*Label) irStatementData() {}

type FunctionParam struct {
	Name string
	Type types.Type
}

type FunctionDef struct {
	Name       string
	Params     []FunctionParam
	Body       []Statement // nil for a forward declaration
	Signature  types.Type  // types.Function
	Qualifiers []FnQualifier
}

func (*FunctionDef) irStatementData() {}

type StructDef struct{ Type types.Type }

func (*StructDef) irStatementData() {}

type EnumVariant struct {
	Name  string
	Value *Value
}

type EnumDef struct {
	Name     string
	Variants []EnumVariant
	Type     types.Type
}

func (*EnumDef) irStatementData() {}

// TaggedUnion is a sum-type enum lowered to a C struct with a discriminant
// field plus a union of named variant payloads (spec.md §3.6).
type TaggedUnion struct {
	Name     string
	KindName string
	KindType types.Type
	Fields   map[string]types.Type
}

func (*TaggedUnion) irStatementData() {}

type UnionDef struct{ Type types.Type }

func (*UnionDef) irStatementData() {}

type Loop struct{ Body *Statement }

func (*Loop) irStatementData() {}

type Include struct {
	Path    string
	IsAngle bool
}

func (*Include) irStatementData() {}

type SwitchBranch struct {
	Cases []Value // nil marks the default branch
	Code  Statement
}

type Switch struct {
	Value    Value
	Branches []SwitchBranch
}

func (*Switch) irStatementData() {}
