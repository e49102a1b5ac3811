package ast

import "github.com/skye-lang/skyec/internal/token"

// StorageQualifiers are the C storage-class keywords a declaration may carry
// through to the IR (spec.md §3.4 IrStatement variable declaration/function
// definition qualifiers).
type StorageQualifiers struct {
	Static   bool
	Extern   bool
	Volatile bool
	Inline   bool
}

// ExpressionStmt is a bare expression used as a statement.
type ExpressionStmt struct {
	Expr Expression
}

func (s *ExpressionStmt) stmtNode()          {}
func (s *ExpressionStmt) GetPos() token.Span { return s.Expr.GetPos() }
func (s *ExpressionStmt) ReplaceVariable(name string, r Expression) Statement {
	return &ExpressionStmt{Expr: s.Expr.ReplaceVariable(name, r)}
}
func (s *ExpressionStmt) Clone() Statement { return &ExpressionStmt{Expr: s.Expr.Clone()} }

// VarDecl is a variable declaration: `[const] name [: type] [= init];`.
type VarDecl struct {
	Name       token.Token
	Type       Expression // nil if inferred from Init
	Init       Expression // nil if uninitialised
	IsConst    bool
	Qualifiers StorageQualifiers
}

func (s *VarDecl) stmtNode() {}
func (s *VarDecl) GetPos() token.Span {
	pos := token.FromToken(s.Name)
	if s.Init != nil {
		pos = token.Merge(pos, s.Init.GetPos())
	} else if s.Type != nil {
		pos = token.Merge(pos, s.Type.GetPos())
	}
	return pos
}
func (s *VarDecl) ReplaceVariable(name string, r Expression) Statement {
	out := &VarDecl{Name: s.Name, IsConst: s.IsConst, Qualifiers: s.Qualifiers}
	if s.Type != nil {
		out.Type = s.Type.ReplaceVariable(name, r)
	}
	if s.Init != nil {
		out.Init = s.Init.ReplaceVariable(name, r)
	}
	return out
}
func (s *VarDecl) Clone() Statement {
	out := &VarDecl{Name: s.Name, IsConst: s.IsConst, Qualifiers: s.Qualifiers}
	if s.Type != nil {
		out.Type = s.Type.Clone()
	}
	if s.Init != nil {
		out.Init = s.Init.Clone()
	}
	return out
}

// Block is `{ statements... }`.
type Block struct {
	OpenBrace token.Token
	Body      []Statement
}

func (s *Block) stmtNode()          {}
func (s *Block) GetPos() token.Span { return token.FromToken(s.OpenBrace) }
func (s *Block) ReplaceVariable(name string, r Expression) Statement {
	return &Block{OpenBrace: s.OpenBrace, Body: replaceStmtSlice(s.Body, name, r)}
}
func (s *Block) Clone() Statement {
	return &Block{OpenBrace: s.OpenBrace, Body: cloneStmtSlice(s.Body)}
}

// While is `while cond { body }`.
type While struct {
	Keyword   token.Token
	Condition Expression
	Body      Statement
}

func (s *While) stmtNode()          {}
func (s *While) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *While) ReplaceVariable(name string, r Expression) Statement {
	return &While{Keyword: s.Keyword, Condition: s.Condition.ReplaceVariable(name, r), Body: s.Body.ReplaceVariable(name, r)}
}
func (s *While) Clone() Statement {
	return &While{Keyword: s.Keyword, Condition: s.Condition.Clone(), Body: s.Body.Clone()}
}

// DoWhile is `do { body } while cond;`.
type DoWhile struct {
	Keyword   token.Token
	Body      Statement
	Condition Expression
}

func (s *DoWhile) stmtNode()          {}
func (s *DoWhile) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *DoWhile) ReplaceVariable(name string, r Expression) Statement {
	return &DoWhile{Keyword: s.Keyword, Body: s.Body.ReplaceVariable(name, r), Condition: s.Condition.ReplaceVariable(name, r)}
}
func (s *DoWhile) Clone() Statement {
	return &DoWhile{Keyword: s.Keyword, Body: s.Body.Clone(), Condition: s.Condition.Clone()}
}

// For is `for init; cond; incr { body }`; each clause may be nil.
type For struct {
	Keyword   token.Token
	Init      Statement
	Condition Expression
	Increment Expression
	Body      Statement
}

func (s *For) stmtNode()          {}
func (s *For) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *For) ReplaceVariable(name string, r Expression) Statement {
	out := &For{Keyword: s.Keyword, Body: s.Body.ReplaceVariable(name, r)}
	if s.Init != nil {
		out.Init = s.Init.ReplaceVariable(name, r)
	}
	if s.Condition != nil {
		out.Condition = s.Condition.ReplaceVariable(name, r)
	}
	if s.Increment != nil {
		out.Increment = s.Increment.ReplaceVariable(name, r)
	}
	return out
}
func (s *For) Clone() Statement {
	out := &For{Keyword: s.Keyword, Body: s.Body.Clone()}
	if s.Init != nil {
		out.Init = s.Init.Clone()
	}
	if s.Condition != nil {
		out.Condition = s.Condition.Clone()
	}
	if s.Increment != nil {
		out.Increment = s.Increment.Clone()
	}
	return out
}

// Foreach is `foreach name in iterable { body }`.
type Foreach struct {
	Keyword  token.Token
	Name     token.Token
	Iterable Expression
	Body     Statement
}

func (s *Foreach) stmtNode()          {}
func (s *Foreach) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Foreach) ReplaceVariable(name string, r Expression) Statement {
	return &Foreach{Keyword: s.Keyword, Name: s.Name, Iterable: s.Iterable.ReplaceVariable(name, r), Body: s.Body.ReplaceVariable(name, r)}
}
func (s *Foreach) Clone() Statement {
	return &Foreach{Keyword: s.Keyword, Name: s.Name, Iterable: s.Iterable.Clone(), Body: s.Body.Clone()}
}

// Return is `return [value];`.
type Return struct {
	Keyword token.Token
	Value   Expression // nil for a bare return
}

func (s *Return) stmtNode()          {}
func (s *Return) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Return) ReplaceVariable(name string, r Expression) Statement {
	out := &Return{Keyword: s.Keyword}
	if s.Value != nil {
		out.Value = s.Value.ReplaceVariable(name, r)
	}
	return out
}
func (s *Return) Clone() Statement {
	out := &Return{Keyword: s.Keyword}
	if s.Value != nil {
		out.Value = s.Value.Clone()
	}
	return out
}

// If is `if cond { then } [else else_]`.
type If struct {
	Keyword   token.Token
	Condition Expression
	Then      Statement
	Else      Statement // nil if absent
}

func (s *If) stmtNode()          {}
func (s *If) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *If) ReplaceVariable(name string, r Expression) Statement {
	out := &If{Keyword: s.Keyword, Condition: s.Condition.ReplaceVariable(name, r), Then: s.Then.ReplaceVariable(name, r)}
	if s.Else != nil {
		out.Else = s.Else.ReplaceVariable(name, r)
	}
	return out
}
func (s *If) Clone() Statement {
	out := &If{Keyword: s.Keyword, Condition: s.Condition.Clone(), Then: s.Then.Clone()}
	if s.Else != nil {
		out.Else = s.Else.Clone()
	}
	return out
}

// Switch is `switch value { case a, b: ... default: ... }`.
type Switch struct {
	Keyword token.Token
	Value   Expression
	Cases   []SwitchCase
}

func (s *Switch) stmtNode()          {}
func (s *Switch) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Switch) ReplaceVariable(name string, r Expression) Statement {
	cases := make([]SwitchCase, len(s.Cases))
	for i, c := range s.Cases {
		cases[i] = c.replace(name, r)
	}
	return &Switch{Keyword: s.Keyword, Value: s.Value.ReplaceVariable(name, r), Cases: cases}
}
func (s *Switch) Clone() Statement {
	cases := make([]SwitchCase, len(s.Cases))
	for i, c := range s.Cases {
		cases[i] = c.clone()
	}
	return &Switch{Keyword: s.Keyword, Value: s.Value.Clone(), Cases: cases}
}

// FunctionDef is a function definition: params, return type, body,
// qualifiers, generic parameter list, bind flag (attaches to a type as a
// method), init flag (run once from `_SKYE_INIT`, spec.md §3.4).
type FunctionDef struct {
	Name       token.Token
	Params     []FunctionParam
	ReturnType Expression
	Body       []Statement // nil for a forward declaration / C binding
	Qualifiers StorageQualifiers
	Generics   []Generic
	IsBind     bool
	IsInit     bool
}

func (s *FunctionDef) stmtNode()          {}
func (s *FunctionDef) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *FunctionDef) ReplaceVariable(name string, r Expression) Statement {
	params := make([]FunctionParam, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.replace(name, r)
	}
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.replace(name, r)
	}
	out := &FunctionDef{
		Name: s.Name, Params: params,
		Qualifiers: s.Qualifiers, Generics: generics, IsBind: s.IsBind, IsInit: s.IsInit,
	}
	if s.ReturnType != nil {
		out.ReturnType = s.ReturnType.ReplaceVariable(name, r)
	}
	if s.Body != nil {
		out.Body = replaceStmtSlice(s.Body, name, r)
	}
	return out
}
func (s *FunctionDef) Clone() Statement {
	params := make([]FunctionParam, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.clone()
	}
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.clone()
	}
	out := &FunctionDef{
		Name: s.Name, Params: params,
		Qualifiers: s.Qualifiers, Generics: generics, IsBind: s.IsBind, IsInit: s.IsInit,
	}
	if s.ReturnType != nil {
		out.ReturnType = s.ReturnType.Clone()
	}
	if s.Body != nil {
		out.Body = cloneStmtSlice(s.Body)
	}
	return out
}

// DefKind distinguishes the three forms a struct/union/bitfield/enum
// definition may take (spec.md §3.2).
type DefKind int

const (
	DefForward DefKind = iota // `struct Foo;`
	DefFull                   // `struct Foo { ... }`
	DefBinding                // `struct Foo binding "c_name";` — a C type alias
)

// StructDef is a struct or union definition (Union discriminates the two;
// both share the same field-list shape).
type StructDef struct {
	Name     token.Token
	Kind     DefKind
	Fields   []StructField // DefFull only
	Binding  string        // DefBinding only: the C type name
	Generics []Generic
	IsUnion  bool
}

func (s *StructDef) stmtNode()          {}
func (s *StructDef) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *StructDef) ReplaceVariable(name string, r Expression) Statement {
	fields := make([]StructField, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.replace(name, r)
	}
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.replace(name, r)
	}
	return &StructDef{Name: s.Name, Kind: s.Kind, Fields: fields, Binding: s.Binding, Generics: generics, IsUnion: s.IsUnion}
}
func (s *StructDef) Clone() Statement {
	fields := make([]StructField, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.clone()
	}
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.clone()
	}
	return &StructDef{Name: s.Name, Kind: s.Kind, Fields: fields, Binding: s.Binding, Generics: generics, IsUnion: s.IsUnion}
}

// BitfieldDef is a bitfield definition: a struct-of-bits packing into whole
// bytes, validated at IR-generation time against github.com/funvibe/funbit.
type BitfieldDef struct {
	Name    token.Token
	Kind    DefKind
	Fields  []BitfieldField
	Binding string
}

func (s *BitfieldDef) stmtNode()          {}
func (s *BitfieldDef) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *BitfieldDef) ReplaceVariable(string, Expression) Statement {
	fields := append([]BitfieldField(nil), s.Fields...)
	return &BitfieldDef{Name: s.Name, Kind: s.Kind, Fields: fields, Binding: s.Binding}
}
func (s *BitfieldDef) Clone() Statement {
	fields := append([]BitfieldField(nil), s.Fields...)
	return &BitfieldDef{Name: s.Name, Kind: s.Kind, Fields: fields, Binding: s.Binding}
}

// EnumDef is a simple enum (all variants Void-typed) or a tagged union
// (any variant carries a payload type), per spec.md §3.2/§3.6.
type EnumDef struct {
	Name     token.Token
	Kind     DefKind
	Variants []EnumVariant
	Binding  string
	Generics []Generic
}

func (s *EnumDef) stmtNode()          {}
func (s *EnumDef) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *EnumDef) ReplaceVariable(name string, r Expression) Statement {
	variants := make([]EnumVariant, len(s.Variants))
	for i, v := range s.Variants {
		variants[i] = v.replace(name, r)
	}
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.replace(name, r)
	}
	return &EnumDef{Name: s.Name, Kind: s.Kind, Variants: variants, Binding: s.Binding, Generics: generics}
}
func (s *EnumDef) Clone() Statement {
	variants := make([]EnumVariant, len(s.Variants))
	for i, v := range s.Variants {
		variants[i] = v.clone()
	}
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.clone()
	}
	return &EnumDef{Name: s.Name, Kind: s.Kind, Variants: variants, Binding: s.Binding, Generics: generics}
}

// Namespace is `namespace name { body }`.
type Namespace struct {
	Keyword token.Token
	Name    token.Token
	Body    []Statement
}

func (s *Namespace) stmtNode()          {}
func (s *Namespace) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Namespace) ReplaceVariable(name string, r Expression) Statement {
	return &Namespace{Keyword: s.Keyword, Name: s.Name, Body: replaceStmtSlice(s.Body, name, r)}
}
func (s *Namespace) Clone() Statement {
	return &Namespace{Keyword: s.Keyword, Name: s.Name, Body: cloneStmtSlice(s.Body)}
}

// Use is `use path as alias;`, binding a namespace-qualified name into scope
// under a shorter local alias.
type Use struct {
	Keyword token.Token
	Path    Expression
	Alias   *token.Token // nil if the last path segment is used as-is
}

func (s *Use) stmtNode()          {}
func (s *Use) GetPos() token.Span { return token.Merge(token.FromToken(s.Keyword), s.Path.GetPos()) }
func (s *Use) ReplaceVariable(name string, r Expression) Statement {
	return &Use{Keyword: s.Keyword, Path: s.Path.ReplaceVariable(name, r), Alias: s.Alias}
}
func (s *Use) Clone() Statement {
	return &Use{Keyword: s.Keyword, Path: s.Path.Clone(), Alias: s.Alias}
}

// Defer is `defer stmt;`. The deferred statement may not itself contain
// return/break/continue (spec.md §7 invalid control flow).
type Defer struct {
	Keyword token.Token
	Body    Statement
}

func (s *Defer) stmtNode()          {}
func (s *Defer) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Defer) ReplaceVariable(name string, r Expression) Statement {
	return &Defer{Keyword: s.Keyword, Body: s.Body.ReplaceVariable(name, r)}
}
func (s *Defer) Clone() Statement { return &Defer{Keyword: s.Keyword, Body: s.Body.Clone()} }

// Import is one of the three import forms named in spec.md §6; it is
// consumed and removed by the import resolver, which replaces it with an
// ImportedBlock (or leaves it for non-.skye paths, which lower to `#include`
// later in the out-of-scope backend).
type Import struct {
	Keyword token.Token
	Path    string
	Type    ImportType
}

func (s *Import) stmtNode()          {}
func (s *Import) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Import) ReplaceVariable(string, Expression) Statement {
	return &Import{Keyword: s.Keyword, Path: s.Path, Type: s.Type}
}
func (s *Import) Clone() Statement { return &Import{Keyword: s.Keyword, Path: s.Path, Type: s.Type} }

// ImportedBlock replaces an Import after resolution: the recursively
// resolved statements of the imported file, plus the original import's
// source position for diagnostics (spec.md §4.1).
type ImportedBlock struct {
	Statements []Statement
	Source     token.Span
}

func (s *ImportedBlock) stmtNode()          {}
func (s *ImportedBlock) GetPos() token.Span { return s.Source }
func (s *ImportedBlock) ReplaceVariable(name string, r Expression) Statement {
	return &ImportedBlock{Statements: replaceStmtSlice(s.Statements, name, r), Source: s.Source}
}
func (s *ImportedBlock) Clone() Statement {
	return &ImportedBlock{Statements: cloneStmtSlice(s.Statements), Source: s.Source}
}

// Macro is a user macro definition (spec.md §3.2, §4.4).
type Macro struct {
	Keyword token.Token
	Name    token.Token
	Params  MacroParams
	Body    MacroBody
}

func (s *Macro) stmtNode()          {}
func (s *Macro) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *Macro) ReplaceVariable(name string, r Expression) Statement {
	return &Macro{Keyword: s.Keyword, Name: s.Name, Params: s.Params, Body: s.Body.ReplaceVariable(name, r)}
}
func (s *Macro) Clone() Statement {
	return &Macro{Keyword: s.Keyword, Name: s.Name, Params: s.Params, Body: s.Body.Clone()}
}

// Template wraps any declaration with a list of generic parameters.
type Template struct {
	Keyword     token.Token
	Generics    []Generic
	Declaration Statement
}

func (s *Template) stmtNode()          {}
func (s *Template) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Template) ReplaceVariable(name string, r Expression) Statement {
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.replace(name, r)
	}
	return &Template{Keyword: s.Keyword, Generics: generics, Declaration: s.Declaration.ReplaceVariable(name, r)}
}
func (s *Template) Clone() Statement {
	generics := make([]Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = g.clone()
	}
	return &Template{Keyword: s.Keyword, Generics: generics, Declaration: s.Declaration.Clone()}
}

// InterfaceSig is one method signature inside an Interface definition.
type InterfaceSig struct {
	Name       token.Token
	Params     []FunctionParam
	ReturnType Expression
}

// Interface is a named set of method signatures, optionally bound to a list
// of implementing types (spec.md §3.2). A bound interface lowers to a
// tagged-union enum whose Kind variants are the bound types (§4.3.2).
type Interface struct {
	Name       token.Token
	Signatures []InterfaceSig
	BoundTypes []Expression // nil if unbound
}

func (s *Interface) stmtNode()          {}
func (s *Interface) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *Interface) ReplaceVariable(name string, r Expression) Statement {
	sigs := make([]InterfaceSig, len(s.Signatures))
	for i, sig := range s.Signatures {
		params := make([]FunctionParam, len(sig.Params))
		for j, p := range sig.Params {
			params[j] = p.replace(name, r)
		}
		sigs[i] = InterfaceSig{Name: sig.Name, Params: params, ReturnType: sig.ReturnType.ReplaceVariable(name, r)}
	}
	var bound []Expression
	if s.BoundTypes != nil {
		bound = replaceExprSlice(s.BoundTypes, name, r)
	}
	return &Interface{Name: s.Name, Signatures: sigs, BoundTypes: bound}
}
func (s *Interface) Clone() Statement {
	sigs := make([]InterfaceSig, len(s.Signatures))
	for i, sig := range s.Signatures {
		params := make([]FunctionParam, len(sig.Params))
		for j, p := range sig.Params {
			params[j] = p.clone()
		}
		sigs[i] = InterfaceSig{Name: sig.Name, Params: params, ReturnType: sig.ReturnType.Clone()}
	}
	var bound []Expression
	if s.BoundTypes != nil {
		bound = cloneExprSlice(s.BoundTypes)
	}
	return &Interface{Name: s.Name, Signatures: sigs, BoundTypes: bound}
}

// Impl attaches a block of declarations (methods, constants) to a type.
type Impl struct {
	Keyword token.Token
	Type    Expression
	Body    []Statement
}

func (s *Impl) stmtNode()          {}
func (s *Impl) GetPos() token.Span { return token.Merge(token.FromToken(s.Keyword), s.Type.GetPos()) }
func (s *Impl) ReplaceVariable(name string, r Expression) Statement {
	return &Impl{Keyword: s.Keyword, Type: s.Type.ReplaceVariable(name, r), Body: replaceStmtSlice(s.Body, name, r)}
}
func (s *Impl) Clone() Statement {
	return &Impl{Keyword: s.Keyword, Type: s.Type.Clone(), Body: cloneStmtSlice(s.Body)}
}

// Undef removes a previously-`define`d preprocessor-style macro binding
// (mirrors the original's bare Statement::Undef(name)).
type Undef struct {
	Keyword token.Token
	Name    token.Token
}

func (s *Undef) stmtNode()          {}
func (s *Undef) GetPos() token.Span { return token.FromToken(s.Name) }
func (s *Undef) ReplaceVariable(string, Expression) Statement {
	return &Undef{Keyword: s.Keyword, Name: s.Name}
}
func (s *Undef) Clone() Statement { return &Undef{Keyword: s.Keyword, Name: s.Name} }

// Break exits the innermost enclosing loop.
type Break struct {
	Keyword token.Token
}

func (s *Break) stmtNode()                                    {}
func (s *Break) GetPos() token.Span                           { return token.FromToken(s.Keyword) }
func (s *Break) ReplaceVariable(string, Expression) Statement { return &Break{Keyword: s.Keyword} }
func (s *Break) Clone() Statement                             { return &Break{Keyword: s.Keyword} }

// Continue jumps to the next iteration of the innermost enclosing loop.
type Continue struct {
	Keyword token.Token
}

func (s *Continue) stmtNode()          {}
func (s *Continue) GetPos() token.Span { return token.FromToken(s.Keyword) }
func (s *Continue) ReplaceVariable(string, Expression) Statement {
	return &Continue{Keyword: s.Keyword}
}
func (s *Continue) Clone() Statement { return &Continue{Keyword: s.Keyword} }
