package ast

import "github.com/skye-lang/skyec/internal/token"

// Binary is a binary operator expression.
type Binary struct {
	Left  Expression
	Op    token.Token
	Right Expression
}

func (e *Binary) exprNode() {}
func (e *Binary) GetPos() token.Span {
	return token.Merge(e.Left.GetPos(), e.Right.GetPos())
}
func (e *Binary) ReplaceVariable(name string, r Expression) Expression {
	return &Binary{Left: e.Left.ReplaceVariable(name, r), Op: e.Op, Right: e.Right.ReplaceVariable(name, r)}
}
func (e *Binary) Clone() Expression {
	return &Binary{Left: e.Left.Clone(), Op: e.Op, Right: e.Right.Clone()}
}

// Unary is `-x`, `!x`, `~x`, prefix `++x`/`--x`, or postfix `x++`/`x--`.
type Unary struct {
	Op       token.Token
	Expr     Expression
	IsPrefix bool
}

func (e *Unary) exprNode() {}
func (e *Unary) GetPos() token.Span {
	if e.IsPrefix {
		return token.Merge(token.FromToken(e.Op), e.Expr.GetPos())
	}
	return token.Merge(e.Expr.GetPos(), token.FromToken(e.Op))
}
func (e *Unary) ReplaceVariable(name string, r Expression) Expression {
	return &Unary{Op: e.Op, Expr: e.Expr.ReplaceVariable(name, r), IsPrefix: e.IsPrefix}
}
func (e *Unary) Clone() Expression {
	return &Unary{Op: e.Op, Expr: e.Expr.Clone(), IsPrefix: e.IsPrefix}
}

// Grouping is a parenthesised expression. Variable.ReplaceVariable wraps each
// substituted argument in one so the argument keeps its own precedence;
// Grouping.ReplaceVariable itself still recurses into its inner expression.
type Grouping struct {
	Paren token.Token
	Expr  Expression
}

func (e *Grouping) exprNode()          {}
func (e *Grouping) GetPos() token.Span { return e.Expr.GetPos() }
func (e *Grouping) ReplaceVariable(name string, r Expression) Expression {
	return &Grouping{Paren: e.Paren, Expr: e.Expr.ReplaceVariable(name, r)}
}
func (e *Grouping) Clone() Expression { return &Grouping{Paren: e.Paren, Expr: e.Expr.Clone()} }

// Variable is a bare identifier reference.
type Variable struct {
	Name token.Token
}

func (e *Variable) exprNode()          {}
func (e *Variable) GetPos() token.Span { return token.FromToken(e.Name) }
func (e *Variable) ReplaceVariable(name string, r Expression) Expression {
	if e.Name.Lexeme == name {
		return &Grouping{Paren: e.Name, Expr: r.Clone()}
	}
	return &Variable{Name: e.Name}
}
func (e *Variable) Clone() Expression { return &Variable{Name: e.Name} }

// Assign is `target op= value`; Op is Equal for a plain assignment or one of
// the compound-assignment token types otherwise.
type Assign struct {
	Target Expression
	Op     token.Token
	Value  Expression
}

func (e *Assign) exprNode() {}
func (e *Assign) GetPos() token.Span {
	return token.Merge(e.Target.GetPos(), e.Value.GetPos())
}
func (e *Assign) ReplaceVariable(name string, r Expression) Expression {
	return &Assign{Target: e.Target.ReplaceVariable(name, r), Op: e.Op, Value: e.Value.ReplaceVariable(name, r)}
}
func (e *Assign) Clone() Expression {
	return &Assign{Target: e.Target.Clone(), Op: e.Op, Value: e.Value.Clone()}
}

// Call is a function, template, or macro invocation. IsMacroCall is set when
// the callee came from a StaticGet whose GetsMacro flag was set, so the IR
// generator routes it to the macro-invocation path instead of an ordinary
// call (spec.md §4.3.2, static access).
type Call struct {
	Callee      Expression
	Paren       token.Token
	Args        []Expression
	IsMacroCall bool
}

func (e *Call) exprNode()          {}
func (e *Call) GetPos() token.Span { return token.Merge(e.Callee.GetPos(), token.FromToken(e.Paren)) }
func (e *Call) ReplaceVariable(name string, r Expression) Expression {
	return &Call{
		Callee:      e.Callee.ReplaceVariable(name, r),
		Paren:       e.Paren,
		Args:        replaceExprSlice(e.Args, name, r),
		IsMacroCall: e.IsMacroCall,
	}
}
func (e *Call) Clone() Expression {
	return &Call{Callee: e.Callee.Clone(), Paren: e.Paren, Args: cloneExprSlice(e.Args), IsMacroCall: e.IsMacroCall}
}

// FnPtr is a function-pointer type expression, e.g. `fn(i32, i32): i32`.
type FnPtr struct {
	Keyword    token.Token
	ReturnType Expression
	Params     []FunctionParam
}

func (e *FnPtr) exprNode() {}
func (e *FnPtr) GetPos() token.Span {
	return token.Merge(token.FromToken(e.Keyword), e.ReturnType.GetPos())
}
func (e *FnPtr) ReplaceVariable(name string, r Expression) Expression {
	params := make([]FunctionParam, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.replace(name, r)
	}
	return &FnPtr{Keyword: e.Keyword, ReturnType: e.ReturnType.ReplaceVariable(name, r), Params: params}
}
func (e *FnPtr) Clone() Expression {
	params := make([]FunctionParam, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.clone()
	}
	return &FnPtr{Keyword: e.Keyword, ReturnType: e.ReturnType.Clone(), Params: params}
}

// Ternary is `cond ? then : else`.
type Ternary struct {
	Keyword   token.Token
	Condition Expression
	Then      Expression
	Else      Expression
}

func (e *Ternary) exprNode() {}
func (e *Ternary) GetPos() token.Span {
	return token.Merge(e.Condition.GetPos(), e.Else.GetPos())
}
func (e *Ternary) ReplaceVariable(name string, r Expression) Expression {
	return &Ternary{
		Keyword:   e.Keyword,
		Condition: e.Condition.ReplaceVariable(name, r),
		Then:      e.Then.ReplaceVariable(name, r),
		Else:      e.Else.ReplaceVariable(name, r),
	}
}
func (e *Ternary) Clone() Expression {
	return &Ternary{Keyword: e.Keyword, Condition: e.Condition.Clone(), Then: e.Then.Clone(), Else: e.Else.Clone()}
}

// CompoundLiteral is `Type{field: value, ...}`.
type CompoundLiteral struct {
	Type         Expression
	ClosingBrace token.Token
	Fields       []StructField
}

func (e *CompoundLiteral) exprNode() {}
func (e *CompoundLiteral) GetPos() token.Span {
	return token.Merge(e.Type.GetPos(), token.FromToken(e.ClosingBrace))
}
func (e *CompoundLiteral) ReplaceVariable(name string, r Expression) Expression {
	fields := make([]StructField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.replace(name, r)
	}
	return &CompoundLiteral{Type: e.Type.ReplaceVariable(name, r), ClosingBrace: e.ClosingBrace, Fields: fields}
}
func (e *CompoundLiteral) Clone() Expression {
	fields := make([]StructField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = f.clone()
	}
	return &CompoundLiteral{Type: e.Type.Clone(), ClosingBrace: e.ClosingBrace, Fields: fields}
}

// Subscript is `subscripted[args...]`.
type Subscript struct {
	Subscripted Expression
	Paren       token.Token
	Args        []Expression
}

func (e *Subscript) exprNode() {}
func (e *Subscript) GetPos() token.Span {
	return token.Merge(e.Subscripted.GetPos(), token.FromToken(e.Paren))
}
func (e *Subscript) ReplaceVariable(name string, r Expression) Expression {
	return &Subscript{Subscripted: e.Subscripted.ReplaceVariable(name, r), Paren: e.Paren, Args: replaceExprSlice(e.Args, name, r)}
}
func (e *Subscript) Clone() Expression {
	return &Subscript{Subscripted: e.Subscripted.Clone(), Paren: e.Paren, Args: cloneExprSlice(e.Args)}
}

// Get is member access `object.name`.
type Get struct {
	Object Expression
	Name   token.Token
}

func (e *Get) exprNode()          {}
func (e *Get) GetPos() token.Span { return token.Merge(e.Object.GetPos(), token.FromToken(e.Name)) }
func (e *Get) ReplaceVariable(name string, r Expression) Expression {
	return &Get{Object: e.Object.ReplaceVariable(name, r), Name: e.Name}
}
func (e *Get) Clone() Expression { return &Get{Object: e.Object.Clone(), Name: e.Name} }

// StaticGet is static access `object::name`. GetsMacro marks that name
// refers to a macro in object's namespace, which the IR generator must wrap
// in a macro invocation rather than an ordinary static lookup.
type StaticGet struct {
	Object    Expression
	Name      token.Token
	GetsMacro bool
}

func (e *StaticGet) exprNode() {}
func (e *StaticGet) GetPos() token.Span {
	return token.Merge(e.Object.GetPos(), token.FromToken(e.Name))
}
func (e *StaticGet) ReplaceVariable(name string, r Expression) Expression {
	return &StaticGet{Object: e.Object.ReplaceVariable(name, r), Name: e.Name, GetsMacro: e.GetsMacro}
}
func (e *StaticGet) Clone() Expression {
	return &StaticGet{Object: e.Object.Clone(), Name: e.Name, GetsMacro: e.GetsMacro}
}

// Slice is a slice literal `{item, item, ...}`.
type Slice struct {
	OpeningBrace token.Token
	Items        []Expression
}

func (e *Slice) exprNode()          {}
func (e *Slice) GetPos() token.Span { return token.FromToken(e.OpeningBrace) }
func (e *Slice) ReplaceVariable(name string, r Expression) Expression {
	return &Slice{OpeningBrace: e.OpeningBrace, Items: replaceExprSlice(e.Items, name, r)}
}
func (e *Slice) Clone() Expression {
	return &Slice{OpeningBrace: e.OpeningBrace, Items: cloneExprSlice(e.Items)}
}

// ArrayType is the type expression `[N]Item`.
type ArrayType struct {
	Bracket token.Token
	Item    Expression
	Size    Expression // nil for an unsized/slice-like array type
}

func (e *ArrayType) exprNode() {}
func (e *ArrayType) GetPos() token.Span {
	return token.Merge(token.FromToken(e.Bracket), e.Item.GetPos())
}
func (e *ArrayType) ReplaceVariable(name string, r Expression) Expression {
	out := &ArrayType{Bracket: e.Bracket, Item: e.Item.ReplaceVariable(name, r)}
	if e.Size != nil {
		out.Size = e.Size.ReplaceVariable(name, r)
	}
	return out
}
func (e *ArrayType) Clone() Expression {
	out := &ArrayType{Bracket: e.Bracket, Item: e.Item.Clone()}
	if e.Size != nil {
		out.Size = e.Size.Clone()
	}
	return out
}

// ArrayLiteral is `[item, item, ...]`.
type ArrayLiteral struct {
	OpeningBracket token.Token
	Items          []Expression
}

func (e *ArrayLiteral) exprNode()          {}
func (e *ArrayLiteral) GetPos() token.Span { return token.FromToken(e.OpeningBracket) }
func (e *ArrayLiteral) ReplaceVariable(name string, r Expression) Expression {
	return &ArrayLiteral{OpeningBracket: e.OpeningBracket, Items: replaceExprSlice(e.Items, name, r)}
}
func (e *ArrayLiteral) Clone() Expression {
	return &ArrayLiteral{OpeningBracket: e.OpeningBracket, Items: cloneExprSlice(e.Items)}
}

// VoidLiteral is the literal `void`.
type VoidLiteral struct {
	Tok token.Token
}

func (e *VoidLiteral) exprNode()                                     {}
func (e *VoidLiteral) GetPos() token.Span                            { return token.FromToken(e.Tok) }
func (e *VoidLiteral) ReplaceVariable(string, Expression) Expression { return &VoidLiteral{Tok: e.Tok} }
func (e *VoidLiteral) Clone() Expression                             { return &VoidLiteral{Tok: e.Tok} }

// SignedIntLiteral is a signed-integer literal canonicalised with its tagged
// bit width (spec.md §3.2 invariant: literals are canonicalised before IR).
type SignedIntLiteral struct {
	Value int64
	Tok   token.Token
	Bits  IntBits
}

func (e *SignedIntLiteral) exprNode()          {}
func (e *SignedIntLiteral) GetPos() token.Span { return token.FromToken(e.Tok) }
func (e *SignedIntLiteral) ReplaceVariable(string, Expression) Expression {
	return &SignedIntLiteral{Value: e.Value, Tok: e.Tok, Bits: e.Bits}
}
func (e *SignedIntLiteral) Clone() Expression {
	return &SignedIntLiteral{Value: e.Value, Tok: e.Tok, Bits: e.Bits}
}

// UnsignedIntLiteral is an unsigned-integer literal with its tagged bit width.
type UnsignedIntLiteral struct {
	Value uint64
	Tok   token.Token
	Bits  IntBits
}

func (e *UnsignedIntLiteral) exprNode()          {}
func (e *UnsignedIntLiteral) GetPos() token.Span { return token.FromToken(e.Tok) }
func (e *UnsignedIntLiteral) ReplaceVariable(string, Expression) Expression {
	return &UnsignedIntLiteral{Value: e.Value, Tok: e.Tok, Bits: e.Bits}
}
func (e *UnsignedIntLiteral) Clone() Expression {
	return &UnsignedIntLiteral{Value: e.Value, Tok: e.Tok, Bits: e.Bits}
}

// FloatLiteral is a float literal with its tagged width.
type FloatLiteral struct {
	Value float64
	Tok   token.Token
	Bits  FloatBits
}

func (e *FloatLiteral) exprNode()          {}
func (e *FloatLiteral) GetPos() token.Span { return token.FromToken(e.Tok) }
func (e *FloatLiteral) ReplaceVariable(string, Expression) Expression {
	return &FloatLiteral{Value: e.Value, Tok: e.Tok, Bits: e.Bits}
}
func (e *FloatLiteral) Clone() Expression {
	return &FloatLiteral{Value: e.Value, Tok: e.Tok, Bits: e.Bits}
}

// StringLiteral covers raw/char/slice string forms (spec.md §3.2).
type StringLiteral struct {
	Value string
	Tok   token.Token
	Kind  StringKind
}

func (e *StringLiteral) exprNode()          {}
func (e *StringLiteral) GetPos() token.Span { return token.FromToken(e.Tok) }
func (e *StringLiteral) ReplaceVariable(string, Expression) Expression {
	return &StringLiteral{Value: e.Value, Tok: e.Tok, Kind: e.Kind}
}
func (e *StringLiteral) Clone() Expression {
	return &StringLiteral{Value: e.Value, Tok: e.Tok, Kind: e.Kind}
}

// InMacro wraps an expression that was produced by expanding a macro, so
// later passes can attach an expansion-site note to any error raised while
// folding or generating it (spec.md §4.2 "additional note points at the
// expansion site").
type InMacro struct {
	Inner  Expression
	Source token.Span
}

func (e *InMacro) exprNode()          {}
func (e *InMacro) GetPos() token.Span { return e.Inner.GetPos() }
func (e *InMacro) ReplaceVariable(name string, r Expression) Expression {
	return &InMacro{Inner: e.Inner.ReplaceVariable(name, r), Source: e.Source}
}
func (e *InMacro) Clone() Expression { return &InMacro{Inner: e.Inner.Clone(), Source: e.Source} }

// MacroExpandedStatements wraps the statement list produced by expanding a
// block-bodied macro used in expression position; the IR generator lowers it
// by running the statements into the current scope and yielding its trailing
// expression's value, if any.
type MacroExpandedStatements struct {
	Inner  []Statement
	Source token.Span
}

func (e *MacroExpandedStatements) exprNode()          {}
func (e *MacroExpandedStatements) GetPos() token.Span { return e.Source }
func (e *MacroExpandedStatements) ReplaceVariable(name string, r Expression) Expression {
	return &MacroExpandedStatements{Inner: replaceStmtSlice(e.Inner, name, r), Source: e.Source}
}
func (e *MacroExpandedStatements) Clone() Expression {
	return &MacroExpandedStatements{Inner: cloneStmtSlice(e.Inner), Source: e.Source}
}
