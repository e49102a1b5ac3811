// Package macroexpand implements the third compiler pass (spec.md §4.4):
// expanding user-defined macros by cloning the body, substituting each
// parameter name with the call's corresponding argument expression, and
// wrapping the result in an InMacro/MacroExpandedStatements node that
// preserves the call-site span. Grounded on the "external collaborator
// summary" in spec.md §4.4; the AST shapes it manipulates (ast.Macro,
// ast.Call.IsMacroCall, ast.InMacro) are defined in internal/ast.
package macroexpand

import (
	"fmt"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/trampoline"
)

// reservedMacroNames are handled directly by the IR generator (spec.md
// §4.3.4) and never looked up as user macros.
var reservedMacroNames = map[string]bool{
	config.FormatMacroName:    true,
	config.FprintMacroName:    true,
	config.FprintlnMacroName:  true,
	config.TypeOfMacroName:    true,
	config.CastMacroName:      true,
	config.ConstCastMacroName: true,
	config.AsPtrMacroName:     true,
}

// Expander runs the macro-expansion pass.
type Expander struct {
	Diags *diagnostics.Bag
	Mode  config.CompileMode

	macros map[string]*ast.Macro
}

// New builds an Expander. mode governs the `panic` macro's PANIC_POS
// substitution (spec.md §4.4): populated in Debug, empty otherwise.
func New(diags *diagnostics.Bag, mode config.CompileMode) *Expander {
	return &Expander{Diags: diags, Mode: mode, macros: map[string]*ast.Macro{}}
}

// Expand runs one expansion pass over statements in place, returning the
// same slice for convenience. It is idempotent on a tree already fully
// expanded: a second pass finds no remaining IsMacroCall sites to rewrite.
func (x *Expander) Expand(statements []ast.Statement) []ast.Statement {
	stack := trampoline.New()
	x.collectMany(stack, statements)
	x.expandMany(stack, statements)
	return statements
}

// collectMany gathers every macro definition reachable from statements,
// recursing into the same slots the import resolver does (spec.md §4.1's
// recursion list applies identically here: a macro may be defined inside a
// namespace, impl, or imported block before it is called at top level).
func (x *Expander) collectMany(stack *trampoline.Stack, statements []ast.Statement) {
	for _, stmt := range statements {
		_ = stack.Call(func(stack *trampoline.Stack) error {
			x.collectOne(stack, stmt)
			return nil
		})
	}
}

func (x *Expander) collectOne(stack *trampoline.Stack, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Macro:
		x.macros[s.Name.Lexeme] = s
	case *ast.Block:
		x.collectMany(stack, s.Body)
	case *ast.Impl:
		x.collectMany(stack, s.Body)
	case *ast.Namespace:
		x.collectMany(stack, s.Body)
	case *ast.ImportedBlock:
		x.collectMany(stack, s.Statements)
	case *ast.FunctionDef:
		if s.Body != nil {
			x.collectMany(stack, s.Body)
		}
	case *ast.Template:
		x.collectOne(stack, s.Declaration)
	case *ast.While:
		x.collectOne(stack, s.Body)
	case *ast.DoWhile:
		x.collectOne(stack, s.Body)
	case *ast.For:
		x.collectOne(stack, s.Body)
	case *ast.Foreach:
		x.collectOne(stack, s.Body)
	case *ast.Defer:
		x.collectOne(stack, s.Body)
	case *ast.If:
		x.collectOne(stack, s.Then)
		if s.Else != nil {
			x.collectOne(stack, s.Else)
		}
	case *ast.Switch:
		for _, c := range s.Cases {
			x.collectMany(stack, c.Code)
		}
	}
}

func (x *Expander) expandMany(stack *trampoline.Stack, statements []ast.Statement) {
	for i := range statements {
		_ = stack.Call(func(stack *trampoline.Stack) error {
			statements[i] = x.expandStmt(stack, statements[i])
			return nil
		})
	}
}

func (x *Expander) expandManyExpr(stack *trampoline.Stack, exprs []ast.Expression) {
	for i := range exprs {
		_ = stack.Call(func(stack *trampoline.Stack) error {
			exprs[i] = x.expandExpr(stack, exprs[i])
			return nil
		})
	}
}

func (x *Expander) expandStmt(stack *trampoline.Stack, stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		s.Expr = x.expandExpr(stack, s.Expr)
		return s
	case *ast.VarDecl:
		if s.Type != nil {
			s.Type = x.expandExpr(stack, s.Type)
		}
		if s.Init != nil {
			s.Init = x.expandExpr(stack, s.Init)
		}
		return s
	case *ast.Block:
		x.expandMany(stack, s.Body)
		return s
	case *ast.While:
		s.Condition = x.expandExpr(stack, s.Condition)
		s.Body = x.expandStmt(stack, s.Body)
		return s
	case *ast.DoWhile:
		s.Condition = x.expandExpr(stack, s.Condition)
		s.Body = x.expandStmt(stack, s.Body)
		return s
	case *ast.For:
		if s.Init != nil {
			s.Init = x.expandStmt(stack, s.Init)
		}
		if s.Condition != nil {
			s.Condition = x.expandExpr(stack, s.Condition)
		}
		if s.Increment != nil {
			s.Increment = x.expandExpr(stack, s.Increment)
		}
		s.Body = x.expandStmt(stack, s.Body)
		return s
	case *ast.Foreach:
		s.Iterable = x.expandExpr(stack, s.Iterable)
		s.Body = x.expandStmt(stack, s.Body)
		return s
	case *ast.Return:
		if s.Value != nil {
			s.Value = x.expandExpr(stack, s.Value)
		}
		return s
	case *ast.If:
		s.Condition = x.expandExpr(stack, s.Condition)
		s.Then = x.expandStmt(stack, s.Then)
		if s.Else != nil {
			s.Else = x.expandStmt(stack, s.Else)
		}
		return s
	case *ast.Switch:
		s.Value = x.expandExpr(stack, s.Value)
		for i := range s.Cases {
			if s.Cases[i].Cases != nil {
				x.expandManyExpr(stack, s.Cases[i].Cases)
			}
			x.expandMany(stack, s.Cases[i].Code)
		}
		return s
	case *ast.FunctionDef:
		if s.Body != nil {
			x.expandMany(stack, s.Body)
		}
		return s
	case *ast.Namespace:
		x.expandMany(stack, s.Body)
		return s
	case *ast.Impl:
		x.expandMany(stack, s.Body)
		return s
	case *ast.Defer:
		s.Body = x.expandStmt(stack, s.Body)
		return s
	case *ast.Template:
		s.Declaration = x.expandStmt(stack, s.Declaration)
		return s
	case *ast.ImportedBlock:
		x.expandMany(stack, s.Statements)
		return s
	case *ast.Macro:
		if s.Body.Kind == ast.MacroBodyBlock {
			x.expandMany(stack, s.Body.Block)
		} else if s.Body.Expression != nil {
			s.Body.Expression = x.expandExpr(stack, s.Body.Expression)
		}
		return s
	default:
		return stmt
	}
}

func (x *Expander) expandExpr(stack *trampoline.Stack, expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Call:
		e.Callee = x.expandExpr(stack, e.Callee)
		x.expandManyExpr(stack, e.Args)
		if e.IsMacroCall {
			if expanded := x.tryExpandCall(e); expanded != nil {
				return x.expandExpr(stack, expanded)
			}
		}
		return e
	case *ast.Grouping:
		e.Expr = x.expandExpr(stack, e.Expr)
		return e
	case *ast.InMacro:
		e.Inner = x.expandExpr(stack, e.Inner)
		return e
	case *ast.MacroExpandedStatements:
		x.expandMany(stack, e.Inner)
		return e
	case *ast.Unary:
		e.Expr = x.expandExpr(stack, e.Expr)
		return e
	case *ast.Binary:
		e.Left = x.expandExpr(stack, e.Left)
		e.Right = x.expandExpr(stack, e.Right)
		return e
	case *ast.Ternary:
		e.Condition = x.expandExpr(stack, e.Condition)
		e.Then = x.expandExpr(stack, e.Then)
		e.Else = x.expandExpr(stack, e.Else)
		return e
	case *ast.Subscript:
		e.Subscripted = x.expandExpr(stack, e.Subscripted)
		x.expandManyExpr(stack, e.Args)
		return e
	case *ast.Assign:
		e.Target = x.expandExpr(stack, e.Target)
		e.Value = x.expandExpr(stack, e.Value)
		return e
	case *ast.CompoundLiteral:
		for i := range e.Fields {
			e.Fields[i].Expr = x.expandExpr(stack, e.Fields[i].Expr)
		}
		return e
	case *ast.Slice:
		x.expandManyExpr(stack, e.Items)
		return e
	case *ast.ArrayLiteral:
		x.expandManyExpr(stack, e.Items)
		return e
	case *ast.Get:
		e.Object = x.expandExpr(stack, e.Object)
		return e
	case *ast.StaticGet:
		e.Object = x.expandExpr(stack, e.Object)
		return e
	default:
		return expr
	}
}

// calleeName extracts the invoked name from a macro-call's callee.
func calleeName(callee ast.Expression) (string, token.Token, bool) {
	switch c := callee.(type) {
	case *ast.Variable:
		return c.Name.Lexeme, c.Name, true
	case *ast.StaticGet:
		return c.Name.Lexeme, c.Name, true
	default:
		return "", token.Token{}, false
	}
}

// tryExpandCall expands a single macro call site, returning the replacement
// expression, or nil if name did not resolve to a known macro (left for the
// IR generator's builtin-macro or error handling).
func (x *Expander) tryExpandCall(call *ast.Call) ast.Expression {
	name, tok, ok := calleeName(call.Callee)
	if !ok || reservedMacroNames[name] {
		return nil
	}
	def, ok := x.macros[name]
	if !ok {
		return nil
	}

	if _, qualified := call.Callee.(*ast.StaticGet); qualified {
		x.Diags.Add(diagnostics.NewWarning(diagnostics.GroupMacroNamespace, tok,
			"macros expand before namespace resolution; the namespace qualifier is ignored"))
	}

	if err := checkArity(def.Params, len(call.Args), tok); err != nil {
		x.Diags.Add(err)
		return nil
	}

	site := token.FromToken(call.Paren)
	body := def.Body.Clone()
	body = substituteParams(body, def.Params, call.Args)
	if name == "panic" {
		body = body.ReplaceVariable(config.PanicPosName, x.panicPosLiteral(call.Paren))
	}

	switch body.Kind {
	case ast.MacroBodyBinding, ast.MacroBodyExpression:
		return &ast.InMacro{Inner: body.Expression, Source: site}
	default:
		return &ast.MacroExpandedStatements{Inner: body.Block, Source: site}
	}
}

// panicPosLiteral builds the PANIC_POS string literal: a formatted
// "filename:line,pos" in debug mode, or the empty string otherwise (spec.md
// §4.4).
func (x *Expander) panicPosLiteral(site token.Token) ast.Expression {
	value := ""
	if x.Mode.EmitsChecks() {
		value = fmt.Sprintf("%s:%d,%d", site.Source.Filename, site.Line, site.Pos)
	}
	return &ast.StringLiteral{Value: value, Tok: site, Kind: ast.RawString}
}

// checkArity validates the call's argument count against the macro's
// declared parameter kind (spec.md §4.4: "Expansion handles: no-param,
// fixed-param, and variable (one-or-more) forms; the latter reject
// zero-argument calls").
func checkArity(params ast.MacroParams, argc int, tok token.Token) *diagnostics.DiagnosticError {
	switch params.Kind {
	case ast.MacroParamsNone:
		if argc != 0 {
			return diagnostics.NewError(diagnostics.CodeMacroArity, tok, "macro takes no arguments")
		}
	case ast.MacroParamsFixed:
		if argc != len(params.Fixed) {
			return diagnostics.NewError(diagnostics.CodeMacroArity, tok,
				fmt.Sprintf("macro expects %d argument(s), got %d", len(params.Fixed), argc))
		}
	case ast.MacroParamsVariable:
		if argc == 0 {
			return diagnostics.NewError(diagnostics.CodeMacroArity, tok, "macro requires at least one argument")
		}
	}
	return nil
}

// substituteParams performs hygienic parameter substitution: each declared
// parameter name is replaced throughout body by the corresponding argument
// expression (spec.md §4.4). A variable-arity macro's single parameter name
// is bound to a slice literal of every supplied argument.
func substituteParams(body ast.MacroBody, params ast.MacroParams, args []ast.Expression) ast.MacroBody {
	switch params.Kind {
	case ast.MacroParamsFixed:
		for i, p := range params.Fixed {
			body = body.ReplaceVariable(p.Lexeme, args[i])
		}
	case ast.MacroParamsVariable:
		body = body.ReplaceVariable(params.Variable.Lexeme, &ast.Slice{Items: args})
	}
	return body
}
