package macroexpand_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/macroexpand"
	"github.com/skye-lang/skyec/internal/token"
)

func ident(name string) token.Token {
	return token.Token{Type: token.Identifier, Lexeme: name, Line: 1}
}

func TestExpandFixedParamMacro(t *testing.T) {
	// macro double(x) -> x + x;
	macroDef := &ast.Macro{
		Name:   ident("double"),
		Params: ast.MacroParams{Kind: ast.MacroParamsFixed, Fixed: []token.Token{ident("x")}},
		Body: ast.MacroBody{
			Kind: ast.MacroBodyExpression,
			Expression: &ast.Binary{
				Left:  &ast.Variable{Name: ident("x")},
				Op:    token.Token{Type: token.Plus},
				Right: &ast.Variable{Name: ident("x")},
			},
		},
	}
	call := &ast.Call{
		Callee:      &ast.Variable{Name: ident("double")},
		Paren:       token.Token{Line: 1},
		Args:        []ast.Expression{&ast.SignedIntLiteral{Value: 21, Tok: ident("21"), Bits: ast.B32}},
		IsMacroCall: true,
	}

	diags := &diagnostics.Bag{}
	x := macroexpand.New(diags, config.Debug)
	out := x.Expand([]ast.Statement{macroDef, &ast.ExpressionStmt{Expr: call}})

	require.False(t, diags.Failed())
	wrapped, ok := out[1].(*ast.ExpressionStmt).Expr.(*ast.InMacro)
	require.True(t, ok)
	binary, ok := wrapped.Inner.(*ast.Binary)
	require.True(t, ok)
	require.IsType(t, &ast.Grouping{}, binary.Left)
	require.IsType(t, &ast.Grouping{}, binary.Right)
}

func TestExpandArityMismatchReportsError(t *testing.T) {
	macroDef := &ast.Macro{
		Name:   ident("double"),
		Params: ast.MacroParams{Kind: ast.MacroParamsFixed, Fixed: []token.Token{ident("x")}},
		Body:   ast.MacroBody{Kind: ast.MacroBodyExpression, Expression: &ast.Variable{Name: ident("x")}},
	}
	call := &ast.Call{
		Callee:      &ast.Variable{Name: ident("double")},
		Paren:       token.Token{Line: 1},
		Args:        nil,
		IsMacroCall: true,
	}

	diags := &diagnostics.Bag{}
	x := macroexpand.New(diags, config.Debug)
	x.Expand([]ast.Statement{macroDef, &ast.ExpressionStmt{Expr: call}})

	require.True(t, diags.Failed())
}

func TestExpandVariableArityRejectsZeroArgs(t *testing.T) {
	macroDef := &ast.Macro{
		Name:   ident("all"),
		Params: ast.MacroParams{Kind: ast.MacroParamsVariable, Variable: ident("xs")},
		Body:   ast.MacroBody{Kind: ast.MacroBodyExpression, Expression: &ast.Variable{Name: ident("xs")}},
	}
	call := &ast.Call{Callee: &ast.Variable{Name: ident("all")}, Paren: token.Token{Line: 1}, IsMacroCall: true}

	diags := &diagnostics.Bag{}
	x := macroexpand.New(diags, config.Debug)
	x.Expand([]ast.Statement{macroDef, &ast.ExpressionStmt{Expr: call}})

	require.True(t, diags.Failed())
}

func TestPanicMacroPopulatesPosInDebugMode(t *testing.T) {
	macroDef := &ast.Macro{
		Name:   ident("panic"),
		Params: ast.MacroParams{Kind: ast.MacroParamsNone},
		Body:   ast.MacroBody{Kind: ast.MacroBodyExpression, Expression: &ast.Variable{Name: ident(config.PanicPosName)}},
	}
	call := &ast.Call{
		Callee:      &ast.Variable{Name: ident("panic")},
		Paren:       token.Token{Line: 3, Source: token.Source{Filename: "main.skye"}},
		IsMacroCall: true,
	}

	diags := &diagnostics.Bag{}
	x := macroexpand.New(diags, config.Debug)
	out := x.Expand([]ast.Statement{macroDef, &ast.ExpressionStmt{Expr: call}})

	wrapped := out[1].(*ast.ExpressionStmt).Expr.(*ast.InMacro)
	grouping, ok := wrapped.Inner.(*ast.Grouping)
	require.True(t, ok)
	lit, ok := grouping.Expr.(*ast.StringLiteral)
	require.True(t, ok)
	require.Contains(t, lit.Value, "main.skye:3")
}

func TestPanicMacroEmptyPosInReleaseMode(t *testing.T) {
	macroDef := &ast.Macro{
		Name:   ident("panic"),
		Params: ast.MacroParams{Kind: ast.MacroParamsNone},
		Body:   ast.MacroBody{Kind: ast.MacroBodyExpression, Expression: &ast.Variable{Name: ident(config.PanicPosName)}},
	}
	call := &ast.Call{Callee: &ast.Variable{Name: ident("panic")}, Paren: token.Token{Line: 3}, IsMacroCall: true}

	diags := &diagnostics.Bag{}
	x := macroexpand.New(diags, config.Release)
	out := x.Expand([]ast.Statement{macroDef, &ast.ExpressionStmt{Expr: call}})

	wrapped := out[1].(*ast.ExpressionStmt).Expr.(*ast.InMacro)
	lit := wrapped.Inner.(*ast.Grouping).Expr.(*ast.StringLiteral)
	require.Equal(t, "", lit.Value)
}
