package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/token"
)

func ident(name string) token.Token {
	return token.Token{Type: token.Identifier, Lexeme: name, Line: 1}
}

// Testable property 2: ReplaceVariable is idempotent — substituting the same
// name twice yields the same tree, because a substituted occurrence is
// wrapped in a Grouping and no longer lexically matches.
func TestReplaceVariableIdempotent(t *testing.T) {
	body := &ast.Binary{
		Left:  &ast.Variable{Name: ident("x")},
		Op:    token.Token{Type: token.Plus},
		Right: &ast.Variable{Name: ident("x")},
	}
	replacement := &ast.SignedIntLiteral{Value: 42, Bits: ast.B32}

	once := body.ReplaceVariable("x", replacement)
	twice := once.ReplaceVariable("x", replacement)

	assertLiteralGrouping := func(e ast.Expression) {
		g, ok := e.(*ast.Grouping)
		require.True(t, ok)
		lit, ok := g.Expr.(*ast.SignedIntLiteral)
		require.True(t, ok)
		require.Equal(t, int64(42), lit.Value)
	}

	for _, tree := range []ast.Expression{once, twice} {
		bin := tree.(*ast.Binary)
		assertLiteralGrouping(bin.Left)
		assertLiteralGrouping(bin.Right)
	}
}

func TestReplaceVariableLeavesOtherNames(t *testing.T) {
	expr := &ast.Variable{Name: ident("y")}
	out := expr.ReplaceVariable("x", &ast.SignedIntLiteral{Value: 1, Bits: ast.B32})

	v, ok := out.(*ast.Variable)
	require.True(t, ok)
	require.Equal(t, "y", v.Name.Lexeme)
}

func TestReplaceVariableReachesStatementSlots(t *testing.T) {
	stmt := &ast.If{
		Keyword:   ident("if"),
		Condition: &ast.Variable{Name: ident("x")},
		Then: &ast.Block{OpenBrace: ident("{"), Body: []ast.Statement{
			&ast.Return{Keyword: ident("return"), Value: &ast.Variable{Name: ident("x")}},
		}},
	}
	out := stmt.ReplaceVariable("x", &ast.SignedIntLiteral{Value: 7, Bits: ast.B32})

	ifStmt := out.(*ast.If)
	_, condReplaced := ifStmt.Condition.(*ast.Grouping)
	require.True(t, condReplaced)

	ret := ifStmt.Then.(*ast.Block).Body[0].(*ast.Return)
	_, valReplaced := ret.Value.(*ast.Grouping)
	require.True(t, valReplaced)
}

// Clone must produce an independent tree: mutating the clone leaves the
// original untouched.
func TestCloneIsDeep(t *testing.T) {
	original := &ast.Block{OpenBrace: ident("{"), Body: []ast.Statement{
		&ast.ExpressionStmt{Expr: &ast.Variable{Name: ident("x")}},
	}}

	clone := original.Clone().(*ast.Block)
	clone.Body[0] = &ast.ExpressionStmt{Expr: &ast.Variable{Name: ident("y")}}

	kept := original.Body[0].(*ast.ExpressionStmt).Expr.(*ast.Variable)
	require.Equal(t, "x", kept.Name.Lexeme)
}

// Binary spans merge across both operands on one line; a span never leaks
// outside its file (testable property 1).
func TestBinarySpanMerges(t *testing.T) {
	src := token.Source{Text: "a + b", Filename: "main.skye"}
	left := token.Token{Source: src, Pos: 0, End: 1, Line: 1, Lexeme: "a"}
	right := token.Token{Source: src, Pos: 4, End: 5, Line: 1, Lexeme: "b"}

	expr := &ast.Binary{
		Left:  &ast.Variable{Name: left},
		Op:    token.Token{Type: token.Plus, Source: src, Pos: 2, End: 3, Line: 1},
		Right: &ast.Variable{Name: right},
	}

	pos := expr.GetPos()
	require.Equal(t, 0, pos.Start)
	require.Equal(t, 5, pos.End)

	file := token.Span{Source: src, Start: 0, End: len(src.Text), Line: 1}
	require.True(t, file.Contains(pos))
}
