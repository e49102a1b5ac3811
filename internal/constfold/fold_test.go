package constfold_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/constfold"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/token"
)

func tok(ty token.Type) token.Token { return token.Token{Type: ty, Line: 1} }

func sint(v int64, bits ast.IntBits) *ast.SignedIntLiteral {
	return &ast.SignedIntLiteral{Value: v, Tok: tok(token.IntLiteral), Bits: bits}
}

func uint_(v uint64, bits ast.IntBits) *ast.UnsignedIntLiteral {
	return &ast.UnsignedIntLiteral{Value: v, Tok: tok(token.IntLiteral), Bits: bits}
}

// TestFoldAddLiteral covers S2 from spec.md §8: `2 + 3` folds to `5`.
func TestFoldAddLiteral(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Binary{Left: sint(2, ast.B32), Op: tok(token.Plus), Right: sint(3, ast.B32)}
	decl := &ast.VarDecl{Name: tok(token.Identifier), Init: expr}

	out := f.Fold([]ast.Statement{decl})
	require.False(t, diags.Failed())

	result, ok := out[0].(*ast.VarDecl).Init.(*ast.SignedIntLiteral)
	require.True(t, ok)
	require.Equal(t, int64(5), result.Value)
}

func TestFoldSignedOverflowIsError(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Binary{Left: sint(120, ast.B8), Op: tok(token.Plus), Right: sint(50, ast.B8)}
	f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: expr}})

	require.True(t, diags.Failed())
}

func TestFoldUnaryMinusOverflow(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Unary{Op: tok(token.Minus), Expr: sint(-128, ast.B8), IsPrefix: true}
	f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: expr}})

	require.True(t, diags.Failed(), "negating i8::MIN must overflow")
}

func TestFoldUnaryBangToU8(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Unary{Op: tok(token.Bang), Expr: sint(0, ast.B32), IsPrefix: true}
	out := f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: expr}})

	lit, ok := out[0].(*ast.ExpressionStmt).Expr.(*ast.UnsignedIntLiteral)
	require.True(t, ok)
	require.Equal(t, uint64(1), lit.Value)
	require.Equal(t, ast.B8, lit.Bits)
}

func TestFoldIfCollapsesToTakenBranch(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	then := &ast.ExpressionStmt{Expr: sint(1, ast.B32)}
	els := &ast.ExpressionStmt{Expr: sint(2, ast.B32)}
	ifStmt := &ast.If{Keyword: tok(token.Identifier), Condition: sint(1, ast.B32), Then: then, Else: els}

	out := f.Fold([]ast.Statement{ifStmt})
	require.Same(t, ast.Statement(then), out[0])
}

func TestFoldIfWithoutElseCollapsesToEmpty(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	then := &ast.ExpressionStmt{Expr: sint(1, ast.B32)}
	ifStmt := &ast.If{Keyword: tok(token.Identifier), Condition: sint(0, ast.B32), Then: then}

	out := f.Fold([]ast.Statement{ifStmt})
	block, ok := out[0].(*ast.Block)
	require.True(t, ok)
	require.Empty(t, block.Body)
}

func TestFoldTernaryCollapses(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	ternary := &ast.Ternary{
		Condition: sint(0, ast.B32),
		Then:      sint(1, ast.B32),
		Else:      sint(2, ast.B32),
	}
	out := f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: ternary}})
	lit := out[0].(*ast.ExpressionStmt).Expr.(*ast.SignedIntLiteral)
	require.Equal(t, int64(2), lit.Value)
}

func TestFoldSubscriptOfLiteralArray(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	arr := &ast.ArrayLiteral{Items: []ast.Expression{sint(10, ast.B32), sint(20, ast.B32), sint(30, ast.B32)}}
	sub := &ast.Subscript{Subscripted: arr, Args: []ast.Expression{uint_(1, ast.B32)}}

	out := f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: sub}})
	lit := out[0].(*ast.ExpressionStmt).Expr.(*ast.SignedIntLiteral)
	require.Equal(t, int64(20), lit.Value)
}

func TestFoldSubscriptOutOfBoundsIsError(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	arr := &ast.ArrayLiteral{Items: []ast.Expression{sint(10, ast.B32)}}
	sub := &ast.Subscript{Subscripted: arr, Args: []ast.Expression{uint_(5, ast.B32)}}

	f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: sub}})
	require.True(t, diags.Failed())
}

func TestFoldUnsignedUnaryMinusIsError(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Unary{Op: tok(token.Minus), Expr: uint_(5, ast.B32), IsPrefix: true}
	f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: expr}})

	require.True(t, diags.Failed())
}

func TestFoldNoteAttachedInsideMacroExpansion(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Binary{Left: sint(120, ast.B8), Op: tok(token.Plus), Right: sint(50, ast.B8)}
	wrapped := &ast.InMacro{Inner: expr, Source: token.Span{Line: 7}}
	f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: wrapped}})

	require.True(t, diags.Failed())
	require.NotEmpty(t, diags.All[0].Notes)
	require.Equal(t, 7, diags.All[0].Notes[0].Token.Line)
}

// A signed i64 sum whose magnitude exceeds i64::MAX promotes to an unsigned
// literal of the same tagged width instead of erroring.
func TestFoldSignedSumPromotesToUnsigned(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	expr := &ast.Binary{Left: sint(math.MaxInt64, ast.B64), Op: tok(token.Plus), Right: sint(5, ast.B64)}
	out := f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: expr}})
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	lit, ok := out[0].(*ast.ExpressionStmt).Expr.(*ast.UnsignedIntLiteral)
	require.True(t, ok, "the result must promote to an unsigned literal")
	require.Equal(t, uint64(math.MaxInt64)+5, lit.Value)
	require.Equal(t, ast.B64, lit.Bits)
}

// Only + and - fold; float multiplication and division stay unfolded.
func TestFoldLeavesFloatMulDivAlone(t *testing.T) {
	diags := &diagnostics.Bag{}
	f := constfold.New(diags)

	flit := func(v float64) *ast.FloatLiteral {
		return &ast.FloatLiteral{Value: v, Tok: tok(token.FloatLiteral), Bits: ast.F64}
	}
	mul := &ast.Binary{Left: flit(2), Op: tok(token.Star), Right: flit(3)}
	out := f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: mul}})

	require.False(t, diags.Failed())
	_, stillBinary := out[0].(*ast.ExpressionStmt).Expr.(*ast.Binary)
	require.True(t, stillBinary, "float * must be left for runtime")

	sum := &ast.Binary{Left: flit(2), Op: tok(token.Plus), Right: flit(3)}
	out = f.Fold([]ast.Statement{&ast.ExpressionStmt{Expr: sum}})
	folded, ok := out[0].(*ast.ExpressionStmt).Expr.(*ast.FloatLiteral)
	require.True(t, ok, "float + still folds")
	require.Equal(t, 5.0, folded.Value)
}
