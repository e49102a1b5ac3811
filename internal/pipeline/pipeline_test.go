package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/pipeline"
	"github.com/skye-lang/skyec/internal/token"
)

// fakeParser stands in for the external lexer/parser, same role it plays in
// internal/imports' own tests.
type fakeParser struct{ files map[string][]ast.Statement }

func (p *fakeParser) ParseFile(path string) ([]ast.Statement, error) {
	stmts, ok := p.files[path]
	if !ok {
		return nil, nil
	}
	return stmts, nil
}

func TestStandardPipelineRunsEveryStage(t *testing.T) {
	flags := config.Default()
	diags := &diagnostics.Bag{}

	body := []ast.Statement{
		&ast.VarDecl{
			Name: token.Token{Lexeme: "x"},
			Init: &ast.Binary{
				Left:  &ast.SignedIntLiteral{Value: 1, Bits: ast.B32},
				Op:    token.Token{Type: token.Plus},
				Right: &ast.SignedIntLiteral{Value: 2, Bits: ast.B32},
			},
		},
	}
	fn := &ast.FunctionDef{Name: token.Token{Lexeme: "main"}, Body: body}

	ctx := pipeline.NewContext("main.skye", "", []ast.Statement{fn}, flags, diags)
	require.NotEqual(t, ctx.RunID.String(), "")

	p := pipeline.Standard(&fakeParser{})
	result := p.Run(ctx)

	require.False(t, diags.Failed())
	require.NotEmpty(t, result.Defs)
	initDef, ok := result.Defs[0].Data.(*ir.FunctionDef)
	require.True(t, ok, "Defs[0] must always be _SKYE_INIT")
	require.Equal(t, config.InitFunctionName, initDef.Name)
}
