package imports_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/imports"
	"github.com/skye-lang/skyec/internal/token"
)

// fakeParser stands in for the external lexer/parser: each entry maps a
// resolved path to the statement tree that file "parses" to. A real parser
// would read tok.Source.Text; tests only need the wiring between files.
type fakeParser struct {
	files map[string][]ast.Statement
}

func (p *fakeParser) ParseFile(path string) ([]ast.Statement, error) {
	stmts, ok := p.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return stmts, nil
}

func unpackTxtar(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	archive := txtar.Parse(data)
	for _, f := range archive.Files {
		full := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, f.Data, 0o644))
	}
	return dir
}

func importStmt(path string) *ast.Import {
	return &ast.Import{Keyword: token.Token{Lexeme: path, Line: 1}, Path: path, Type: ast.ImportDefault}
}

func TestResolverInlinesSkyeImport(t *testing.T) {
	dir := unpackTxtar(t, []byte(`
-- main.skye --
import "util.skye"
-- util.skye --
fn helper() {}
`))

	mainPath := filepath.Join(dir, "main.skye")
	utilPath := filepath.Join(dir, "util.skye")

	helper := &ast.FunctionDef{Name: token.Token{Lexeme: "helper"}}
	parser := &fakeParser{files: map[string][]ast.Statement{
		utilPath: {helper},
	}}

	diags := &diagnostics.Bag{}
	r := imports.New(parser, dir, diags)

	tree := []ast.Statement{importStmt(utilPath)}
	resolved := r.Process(tree, dir)

	require.False(t, diags.Failed())
	require.Len(t, resolved, 1)
	block, ok := resolved[0].(*ast.ImportedBlock)
	require.True(t, ok, "expected the import to be replaced by an ImportedBlock")
	require.Equal(t, []ast.Statement{helper}, block.Statements)
	_ = mainPath
}

func TestResolverDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.skye")
	b := filepath.Join(dir, "b.skye")

	parser := &fakeParser{files: map[string][]ast.Statement{
		a: {importStmt(b)},
		b: {importStmt(a)},
	}}

	diags := &diagnostics.Bag{}
	r := imports.New(parser, dir, diags)

	tree := []ast.Statement{importStmt(a)}
	r.Process(tree, dir)

	require.True(t, diags.Failed(), "an import cycle must surface as a failing pass")
}

func TestResolverLeavesForeignImportsAlone(t *testing.T) {
	dir := t.TempDir()
	parser := &fakeParser{files: map[string][]ast.Statement{}}
	diags := &diagnostics.Bag{}
	r := imports.New(parser, dir, diags)

	tree := []ast.Statement{&ast.Import{Keyword: token.Token{Lexeme: "stdio.h"}, Path: "stdio.h", Type: ast.ImportAngle}}
	resolved := r.Process(tree, dir)

	require.False(t, diags.Failed())
	_, stillImport := resolved[0].(*ast.Import)
	require.True(t, stillImport, "a non-.skye import must not be replaced")
}

func TestResolverIsFixpoint(t *testing.T) {
	dir := unpackTxtar(t, []byte(`
-- main.skye --
import "util.skye"
-- util.skye --
fn helper() {}
`))
	utilPath := filepath.Join(dir, "util.skye")
	helper := &ast.FunctionDef{Name: token.Token{Lexeme: "helper"}}
	parser := &fakeParser{files: map[string][]ast.Statement{utilPath: {helper}}}

	diags := &diagnostics.Bag{}
	r := imports.New(parser, dir, diags)
	tree := []ast.Statement{importStmt(utilPath)}

	first := r.Process(tree, dir)
	second := r.Process(first, dir)

	require.Equal(t, first, second, "running import resolution twice must yield the same tree")
	for _, s := range second {
		_, isImport := s.(*ast.Import)
		require.False(t, isImport, "no unresolved .skye Import nodes should remain")
	}
}

// An extensionless lib-form import resolves like a bare name: under the
// library root with the .skye extension appended.
func TestResolverLibImportWithoutExtension(t *testing.T) {
	libRoot := t.TempDir()
	resolvedPath := filepath.Join(libRoot, "lib", "core") + ".skye"
	helper := &ast.FunctionDef{Name: token.Token{Lexeme: "helper"}}
	parser := &fakeParser{files: map[string][]ast.Statement{resolvedPath: {helper}}}

	diags := &diagnostics.Bag{}
	r := imports.New(parser, libRoot, diags)

	tree := []ast.Statement{&ast.Import{Keyword: token.Token{Lexeme: "core"}, Path: "core", Type: ast.ImportLib}}
	resolved := r.Process(tree, libRoot)

	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)
	block, ok := resolved[0].(*ast.ImportedBlock)
	require.True(t, ok, "the lib import must be inlined")
	require.Equal(t, []ast.Statement{helper}, block.Statements)
}
