// Package imports implements the first compiler pass (spec.md §4.1): it
// walks the statement tree, replaces every `.skye` Import with an
// ImportedBlock carrying the recursively resolved statements of the
// imported file, and leaves non-.skye imports alone for the (out-of-scope)
// backend to lower to a C #include. Grounded on import_processor.rs, using
// internal/trampoline in place of the original's reblessive::Stk recursion.
package imports

import (
	"path"
	"path/filepath"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/trampoline"
)

// Parser is the external collaborator that turns a resolved file path into
// a statement tree (spec.md §1: the lexer/parser live outside the core).
// Tests supply a map-backed Parser instead of a real lexer/parser; their
// golang.org/x/tools/txtar fixtures only lay the files out on disk.
type Parser interface {
	ParseFile(path string) ([]ast.Statement, error)
}

// Resolver runs the import-resolution pass over one entry file's statement
// tree.
type Resolver struct {
	Parser  Parser
	LibRoot string
	Diags   *diagnostics.Bag

	chain map[string]bool // absolute paths currently being resolved, for cycle detection
}

// New builds a Resolver. libRoot is the system library root import paths of
// ImportType Lib and bare default-form imports resolve under.
func New(parser Parser, libRoot string, diags *diagnostics.Bag) *Resolver {
	return &Resolver{Parser: parser, LibRoot: libRoot, Diags: diags, chain: map[string]bool{}}
}

// Process resolves every import in statements, which must be the top-level
// statement list of sourceDir's entry file. It mutates the tree in place and
// returns the same slice for convenience.
func (r *Resolver) Process(statements []ast.Statement, sourceDir string) []ast.Statement {
	stack := trampoline.New()
	_ = stack.Call(func(stack *trampoline.Stack) error {
		r.processMany(stack, statements, sourceDir, 0)
		return nil
	})
	return statements
}

func (r *Resolver) processMany(stack *trampoline.Stack, statements []ast.Statement, sourceDir string, depth int) {
	for i := range statements {
		_ = stack.Call(func(stack *trampoline.Stack) error {
			statements[i] = r.processOne(stack, statements[i], sourceDir, depth)
			return nil
		})
	}
}

// processOne resolves a single statement, recursing into every nested
// statement slot the import resolver must reach (spec.md §4.1: "blocks,
// impls, namespaces, function bodies, control flow, switch cases, macro
// block bodies, and foreach/defer/template bodies").
func (r *Resolver) processOne(stack *trampoline.Stack, stmt ast.Statement, sourceDir string, depth int) ast.Statement {
	switch s := stmt.(type) {
	case *ast.Import:
		return r.resolveImport(stack, s, sourceDir, depth)

	case *ast.Block:
		r.processMany(stack, s.Body, sourceDir, depth)
		return s
	case *ast.Impl:
		r.processMany(stack, s.Body, sourceDir, depth)
		return s
	case *ast.Namespace:
		r.processMany(stack, s.Body, sourceDir, depth)
		return s
	case *ast.Interface:
		return s // method signatures only, no bodies to recurse into

	case *ast.FunctionDef:
		if s.Body != nil {
			r.processMany(stack, s.Body, sourceDir, depth)
		}
		return s

	case *ast.ImportedBlock:
		before := r.Diags.ErrorCount()
		r.processMany(stack, s.Statements, sourceDir, depth)
		if r.Diags.ErrorCount() != before {
			r.Diags.Add(diagnostics.NewInfo("", token.Token{Line: s.Source.Line, Source: s.Source.Source}, "the error(s) above were a result of this import"))
		}
		return s

	case *ast.While:
		s.Body = r.processOne(stack, s.Body, sourceDir, depth)
		return s
	case *ast.DoWhile:
		s.Body = r.processOne(stack, s.Body, sourceDir, depth)
		return s
	case *ast.For:
		s.Body = r.processOne(stack, s.Body, sourceDir, depth)
		return s
	case *ast.Foreach:
		s.Body = r.processOne(stack, s.Body, sourceDir, depth)
		return s
	case *ast.Defer:
		s.Body = r.processOne(stack, s.Body, sourceDir, depth)
		return s
	case *ast.Template:
		s.Declaration = r.processOne(stack, s.Declaration, sourceDir, depth)
		return s

	case *ast.Switch:
		for i := range s.Cases {
			r.processMany(stack, s.Cases[i].Code, sourceDir, depth)
		}
		return s

	case *ast.If:
		s.Then = r.processOne(stack, s.Then, sourceDir, depth)
		if s.Else != nil {
			s.Else = r.processOne(stack, s.Else, sourceDir, depth)
		}
		return s

	case *ast.Macro:
		if s.Body.Kind == ast.MacroBodyBlock {
			r.processMany(stack, s.Body.Block, sourceDir, depth)
		}
		return s

	default:
		return stmt
	}
}

func (r *Resolver) resolveImport(stack *trampoline.Stack, imp *ast.Import, sourceDir string, depth int) ast.Statement {
	if depth >= config.MaxImportDepth {
		r.Diags.Errorf(diagnostics.CodeImportUnresolved, imp.Keyword, "import nesting exceeds the maximum depth of %d; check for an import cycle", config.MaxImportDepth)
		return imp
	}

	resolved, isSkye := r.resolvePath(imp, sourceDir)
	if !isSkye {
		return imp // non-.skye import: left for the backend's #include lowering
	}

	absPath := filepath.Clean(resolved)
	if r.chain[absPath] {
		r.Diags.Errorf(diagnostics.CodeImportUnresolved, imp.Keyword, "import cycle detected at %q", absPath)
		return imp
	}

	statements, err := r.Parser.ParseFile(resolved)
	if err != nil {
		r.Diags.Errorf(diagnostics.CodeImportUnresolved, imp.Keyword, "could not import %q: %s", resolved, err.Error())
		return imp
	}

	r.chain[absPath] = true
	r.processMany(stack, statements, filepath.Dir(resolved), depth+1)
	delete(r.chain, absPath)

	return &ast.ImportedBlock{Statements: statements, Source: token.FromToken(imp.Keyword)}
}

// resolvePath implements the four resolution rules in spec.md §4.1.
func (r *Resolver) resolvePath(imp *ast.Import, sourceDir string) (resolved string, isSkye bool) {
	p := imp.Path

	switch imp.Type {
	case ast.ImportAngle:
		// verbatim, relative to the working directory
		return p, config.HasSourceExt(p)

	case ast.ImportLib:
		// extensionless lib imports resolve like bare names: under the
		// library root with the .skye extension appended
		if path.Ext(p) == "" {
			return filepath.Join(r.LibRoot, "lib", filepath.FromSlash(p)) + config.SourceFileExt, true
		}
		return filepath.Join(r.LibRoot, "lib", filepath.FromSlash(p)), config.HasSourceExt(p)

	default: // ast.ImportDefault
		if path.Ext(p) != "" {
			if filepath.IsAbs(p) {
				return p, config.HasSourceExt(p)
			}
			if sourceDir != "" {
				return filepath.Join(sourceDir, filepath.FromSlash(p)), config.HasSourceExt(p)
			}
			return p, config.HasSourceExt(p)
		}
		if filepath.IsAbs(p) {
			r.Diags.Errorf(diagnostics.CodeImportUnresolved, imp.Keyword,
				"a file extension is required on absolute path imports for Skye to know what kind of import to perform")
			return p, false
		}
		return filepath.Join(r.LibRoot, "lib", filepath.FromSlash(p)) + config.SourceFileExt, true
	}
}
