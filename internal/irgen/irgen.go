// Package irgen implements the fourth and largest compiler pass (spec.md
// §4.3): a recursive-descent, synthesised-attribute evaluator that walks
// the (imported, folded, macro-expanded) AST in a type-aware environment
// and emits the typed IR defined in internal/ir. It resolves names,
// instantiates templates, performs method resolution and generic
// inference, and builds the flat top-level definitions list with
// `_SKYE_INIT` reserved at index 0 (spec.md §3.4).
//
// Grounded on the teacher's internal/analyzer + internal/evaluator pair —
// a synthesised-attribute walk over a typed environment with a mutable
// "current scope" — adapted to SkyeType's closed, non-unifying type system
// instead of the teacher's Hindley-Milner inference engine.
package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/trampoline"
	"github.com/skye-lang/skyec/internal/types"
)

// Generator holds every piece of mutable state one compilation unit's IR
// generation pass threads through (spec.md §5: globals, the definitions
// vector, the deferred-stack, the current-scope pointer).
type Generator struct {
	Diags *diagnostics.Bag
	Flags config.Flags

	// Globals is the process-wide environment shared across impl/namespace
	// passes (spec.md §3.5); templates capture a clone of it at definition
	// time (spec.md §9).
	Globals *symbols.Environment

	// Defs is the flat top-level definition list. Defs[0] is always
	// _SKYE_INIT; it is filled in last, once every `init`-annotated
	// function has been discovered (spec.md §3.4, testable property 6).
	Defs []ir.Statement

	// initCalls accumulates one Call IrValue per `#init`-annotated function,
	// in the order the functions were defined (spec.md §5 ordering rule).
	initCalls []ir.Value

	// instantiated tracks which mangled template instantiations have
	// already been generated, so a repeated call reuses the cached
	// definition instead of emitting it twice (spec.md §4.3.2, S5).
	instantiated map[string]bool

	// instantiatedSig caches a generated template instantiation's concrete
	// signature alongside instantiated's membership flag, so a repeated call
	// site can rebuild its Call's result type without re-walking the
	// template body (spec.md §4.3.2, S5).
	instantiatedSig map[string]types.Function

	// scope is the current lexical scope's backing statement list — a
	// pointer so nested expression evaluation can append prelude
	// statements to whichever scope is logically "current" (spec.md §4.3.1,
	// §9 "mutable shared scope pointer").
	scope *[]ir.Statement

	// deferStack is a stack of per-lexical-scope defer lists; Block pushes
	// a frame on entry and drains it on every exit path (spec.md §4.3.3).
	deferStack [][]ast.Statement

	// destructStack is a stack of per-lexical-scope destructor-candidate
	// lists: one entry per local whose declared type defines `__destruct__`,
	// in declaration order. Pushed/drained in lockstep with deferStack, and
	// drained after it on every exit path, in reverse declaration order
	// (spec.md §4.3.5).
	destructStack [][]destructLocal

	// enclosingFn is the signature of the function currently being
	// generated; its Return is used to type-check `return` and to know which
	// sum type a bare `?` propagates into (spec.md §4.3.2 try operator).
	enclosingFn *types.Function

	// currentNamespace is the dot-joined namespace path the generator is
	// currently inside, used for name mangling (spec.md §3.6).
	currentNamespace []string

	// loops tracks the enclosing loops, innermost last; each frame carries
	// the lazily-assigned break/continue labels spec.md §4.3.3 describes
	// (a label is only emitted when a break/continue actually used it).
	loops []*loopCtx

	tempCounter  int
	labelCounter int

	// methods maps a type's mangled key to its method table, populated as
	// `impl` blocks are processed (spec.md §3.3: "A type knows whether each
	// operator is ... supported via a user method").
	methods map[string]map[string]*ast.FunctionDef
}

// New builds a Generator. diags accumulates every diagnostic raised across
// the whole pass; flags carries the compile mode the checks in §4.3.2/§6
// consult.
func New(diags *diagnostics.Bag, flags config.Flags) *Generator {
	g := &Generator{
		Diags:        diags,
		Flags:        flags,
		Globals:      symbols.NewGlobals(),
		instantiated: map[string]bool{},
	}
	g.Defs = append(g.Defs, ir.Statement{}) // placeholder for _SKYE_INIT
	return g
}

// Generate runs the IR generator over the top-level statement tree,
// returning the finished definitions list with _SKYE_INIT populated at
// index 0.
func (g *Generator) Generate(statements []ast.Statement) []ir.Statement {
	stack := trampoline.New()
	g.generateTopLevelMany(stack, statements)
	g.Defs[0] = g.buildInitFunction()
	return g.Defs
}

func (g *Generator) generateTopLevelMany(stack *trampoline.Stack, statements []ast.Statement) {
	for i := range statements {
		stmt := statements[i]
		_ = stack.Call(func(stack *trampoline.Stack) error {
			g.generateTopLevel(stack, stmt)
			return nil
		})
	}
}

// generateTopLevel dispatches a statement that may appear at file scope
// (or inside a namespace/imported block, which share file-scope semantics).
func (g *Generator) generateTopLevel(stack *trampoline.Stack, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ImportedBlock:
		g.generateTopLevelMany(stack, s.Statements)

	case *ast.Namespace:
		g.currentNamespace = append(g.currentNamespace, s.Name.Lexeme)
		g.generateTopLevelMany(stack, s.Body)
		g.currentNamespace = g.currentNamespace[:len(g.currentNamespace)-1]

	case *ast.FunctionDef:
		if def := g.generateFunction(stack, s, nil); def != nil {
			g.Defs = append(g.Defs, *def)
		}

	case *ast.StructDef:
		if def := g.generateStruct(s); def != nil {
			g.Defs = append(g.Defs, *def)
		}

	case *ast.BitfieldDef:
		if def := g.generateBitfield(s); def != nil {
			g.Defs = append(g.Defs, *def)
		}

	case *ast.EnumDef:
		g.Defs = append(g.Defs, g.generateEnum(s)...)

	case *ast.Interface:
		g.Defs = append(g.Defs, g.generateInterface(s)...)

	case *ast.Impl:
		g.generateImpl(stack, s)

	case *ast.Template:
		g.registerTemplate(s)

	case *ast.Use:
		g.generateUse(s)

	case *ast.VarDecl:
		if def := g.generateGlobalVar(s); def != nil {
			g.Defs = append(g.Defs, *def)
		}

	case *ast.Import:
		// A non-.skye import survives the resolver pass and lowers to a C
		// include directive (spec.md §4.1).
		g.Defs = append(g.Defs, ir.Statement{
			Data: &ir.Include{Path: s.Path, IsAngle: s.Type == ast.ImportAngle},
			Pos:  stmt.GetPos(),
		})

	case *ast.Undef:
		g.Defs = append(g.Defs, ir.Statement{Data: &ir.Undefine{Name: s.Name.Lexeme}, Pos: stmt.GetPos()})

	case *ast.Macro:
		// Reaching IR generation means no call site ever expanded it; a
		// macro with zero call sites is simply unused, not an error.

	default:
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, spanToken(stmt.GetPos()), "this statement is not allowed at top level")
	}
}

// spanToken synthesises a bare Token anchored at span, for diagnostics
// raised against a node that doesn't carry one token in particular.
func spanToken(span token.Span) token.Token {
	return token.Token{Line: span.Line, Source: span.Source, Pos: span.Start, End: span.End}
}

// buildInitFunction assembles `_SKYE_INIT`: a void function whose body is
// one Call expression statement per accumulated init-function call, in
// source order (spec.md §3.4, testable property 6).
func (g *Generator) buildInitFunction() ir.Statement {
	body := make([]ir.Statement, 0, len(g.initCalls))
	for _, call := range g.initCalls {
		body = append(body, ir.Statement{Data: &ir.Expression{Value: call}})
	}
	sig := types.Function{Params: nil, Return: types.Void{}, HasBody: true}
	return ir.Statement{Data: &ir.FunctionDef{
		Name:      config.InitFunctionName,
		Params:    nil,
		Body:      body,
		Signature: sig,
	}}
}

func (g *Generator) mangledNamespace(name string) string {
	return Mangle(g.currentNamespace, name)
}

func (g *Generator) nextTemp() string {
	g.tempCounter++
	return tempName(g.tempCounter)
}

func (g *Generator) nextLabel(prefix string) string {
	g.labelCounter++
	return labelName(prefix, g.labelCounter)
}

// emit appends stmt to the current scope (spec.md §4.3.1: "Side effects of
// evaluation: emitting IR statements into the current scope").
func (g *Generator) emit(stmt ir.Statement) {
	if g.scope == nil {
		return
	}
	*g.scope = append(*g.scope, stmt)
}

// withScope runs fn with a fresh scope list installed as current, restoring
// the previous one afterwards (RAII-style save/restore, spec.md §9), and
// returns the statements collected into the fresh scope.
func (g *Generator) withScope(fn func()) []ir.Statement {
	var body []ir.Statement
	prev := g.scope
	g.scope = &body
	fn()
	g.scope = prev
	return body
}
