// Package pipeline wires the four compiler passes (internal/imports,
// internal/constfold, internal/macroexpand, internal/irgen) into the one
// fixed sequence spec.md §4 describes: import resolution, a constant-fold
// pass, macro expansion, a second constant-fold pass, then IR generation.
// Grounded on the teacher's pipeline package — a Processor interface plus a
// context threaded stage to stage — generalised from its one-shot
// request/response context to the compiler's growing statement tree.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/constfold"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/imports"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/irgen"
	"github.com/skye-lang/skyec/internal/macroexpand"
)

// PipelineContext is the value threaded through every stage: the growing
// statement tree, the flags/diagnostics every pass consults, and (once
// IRGenStage has run) the finished definitions list.
type PipelineContext struct {
	// RunID identifies one compilation run; cmd/skyec prints it in its
	// start-of-compile log line. Diagnostics do not carry it, and it is
	// never consulted by name mangling or any other semantic decision.
	RunID uuid.UUID

	EntryPath string
	SourceDir string
	// LibRoot is the system library root bare/lib-form imports resolve
	// under (spec.md §4.1); empty means SourceDir.
	LibRoot string
	Flags   config.Flags
	Diags   *diagnostics.Bag

	Statements []ast.Statement
	Defs       []ir.Statement
}

// Processor is one pipeline stage: it consumes and returns a
// PipelineContext, mutating (or replacing) whichever fields its pass owns.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages
		// (e.g. LSP needs both parse and semantic errors).
	}
	return ctx
}

// NewContext builds the PipelineContext a fresh compilation run starts
// from, tagging it with a fresh correlation ID.
func NewContext(entryPath, sourceDir string, statements []ast.Statement, flags config.Flags, diags *diagnostics.Bag) *PipelineContext {
	return &PipelineContext{
		RunID:      uuid.New(),
		EntryPath:  entryPath,
		SourceDir:  sourceDir,
		Flags:      flags,
		Diags:      diags,
		Statements: statements,
	}
}

// ImportStage runs internal/imports over ctx.Statements (spec.md §4.1).
type ImportStage struct {
	Parser imports.Parser
}

func (s ImportStage) Process(ctx *PipelineContext) *PipelineContext {
	libRoot := ctx.LibRoot
	if libRoot == "" {
		libRoot = ctx.SourceDir
	}
	r := imports.New(s.Parser, libRoot, ctx.Diags)
	ctx.Statements = r.Process(ctx.Statements, ctx.SourceDir)
	return ctx
}

// ConstFoldStage runs one internal/constfold pass over ctx.Statements
// (spec.md §4.2: the pass runs once before and once after macro expansion,
// so the pipeline includes two of these stages, one on each side of
// MacroExpandStage).
type ConstFoldStage struct{}

func (ConstFoldStage) Process(ctx *PipelineContext) *PipelineContext {
	f := constfold.New(ctx.Diags)
	ctx.Statements = f.Fold(ctx.Statements)
	return ctx
}

// MacroExpandStage runs internal/macroexpand over ctx.Statements (spec.md
// §4.2/§4.4).
type MacroExpandStage struct{}

func (MacroExpandStage) Process(ctx *PipelineContext) *PipelineContext {
	x := macroexpand.New(ctx.Diags, ctx.Flags.Mode)
	ctx.Statements = x.Expand(ctx.Statements)
	return ctx
}

// IRGenStage runs internal/irgen over ctx.Statements, producing the
// compilation's definitions list (spec.md §4.3).
type IRGenStage struct{}

func (IRGenStage) Process(ctx *PipelineContext) *PipelineContext {
	g := irgen.New(ctx.Diags, ctx.Flags)
	ctx.Defs = g.Generate(ctx.Statements)
	return ctx
}

// Standard builds the fixed five-stage pipeline spec.md §4 describes:
// import resolution, fold, macro expansion, fold again, IR generation.
func Standard(parser imports.Parser) *Pipeline {
	return New(
		ImportStage{Parser: parser},
		ConstFoldStage{},
		MacroExpandStage{},
		ConstFoldStage{},
		IRGenStage{},
	)
}
