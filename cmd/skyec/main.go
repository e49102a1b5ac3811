package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/imports"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/pipeline"
)

// newFrontend is the hook the (separately maintained) lexer/parser links
// itself through: it must return a Parser that turns a resolved file path
// into a statement tree. The core pipeline never depends on how tokens are
// produced, only on this interface.
// Can be injected by an alternative main wrapping this one, mirroring how
// the original splits compiler core and CLI into separate crates.
var newFrontend func(flags config.Flags) imports.Parser

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("skyec: ")

	modeName := flag.String("mode", "", "compile mode: debug, release, release-unsafe")
	libRoot := flag.String("lib-root", defaultLibRoot(), "system library root for import resolution")
	dumpIR := flag.Bool("dump-ir", false, "print a summary of the generated definitions list")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("skyec", config.Version)
		return
	}

	if flag.NArg() != 1 {
		log.Fatal("usage: skyec [flags] <file.skye>")
	}
	entry := flag.Arg(0)
	sourceDir := filepath.Dir(entry)

	flags, err := config.LoadProject(filepath.Join(sourceDir, "skye.yaml"))
	if err != nil {
		log.Fatalf("bad skye.yaml: %s", err)
	}
	if *modeName != "" {
		flags.ModeName = *modeName
		flags.Resolve()
	}

	if newFrontend == nil {
		log.Fatal("this build carries no frontend; link a lexer/parser through newFrontend")
	}
	parser := newFrontend(flags)

	statements, err := parser.ParseFile(entry)
	if err != nil {
		log.Fatalf("cannot parse %s: %s", entry, err)
	}

	diags := &diagnostics.Bag{}
	ctx := pipeline.NewContext(entry, sourceDir, statements, flags, diags)
	ctx.LibRoot = *libRoot
	log.Printf("compiling %s (run %s, %s mode)", entry, ctx.RunID, flags.Mode)

	result := pipeline.Standard(parser).Run(ctx)

	reportDiagnostics(diags)
	if diags.Failed() {
		log.Fatalf("compilation failed with %d error(s)", diags.ErrorCount())
	}

	if *dumpIR {
		dumpDefinitions(result.Defs)
	}
	log.Printf("generated %d top-level definition(s)", len(result.Defs))
}

func defaultLibRoot() string {
	if root := os.Getenv("SKYE_LIB_ROOT"); root != "" {
		return root
	}
	return "."
}

func reportDiagnostics(bag *diagnostics.Bag) {
	colorize := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	for _, d := range bag.All {
		text := d.Render()
		if colorize {
			switch d.Severity {
			case diagnostics.Error:
				text = colorRed + text + colorReset
			case diagnostics.Warning:
				text = colorYellow + text + colorReset
			case diagnostics.Info:
				text = colorCyan + text + colorReset
			}
		}
		fmt.Fprintln(os.Stderr, text)
	}
}

func dumpDefinitions(defs []ir.Statement) {
	for i, def := range defs {
		fmt.Printf("%4d  %s\n", i, describe(def))
	}
}

func describe(def ir.Statement) string {
	switch d := def.Data.(type) {
	case *ir.FunctionDef:
		suffix := ""
		if d.Body == nil {
			suffix = " (forward)"
		}
		return fmt.Sprintf("fn %s%s", d.Name, suffix)
	case *ir.StructDef:
		return "struct " + d.Type.String()
	case *ir.UnionDef:
		return "union " + d.Type.String()
	case *ir.EnumDef:
		return fmt.Sprintf("enum %s (%d variants)", d.Name, len(d.Variants))
	case *ir.TaggedUnion:
		return fmt.Sprintf("tagged union %s (%d variants)", d.Name, len(d.Fields))
	case *ir.VarDecl:
		return "var " + d.Name
	case *ir.Include:
		return "include " + d.Path
	case nil:
		return "<empty>"
	default:
		return fmt.Sprintf("%T", def.Data)
	}
}
