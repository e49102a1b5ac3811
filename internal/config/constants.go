// Package config carries the compiler's file-extension conventions,
// compile-mode flags, and the handful of ambient constants (import-depth
// guard, built-in macro names) every pass consults.
package config

// Version is the current skyec version, settable at build time via
// `-ldflags` the same way the teacher's own Version var is.
var Version = "0.1.0"

const SourceFileExt = ".skye"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".skye"}

// TrimSourceExt removes the .skye extension from a filename, if present.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with a recognized source
// extension — used by the import resolver to distinguish `.skye` imports
// (resolved and inlined) from foreign imports (left as-is for the backend's
// `#include` lowering).
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// MaxImportDepth bounds how many nested imports the resolver will follow
// from one entry file before it reports a cycle/abuse error. The original
// compiler bounds package zip size (MAX_PACKAGE_SIZE_BYTES) as its
// equivalent abuse guard; skyec has no packaging step, so the analogous
// runaway vector is unbounded import recursion, guarded here instead.
const MaxImportDepth = 256

// Reserved macro names with dedicated handlers in the IR generator
// (spec.md §4.3.2/§4.3.4).
const (
	FormatMacroName    = "format"
	FprintMacroName    = "fprint"
	FprintlnMacroName  = "fprintln"
	TypeOfMacroName    = "typeOf"
	CastMacroName      = "cast"
	ConstCastMacroName = "constCast"
	AsPtrMacroName     = "asPtr"
)

// Base import paths (grounded on prepare_base_imports in lib.rs). No stage
// of the pipeline reads them: no imports are prepended to a compiled file.
const (
	CoreImport     = "core/core"
	BuiltinsImport = "core/builtins"
	PanicImport    = "core/panic"
)

// InitFunctionName is the reserved name of the definitions-list entry that
// accumulates calls to every function marked `init`, always at index 0
// (spec.md §3.4).
const InitFunctionName = "_SKYE_INIT"

// MainFunctionName is what a user-defined `main` is renamed to, so the core
// library's real C main can call _SKYE_INIT first (spec.md §4.3.3).
const MainFunctionName = "_SKYE_MAIN"

// PanicPosName is the name the macro expander replaces inside the `panic`
// macro's body: with a string literal holding the call site as
// `file:line,pos` when compiling in Debug mode, or an empty string in the
// other modes.
const PanicPosName = "PANIC_POS"
