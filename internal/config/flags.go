package config

// CompileMode mirrors the original's CompileMode enum: debug emits
// null-pointer/zero-divisor checks and populates PANIC_POS; release keeps
// bounds and try-operator logic but drops those checks; release-unsafe
// additionally skips some bounds checks (spec.md §6).
type CompileMode int

const (
	Debug CompileMode = iota
	Release
	ReleaseUnsafe
)

func (m CompileMode) String() string {
	switch m {
	case Release:
		return "release"
	case ReleaseUnsafe:
		return "release-unsafe"
	default:
		return "debug"
	}
}

// EmitsChecks reports whether the IR generator should wrap pointer
// dereferences and divide/modulo operations with debug-mode zero/null
// checks.
func (m CompileMode) EmitsChecks() bool { return m == Debug }

// SkipsBoundsChecks reports whether array/slice subscript bounds checks may
// be omitted.
func (m CompileMode) SkipsBoundsChecks() bool { return m == ReleaseUnsafe }

// Flags is the Go analogue of the original's CompilerFlags struct (lib.rs),
// threaded through every pass.
type Flags struct {
	NoBuiltins bool        `yaml:"noBuiltins"`
	NoPanic    bool        `yaml:"noPanic"`
	Primitives string      `yaml:"primitives"`
	Mode       CompileMode `yaml:"-"`
	ModeName   string      `yaml:"mode"`
}

// Default returns the flag set a bare `skyec main.skye` runs with:
// builtins and panic support both enabled, debug mode, primitives pulled
// from the default core library path.
func Default() Flags {
	return Flags{
		Primitives: "core/primitives",
		Mode:       Debug,
		ModeName:   "debug",
	}
}

// Resolve fills Mode from ModeName after a Flags value has been decoded
// from YAML (which only knows about the string field). Unrecognised mode
// names fall back to Debug.
func (f *Flags) Resolve() {
	switch f.ModeName {
	case "release":
		f.Mode = Release
	case "release-unsafe":
		f.Mode = ReleaseUnsafe
	default:
		f.Mode = Debug
	}
}
