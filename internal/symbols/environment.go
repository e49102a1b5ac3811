// Package symbols implements the lexical scope chain and the process-wide
// globals environment the IR generator resolves every name against
// (spec.md §3.5). Grounded on the teacher's symbol_table package idiom — a
// struct holding a parent pointer plus a name->entry map, with lookup
// walking the chain — but without its trait-dictionary/instance-resolution
// machinery, which belongs to a Hindley-Milner type system Skye doesn't
// have.
package symbols

import "github.com/skye-lang/skyec/internal/token"

// Symbol is one lexical binding: a name's type, whether it is const, and
// the token that introduced it (for "defined here" diagnostics).
type Symbol struct {
	Type       any // types.Type; kept as any so this package need not import types
	IsConst    bool
	Def        token.Token
	HasMethods map[string]any // method name -> *ast.FunctionDef; not filled by the IR generator, which keeps method tables in its own per-type map
}

// Environment is one scope: a chain link to the enclosing scope plus this
// scope's own bindings.
type Environment struct {
	parent *Environment
	vars   map[string]Symbol
}

// NewGlobals creates the process-wide globals environment (no parent).
func NewGlobals() *Environment {
	return &Environment{vars: map[string]Symbol{}}
}

// Child opens a new lexical scope nested inside e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: map[string]Symbol{}}
}

// Define binds name in this scope. A redefinition in the same scope
// overwrites the previous binding; shadowing an outer scope's binding is
// allowed and does not touch the outer scope.
func (e *Environment) Define(name string, sym Symbol) {
	e.vars[name] = sym
}

// Get walks the scope chain from e outward, returning the first binding
// found.
func (e *Environment) Get(name string) (Symbol, bool) {
	for env := e; env != nil; env = env.parent {
		if sym, ok := env.vars[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// GetLocal looks up name in this scope only, without walking to the parent.
func (e *Environment) GetLocal(name string) (Symbol, bool) {
	sym, ok := e.vars[name]
	return sym, ok
}

// Assign rewrites an existing binding's Symbol in whichever scope in the
// chain first defines name. Returns false if name is undefined anywhere in
// the chain.
func (e *Environment) Assign(name string, sym Symbol) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = sym
			return true
		}
	}
	return false
}

// CloneGlobals produces an independent copy of e's bindings — used when a
// template is defined, so later additions to the real globals don't leak
// into a template's captured instantiation context (spec.md §9 "Template
// capture of globals"). Only a shallow copy of the binding map is needed:
// Symbol values are themselves immutable once defined (the IR generator
// replaces, never mutates in place, an existing binding).
func (e *Environment) CloneGlobals() *Environment {
	clone := &Environment{vars: make(map[string]Symbol, len(e.vars))}
	for k, v := range e.vars {
		clone.vars[k] = v
	}
	return clone
}

// Names returns every name bound directly in this scope (not the chain),
// for diagnostics that need to list what's locally in scope.
func (e *Environment) Names() []string {
	out := make([]string, 0, len(e.vars))
	for name := range e.vars {
		out = append(out, name)
	}
	return out
}
