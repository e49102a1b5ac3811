package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/types"
)

// typeKey is the string a type's methods are registered under: its full
// (mangled) name for nominal types, or its String() form otherwise. It is
// also the prefix of a method's emitted function name (`<typeKey>_DOT_<method>`).
func typeKey(t types.Type) string {
	switch v := t.(type) {
	case types.Struct:
		return v.FullName
	case types.Union:
		return v.FullName
	case types.Enum:
		return v.FullName
	default:
		return t.String()
	}
}

// registerMethod attaches fn as key's implementation of methodName, set
// while processing an `impl` block (spec.md §4.3.3 "Template: stores a
// Template value" / impl attaches declarations to a type).
func (g *Generator) registerMethod(key, methodName string, fn *ast.FunctionDef) {
	if g.methods == nil {
		g.methods = map[string]map[string]*ast.FunctionDef{}
	}
	if g.methods[key] == nil {
		g.methods[key] = map[string]*ast.FunctionDef{}
	}
	g.methods[key][methodName] = fn
}

// lookupMethod finds methodName on t, following the same key t's impl block
// registered under.
func (g *Generator) lookupMethod(t types.Type, methodName string) *ast.FunctionDef {
	if g.methods == nil {
		return nil
	}
	return g.methods[typeKey(t)][methodName]
}

func (g *Generator) hasMethod(t types.Type, methodName string) bool {
	return g.lookupMethod(t, methodName) != nil
}
