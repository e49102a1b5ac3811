package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/types"
)

// SelfInfo is attached to a Value when evaluating a bound method reference
// (spec.md §3.4 SkyeValue = "(ir-value, is-const, optional self-info for
// method calls)"), so Call can synthesize the receiver argument.
type SelfInfo struct {
	Receiver ir.Value
	Method   *ast.FunctionDef
}

// Value is the generator's synthesised attribute for one evaluated
// expression: the typed IR it lowers to, whether it denotes a const
// binding, and (for a bound method reference) the receiver it was resolved
// against.
type Value struct {
	IR      ir.Value
	IsConst bool
	Self    *SelfInfo
}

func unknownValue(name string) Value {
	return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.Unknown{Name: name}}}
}

// makeTemporaryVar implements spec.md §4.3.1: returns the variable name
// directly if value is already a bare variable reference, or else emits
// `var __SKYE_TMP_N = value;` into the current scope and returns the fresh
// name. Used before any operation that might otherwise evaluate value more
// than once.
func (g *Generator) makeTemporaryVar(value ir.Value) string {
	if v, ok := value.Data.(ir.Variable); ok {
		return v.Name
	}
	name := g.nextTemp()
	g.emit(ir.Statement{Data: &ir.VarDecl{Name: name, Type: value.Type, Initializer: &value}})
	return name
}

func tempVarValue(name string, t types.Type) ir.Value {
	return ir.Value{Data: ir.Variable{Name: name}, Type: t}
}
