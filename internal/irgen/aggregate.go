package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/types"
)

// evalTernary lowers `cond ? then : else` through a temporary, the way
// evalShortCircuit lowers && / || — both branches only run the one actually
// taken (spec.md §4.3.2).
func (g *Generator) evalTernary(e *ast.Ternary, env *symbols.Environment, allowUnknown bool) Value {
	cond := g.mustEvaluate(e.Condition, env, allowUnknown)

	var thenIR ir.Value
	thenBody := g.withScope(func() {
		thenIR = g.mustEvaluate(e.Then, env, allowUnknown).IR
	})
	resultType := thenIR.Type
	name := g.nextTemp()
	g.emit(ir.Statement{Data: &ir.VarDecl{Name: name, Type: resultType}})
	resultVar := tempVarValue(name, resultType)
	thenAssign := ir.Value{Data: ir.Assign{Target: &resultVar, Op: ir.AssignPlain, Value: &thenIR}, Type: resultType}
	thenBody = append(thenBody, ir.Statement{Data: &ir.Expression{Value: thenAssign}})

	elseBody := g.withScope(func() {
		v := g.mustEvaluate(e.Else, env, allowUnknown)
		assign := ir.Value{Data: ir.Assign{Target: &resultVar, Op: ir.AssignPlain, Value: &v.IR}, Type: resultType}
		g.emit(ir.Statement{Data: &ir.Expression{Value: assign}})
	})

	g.emit(ir.Statement{Data: &ir.If{
		Condition:  cond.IR,
		ThenBranch: &ir.Statement{Data: &ir.Scope{Statements: &thenBody}},
		ElseBranch: &ir.Statement{Data: &ir.Scope{Statements: &elseBody}},
	}})

	return Value{IR: tempVarValue(name, resultType)}
}

// evalCompoundLiteral lowers `Type{field: value, ...}` (spec.md §3.2).
func (g *Generator) evalCompoundLiteral(e *ast.CompoundLiteral, env *symbols.Environment, allowUnknown bool) Value {
	t := g.evalType(e.Type, env, allowUnknown)
	fields := map[string]ir.Value{}
	structT, isStruct := t.(types.Struct)
	for _, f := range e.Fields {
		v := g.mustEvaluate(f.Expr, env, allowUnknown)
		if isStruct {
			if declared, ok := structT.Fields[f.Name.Lexeme]; ok && !types.Equal(declared, v.IR.Type, types.Typewise) {
				g.Diags.Errorf(diagnostics.CodeTypeMismatch, f.Name, "field %q expects %s, got %s", f.Name.Lexeme, declared, v.IR.Type)
			}
		}
		fields[f.Name.Lexeme] = v.IR
	}
	return Value{IR: ir.Value{Data: ir.CompoundLiteral{Items: fields}, Type: t}}
}

// evalSlice lowers `{item, item, ...}` to a fixed-size array value whose
// element type is the first item's (spec.md §3.2); an empty slice literal
// types as an Unknown-element array pending context.
func (g *Generator) evalSlice(e *ast.Slice, env *symbols.Environment, allowUnknown bool) Value {
	items := make([]ir.Value, len(e.Items))
	var elem types.Type = types.Unknown{Name: "?"}
	for i, item := range e.Items {
		v := g.mustEvaluate(item, env, allowUnknown)
		items[i] = v.IR
		if i == 0 {
			elem = v.IR.Type
		}
	}
	return Value{IR: ir.Value{Data: ir.Slice{Items: items}, Type: types.Array{Inner: elem, Size: len(items)}}}
}

func (g *Generator) evalArrayLiteral(e *ast.ArrayLiteral, env *symbols.Environment, allowUnknown bool) Value {
	items := make([]ir.Value, len(e.Items))
	var elem types.Type = types.Unknown{Name: "?"}
	for i, item := range e.Items {
		v := g.mustEvaluate(item, env, allowUnknown)
		items[i] = v.IR
		if i == 0 {
			elem = v.IR.Type
		}
	}
	return Value{IR: ir.Value{Data: ir.Array{Items: items}, Type: types.Array{Inner: elem, Size: len(items)}}}
}
