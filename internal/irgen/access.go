package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// evalGet lowers `object.name`: struct field access, enum discriminant
// check, or pointer auto-dereference followed by field access (spec.md
// §4.3.2).
func (g *Generator) evalGet(e *ast.Get, env *symbols.Environment, allowUnknown bool) Value {
	obj := g.mustEvaluate(e.Object, env, allowUnknown)

	if ptr, ok := obj.IR.Type.(types.Pointer); ok {
		if g.Flags.Mode.EmitsChecks() {
			g.emitNullCheck(obj.IR)
		}
		fieldType := g.fieldType(ptr.Inner, e.Name.Lexeme, e.Name)
		return Value{IR: ir.Value{Data: ir.DereferenceGet{From: &obj.IR, Name: e.Name.Lexeme}, Type: fieldType}, IsConst: ptr.IsConst}
	}

	if def := g.lookupMethod(obj.IR.Type, e.Name.Lexeme); def != nil {
		fnName := typeKey(obj.IR.Type) + "_DOT_" + e.Name.Lexeme
		return Value{
			IR:   ir.Value{Data: ir.Variable{Name: fnName}, Type: g.methodSignature(def)},
			Self: &SelfInfo{Receiver: obj.IR, Method: def},
		}
	}

	fieldType := g.fieldType(obj.IR.Type, e.Name.Lexeme, e.Name)
	return Value{IR: ir.Value{Data: ir.Get{From: &obj.IR, Name: e.Name.Lexeme}, Type: fieldType}, IsConst: obj.IsConst}
}

// fieldType looks up name's declared type among t's fields/variants,
// reporting the appropriate diagnostic (incomplete type for a
// forward-declared aggregate, undefined symbol otherwise) when it isn't
// found.
func (g *Generator) fieldType(t types.Type, name string, tok token.Token) types.Type {
	switch v := t.(type) {
	case types.Struct:
		if v.Fields == nil {
			g.Diags.Errorf(diagnostics.CodeIncompleteType, tok, "type %s is incomplete", v.FullName)
			return types.Unknown{Name: "?"}
		}
		if ft, ok := v.Fields[name]; ok {
			return ft
		}
	case types.Union:
		if v.Fields == nil {
			g.Diags.Errorf(diagnostics.CodeIncompleteType, tok, "type %s is incomplete", v.FullName)
			return types.Unknown{Name: "?"}
		}
		if ft, ok := v.Fields[name]; ok {
			return ft
		}
	case types.Enum:
		if ft, ok := v.Variants[name]; ok {
			return types.TypeOf{Inner: ft}
		}
	}
	g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, tok, "no field or method %q", name)
	return types.Unknown{Name: "?"}
}

// evalStaticGet lowers `object::name`: namespace-qualified lookup, an enum
// variant constructor reference, or (when GetsMacro is set) a macro value
// reference the call evaluator routes specially (spec.md §4.3.2).
func (g *Generator) evalStaticGet(e *ast.StaticGet, env *symbols.Environment, allowUnknown bool) Value {
	path := staticPath(e.Object)
	full := append(path, e.Name.Lexeme)
	mangled := Mangle(full[:len(full)-1], full[len(full)-1])

	sym, ok := env.Get(mangled)
	if !ok {
		if allowUnknown {
			return unknownValue(mangled)
		}
		g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, e.Name, "undefined symbol %q", mangled)
		return unknownValue(mangled)
	}
	t, _ := sym.Type.(types.Type)
	if t == nil {
		t = types.Unknown{Name: mangled}
	}
	return Value{IR: ir.Value{Data: ir.Variable{Name: mangled}, Type: t}, IsConst: sym.IsConst}
}

// staticPath flattens a chain of StaticGet/Variable nodes on the left of a
// `::` into its dotted segment list, used to build the mangled lookup name.
func staticPath(expr ast.Expression) []string {
	switch e := expr.(type) {
	case *ast.Variable:
		return []string{e.Name.Lexeme}
	case *ast.StaticGet:
		return append(staticPath(e.Object), e.Name.Lexeme)
	default:
		return nil
	}
}

// evalSubscript lowers `subscripted[args...]`: natively for pointers/arrays
// with a single index, or via `__subscript__`/`__constsubscript__` for any
// other type that defines them (spec.md §3.3).
func (g *Generator) evalSubscript(e *ast.Subscript, env *symbols.Environment, allowUnknown bool) Value {
	base := g.mustEvaluate(e.Subscripted, env, allowUnknown)
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.mustEvaluate(a, env, allowUnknown)
	}

	switch bt := base.IR.Type.(type) {
	case types.Array:
		if len(args) == 1 {
			return Value{IR: ir.Value{Data: ir.Subscript{Subscripted: &base.IR, Index: &args[0].IR}, Type: bt.Inner}}
		}
	case types.Pointer:
		if len(args) == 1 {
			if g.Flags.Mode.EmitsChecks() {
				g.emitNullCheck(base.IR)
			}
			return Value{IR: ir.Value{Data: ir.Subscript{Subscripted: &base.IR, Index: &args[0].IR}, Type: bt.Inner}}
		}
	}

	methodName := types.MethodSubscript
	if base.IsConst {
		methodName = types.MethodConstSubscript
	}
	if g.hasMethod(base.IR.Type, methodName) {
		return g.callMethod(base, methodName, args, e.Paren)
	}

	g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Paren, "type %s does not support subscripting", base.IR.Type)
	return unknownValue("?")
}
