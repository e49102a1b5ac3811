package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// primitiveType maps a bare identifier to one of the closed-set primitives
// spec.md §3.3 names, or reports ok=false if name isn't a primitive.
func primitiveType(name string) (types.Type, bool) {
	switch name {
	case "i8":
		return types.IntType{Signed: true, Width: types.W8}, true
	case "i16":
		return types.IntType{Signed: true, Width: types.W16}, true
	case "i32":
		return types.IntType{Signed: true, Width: types.W32}, true
	case "i64":
		return types.IntType{Signed: true, Width: types.W64}, true
	case "u8":
		return types.IntType{Signed: false, Width: types.W8}, true
	case "u16":
		return types.IntType{Signed: false, Width: types.W16}, true
	case "u32":
		return types.IntType{Signed: false, Width: types.W32}, true
	case "u64":
		return types.IntType{Signed: false, Width: types.W64}, true
	case "usz":
		return types.IntType{Signed: false, Width: types.Wsz}, true
	case "f32":
		return types.FloatType{Width: types.FW32}, true
	case "f64":
		return types.FloatType{Width: types.FW64}, true
	case "char":
		return types.Char{}, true
	case "void":
		return types.Void{}, true
	default:
		return nil, false
	}
}

// resultType builds `core::Result[ok, err]` as a tagged-union Enum, the way
// spec.md §4.3.2 ("Type operators") defines `T1!T2`.
func resultType(ok, errT types.Type) types.Enum {
	return types.Enum{
		FullName: MangleGeneric("core_DOT_Result", []types.Type{ok, errT}),
		BaseName: "Result",
		Variants: map[string]types.Type{"Ok": ok, "Error": errT},
	}
}

// optionType builds `core::Option[inner]` as a tagged-union Enum (`?T`).
func optionType(inner types.Type) types.Enum {
	return types.Enum{
		FullName: MangleGeneric("core_DOT_Option", []types.Type{inner}),
		BaseName: "Option",
		Variants: map[string]types.Type{"Some": inner, "None": types.Void{}},
	}
}

// evalType evaluates expr as a type expression (spec.md §4.3.2 "Type
// operators", §3.3). allowUnknown mirrors evaluate's allow_unknown flag: a
// free type name inside a template body resolves to Unknown instead of
// erroring (spec.md §4.3.1).
func (g *Generator) evalType(expr ast.Expression, env *symbols.Environment, allowUnknown bool) types.Type {
	switch e := expr.(type) {
	case *ast.VoidLiteral:
		return types.Void{}

	case *ast.Variable:
		if t, ok := primitiveType(e.Name.Lexeme); ok {
			return t
		}
		sym, ok := env.Get(e.Name.Lexeme)
		if !ok {
			if allowUnknown {
				return types.Unknown{Name: e.Name.Lexeme}
			}
			g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, e.Name, "undefined type %q", e.Name.Lexeme)
			return types.Unknown{Name: e.Name.Lexeme}
		}
		if tw, ok := sym.Type.(types.TypeOf); ok {
			return tw.Inner
		}
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, e.Name, "%q does not name a type", e.Name.Lexeme)
		return types.Unknown{Name: e.Name.Lexeme}

	case *ast.Grouping:
		return g.evalType(e.Expr, env, allowUnknown)

	case *ast.ArrayType:
		inner := g.evalType(e.Item, env, allowUnknown)
		size := 0
		if e.Size != nil {
			if lit, ok := e.Size.(*ast.SignedIntLiteral); ok {
				size = int(lit.Value)
			} else if lit, ok := e.Size.(*ast.UnsignedIntLiteral); ok {
				size = int(lit.Value)
			}
		}
		return types.Array{Inner: inner, Size: size}

	case *ast.FnPtr:
		ret := g.evalType(e.ReturnType, env, allowUnknown)
		params := make([]types.Type, len(e.Params))
		for i, p := range e.Params {
			params[i] = g.evalType(p.Type, env, allowUnknown)
		}
		return types.Function{Params: params, Return: ret, HasBody: false}

	case *ast.Unary:
		switch e.Op.Type {
		case token.Amp:
			return types.Pointer{Inner: g.evalType(e.Expr, env, allowUnknown), IsReference: true}
		case token.Star:
			return types.Pointer{Inner: g.evalType(e.Expr, env, allowUnknown), IsReference: false}
		case token.Bang:
			// `!T` => core::Result[void, T]
			return resultType(types.Void{}, g.evalType(e.Expr, env, allowUnknown))
		case token.Question:
			// `?T` => core::Option[T]
			return optionType(g.evalType(e.Expr, env, allowUnknown))
		default:
			return g.evalType(e.Expr, env, allowUnknown)
		}

	case *ast.Binary:
		switch e.Op.Type {
		case token.Pipe:
			return types.Group{First: g.evalType(e.Left, env, allowUnknown), Second: g.evalType(e.Right, env, allowUnknown)}
		case token.Bang:
			// `T1!T2` => core::Result[T1, T2]
			return resultType(g.evalType(e.Left, env, allowUnknown), g.evalType(e.Right, env, allowUnknown))
		default:
			g.Diags.Errorf(diagnostics.CodeCannotInstantiate, spanToken(e.GetPos()), "not a valid type expression")
			return types.Unknown{Name: "?"}
		}

	case *ast.StaticGet:
		// Namespace::Type or Enum::Variant-as-type are resolved through the
		// same globals table under the mangled name.
		return g.evalType(&ast.Variable{Name: e.Name}, env, allowUnknown)
	case *ast.Get:
		return g.evalType(&ast.Variable{Name: e.Name}, env, allowUnknown)

	default:
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, spanToken(expr.GetPos()), "not a valid type expression")
		return types.Unknown{Name: "?"}
	}
}

// instantiable reports whether t may be the type of an actual value (spec.md
// §7 "Cannot instantiate"): Type, Group, Namespace, Template, and Macro are
// type-expression-only categories. void is not rejected here;
// evalTypeOfMacro checks for it separately.
func instantiable(t types.Type) bool {
	switch t.(type) {
	case types.TypeOf, types.Group, types.Namespace, types.Template, types.Macro:
		return false
	default:
		return true
	}
}
