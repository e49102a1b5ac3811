package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// registerTemplate binds a `template<...> decl` as a Template value in the
// globals table under its mangled name, capturing a snapshot of the globals table at definition
// time (spec.md §9: "a template captures the globals environment as it was
// when defined, not as it is when later instantiated").
func (g *Generator) registerTemplate(s *ast.Template) {
	name, ok := templateDeclName(s.Declaration)
	if !ok {
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, spanToken(s.GetPos()), "this declaration cannot be generic")
		return
	}
	names := make([]string, len(s.Generics))
	for i, gen := range s.Generics {
		names[i] = gen.Name.Lexeme
	}
	mangled := g.mangledNamespace(name)
	tmpl := types.Template{
		Name:            mangled,
		Declaration:     s.Declaration,
		GenericNames:    names,
		EnclosingName:   Mangle(g.currentNamespace, ""),
		CapturedGlobals: g.Globals.CloneGlobals(),
	}
	g.Globals.Define(mangled, symbols.Symbol{Type: tmpl, Def: templateDeclToken(s.Declaration)})
}

func templateDeclName(decl ast.Statement) (string, bool) {
	switch d := decl.(type) {
	case *ast.FunctionDef:
		return d.Name.Lexeme, true
	case *ast.StructDef:
		return d.Name.Lexeme, true
	case *ast.EnumDef:
		return d.Name.Lexeme, true
	default:
		return "", false
	}
}

func templateDeclToken(decl ast.Statement) token.Token {
	switch d := decl.(type) {
	case *ast.FunctionDef:
		return d.Name
	case *ast.StructDef:
		return d.Name
	case *ast.EnumDef:
		return d.Name
	default:
		return token.Token{}
	}
}

// instantiateTemplate resolves tmpl's generic parameters against argTypes
// (by positional inference against the declared function's parameter
// types), mangles the instantiation's name, and generates it once, caching
// the result under the mangled name for every later call with the same
// argument types (spec.md §4.3.2 S5, testable property 5's injectivity).
func (g *Generator) instantiateTemplate(tmpl types.Template, explicit []types.Type, argTypes []types.Type, tok token.Token) (string, types.Function, bool) {
	def, ok := tmpl.Declaration.(*ast.FunctionDef)
	if !ok {
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, tok, "only function templates may be called directly")
		return "", types.Function{}, false
	}

	bindings, ok := g.inferGenerics(tmpl, def, argTypes, tok)
	if !ok {
		return "", types.Function{}, false
	}

	args := make([]types.Type, len(tmpl.GenericNames))
	for i, n := range tmpl.GenericNames {
		args[i] = bindings[n]
	}
	mangledName := MangleGeneric(tmpl.Name, args)

	if sig, done := g.instantiatedSig[mangledName]; done {
		return mangledName, sig, true
	}

	capturedGlobals, _ := tmpl.CapturedGlobals.(*symbols.Environment)
	if capturedGlobals == nil {
		capturedGlobals = g.Globals
	}
	instEnv := capturedGlobals.Child()
	for n, t := range bindings {
		instEnv.Define(n, symbols.Symbol{Type: types.TypeOf{Inner: t}})
	}

	g.instantiated[mangledName] = true
	irDef := g.generateFunctionBody(def, instEnv, mangledName)
	sig := irDef.Signature
	if g.instantiatedSig == nil {
		g.instantiatedSig = map[string]types.Function{}
	}
	g.instantiatedSig[mangledName] = sig
	g.Defs = append(g.Defs, irDef.Statement)
	if def.IsInit {
		g.initCalls = append(g.initCalls, zeroArgCall(mangledName, sig.Return))
	}
	return mangledName, sig, true
}

// inferGenerics matches each of def's parameter type expressions that names
// a bare generic parameter against the corresponding call argument's type,
// the way spec.md §4.3.1's `infer_type_from_similar` does; a generic with a
// default is seeded before inference runs, and any name still unresolved
// afterward is a template-inference failure. Explicit generic arguments are
// not taken into account.
func (g *Generator) inferGenerics(tmpl types.Template, def *ast.FunctionDef, argTypes []types.Type, tok token.Token) (map[string]types.Type, bool) {
	bindings := map[string]types.Type{}
	for i, n := range tmpl.GenericNames {
		if i < len(def.Generics) && def.Generics[i].Default != nil {
			bindings[n] = g.evalType(def.Generics[i].Default, g.Globals, true)
		}
	}

	for i, p := range def.Params {
		if i >= len(argTypes) {
			break
		}
		if v, ok := p.Type.(*ast.Variable); ok {
			if contains(tmpl.GenericNames, v.Name.Lexeme) {
				if _, already := bindings[v.Name.Lexeme]; !already {
					bindings[v.Name.Lexeme] = argTypes[i]
				}
			}
		}
	}

	for gi, n := range tmpl.GenericNames {
		bound, hasBound := bindings[n]
		if !hasBound {
			g.Diags.Errorf(diagnostics.CodeTemplateInference, tok, "cannot infer generic parameter %q", n)
			return nil, false
		}
		if gi < len(def.Generics) && def.Generics[gi].Bounds != nil {
			boundType := g.evalType(def.Generics[gi].Bounds, g.Globals, true)
			if !types.SatisfiesBound(bound, boundType) {
				g.Diags.Errorf(diagnostics.CodeTemplateInference, tok, "generic parameter %q=%s does not satisfy its bound", n, bound)
				return nil, false
			}
		}
	}
	return bindings, true
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
