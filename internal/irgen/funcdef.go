package irgen

import (
	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/trampoline"
	"github.com/skye-lang/skyec/internal/types"
)

// funcGenResult is a generated function's IR statement paired with its
// SkyeType signature, so both a top-level pass and template instantiation
// can reuse one code path (generateFunctionBody) without re-deriving the
// signature from the raw Statement afterward.
type funcGenResult struct {
	Statement ir.Statement
	Signature types.Function
}

// generateFunction handles a plain (non-generic) top-level or impl-attached
// function definition. ownerType is non-nil when s is inside an `impl`
// block, so the method is registered for operator/method resolution (spec.md
// §3.3, §4.3.3).
func (g *Generator) generateFunction(stack *trampoline.Stack, s *ast.FunctionDef, ownerType types.Type) *ir.Statement {
	name := g.mangledNamespace(s.Name.Lexeme)
	if s.Name.Lexeme == "main" {
		name = config.MainFunctionName
	}
	if ownerType != nil {
		name = typeKey(ownerType) + "_DOT_" + s.Name.Lexeme
		g.registerMethod(typeKey(ownerType), s.Name.Lexeme, s)
	}

	env := g.Globals.Child()
	if ownerType != nil {
		env.Define("self", symbols.Symbol{Type: types.Pointer{Inner: ownerType, IsReference: true}})
	}

	result := g.generateFunctionBody(s, env, name)
	if s.Name.Lexeme == "main" && ownerType == nil {
		g.checkMainSignature(result.Signature, s.Name)
	}
	if s.IsInit {
		g.initCalls = append(g.initCalls, zeroArgCall(name, result.Signature.Return))
	}
	return &result.Statement
}

// checkMainSignature enforces the small fixed set of entry-point shapes
// (spec.md §4.3.3): return void, i32, !i32 or !void, with either no
// parameters, the C-style (i32, **char) pair, or a single slice argument.
func (g *Generator) checkMainSignature(sig types.Function, tok token.Token) {
	okReturn := false
	switch ret := sig.Return.(type) {
	case types.Void:
		okReturn = true
	case types.IntType:
		okReturn = ret.Signed && ret.Width == types.W32
	case types.Enum:
		if _, hasOk := ret.Variants["Ok"]; hasOk && ret.BaseName == "Result" {
			if _, isVoid := ret.Variants["Ok"].(types.Void); isVoid {
				switch errT := ret.Variants["Error"].(type) {
				case types.Void:
					okReturn = true
				case types.IntType:
					okReturn = errT.Signed && errT.Width == types.W32
				}
			}
		}
	}
	okParams := false
	switch len(sig.Params) {
	case 0:
		okParams = true
	case 1:
		_, okParams = sig.Params[0].(types.Array)
		if !okParams {
			if st, isStruct := sig.Params[0].(types.Struct); isStruct {
				okParams = st.BaseName == "Slice"
			}
		}
	case 2:
		if first, isInt := sig.Params[0].(types.IntType); isInt && first.Signed && first.Width == types.W32 {
			if outer, isPtr := sig.Params[1].(types.Pointer); isPtr {
				_, okParams = outer.Inner.(types.Pointer)
			}
		}
	}
	if !okReturn || !okParams {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "main does not match any supported entry-point signature")
	}
}

// generateFunctionBody lowers a function declaration's parameter list,
// return type, and (if present) body into an ir.FunctionDef, binding
// parameters into env before walking the body (spec.md §3.4, §4.3.3).
func (g *Generator) generateFunctionBody(s *ast.FunctionDef, env *symbols.Environment, mangledName string) funcGenResult {
	params := make([]ir.FunctionParam, len(s.Params))
	paramTypes := make([]types.Type, len(s.Params))
	for i, p := range s.Params {
		var t types.Type
		if p.Type != nil {
			t = g.evalType(p.Type, env, false)
		} else if p.Name != nil {
			// a bare `self` receiver: its type was bound into env by the
			// enclosing impl before the body walk started
			if sym, ok := env.Get(p.Name.Lexeme); ok {
				t, _ = sym.Type.(types.Type)
			}
		}
		if t == nil {
			t = types.Unknown{Name: "?"}
		}
		paramName := ""
		if p.Name != nil {
			paramName = p.Name.Lexeme
			env.Define(paramName, symbols.Symbol{Type: t, IsConst: p.IsConst})
		}
		params[i] = ir.FunctionParam{Name: paramName, Type: t}
		paramTypes[i] = t
	}

	var ret types.Type = types.Void{}
	if s.ReturnType != nil {
		ret = g.evalType(s.ReturnType, env, false)
	}
	sig := types.Function{Params: paramTypes, Return: ret, HasBody: s.Body != nil}

	prevFn, prevScope, prevDefer, prevDestruct, prevLoops := g.enclosingFn, g.scope, g.deferStack, g.destructStack, g.loops
	g.enclosingFn = &sig
	g.deferStack = nil
	g.destructStack = nil
	g.loops = nil

	var body []ir.Statement
	if s.Body != nil {
		body = g.withScope(func() {
			g.generateBlockBody(s.Body, env)
		})
	}

	g.enclosingFn, g.scope, g.deferStack, g.destructStack, g.loops = prevFn, prevScope, prevDefer, prevDestruct, prevLoops

	// a prior forward declaration must agree at Typewise equality
	if prev, ok := g.Globals.Get(mangledName); ok {
		if prevSig, isFn := prev.Type.(types.Function); isFn && !types.Equal(prevSig, sig, types.Typewise) {
			g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Name, "declaration of %q does not match its forward declaration", s.Name.Lexeme)
		}
	}
	g.Globals.Define(mangledName, symbols.Symbol{Type: sig, Def: s.Name})

	return funcGenResult{
		Statement: ir.Statement{Data: &ir.FunctionDef{Name: mangledName, Params: params, Body: body, Signature: sig}, Pos: s.GetPos()},
		Signature: sig,
	}
}

func zeroArgCall(mangledName string, ret types.Type) ir.Value {
	callee := ir.Value{Data: ir.Variable{Name: mangledName}, Type: types.Function{Return: ret, HasBody: true}}
	return ir.Value{Data: ir.Call{Callee: &callee}, Type: ret}
}

// generateStruct lowers a struct/union definition; a forward declaration
// yields a StructDef/UnionDef whose Type carries nil Fields (spec.md §7
// "incomplete type").
func (g *Generator) generateStruct(s *ast.StructDef) *ir.Statement {
	fullName := g.mangledNamespace(s.Name.Lexeme)
	var fields map[string]types.Type
	if s.Kind == ast.DefFull {
		fields = map[string]types.Type{}
		for _, f := range s.Fields {
			ft := g.evalType(f.Expr, g.Globals, false)
			if containsByValue(ft, fullName) {
				g.Diags.Errorf(diagnostics.CodeRecursion, f.Name, "field %q contains %q by value; use a pointer or reference", f.Name.Lexeme, s.Name.Lexeme)
			}
			fields[f.Name.Lexeme] = ft
		}
	}

	var t types.Type
	if s.IsUnion {
		t = types.Union{FullName: fullName, Fields: fields}
	} else {
		t = types.Struct{FullName: fullName, Fields: fields, BaseName: s.Name.Lexeme}
	}
	g.Globals.Define(fullName, symbols.Symbol{Type: types.TypeOf{Inner: t}, Def: s.Name})

	if s.Kind == ast.DefBinding {
		return nil
	}
	if s.IsUnion {
		return &ir.Statement{Data: &ir.UnionDef{Type: t}, Pos: s.GetPos()}
	}
	return &ir.Statement{Data: &ir.StructDef{Type: t}, Pos: s.GetPos()}
}

// generateBitfield lowers a bitfield definition. Field widths are validated
// against a whole-byte total using github.com/funvibe/funbit's bit-level
// descriptors, the way a wire-format parser validates a packed layout
// (spec.md EXPANSION domain-stack wiring).
func (g *Generator) generateBitfield(s *ast.BitfieldDef) *ir.Statement {
	fullName := g.mangledNamespace(s.Name.Lexeme)
	fields := map[string]types.Type{}
	layout := funbit.NewBuilder()
	for _, f := range s.Fields {
		funbit.AddInteger(layout, 0, funbit.WithSize(uint(f.Bits)))
		fields[f.Name.Lexeme] = types.IntType{Signed: false, Width: widthForBits(f.Bits)}
	}
	packed, err := layout.Build()
	if err != nil {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Name, "bitfield %q has an invalid layout: %s", s.Name.Lexeme, err.Error())
	} else if packed.Length()%8 != 0 {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Name, "bitfield %q is %d bits, not a whole number of bytes", s.Name.Lexeme, packed.Length())
	}

	t := types.Struct{FullName: fullName, Fields: fields, BaseName: s.Name.Lexeme}
	g.Globals.Define(fullName, symbols.Symbol{Type: types.TypeOf{Inner: t}, Def: s.Name})
	if s.Kind == ast.DefBinding {
		return nil
	}
	return &ir.Statement{Data: &ir.StructDef{Type: t}, Pos: s.GetPos()}
}

func widthForBits(bits uint8) types.IntWidth {
	switch {
	case bits <= 8:
		return types.W8
	case bits <= 16:
		return types.W16
	case bits <= 32:
		return types.W32
	default:
		return types.W64
	}
}

// generateEnum lowers a simple enum (all variants Void) to one EnumDef, or a
// tagged union (any variant carries a payload) to a TaggedUnion plus one
// constructor FunctionDef per variant (spec.md §3.6).
func (g *Generator) generateEnum(s *ast.EnumDef) []ir.Statement {
	fullName := g.mangledNamespace(s.Name.Lexeme)
	variants := map[string]types.Type{}
	for _, v := range s.Variants {
		vt := g.evalType(v.Type, g.Globals, false)
		if containsByValue(vt, fullName) {
			g.Diags.Errorf(diagnostics.CodeRecursion, v.Name, "variant %q contains %q by value; use a pointer or reference", v.Name.Lexeme, s.Name.Lexeme)
		}
		variants[v.Name.Lexeme] = vt
	}
	enumType := types.Enum{FullName: fullName, Variants: variants, BaseName: s.Name.Lexeme}
	g.Globals.Define(fullName, symbols.Symbol{Type: types.TypeOf{Inner: enumType}, Def: s.Name})

	if s.Kind == ast.DefBinding {
		return nil
	}

	if !enumType.IsTaggedUnion() {
		vs := make([]ir.EnumVariant, len(s.Variants))
		for i, v := range s.Variants {
			vs[i] = ir.EnumVariant{Name: VariantKindName(fullName, v.Name.Lexeme)}
		}
		return []ir.Statement{{Data: &ir.EnumDef{Name: fullName, Variants: vs, Type: enumType}, Pos: s.GetPos()}}
	}

	out := []ir.Statement{{Data: &ir.TaggedUnion{
		Name:     fullName,
		KindName: fullName + "_DOT_Kind",
		KindType: types.IntType{Signed: false, Width: types.W32},
		Fields:   variants,
	}, Pos: s.GetPos()}}

	for _, v := range s.Variants {
		ctorName := VariantConstructorName(fullName, v.Name.Lexeme)
		payload := variants[v.Name.Lexeme]
		_, isVoid := payload.(types.Void)
		var params []ir.FunctionParam
		if !isVoid {
			params = []ir.FunctionParam{{Name: "value", Type: payload}}
		}
		sig := types.Function{Params: paramTypesOf(params), Return: enumType, HasBody: true}
		g.Globals.Define(ctorName, symbols.Symbol{Type: sig, Def: v.Name})

		// the constructor body: create a temp, write tmp.kind, write
		// tmp.Variant when present, return tmp (spec.md §4.3.3)
		tmpName := g.nextTemp()
		tmp := tempVarValue(tmpName, enumType)
		kindType := types.IntType{Signed: false, Width: types.W32}
		kindField := ir.Value{Data: ir.Get{From: &tmp, Name: "kind"}, Type: kindType}
		kindValue := ir.Value{Data: ir.Variable{Name: VariantKindName(fullName, v.Name.Lexeme)}, Type: kindType}
		body := []ir.Statement{
			{Data: &ir.VarDecl{Name: tmpName, Type: enumType}},
			{Data: &ir.Expression{Value: ir.Value{
				Data: ir.Assign{Target: &kindField, Op: ir.AssignPlain, Value: &kindValue},
				Type: kindType,
			}}},
		}
		if !isVoid {
			payloadField := ir.Value{Data: ir.Get{From: &tmp, Name: v.Name.Lexeme}, Type: payload}
			payloadValue := ir.Value{Data: ir.Variable{Name: "value"}, Type: payload}
			body = append(body, ir.Statement{Data: &ir.Expression{Value: ir.Value{
				Data: ir.Assign{Target: &payloadField, Op: ir.AssignPlain, Value: &payloadValue},
				Type: payload,
			}}})
		}
		result := tmp
		body = append(body, ir.Statement{Data: &ir.Return{Value: &result}})

		out = append(out, ir.Statement{Data: &ir.FunctionDef{Name: ctorName, Params: params, Body: body, Signature: sig}, Pos: token.FromToken(v.Name)})
	}
	return out
}

// containsByValue reports whether t stores a type named fullName by value —
// directly, or through an array/nested-aggregate member (spec.md §7
// "Recursion"). Pointers and references break the cycle.
func containsByValue(t types.Type, fullName string) bool {
	switch v := t.(type) {
	case types.Struct:
		if v.FullName == fullName {
			return true
		}
		for _, f := range v.Fields {
			if containsByValue(f, fullName) {
				return true
			}
		}
	case types.Union:
		if v.FullName == fullName {
			return true
		}
		for _, f := range v.Fields {
			if containsByValue(f, fullName) {
				return true
			}
		}
	case types.Enum:
		if v.FullName == fullName {
			return true
		}
		for _, variant := range v.Variants {
			if containsByValue(variant, fullName) {
				return true
			}
		}
	case types.Array:
		return containsByValue(v.Inner, fullName)
	}
	return false
}

func paramTypesOf(params []ir.FunctionParam) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// generateInterface lowers a bound interface to a tagged-union enum over its
// bound types, plus one dispatch function per method signature — a switch on
// `self.kind` routing to the concrete type's method (spec.md §4.3.2
// "Interfaces"). An unbound interface is a pure compile-time contract and
// emits nothing.
func (g *Generator) generateInterface(s *ast.Interface) []ir.Statement {
	if s.BoundTypes == nil {
		return nil
	}
	fullName := g.mangledNamespace(s.Name.Lexeme)
	variants := map[string]types.Type{}
	bound := make([]types.Type, 0, len(s.BoundTypes))
	for _, bt := range s.BoundTypes {
		t := g.evalType(bt, g.Globals, false)
		variants[typeKey(t)] = t
		bound = append(bound, t)
	}
	enumType := types.Enum{FullName: fullName, Variants: variants, BaseName: s.Name.Lexeme}
	g.Globals.Define(fullName, symbols.Symbol{Type: types.TypeOf{Inner: enumType}, Def: s.Name})

	out := []ir.Statement{{Data: &ir.TaggedUnion{
		Name:     fullName,
		KindName: fullName + "_DOT_Kind",
		KindType: types.IntType{Signed: false, Width: types.W32},
		Fields:   variants,
	}, Pos: s.GetPos()}}

	for _, sig := range s.Signatures {
		out = append(out, g.generateInterfaceDispatch(fullName, enumType, bound, sig))
	}
	return out
}

// generateInterfaceDispatch builds one interface method's dispatch function:
// `Iface_DOT_method(self: &Iface, args...)` switching on self.kind, each
// branch forwarding to `Concrete_DOT_method(&self.Variant, args...)`.
func (g *Generator) generateInterfaceDispatch(fullName string, enumType types.Enum, bound []types.Type, sig ast.InterfaceSig) ir.Statement {
	selfType := types.Pointer{Inner: enumType, IsReference: true}
	params := []ir.FunctionParam{{Name: "self", Type: selfType}}
	paramTypes := []types.Type{selfType}
	argVals := []ir.Value{}
	for _, p := range sig.Params {
		t := g.evalType(p.Type, g.Globals, false)
		name := ""
		if p.Name != nil {
			name = p.Name.Lexeme
		}
		params = append(params, ir.FunctionParam{Name: name, Type: t})
		paramTypes = append(paramTypes, t)
		argVals = append(argVals, ir.Value{Data: ir.Variable{Name: name}, Type: t})
	}
	var ret types.Type = types.Void{}
	if sig.ReturnType != nil {
		ret = g.evalType(sig.ReturnType, g.Globals, false)
	}

	self := ir.Value{Data: ir.Variable{Name: "self"}, Type: selfType}
	kindType := types.IntType{Signed: false, Width: types.W32}
	kind := ir.Value{Data: ir.DereferenceGet{From: &self, Name: "kind"}, Type: kindType}
	_, retIsVoid := ret.(types.Void)

	branches := make([]ir.SwitchBranch, 0, len(bound))
	for _, concrete := range bound {
		variant := typeKey(concrete)
		payload := ir.Value{Data: ir.DereferenceGet{From: &self, Name: variant}, Type: concrete}
		recv := ir.Value{Data: ir.Reference{Value: &payload}, Type: types.Pointer{Inner: concrete, IsReference: true}}
		call := ir.Value{
			Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: variant + "_DOT_" + sig.Name.Lexeme}}, Args: append([]ir.Value{recv}, argVals...)},
			Type: ret,
		}
		var body []ir.Statement
		if retIsVoid {
			body = []ir.Statement{
				{Data: &ir.Expression{Value: call}},
				{Data: &ir.Break{}},
			}
		} else {
			body = []ir.Statement{{Data: &ir.Return{Value: &call}}}
		}
		branches = append(branches, ir.SwitchBranch{
			Cases: []ir.Value{{Data: ir.Variable{Name: VariantKindName(fullName, variant)}, Type: kindType}},
			Code:  ir.Statement{Data: &ir.Scope{Statements: &body}},
		})
	}

	dispatchName := fullName + "_DOT_" + sig.Name.Lexeme
	fnSig := types.Function{Params: paramTypes, Return: ret, HasBody: true}
	g.Globals.Define(dispatchName, symbols.Symbol{Type: fnSig, Def: sig.Name})
	body := []ir.Statement{{Data: &ir.Switch{Value: kind, Branches: branches}}}
	return ir.Statement{Data: &ir.FunctionDef{Name: dispatchName, Params: params, Body: body, Signature: fnSig}, Pos: token.FromToken(sig.Name)}
}

// generateImpl attaches s.Body's methods/constants to the type s.Type names,
// generating each function with the type bound as the receiver (spec.md
// §4.3.3).
func (g *Generator) generateImpl(stack *trampoline.Stack, s *ast.Impl) {
	ownerType := g.evalType(s.Type, g.Globals, false)
	for _, stmt := range s.Body {
		switch m := stmt.(type) {
		case *ast.FunctionDef:
			if def := g.generateFunction(stack, m, ownerType); def != nil {
				g.Defs = append(g.Defs, *def)
			}
		case *ast.Template:
			if fn, ok := m.Declaration.(*ast.FunctionDef); ok {
				g.registerMethod(typeKey(ownerType), fn.Name.Lexeme, fn)
			}
			g.registerTemplate(m)
		case *ast.VarDecl:
			if def := g.generateGlobalVar(m); def != nil {
				g.Defs = append(g.Defs, *def)
			}
		}
	}
}

// generateUse binds s.Path's resolved symbol under its (possibly aliased)
// local name, so later lookups resolve the long namespace path through a
// short name (spec.md §3.2).
func (g *Generator) generateUse(s *ast.Use) {
	path := staticPath(s.Path)
	if len(path) == 0 {
		return
	}
	mangled := Mangle(path[:len(path)-1], path[len(path)-1])
	sym, ok := g.Globals.Get(mangled)
	if !ok {
		g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, spanToken(s.GetPos()), "undefined symbol %q", mangled)
		return
	}
	localName := path[len(path)-1]
	if s.Alias != nil {
		localName = s.Alias.Lexeme
	}
	g.Globals.Define(localName, sym)
}

// generateGlobalVar lowers a top-level variable declaration to an
// ir.VarDecl. Globals reject `const` and initialisers (spec.md §4.3.3);
// initialisation belongs in an `#init` function.
func (g *Generator) generateGlobalVar(s *ast.VarDecl) *ir.Statement {
	if s.IsConst {
		g.Diags.Errorf(diagnostics.CodeConstViolation, s.Name, "global variables cannot be const")
	}
	if s.Init != nil {
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, s.Name, "global variables cannot carry an initialiser; assign from an #init function instead")
	}
	if s.Type == nil {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Name, "global variable %q needs an explicit type", s.Name.Lexeme)
		return nil
	}
	t := g.evalType(s.Type, g.Globals, false)
	name := g.mangledNamespace(s.Name.Lexeme)
	g.Globals.Define(name, symbols.Symbol{Type: t, Def: s.Name})
	return &ir.Statement{Data: &ir.VarDecl{Name: name, Type: t}, Pos: s.GetPos()}
}
