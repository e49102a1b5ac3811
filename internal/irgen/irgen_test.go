package irgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/irgen"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

func id(name string) token.Token {
	return token.Token{Type: token.Identifier, Lexeme: name, Line: 1}
}

func op(ty token.Type) token.Token { return token.Token{Type: ty, Line: 1} }

func v(name string) *ast.Variable { return &ast.Variable{Name: id(name)} }

func sint(value int64) *ast.SignedIntLiteral {
	return &ast.SignedIntLiteral{Value: value, Tok: op(token.IntLiteral), Bits: ast.B32}
}

func generate(t *testing.T, statements ...ast.Statement) ([]ir.Statement, *diagnostics.Bag) {
	t.Helper()
	diags := &diagnostics.Bag{}
	g := irgen.New(diags, config.Default())
	defs := g.Generate(statements)
	return defs, diags
}

func fnDef(name string, params []ast.FunctionParam, ret ast.Expression, body ...ast.Statement) *ast.FunctionDef {
	return &ast.FunctionDef{Name: id(name), Params: params, ReturnType: ret, Body: body}
}

func param(name string, typeExpr ast.Expression) ast.FunctionParam {
	n := id(name)
	return ast.FunctionParam{Name: &n, Type: typeExpr}
}

func findFunction(defs []ir.Statement, name string) *ir.FunctionDef {
	for _, def := range defs {
		if fn, ok := def.Data.(*ir.FunctionDef); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

// Scenario S1: fn f(x: i32) i32 { return x + 1; } produces one function IR
// with an integer add and a typed return, and no temporaries.
func TestGenerateSimpleFunction(t *testing.T) {
	fn := fnDef("f",
		[]ast.FunctionParam{param("x", v("i32"))},
		v("i32"),
		&ast.Return{Keyword: id("return"), Value: &ast.Binary{Left: v("x"), Op: op(token.Plus), Right: sint(1)}},
	)
	defs, diags := generate(t, fn)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	out := findFunction(defs, "f")
	require.NotNil(t, out)
	require.Len(t, out.Body, 1)

	ret, ok := out.Body[0].Data.(*ir.Return)
	require.True(t, ok)
	require.NotNil(t, ret.Value)

	bin, ok := ret.Value.Data.(ir.Binary)
	require.True(t, ok)
	require.Equal(t, ir.OpAdd, bin.Op)
	require.Equal(t, types.IntType{Signed: true, Width: types.W32}, ret.Value.Type)
}

// Scenario S3: main is emitted as _SKYE_MAIN and may return !i32.
func TestMainIsRenamedAndChecked(t *testing.T) {
	main := fnDef("main", nil, &ast.Unary{Op: op(token.Bang), Expr: v("i32"), IsPrefix: true})
	main.Body = []ast.Statement{}
	defs, diags := generate(t, main)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)
	require.NotNil(t, findFunction(defs, config.MainFunctionName))
	require.Nil(t, findFunction(defs, "main"))
}

func TestMainRejectsArbitrarySignature(t *testing.T) {
	main := fnDef("main", nil, v("f64"))
	main.Body = []ast.Statement{}
	_, diags := generate(t, main)
	require.True(t, diags.Failed())
}

// Scenario S4: a method call through member access synthesises &receiver as
// the first argument.
func TestMethodCallSynthesisesReceiverReference(t *testing.T) {
	structDef := &ast.StructDef{
		Name: id("Foo"), Kind: ast.DefFull,
		Fields: []ast.StructField{{Name: id("x"), Expr: v("i32")}},
	}
	self := id("self")
	bar := &ast.FunctionDef{
		Name:       id("bar"),
		Params:     []ast.FunctionParam{{Name: &self}},
		ReturnType: v("i32"),
		Body: []ast.Statement{
			&ast.Return{Keyword: id("return"), Value: &ast.Get{Object: v("self"), Name: id("x")}},
		},
	}
	impl := &ast.Impl{Keyword: id("impl"), Type: v("Foo"), Body: []ast.Statement{bar}}
	main := fnDef("main", nil, nil,
		&ast.VarDecl{Name: id("f"), Init: &ast.CompoundLiteral{
			Type: v("Foo"), ClosingBrace: op(token.Identifier),
			Fields: []ast.StructField{{Name: id("x"), Expr: sint(1)}},
		}},
		&ast.ExpressionStmt{Expr: &ast.Call{Callee: &ast.Get{Object: v("f"), Name: id("bar")}, Paren: op(token.Identifier)}},
	)

	defs, diags := generate(t, structDef, impl, main)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	method := findFunction(defs, "Foo_DOT_bar")
	require.NotNil(t, method, "impl method must be emitted under its mangled name")

	out := findFunction(defs, config.MainFunctionName)
	require.NotNil(t, out)

	var call *ir.Call
	for _, stmt := range out.Body {
		decl, ok := stmt.Data.(*ir.VarDecl)
		if !ok || decl.Initializer == nil {
			continue
		}
		if c, ok := decl.Initializer.Data.(ir.Call); ok {
			call = &c
		}
	}
	require.NotNil(t, call, "the method call must land in a temporary")
	require.NotEmpty(t, call.Args)
	_, isRef := call.Args[0].Data.(ir.Reference)
	require.True(t, isRef, "first argument must be the synthesised &f")
}

// Scenario S5: template instantiation is cached per argument-type list.
func TestTemplateInstantiationIsCached(t *testing.T) {
	idFn := fnDef("id",
		[]ast.FunctionParam{param("x", v("T"))},
		v("T"),
		&ast.Return{Keyword: id("return"), Value: v("x")},
	)
	tmpl := &ast.Template{Keyword: id("template"), Generics: []ast.Generic{{Name: id("T")}}, Declaration: idFn}

	callID := func(arg ast.Expression) ast.Statement {
		return &ast.ExpressionStmt{Expr: &ast.Call{Callee: v("id"), Paren: op(token.Identifier), Args: []ast.Expression{arg}}}
	}
	main := fnDef("main", nil, nil,
		callID(sint(5)),
		callID(sint(7)),
		callID(&ast.FloatLiteral{Value: 2.5, Tok: op(token.FloatLiteral), Bits: ast.F64}),
	)

	defs, diags := generate(t, tmpl, main)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	intInst, floatInst := 0, 0
	for _, def := range defs {
		if fn, ok := def.Data.(*ir.FunctionDef); ok {
			switch fn.Name {
			case "id_GENOF_i32_GENEND_":
				intInst++
			case "id_GENOF_f64_GENEND_":
				floatInst++
			}
		}
	}
	require.Equal(t, 1, intInst, "two i32 calls must share one instantiation")
	require.Equal(t, 1, floatInst)
}

// Scenario S6: @format(buf, "x=%, y=%", 1, 2.5) lowers to buffer pushes in
// format-string order, with integer and float arguments routed to the
// dedicated core::fmt helpers.
func TestFormatMacroOrdering(t *testing.T) {
	format := &ast.Call{
		Callee:      v("format"),
		Paren:       op(token.Identifier),
		IsMacroCall: true,
		Args: []ast.Expression{
			v("buf"),
			&ast.StringLiteral{Value: "x=%, y=%", Tok: op(token.StringLiteral), Kind: ast.RawString},
			sint(1),
			&ast.FloatLiteral{Value: 2.5, Tok: op(token.FloatLiteral), Bits: ast.F64},
		},
	}
	main := fnDef("main",
		[]ast.FunctionParam{param("buf", &ast.Unary{Op: op(token.Star), Expr: v("u8"), IsPrefix: true})},
		nil,
		&ast.ExpressionStmt{Expr: format},
	)
	// main's entry signatures don't include a buffer parameter; use a helper
	main.Name = id("render")

	defs, diags := generate(t, main)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	out := findFunction(defs, "render")
	require.NotNil(t, out)

	var callees []string
	for _, stmt := range out.Body {
		expr, ok := stmt.Data.(*ir.Expression)
		if !ok {
			continue
		}
		call, ok := expr.Value.Data.(ir.Call)
		if !ok {
			continue
		}
		callees = append(callees, call.Callee.Data.(ir.Variable).Name)
	}
	require.Equal(t, []string{
		"core_DOT_strings_DOT_pushString",
		"core_DOT_fmt_DOT_intToBuf",
		"core_DOT_strings_DOT_pushString",
		"core_DOT_fmt_DOT_floatToBuf",
	}, callees)
}

// Testable property 6: _SKYE_INIT calls each init function exactly once, in
// source order.
func TestInitFunctionAccumulatesCalls(t *testing.T) {
	a := fnDef("a", nil, nil)
	a.Body = []ast.Statement{}
	a.IsInit = true
	b := fnDef("b", nil, nil)
	b.Body = []ast.Statement{}
	b.IsInit = true

	defs, diags := generate(t, a, b)
	require.False(t, diags.Failed())

	initFn, ok := defs[0].Data.(*ir.FunctionDef)
	require.True(t, ok)
	require.Equal(t, config.InitFunctionName, initFn.Name)
	require.Len(t, initFn.Body, 2)

	names := make([]string, 2)
	for i, stmt := range initFn.Body {
		call := stmt.Data.(*ir.Expression).Value.Data.(ir.Call)
		names[i] = call.Callee.Data.(ir.Variable).Name
	}
	require.Equal(t, []string{"a", "b"}, names)
}

// Testable property 7: destructors run in reverse declaration order at the
// block's natural end, one per live local, each flagged with +I-destructors.
func TestDestructorsEmitInReverseOrder(t *testing.T) {
	structDef := &ast.StructDef{Name: id("D"), Kind: ast.DefFull}
	self := id("self")
	dtor := &ast.FunctionDef{
		Name:   id("__destruct__"),
		Params: []ast.FunctionParam{{Name: &self}},
		Body:   []ast.Statement{},
	}
	impl := &ast.Impl{Keyword: id("impl"), Type: v("D"), Body: []ast.Statement{dtor}}
	lit := func() ast.Expression {
		return &ast.CompoundLiteral{Type: v("D"), ClosingBrace: op(token.Identifier)}
	}
	user := fnDef("user", nil, nil,
		&ast.VarDecl{Name: id("a"), Init: lit()},
		&ast.VarDecl{Name: id("b"), Init: lit()},
	)

	defs, diags := generate(t, structDef, impl, user)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	out := findFunction(defs, "user")
	require.NotNil(t, out)

	var destructed []string
	for _, stmt := range out.Body {
		expr, ok := stmt.Data.(*ir.Expression)
		if !ok {
			continue
		}
		call, ok := expr.Value.Data.(ir.Call)
		if !ok || call.Callee.Data.(ir.Variable).Name != "D_DOT___destruct__" {
			continue
		}
		recv := call.Args[0]
		deref := recv.Data.(ir.Reference)
		destructed = append(destructed, deref.Value.Data.(ir.Variable).Name)
	}
	require.Equal(t, []string{"b", "a"}, destructed)

	infos := 0
	for _, d := range diags.All {
		if d.Group == diagnostics.GroupDestructors {
			infos++
		}
	}
	require.Equal(t, 2, infos)
}

// A break inside a while lowers to a goto against a lazily-created label
// placed right after the loop; the label only exists because the break used
// it.
func TestBreakLowersToGotoWithTrailingLabel(t *testing.T) {
	loop := &ast.While{
		Keyword:   id("while"),
		Condition: sint(1),
		Body:      &ast.Block{OpenBrace: op(token.Identifier), Body: []ast.Statement{&ast.Break{Keyword: id("break")}}},
	}
	user := fnDef("user", nil, nil, loop)

	defs, diags := generate(t, user)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	out := findFunction(defs, "user")
	require.NotNil(t, out)
	require.GreaterOrEqual(t, len(out.Body), 2)

	_, isLoop := out.Body[0].Data.(*ir.Loop)
	require.True(t, isLoop)
	label, isLabel := out.Body[1].Data.(*ir.Label)
	require.True(t, isLabel, "break must emit its label right after the loop")

	var sawGoto bool
	var walk func(stmt ir.Statement)
	walk = func(stmt ir.Statement) {
		switch d := stmt.Data.(type) {
		case *ir.Loop:
			walk(*d.Body)
		case *ir.Scope:
			for _, inner := range *d.Statements {
				walk(inner)
			}
		case *ir.Goto:
			require.Equal(t, label.Name, d.Label)
			sawGoto = true
		}
	}
	walk(out.Body[0])
	require.True(t, sawGoto)
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	user := fnDef("user", nil, nil, &ast.Break{Keyword: id("break")})
	user.Body = []ast.Statement{&ast.Break{Keyword: id("break")}}
	_, diags := generate(t, user)
	require.True(t, diags.Failed())
}

// A loop without break/continue must not emit any labels (spec.md §4.3.3:
// labels exist only when used, avoiding unused-label warnings in C).
func TestLoopWithoutBreakEmitsNoLabel(t *testing.T) {
	loop := &ast.While{
		Keyword:   id("while"),
		Condition: sint(1),
		Body:      &ast.Block{OpenBrace: op(token.Identifier)},
	}
	user := fnDef("user", nil, nil, loop)
	defs, diags := generate(t, user)
	require.False(t, diags.Failed())

	out := findFunction(defs, "user")
	for _, stmt := range out.Body {
		_, isLabel := stmt.Data.(*ir.Label)
		require.False(t, isLabel)
	}
}

// Testable property 8: on the failing variant, the try operator runs every
// pending deferred statement before the synthesised early return.
func TestTryOperatorRunsDefersBeforeReturn(t *testing.T) {
	optI32 := &ast.Unary{Op: op(token.Question), Expr: v("i32"), IsPrefix: true}
	user := fnDef("user",
		[]ast.FunctionParam{param("o", optI32), param("x", v("i32"))},
		optI32,
		&ast.Defer{Keyword: id("defer"), Body: &ast.ExpressionStmt{
			Expr: &ast.Assign{Target: v("x"), Op: op(token.Equal), Value: sint(1)},
		}},
		&ast.VarDecl{Name: id("got"), Init: &ast.Unary{Op: op(token.Question), Expr: v("o"), IsPrefix: false}},
	)

	defs, diags := generate(t, user)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	out := findFunction(defs, "user")
	require.NotNil(t, out)

	var propagation *ir.If
	for _, stmt := range out.Body {
		if ifStmt, ok := stmt.Data.(*ir.If); ok {
			propagation = ifStmt
			break
		}
	}
	require.NotNil(t, propagation, "the ? operator must emit a kind-check if")

	scope := propagation.ThenBranch.Data.(*ir.Scope)
	stmts := *scope.Statements
	require.GreaterOrEqual(t, len(stmts), 2)

	_, isAssign := stmts[0].Data.(*ir.Expression)
	require.True(t, isAssign, "the deferred assignment must run first")
	_, isReturn := stmts[len(stmts)-1].Data.(*ir.Return)
	require.True(t, isReturn, "the synthesised return must come last")
}

// An undefined name reports one diagnostic and downstream evaluation keeps
// going with an Unknown placeholder (spec.md §7 propagation).
func TestUndefinedSymbolReportsOnce(t *testing.T) {
	user := fnDef("user", nil, nil,
		&ast.ExpressionStmt{Expr: &ast.Binary{Left: v("nope"), Op: op(token.Plus), Right: sint(1)}},
	)
	_, diags := generate(t, user)
	require.Equal(t, 1, diags.ErrorCount())
}

func TestConstAssignmentIsError(t *testing.T) {
	user := fnDef("user", nil, nil,
		&ast.VarDecl{Name: id("c"), Init: sint(1), IsConst: true},
		&ast.ExpressionStmt{Expr: &ast.Assign{Target: v("c"), Op: op(token.Equal), Value: sint(2)}},
	)
	_, diags := generate(t, user)
	require.True(t, diags.Failed())
}

// Globals reject const and initialisers (spec.md §4.3.3).
func TestGlobalVarRestrictions(t *testing.T) {
	_, diags := generate(t, &ast.VarDecl{Name: id("g"), Type: v("i32"), Init: sint(1)})
	require.True(t, diags.Failed())

	_, diags = generate(t, &ast.VarDecl{Name: id("g"), Type: v("i32"), IsConst: true})
	require.True(t, diags.Failed())

	defs, ok := generate(t, &ast.VarDecl{Name: id("g"), Type: v("i32")})
	require.False(t, ok.Failed())
	require.NotNil(t, defs)
}

// A tagged-union enum emits the union definition plus one constructor per
// variant under the §3.6 mangling.
func TestTaggedEnumEmitsConstructors(t *testing.T) {
	enum := &ast.EnumDef{
		Name: id("Shape"), Kind: ast.DefFull,
		Variants: []ast.EnumVariant{
			{Name: id("Circle"), Type: v("f64")},
			{Name: id("Empty"), Type: &ast.VoidLiteral{Tok: op(token.Identifier)}},
		},
	}
	defs, diags := generate(t, enum)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	var tagged *ir.TaggedUnion
	for _, def := range defs {
		if tu, ok := def.Data.(*ir.TaggedUnion); ok {
			tagged = tu
		}
	}
	require.NotNil(t, tagged)
	require.Equal(t, "Shape_DOT_Kind", tagged.KindName)

	// each constructor's body creates a temp, writes tmp.kind, writes
	// tmp.Variant when present, and returns tmp
	circle := findFunction(defs, "Shape_DOT_Circle")
	require.NotNil(t, circle)
	require.Len(t, circle.Body, 4)

	decl, ok := circle.Body[0].Data.(*ir.VarDecl)
	require.True(t, ok)

	kindWrite, ok := circle.Body[1].Data.(*ir.Expression)
	require.True(t, ok)
	kindAssign, ok := kindWrite.Value.Data.(ir.Assign)
	require.True(t, ok)
	require.Equal(t, "kind", kindAssign.Target.Data.(ir.Get).Name)
	require.Equal(t, "Shape_DOT_Kind_DOT_Circle", kindAssign.Value.Data.(ir.Variable).Name)

	payloadAssign := circle.Body[2].Data.(*ir.Expression).Value.Data.(ir.Assign)
	require.Equal(t, "Circle", payloadAssign.Target.Data.(ir.Get).Name)
	require.Equal(t, "value", payloadAssign.Value.Data.(ir.Variable).Name)

	ret, ok := circle.Body[3].Data.(*ir.Return)
	require.True(t, ok)
	require.Equal(t, decl.Name, ret.Value.Data.(ir.Variable).Name)

	empty := findFunction(defs, "Shape_DOT_Empty")
	require.NotNil(t, empty)
	require.Empty(t, empty.Params, "a void variant's constructor takes no arguments")
	require.Len(t, empty.Body, 3, "no payload write for a void variant")
	_, ok = empty.Body[2].Data.(*ir.Return)
	require.True(t, ok)
}

// A bitfield whose widths don't pack into whole bytes is rejected.
func TestBitfieldPackingValidation(t *testing.T) {
	bad := &ast.BitfieldDef{
		Name: id("Flags"), Kind: ast.DefFull,
		Fields: []ast.BitfieldField{{Name: id("a"), Bits: 3}},
	}
	_, diags := generate(t, bad)
	require.True(t, diags.Failed())

	good := &ast.BitfieldDef{
		Name: id("Flags"), Kind: ast.DefFull,
		Fields: []ast.BitfieldField{{Name: id("a"), Bits: 3}, {Name: id("b"), Bits: 5}},
	}
	_, diags = generate(t, good)
	require.False(t, diags.Failed())
}

// Namespaced definitions mangle through _DOT_ (spec.md §3.6).
func TestNamespaceMangling(t *testing.T) {
	inner := fnDef("helper", nil, nil)
	inner.Body = []ast.Statement{}
	ns := &ast.Namespace{Keyword: id("namespace"), Name: id("util"), Body: []ast.Statement{inner}}

	defs, diags := generate(t, ns)
	require.False(t, diags.Failed())
	require.NotNil(t, findFunction(defs, "util_DOT_helper"))
}

// Statements after a return are flagged as unreachable.
func TestUnreachableSiblingWarns(t *testing.T) {
	user := fnDef("user", nil, nil,
		&ast.Return{Keyword: id("return")},
		&ast.ExpressionStmt{Expr: sint(1)},
	)
	_, diags := generate(t, user)
	require.False(t, diags.Failed())

	warned := false
	for _, d := range diags.All {
		if d.Severity == diagnostics.Warning {
			warned = true
		}
	}
	require.True(t, warned)
}

// A defer containing a return is invalid control flow (spec.md §7).
func TestDeferRejectsControlFlow(t *testing.T) {
	user := fnDef("user", nil, nil,
		&ast.Defer{Keyword: id("defer"), Body: &ast.Return{Keyword: id("return")}},
	)
	_, diags := generate(t, user)
	require.True(t, diags.Failed())
}

// A bound interface lowers to a tagged union plus one dispatch function per
// signature, switching on self.kind (spec.md §4.3.2).
func TestInterfaceLowersToDispatch(t *testing.T) {
	circle := &ast.StructDef{Name: id("Circle"), Kind: ast.DefFull}
	square := &ast.StructDef{Name: id("Square"), Kind: ast.DefFull}
	iface := &ast.Interface{
		Name: id("Shape"),
		Signatures: []ast.InterfaceSig{
			{Name: id("area"), ReturnType: v("f64")},
		},
		BoundTypes: []ast.Expression{v("Circle"), v("Square")},
	}

	defs, diags := generate(t, circle, square, iface)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	dispatch := findFunction(defs, "Shape_DOT_area")
	require.NotNil(t, dispatch)
	require.Equal(t, "self", dispatch.Params[0].Name)
	require.Len(t, dispatch.Body, 1)

	sw, ok := dispatch.Body[0].Data.(*ir.Switch)
	require.True(t, ok, "dispatch body must be a switch on self.kind")
	require.Len(t, sw.Branches, 2)

	kind, ok := sw.Value.Data.(ir.DereferenceGet)
	require.True(t, ok)
	require.Equal(t, "kind", kind.Name)
}

// A foreign (non-.skye) import lowers to an Include definition.
func TestForeignImportLowersToInclude(t *testing.T) {
	imp := &ast.Import{Keyword: id("import"), Path: "stdio.h", Type: ast.ImportAngle}
	defs, diags := generate(t, imp)
	require.False(t, diags.Failed())

	var include *ir.Include
	for _, def := range defs {
		if inc, ok := def.Data.(*ir.Include); ok {
			include = inc
		}
	}
	require.NotNil(t, include)
	require.Equal(t, "stdio.h", include.Path)
	require.True(t, include.IsAngle)
}

// A switch over a type picks the first Typewise-matching case at compile
// time and inlines its block; no IR switch is emitted (spec.md §4.3.3).
func TestSwitchOnTypeInlinesMatchingCase(t *testing.T) {
	typeOf := &ast.Call{
		Callee:      v("typeOf"),
		Paren:       op(token.Identifier),
		IsMacroCall: true,
		Args:        []ast.Expression{v("x")},
	}
	sw := &ast.Switch{
		Keyword: id("switch"),
		Value:   typeOf,
		Cases: []ast.SwitchCase{
			{Cases: []ast.Expression{v("f64")}, Code: []ast.Statement{
				&ast.ExpressionStmt{Expr: &ast.Assign{Target: v("out"), Op: op(token.Equal), Value: sint(1)}},
			}},
			{Cases: []ast.Expression{v("i32")}, Code: []ast.Statement{
				&ast.ExpressionStmt{Expr: &ast.Assign{Target: v("out"), Op: op(token.Equal), Value: sint(2)}},
			}},
		},
	}
	user := fnDef("user",
		[]ast.FunctionParam{param("x", v("i32")), param("out", v("i32"))},
		nil,
		sw,
	)

	defs, diags := generate(t, user)
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)

	out := findFunction(defs, "user")
	require.NotNil(t, out)
	for _, stmt := range out.Body {
		_, isSwitch := stmt.Data.(*ir.Switch)
		require.False(t, isSwitch, "a type switch must resolve at compile time")
	}

	var assigned []int64
	var walk func(stmts []ir.Statement)
	walk = func(stmts []ir.Statement) {
		for _, stmt := range stmts {
			switch d := stmt.Data.(type) {
			case *ir.Scope:
				walk(*d.Statements)
			case *ir.Expression:
				if assign, ok := d.Value.Data.(ir.Assign); ok {
					lit := assign.Value.Data.(ir.Literal).Value.(*ast.SignedIntLiteral)
					assigned = append(assigned, lit.Value)
				}
			}
		}
	}
	walk(out.Body)
	require.Equal(t, []int64{2}, assigned, "only the i32 case may be inlined")
}

// A struct directly containing itself by value is the §7 recursion error; a
// pointer breaks the cycle.
func TestSelfRecursiveStructRejected(t *testing.T) {
	forward := &ast.StructDef{Name: id("Node"), Kind: ast.DefForward}
	full := &ast.StructDef{
		Name: id("Node"), Kind: ast.DefFull,
		Fields: []ast.StructField{{Name: id("next"), Expr: v("Node")}},
	}
	_, diags := generate(t, forward, full)
	require.True(t, diags.Failed())

	byPointer := &ast.StructDef{
		Name: id("Node"), Kind: ast.DefFull,
		Fields: []ast.StructField{{Name: id("next"), Expr: &ast.Unary{Op: op(token.Star), Expr: v("Node"), IsPrefix: true}}},
	}
	_, diags = generate(t, forward, byPointer)
	require.False(t, diags.Failed())
}

// A definition that disagrees with its forward declaration is rejected at
// Typewise equality (spec.md §4.3.3).
func TestForwardDeclarationMismatch(t *testing.T) {
	forward := fnDef("f", nil, v("i32"))
	full := fnDef("f", []ast.FunctionParam{param("x", v("i32"))}, v("i32"),
		&ast.Return{Keyword: id("return"), Value: v("x")},
	)
	_, diags := generate(t, forward, full)
	require.True(t, diags.Failed())

	matchingForward := fnDef("f", []ast.FunctionParam{param("x", v("i32"))}, v("i32"))
	_, diags = generate(t, matchingForward, full.Clone().(*ast.FunctionDef))
	require.False(t, diags.Failed(), "diagnostics: %v", diags.All)
}
