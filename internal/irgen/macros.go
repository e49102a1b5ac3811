// Package irgen, built-in macro lowering (spec.md §4.3.4). Each of these is
// dispatched by evalBuiltinMacro in call.go; none is an ordinary function
// call, since each needs the raw, unevaluated argument list (a type
// expression, a compile-time string literal) rather than a list of already
// lowered values.
package irgen

import (
	"strings"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

const (
	methodAsString = "asString"
	methodToString = "toString"
	methodExpect   = "expect"
)

func (g *Generator) checkMacroArity(name string, tok token.Token, got, want int) bool {
	if got == want {
		return true
	}
	g.Diags.Errorf(diagnostics.CodeMacroArity, tok, "@%s expects %d argument(s), got %d", name, want, got)
	return false
}

// evalTypeOfMacro lowers `@typeOf(expr)`: expr is evaluated and its
// semantic type is wrapped as a Type value. Non-instantiable categories —
// type, group, namespace, template, macro, void — are rejected (spec.md
// §4.3.4).
func (g *Generator) evalTypeOfMacro(tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	if !g.checkMacroArity("typeOf", tok, len(e.Args), 1) {
		return unknownValue("?")
	}
	v := g.evaluate(e.Args[0], env, allowUnknown)
	t := v.IR.Type
	if _, isUnknown := t.(types.Unknown); isUnknown && allowUnknown {
		return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.TypeOf{Inner: t}}}
	}
	if !instantiable(t) {
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, tok, "@typeOf operand of category %s has no value type", t)
		return unknownValue("?")
	}
	if _, isVoid := t.(types.Void); isVoid {
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, tok, "@typeOf operand of category void has no value type")
		return unknownValue("?")
	}
	return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.TypeOf{Inner: t}}}
}

// evalCastMacro lowers `@cast(Type, value)`. Between a bound interface's
// tagged union and one of its variant's concrete types this is a checked
// conversion (spec.md §4.3.2 "Interfaces"):
//   - interface -> concrete: `value.kind == Kind::Variant ? Some(value.Variant) : None`
//   - concrete -> interface: calls the interface's variant constructor
//
// Between any other pair of instantiable types it is a plain IR-level Cast
// (numeric conversions, pointer reinterpretation).
func (g *Generator) evalCastMacro(tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	if !g.checkMacroArity("cast", tok, len(e.Args), 2) {
		return unknownValue("?")
	}
	target := g.evalType(e.Args[0], env, allowUnknown)
	value := g.mustEvaluate(e.Args[1], env, allowUnknown)

	if value.IR.ContainsUnknown() || types.ContainsUnknown(target) {
		return unknownValue("?")
	}

	if enumType, ok := value.IR.Type.(types.Enum); ok {
		if variant, ok := findVariant(enumType, target); ok {
			return g.castDownToVariant(enumType, variant, target, value, tok)
		}
	}
	if enumType, ok := target.(types.Enum); ok {
		if variant, ok := findVariant(enumType, value.IR.Type); ok {
			ctor := VariantConstructorName(enumType.FullName, variant)
			return g.callRuntime(ctor, enumType, value.IR)
		}
	}

	if !instantiable(target) {
		g.Diags.Errorf(diagnostics.CodeCannotInstantiate, tok, "cannot cast to %s", target)
		return unknownValue("?")
	}

	return Value{IR: ir.Value{Data: ir.Cast{To: target, From: &value.IR}, Type: target}}
}

// findVariant finds the name under which candidate is registered as one of
// enumType's variants, by exact (Strict) type equality.
func findVariant(enumType types.Enum, candidate types.Type) (string, bool) {
	for name, payload := range enumType.Variants {
		if types.Equal(payload, candidate, types.Strict) {
			return name, true
		}
	}
	return "", false
}

// castDownToVariant builds the `value.kind == Kind::variant ? Some(value.variant) : None`
// ternary spec.md §4.3.2 describes for narrowing an interface/tagged union
// back down to one of its bound concrete types.
func (g *Generator) castDownToVariant(enumType types.Enum, variant string, target types.Type, value Value, tok token.Token) Value {
	tmpName := g.makeTemporaryVar(value.IR)
	tmp := tempVarValue(tmpName, value.IR.Type)

	kindType := types.IntType{Signed: false, Width: types.W32}
	kindField := ir.Value{Data: ir.Get{From: &tmp, Name: "kind"}, Type: kindType}
	wantKind := ir.Value{Data: ir.Variable{Name: VariantKindName(enumType.FullName, variant)}, Type: kindType}
	cond := ir.Value{
		Data: ir.Binary{Left: &kindField, Op: ir.OpEqual, Right: &wantKind},
		Type: types.IntType{Signed: false, Width: types.W8},
	}

	optType := optionType(target)
	payload := ir.Value{Data: ir.Get{From: &tmp, Name: variant}, Type: target}
	someCall := ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: VariantConstructorName(optType.FullName, "Some")}}, Args: []ir.Value{payload}},
		Type: optType,
	}
	noneCall := ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: VariantConstructorName(optType.FullName, "None")}}},
		Type: optType,
	}

	return Value{IR: ir.Value{Data: ir.Ternary{Condition: &cond, ThenBranch: &someCall, ElseBranch: &noneCall}, Type: optType}}
}

// evalConstCastMacro lowers `@constCast(value)`: casts away a pointer's
// const qualifier. This reshapes the pointer's SkyeType flags only — the
// underlying IR value is untouched, since a const/non-const pointer share
// one C representation (spec.md "Type operators").
func (g *Generator) evalConstCastMacro(tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	if !g.checkMacroArity("constCast", tok, len(e.Args), 1) {
		return unknownValue("?")
	}
	value := g.mustEvaluate(e.Args[0], env, allowUnknown)
	ptr, ok := value.IR.Type.(types.Pointer)
	if !ok {
		if value.IR.ContainsUnknown() {
			return unknownValue("?")
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "@constCast requires a pointer, got %s", value.IR.Type)
		return unknownValue("?")
	}
	if ptr.IsConst {
		g.Diags.Add(diagnostics.NewWarning(diagnostics.GroupConstnessLoss, tok, "casting away const"))
	}
	return Value{IR: ir.Value{Data: value.IR.Data, Type: types.Pointer{Inner: ptr.Inner, IsConst: false, IsReference: ptr.IsReference}}, IsConst: false}
}

// evalAsPtrMacro lowers `@asPtr(value)`: turns a reference (`&T`/`&const T`)
// into the equivalent raw pointer (`*T`/`*const T`), the flag-only reshape
// spec.md "Type operators" describes for explicit pointer decay.
func (g *Generator) evalAsPtrMacro(tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	if !g.checkMacroArity("asPtr", tok, len(e.Args), 1) {
		return unknownValue("?")
	}
	value := g.mustEvaluate(e.Args[0], env, allowUnknown)
	ptr, ok := value.IR.Type.(types.Pointer)
	if !ok {
		if value.IR.ContainsUnknown() {
			return unknownValue("?")
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "@asPtr requires a reference or pointer, got %s", value.IR.Type)
		return unknownValue("?")
	}
	return Value{IR: ir.Value{Data: value.IR.Data, Type: types.Pointer{Inner: ptr.Inner, IsConst: ptr.IsConst, IsReference: false}}}
}

// formatSegment is one piece of a split format string: either literal text
// or a placeholder to be filled from the next value argument.
type formatSegment struct {
	text        string
	placeholder bool
}

// splitFormatString splits s on unescaped `%` (spec.md §4.3.4: "@format
// splits its format string on every unescaped `%`"); `%%` yields one literal
// `%` and does not introduce a placeholder.
func splitFormatString(s string) []formatSegment {
	var segs []formatSegment
	var lit strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '%' {
			if i+1 < len(runes) && runes[i+1] == '%' {
				lit.WriteRune('%')
				i++
				continue
			}
			segs = append(segs, formatSegment{text: lit.String()})
			lit.Reset()
			segs = append(segs, formatSegment{placeholder: true})
			continue
		}
		lit.WriteRune(runes[i])
	}
	segs = append(segs, formatSegment{text: lit.String()})
	return segs
}

// formatStringLiteral extracts a macro's compile-time format-string
// argument, reporting the appropriate diagnostic if it isn't a plain string
// literal (spec.md §4.3.4: the format string must be known at compile time).
func (g *Generator) formatStringLiteral(name string, arg ast.Expression) (string, bool) {
	lit, ok := arg.(*ast.StringLiteral)
	if !ok || lit.Kind == ast.CharString {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, spanToken(arg.GetPos()), "@%s requires a string literal format argument", name)
		return "", false
	}
	return lit.Value, true
}

// formatSink abstracts the difference between @format (append into a
// buffer through pushString) and @fprint/@fprintln (write to a stream,
// unwrapping the io Result with expect) — the segment walk is identical
// (spec.md §4.3.4).
type formatSink struct {
	target      ir.Value
	intHelper   string
	floatHelper string
	push        func(g *Generator, piece ir.Value)
}

func bufferSink(buf ir.Value) formatSink {
	return formatSink{
		target:      buf,
		intHelper:   "core_DOT_fmt_DOT_intToBuf",
		floatHelper: "core_DOT_fmt_DOT_floatToBuf",
		push: func(g *Generator, piece ir.Value) {
			g.emit(ir.Statement{Data: &ir.Expression{Value: ir.Value{
				Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: "core_DOT_strings_DOT_pushString"}}, Args: []ir.Value{buf, piece}},
				Type: types.Void{},
			}}})
		},
	}
}

func streamSink(stream ir.Value) formatSink {
	return formatSink{
		target:      stream,
		intHelper:   "core_DOT_fmt_DOT___intToFile",
		floatHelper: "core_DOT_fmt_DOT___floatToFile",
		push: func(g *Generator, piece ir.Value) {
			result := ir.Value{
				Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: "core_DOT_io_DOT_write"}}, Args: []ir.Value{stream, piece}},
				Type: resultType(types.Void{}, types.Unknown{Name: "io error"}),
			}
			unwrapped := ir.Value{
				Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: typeKey(result.Type) + "_DOT_" + methodExpect}}, Args: []ir.Value{result}},
				Type: types.Void{},
			}
			g.emit(ir.Statement{Data: &ir.Expression{Value: unwrapped}})
		},
	}
}

// emitFormatValue routes one placeholder argument into sink (spec.md
// §4.3.4): integers and floats go through the sink's dedicated helpers,
// string-shaped values pass verbatim, a char is wrapped as a one-element
// slice, and any other type must supply asString/toString.
func (g *Generator) emitFormatValue(sink formatSink, v Value, tok token.Token) {
	switch t := v.IR.Type.(type) {
	case types.IntType, types.AnyInt:
		g.emit(ir.Statement{Data: &ir.Expression{Value: ir.Value{
			Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: sink.intHelper}}, Args: []ir.Value{sink.target, v.IR}},
			Type: types.Void{},
		}}})
		return
	case types.FloatType, types.AnyFloat:
		g.emit(ir.Statement{Data: &ir.Expression{Value: ir.Value{
			Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: sink.floatHelper}}, Args: []ir.Value{sink.target, v.IR}},
			Type: types.Void{},
		}}})
		return
	case types.Char:
		one := ir.Value{Data: ir.Slice{Items: []ir.Value{v.IR}}, Type: types.Array{Inner: types.Char{}, Size: 1}}
		sink.push(g, one)
		return
	case types.Pointer:
		if _, isByte := t.Inner.(types.IntType); isByte {
			sink.push(g, v.IR)
			return
		}
	case types.Struct:
		if t.BaseName == "Slice" {
			sink.push(g, v.IR)
			return
		}
	}

	if g.hasMethod(v.IR.Type, methodAsString) {
		sink.push(g, g.callMethod(v, methodAsString, nil, tok).IR)
		return
	}
	if g.hasMethod(v.IR.Type, methodToString) {
		sink.push(g, g.callMethod(v, methodToString, nil, tok).IR)
		return
	}
	g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "type %s has no asString/toString method, cannot format", v.IR.Type)
}

// emitFormatSegments walks the split format string, pushing literal pieces
// and routing each placeholder to the matching value argument, in order
// (spec.md §4.3.4, testable scenario S6).
func (g *Generator) emitFormatSegments(name string, sink formatSink, segs []formatSegment, values []ast.Expression, env *symbols.Environment, allowUnknown bool, tok token.Token) {
	strType := types.Pointer{Inner: types.IntType{Signed: false, Width: types.W8}, IsConst: true}
	argIdx := 0
	for _, seg := range segs {
		if seg.placeholder {
			if argIdx >= len(values) {
				g.Diags.Errorf(diagnostics.CodeMacroArity, tok, "@%s string names more placeholders than arguments given", name)
				return
			}
			arg := g.mustEvaluate(values[argIdx], env, allowUnknown)
			argIdx++
			g.emitFormatValue(sink, arg, tok)
			continue
		}
		if seg.text == "" {
			continue
		}
		sink.push(g, ir.Value{Data: ir.Literal{Value: &ast.StringLiteral{Value: seg.text, Kind: ast.RawString}}, Type: strType})
	}
	if argIdx < len(values) {
		g.Diags.Errorf(diagnostics.CodeMacroArity, tok, "@%s given more arguments than the format string has placeholders", name)
	}
}

// evalFormatMacro lowers `@format(buf, fmt, args...)`: appends each literal
// segment and each argument's textual form into buf, in order, through
// pushString and the core::fmt helpers (spec.md §4.3.4, S6).
func (g *Generator) evalFormatMacro(tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	if len(e.Args) < 2 {
		g.Diags.Errorf(diagnostics.CodeMacroArity, tok, "@format requires a buffer and a format string")
		return unknownValue("?")
	}
	buf := g.mustEvaluate(e.Args[0], env, allowUnknown)
	fmtStr, ok := g.formatStringLiteral("format", e.Args[1])
	if !ok {
		return unknownValue("?")
	}
	g.emitFormatSegments("format", bufferSink(buf.IR), splitFormatString(fmtStr), e.Args[2:], env, allowUnknown, tok)
	return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.Void{}}}
}

// evalFprintMacro lowers `@fprint(stream, fmt, args...)` / `@fprintln(...)`:
// the same segment-by-segment lowering as @format, but each piece goes to
// stream through `core::io::write`, whose Result is unwrapped with `expect`
// (spec.md §4.3.4). withNewline appends a trailing `\n` piece for @fprintln.
func (g *Generator) evalFprintMacro(tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool, withNewline bool) Value {
	name := "fprint"
	if withNewline {
		name = "fprintln"
	}
	if len(e.Args) < 2 {
		g.Diags.Errorf(diagnostics.CodeMacroArity, tok, "@%s requires a stream and a format string", name)
		return unknownValue("?")
	}
	stream := g.mustEvaluate(e.Args[0], env, allowUnknown)
	fmtStr, ok := g.formatStringLiteral(name, e.Args[1])
	if !ok {
		return unknownValue("?")
	}
	segs := splitFormatString(fmtStr)
	if withNewline {
		segs = append(segs, formatSegment{text: "\n"})
	}
	g.emitFormatSegments(name, streamSink(stream.IR), segs, e.Args[2:], env, allowUnknown, tok)
	return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.Void{}}}
}
