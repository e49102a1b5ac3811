// Package irgen, operator lowering (spec.md §4.3.2 "Operator lowering").
package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

func binaryOpFor(op token.Type) (ir.BinaryOp, bool) {
	switch op {
	case token.Plus:
		return ir.OpAdd, true
	case token.Minus:
		return ir.OpSubtract, true
	case token.Star:
		return ir.OpMultiply, true
	case token.Slash:
		return ir.OpDivide, true
	case token.Mod:
		return ir.OpModulo, true
	case token.ShiftLeft:
		return ir.OpShiftLeft, true
	case token.ShiftRight:
		return ir.OpShiftRight, true
	case token.Amp:
		return ir.OpBitwiseAnd, true
	case token.Pipe:
		return ir.OpBitwiseOr, true
	case token.Caret:
		return ir.OpBitwiseXor, true
	case token.Greater:
		return ir.OpGreater, true
	case token.GreaterEqual:
		return ir.OpGreaterEqual, true
	case token.Less:
		return ir.OpLess, true
	case token.LessEqual:
		return ir.OpLessEqual, true
	case token.EqualEqual:
		return ir.OpEqual, true
	case token.BangEqual:
		return ir.OpNotEqual, true
	default:
		return 0, false
	}
}

// followReference auto-dereferences a reference-kind pointer value, the way
// member access and operator lowering both do before touching the
// underlying value (spec.md §4.3.2: "(a) follow reference on the left").
// In debug mode a null check is emitted first.
func (g *Generator) followReference(v Value) Value {
	ptr, ok := v.IR.Type.(types.Pointer)
	if !ok || !ptr.IsReference {
		return v
	}
	if g.Flags.Mode.EmitsChecks() {
		g.emitNullCheck(v.IR)
	}
	return Value{IR: ir.Value{Data: ir.Dereference{Value: &v.IR}, Type: ptr.Inner}, IsConst: ptr.IsConst}
}

func (g *Generator) emitNullCheck(v ir.Value) {
	// Lowered as a runtime assertion in the (out-of-scope) backend; the
	// generator only needs to mark the call site so the backend knows to
	// guard it. Modeled as a bare Expression statement wrapping a call to
	// the core panic path, consistent with spec.md §6's debug-mode checks.
	g.emit(ir.Statement{Data: &ir.Expression{Value: ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: "__skye_assert_nonnull"}}, Args: []ir.Value{v}},
		Type: types.Void{},
	}}})
}

func (g *Generator) emitZeroCheck(v ir.Value) {
	g.emit(ir.Statement{Data: &ir.Expression{Value: ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: "__skye_assert_nonzero"}}, Args: []ir.Value{v}},
		Type: types.Void{},
	}}})
}

// evalUnary lowers a prefix/postfix unary expression.
func (g *Generator) evalUnary(e *ast.Unary, env *symbols.Environment, allowUnknown bool) Value {
	operand := g.followReference(g.mustEvaluate(e.Expr, env, allowUnknown))

	switch e.Op.Type {
	case token.Minus:
		if methodName := types.MethodNeg; isNumeric(operand.IR.Type) {
			return Value{IR: ir.Value{Data: ir.Negative{Value: &operand.IR}, Type: operand.IR.Type}}
		} else if g.hasMethod(operand.IR.Type, methodName) {
			return g.callMethod(operand, methodName, nil, e.Op)
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Op, "type %s does not support unary -", operand.IR.Type)
		return unknownValue("?")

	case token.Tilde:
		if _, ok := operand.IR.Type.(types.IntType); ok {
			return Value{IR: ir.Value{Data: ir.Invert{Value: &operand.IR}, Type: operand.IR.Type}}
		}
		if g.hasMethod(operand.IR.Type, types.MethodInvert) {
			return g.callMethod(operand, types.MethodInvert, nil, e.Op)
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Op, "type %s does not support ~", operand.IR.Type)
		return unknownValue("?")

	case token.Bang:
		if isNumeric(operand.IR.Type) {
			return Value{IR: ir.Value{Data: ir.Negate{Value: &operand.IR}, Type: types.IntType{Width: types.W8}}}
		}
		if g.hasMethod(operand.IR.Type, types.MethodNot) {
			return g.callMethod(operand, types.MethodNot, nil, e.Op)
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Op, "type %s does not support !", operand.IR.Type)
		return unknownValue("?")

	case token.PlusPlus, token.MinusMinus:
		methodName := types.MethodInc
		data := func(v *ir.Value) ir.Data { return ir.Increment{Value: v} }
		if e.Op.Type == token.MinusMinus {
			methodName = types.MethodDec
			data = func(v *ir.Value) ir.Data { return ir.Decrement{Value: v} }
		}
		if isNumeric(operand.IR.Type) || isPointerLike(operand.IR.Type) {
			return Value{IR: ir.Value{Data: data(&operand.IR), Type: operand.IR.Type}}
		}
		if g.hasMethod(operand.IR.Type, methodName) {
			return g.callMethod(operand, methodName, nil, e.Op)
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Op, "type %s does not support %s", operand.IR.Type, e.Op.Type)
		return unknownValue("?")

	case token.Question:
		return g.evalTryOperator(operand, e.Op, env)

	default:
		return operand
	}
}

// evalTryOperator lowers the postfix try operator `expr?` (spec.md §4.3.2):
// operand must be a `core::Result`/`core::Option` tagged union and the
// enclosing function must return the same shape. On the failing variant
// (Error/None) it drains the pending defers and returns early, propagating
// the failure payload; otherwise it yields the success variant's payload.
func (g *Generator) evalTryOperator(operand Value, tok token.Token, env *symbols.Environment) Value {
	enumType, ok := operand.IR.Type.(types.Enum)
	if !ok {
		if operand.IR.ContainsUnknown() {
			return unknownValue("?")
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "? requires a Result or Option operand, got %s", operand.IR.Type)
		return unknownValue("?")
	}

	successVariant, failVariant, ok := tryVariantNames(enumType)
	if !ok {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "? requires a Result or Option operand, got %s", enumType)
		return unknownValue("?")
	}

	if g.enclosingFn == nil || !types.Equal(g.enclosingFn.Return, enumType, types.Typewise) {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, tok, "? can only be used in a function returning %s", enumType)
	}

	tmpName := g.makeTemporaryVar(operand.IR)
	tmp := tempVarValue(tmpName, operand.IR.Type)

	kindType := types.IntType{Signed: false, Width: types.W32}
	kindField := ir.Value{Data: ir.Get{From: &tmp, Name: "kind"}, Type: kindType}
	wantFail := ir.Value{Data: ir.Variable{Name: VariantKindName(enumType.FullName, failVariant)}, Type: kindType}
	cond := ir.Value{Data: ir.Binary{Left: &kindField, Op: ir.OpEqual, Right: &wantFail}, Type: types.IntType{Signed: false, Width: types.W8}}

	thenBody := g.withScope(func() {
		g.emitDefersFrom(0, env)
		g.emitDestructorsFrom(0)
		failPayload := ir.Value{Data: ir.Get{From: &tmp, Name: failVariant}, Type: enumType.Variants[failVariant]}

		var retVal ir.Value
		if g.enclosingFn == nil || types.Equal(g.enclosingFn.Return, enumType, types.Strict) {
			retVal = tmp
		} else if outerEnum, ok := g.enclosingFn.Return.(types.Enum); ok {
			ctor := VariantConstructorName(outerEnum.FullName, failVariant)
			retVal = ir.Value{Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: ctor}}, Args: []ir.Value{failPayload}}, Type: outerEnum}
		} else {
			retVal = tmp
		}
		g.emit(ir.Statement{Data: &ir.Return{Value: &retVal}})
	})
	g.emit(ir.Statement{Data: &ir.If{Condition: cond, ThenBranch: &ir.Statement{Data: &ir.Scope{Statements: &thenBody}}}})

	payloadType := enumType.Variants[successVariant]
	payload := ir.Value{Data: ir.Get{From: &tmp, Name: successVariant}, Type: payloadType}
	return Value{IR: payload}
}

// tryVariantNames reports the (success, failure) variant name pair for a
// Result-shaped or Option-shaped tagged union, or ok=false if t is neither.
func tryVariantNames(t types.Enum) (success, fail string, ok bool) {
	_, hasOk := t.Variants["Ok"]
	_, hasError := t.Variants["Error"]
	if hasOk && hasError {
		return "Ok", "Error", true
	}
	_, hasSome := t.Variants["Some"]
	_, hasNone := t.Variants["None"]
	if hasSome && hasNone {
		return "Some", "None", true
	}
	return "", "", false
}

func isNumeric(t types.Type) bool {
	switch t.(type) {
	case types.IntType, types.AnyInt, types.FloatType, types.AnyFloat:
		return true
	default:
		return false
	}
}

func isPointerLike(t types.Type) bool {
	_, ok := t.(types.Pointer)
	return ok
}

// evalBinary lowers a binary expression, including the divide/modulo debug
// checks and the short-circuit &&/|| rewrite (spec.md §4.3.2).
func (g *Generator) evalBinary(e *ast.Binary, env *symbols.Environment, allowUnknown bool) Value {
	if e.Op.Type == token.LogicAnd || e.Op.Type == token.LogicOr {
		return g.evalShortCircuit(e, env, allowUnknown)
	}

	left := g.followReference(g.mustEvaluate(e.Left, env, allowUnknown))
	right := g.followReference(g.mustEvaluate(e.Right, env, allowUnknown))

	if left.IR.ContainsUnknown() || right.IR.ContainsUnknown() {
		return unknownValue("?")
	}

	opIR, known := binaryOpFor(e.Op.Type)

	if types.NativelySupportsBinary(left.IR.Type, e.Op.Type, right.IR.Type) && known {
		if (e.Op.Type == token.Slash || e.Op.Type == token.Mod) && g.Flags.Mode.EmitsChecks() {
			g.emitZeroCheck(right.IR)
		}
		if e.Op.Type == token.Mod {
			if _, lf := left.IR.Type.(types.FloatType); lf {
				return g.callRuntime("core_DOT_ops_DOT_floatMod", left.IR.Type, left.IR, right.IR)
			}
		}
		return Value{IR: ir.Value{Data: ir.Binary{Left: &left.IR, Op: opIR, Right: &right.IR}, Type: resultTypeOfBinary(left.IR.Type, e.Op.Type, right.IR.Type)}}
	}

	if methodName, overloadable := types.BinaryMethodName(e.Op.Type); overloadable && g.hasMethod(left.IR.Type, methodName) {
		return g.callMethod(left, methodName, []Value{right}, e.Op)
	}

	g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Op, "operator %s is not supported between %s and %s", e.Op.Type, left.IR.Type, right.IR.Type)
	return unknownValue("?")
}

// resultTypeOfBinary picks the IR result type of a natively-lowered binary
// op: comparisons always yield u8 (boolean); arithmetic keeps the left
// operand's type, or the right operand's when the left is AnyInt/AnyFloat.
func resultTypeOfBinary(left types.Type, op token.Type, right types.Type) types.Type {
	switch op {
	case token.EqualEqual, token.BangEqual, token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return types.IntType{Signed: false, Width: types.W8}
	default:
		if _, isAny := left.(types.AnyInt); isAny {
			return right
		}
		if _, isAny := left.(types.AnyFloat); isAny {
			return right
		}
		return left
	}
}

// callRuntime synthesizes a call to a core-library helper by mangled name,
// used for the float-modulo rewrite (spec.md §4.3.2: "Modulo on floats
// rewrites to calls into `core::ops::floatMod`").
func (g *Generator) callRuntime(mangledName string, resultType types.Type, args ...ir.Value) Value {
	return Value{IR: ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: mangledName}}, Args: args},
		Type: resultType,
	}}
}

// evalShortCircuit lowers && / || to an if statement over a temporary
// holding the left operand, so the right operand's side effects appear only
// on the non-short path (spec.md §4.3.2).
func (g *Generator) evalShortCircuit(e *ast.Binary, env *symbols.Environment, allowUnknown bool) Value {
	left := g.mustEvaluate(e.Left, env, allowUnknown)
	boolType := types.IntType{Signed: false, Width: types.W8}
	resultName := g.nextTemp()
	g.emit(ir.Statement{Data: &ir.VarDecl{Name: resultName, Type: boolType, Initializer: &left.IR}})
	resultVal := tempVarValue(resultName, boolType)

	isOr := e.Op.Type == token.LogicOr
	cond := resultVal
	if isOr {
		cond = ir.Value{Data: ir.Negate{Value: &resultVal}, Type: boolType}
	}

	thenBody := g.withScope(func() {
		right := g.mustEvaluate(e.Right, env, allowUnknown)
		assign := ir.Value{Data: ir.Assign{Target: &resultVal, Op: ir.AssignPlain, Value: &right.IR}, Type: boolType}
		g.emit(ir.Statement{Data: &ir.Expression{Value: assign}})
	})

	g.emit(ir.Statement{Data: &ir.If{
		Condition:  cond,
		ThenBranch: &ir.Statement{Data: &ir.Scope{Statements: &thenBody}},
	}})

	return Value{IR: tempVarValue(resultName, boolType)}
}

// callMethod rewrites an operator use as a method call on recv (spec.md
// §4.3.2: "ThirdParty -> look up the corresponding method on the type and
// rewrite as a method call").
func (g *Generator) callMethod(recv Value, methodName string, args []Value, tok token.Token) Value {
	def := g.lookupMethod(recv.IR.Type, methodName)
	if def == nil {
		g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, tok, "method %s not found", methodName)
		return unknownValue("?")
	}
	fnName := typeKey(recv.IR.Type) + "_DOT_" + methodName
	callArgs := make([]ir.Value, 0, len(args)+1)
	selfArg := recv.IR
	if _, ptr := recv.IR.Type.(types.Pointer); !ptr {
		selfArg = ir.Value{Data: ir.Reference{Value: &recv.IR}, Type: types.Pointer{Inner: recv.IR.Type, IsReference: true}}
	}
	callArgs = append(callArgs, selfArg)
	for _, a := range args {
		callArgs = append(callArgs, a.IR)
	}
	retType := g.functionReturnType(def)
	return Value{IR: ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: fnName}}, Args: callArgs},
		Type: retType,
	}}
}

// functionReturnType evaluates only the return-type expression of def in
// the globals environment, used when synthesizing a method-call result type
// without re-running the whole function body.
func (g *Generator) functionReturnType(def *ast.FunctionDef) types.Type {
	if def.ReturnType == nil {
		return types.Void{}
	}
	return g.evalType(def.ReturnType, g.Globals, false)
}

// methodSignature derives a bound method's callable signature, with the
// implicit self receiver stripped — the call site synthesises it separately
// (spec.md §4.3.2 "constructs a bound method value carrying self-info").
func (g *Generator) methodSignature(def *ast.FunctionDef) types.Function {
	var params []types.Type
	for _, p := range def.Params {
		if p.Name != nil && p.Name.Lexeme == "self" {
			continue
		}
		if p.Type == nil {
			params = append(params, types.Unknown{Name: "?"})
			continue
		}
		params = append(params, g.evalType(p.Type, g.Globals, true))
	}
	return types.Function{Params: params, Return: g.functionReturnType(def), HasBody: true}
}
