package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// mustEvaluate evaluates expr and never returns a nil Value — callers that
// don't need to distinguish a hard failure from a successful Unknown result
// use this instead of threading an error return through every expression
// (spec.md §4.3.1: evaluation either yields a SkyeValue or reports a
// diagnostic and yields Unknown).
func (g *Generator) mustEvaluate(expr ast.Expression, env *symbols.Environment, allowUnknown bool) Value {
	return g.evaluate(expr, env, allowUnknown)
}

// evaluate is the generator's core synthesised-attribute walk: every
// Expression lowers to exactly one Value, with side-effecting sub-steps
// appended to the current scope along the way (spec.md §4.3.1).
func (g *Generator) evaluate(expr ast.Expression, env *symbols.Environment, allowUnknown bool) Value {
	switch e := expr.(type) {
	case *ast.SignedIntLiteral:
		return g.evalSignedInt(e)
	case *ast.UnsignedIntLiteral:
		return g.evalUnsignedInt(e)
	case *ast.FloatLiteral:
		return g.evalFloat(e)
	case *ast.StringLiteral:
		return g.evalString(e)
	case *ast.VoidLiteral:
		return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.Void{}}}

	case *ast.Variable:
		return g.evalVariable(e, env, allowUnknown)

	case *ast.Grouping:
		inner := g.evaluate(e.Expr, env, allowUnknown)
		return Value{IR: ir.Value{Data: ir.Grouping{Value: &inner.IR}, Type: inner.IR.Type}, IsConst: inner.IsConst, Self: inner.Self}

	case *ast.InMacro:
		v := g.evaluate(e.Inner, env, allowUnknown)
		return v

	case *ast.MacroExpandedStatements:
		return g.evalMacroExpandedStatements(e, env, allowUnknown)

	case *ast.Unary:
		return g.evalUnary(e, env, allowUnknown)

	case *ast.Binary:
		return g.evalBinary(e, env, allowUnknown)

	case *ast.Assign:
		return g.evalAssign(e, env, allowUnknown)

	case *ast.Ternary:
		return g.evalTernary(e, env, allowUnknown)

	case *ast.Call:
		return g.evalCall(e, env, allowUnknown)

	case *ast.Get:
		return g.evalGet(e, env, allowUnknown)

	case *ast.StaticGet:
		return g.evalStaticGet(e, env, allowUnknown)

	case *ast.Subscript:
		return g.evalSubscript(e, env, allowUnknown)

	case *ast.CompoundLiteral:
		return g.evalCompoundLiteral(e, env, allowUnknown)

	case *ast.Slice:
		return g.evalSlice(e, env, allowUnknown)

	case *ast.ArrayLiteral:
		return g.evalArrayLiteral(e, env, allowUnknown)

	case *ast.ArrayType, *ast.FnPtr:
		t := g.evalType(expr, env, allowUnknown)
		return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.TypeOf{Inner: t}}}

	default:
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, spanToken(expr.GetPos()), "this expression is not supported here")
		return unknownValue("?")
	}
}

func (g *Generator) evalSignedInt(e *ast.SignedIntLiteral) Value {
	t := signedLiteralType(e.Bits)
	return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: t}}
}

func (g *Generator) evalUnsignedInt(e *ast.UnsignedIntLiteral) Value {
	t := unsignedLiteralType(e.Bits)
	return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: t}}
}

func signedLiteralType(bits ast.IntBits) types.Type {
	switch bits {
	case ast.B8:
		return types.IntType{Signed: true, Width: types.W8}
	case ast.B16:
		return types.IntType{Signed: true, Width: types.W16}
	case ast.B32:
		return types.IntType{Signed: true, Width: types.W32}
	case ast.B64:
		return types.IntType{Signed: true, Width: types.W64}
	case ast.Bsz:
		return types.IntType{Signed: true, Width: types.Wsz}
	default:
		return types.AnyInt{}
	}
}

func unsignedLiteralType(bits ast.IntBits) types.Type {
	switch bits {
	case ast.B8:
		return types.IntType{Signed: false, Width: types.W8}
	case ast.B16:
		return types.IntType{Signed: false, Width: types.W16}
	case ast.B32:
		return types.IntType{Signed: false, Width: types.W32}
	case ast.B64:
		return types.IntType{Signed: false, Width: types.W64}
	case ast.Bsz:
		return types.IntType{Signed: false, Width: types.Wsz}
	default:
		return types.AnyInt{}
	}
}

func (g *Generator) evalFloat(e *ast.FloatLiteral) Value {
	if e.Bits == ast.F32 {
		return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: types.FloatType{Width: types.FW32}}}
	}
	if e.Bits == ast.F64 {
		return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: types.FloatType{Width: types.FW64}}}
	}
	return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: types.AnyFloat{}}}
}

func (g *Generator) evalString(e *ast.StringLiteral) Value {
	switch e.Kind {
	case ast.CharString:
		return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: types.Char{}}}
	default:
		elem := types.IntType{Signed: false, Width: types.W8}
		return Value{IR: ir.Value{Data: ir.Literal{Value: e}, Type: types.Pointer{Inner: elem, IsConst: true}}}
	}
}

func (g *Generator) evalVariable(e *ast.Variable, env *symbols.Environment, allowUnknown bool) Value {
	sym, ok := env.Get(e.Name.Lexeme)
	if !ok {
		if allowUnknown {
			return unknownValue(e.Name.Lexeme)
		}
		g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, e.Name, "undefined symbol %q", e.Name.Lexeme)
		return unknownValue(e.Name.Lexeme)
	}
	t, _ := sym.Type.(types.Type)
	if t == nil {
		t = types.Unknown{Name: e.Name.Lexeme}
	}
	return Value{IR: ir.Value{Data: ir.Variable{Name: e.Name.Lexeme}, Type: t}, IsConst: sym.IsConst}
}

// evalMacroExpandedStatements runs every statement but the last into the
// current scope, and — if the last statement is a bare expression statement
// — yields its value, matching a block-bodied macro's implicit trailing
// expression (spec.md §4.4).
func (g *Generator) evalMacroExpandedStatements(e *ast.MacroExpandedStatements, env *symbols.Environment, allowUnknown bool) Value {
	if len(e.Inner) == 0 {
		return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.Void{}}}
	}
	for _, stmt := range e.Inner[:len(e.Inner)-1] {
		g.generateStmt(stmt, env)
	}
	last := e.Inner[len(e.Inner)-1]
	if exprStmt, ok := last.(*ast.ExpressionStmt); ok {
		return g.evaluate(exprStmt.Expr, env, allowUnknown)
	}
	g.generateStmt(last, env)
	return Value{IR: ir.Value{Data: ir.Empty{}, Type: types.Void{}}}
}

// evalAssign lowers `target op= value`, including the plain-assign copy
// constructor insertion spec.md §4.3.3 describes for struct-valued RHS.
func (g *Generator) evalAssign(e *ast.Assign, env *symbols.Environment, allowUnknown bool) Value {
	target := g.mustEvaluate(e.Target, env, allowUnknown)
	value := g.mustEvaluate(e.Value, env, allowUnknown)

	if target.IsConst {
		g.Diags.Errorf(diagnostics.CodeConstViolation, e.Op, "cannot assign to a const binding")
	}

	value = g.insertCopyIfNeeded(value, e.Op)

	op := assignOpFor(e.Op.Type)
	return Value{IR: ir.Value{Data: ir.Assign{Target: &target.IR, Op: op, Value: &value.IR}, Type: target.IR.Type}}
}

func assignOpFor(t token.Type) ir.AssignOp {
	switch t {
	case token.PlusEqual:
		return ir.AssignAdd
	case token.MinusEqual:
		return ir.AssignSubtract
	case token.StarEqual:
		return ir.AssignMultiply
	case token.SlashEqual:
		return ir.AssignDivide
	case token.ModEqual:
		return ir.AssignModulo
	case token.ShiftLeftEqual:
		return ir.AssignShiftLeft
	case token.ShiftRightEqual:
		return ir.AssignShiftRight
	case token.CaretEqual:
		return ir.AssignBitwiseXor
	case token.PipeEqual:
		return ir.AssignBitwiseOr
	case token.AmpEqual:
		return ir.AssignBitwiseAnd
	default:
		return ir.AssignPlain
	}
}

// insertCopyIfNeeded calls a struct-typed value's __copy__ method before it
// is stored, unless the value is itself a fresh temporary with nothing else
// holding a reference to it (spec.md §4.3.3 "copy-constructor insertion").
func (g *Generator) insertCopyIfNeeded(v Value, at token.Token) Value {
	if !g.hasMethod(v.IR.Type, types.MethodCopy) {
		return v
	}
	switch v.IR.Data.(type) {
	case ir.CompoundLiteral, ir.Call:
		return v
	}
	g.Diags.Add(diagnostics.NewInfo(diagnostics.GroupCopies, at, "inserting copy constructor call"))
	return g.callMethod(v, types.MethodCopy, nil, at)
}
