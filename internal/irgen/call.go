package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/config"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// evalCall lowers a Call expression: a builtin-macro invocation, an ordinary
// function call (with arity checking and bound-method receiver synthesis),
// or a template instantiation (spec.md §4.3.2).
func (g *Generator) evalCall(e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	if e.IsMacroCall {
		if name, tok, ok := staticOrVarName(e.Callee); ok {
			if v, handled := g.evalBuiltinMacro(name, tok, e, env, allowUnknown); handled {
				return v
			}
			g.Diags.Errorf(diagnostics.CodeUndefinedSymbol, tok, "undefined macro %q", name)
			return unknownValue("?")
		}
	}

	callee := g.mustEvaluate(e.Callee, env, true)

	if tmpl, ok := callee.IR.Type.(types.Template); ok {
		return g.instantiateAndCall(tmpl, e, env, allowUnknown)
	}

	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.mustEvaluate(a, env, allowUnknown)
	}

	fn, isFn := callee.IR.Type.(types.Function)
	if !isFn {
		if callee.IR.ContainsUnknown() {
			return unknownValue("?")
		}
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Paren, "%s is not callable", callee.IR.Type)
		return unknownValue("?")
	}

	callArgs := make([]ir.Value, 0, len(args)+1)
	if callee.Self != nil {
		recv := callee.Self.Receiver
		if _, ptr := recv.Type.(types.Pointer); !ptr {
			recv = ir.Value{Data: ir.Reference{Value: &callee.Self.Receiver}, Type: types.Pointer{Inner: recv.Type, IsReference: true}}
		}
		callArgs = append(callArgs, recv)
	}

	expectedArity := len(fn.Params)
	if len(args) != expectedArity {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Paren, "expected %d argument(s), got %d", expectedArity, len(args))
	}
	for i := range args {
		arg := args[i]
		if i < len(fn.Params) {
			if ptr, isRef := fn.Params[i].(types.Pointer); isRef && ptr.IsReference {
				// reference parameter with a non-pointer argument:
				// synthesise the address-of (spec.md §4.3.2)
				if _, isPtr := arg.IR.Type.(types.Pointer); !isPtr {
					callArgs = append(callArgs, ir.Value{
						Data: ir.Reference{Value: &args[i].IR},
						Type: types.Pointer{Inner: arg.IR.Type, IsConst: ptr.IsConst, IsReference: true},
					})
					continue
				}
			} else {
				arg = g.followReference(arg)
			}
			if !arg.IR.ContainsUnknown() && !types.Equal(fn.Params[i], arg.IR.Type, types.Strict) {
				g.Diags.Errorf(diagnostics.CodeTypeMismatch, e.Paren, "argument %d expects %s, got %s", i+1, fn.Params[i], arg.IR.Type)
			}
		}
		callArgs = append(callArgs, g.insertCopyIfNeeded(arg, e.Paren).IR)
	}

	calleeIR := callee.IR
	return g.emitCall(ir.Value{Data: ir.Call{Callee: &calleeIR, Args: callArgs}, Type: fn.Return})
}

// emitCall materialises a lowered call: void calls become a bare expression
// statement, every other call lands in a fresh temporary whose variable is
// the evaluation's result (spec.md §4.3.2). Outside a statement context
// (e.g. a type expression during inference) the value passes through
// unmaterialised.
func (g *Generator) emitCall(call ir.Value) Value {
	if g.scope == nil {
		return Value{IR: call}
	}
	if _, isVoid := call.Type.(types.Void); isVoid {
		g.emit(ir.Statement{Data: &ir.Expression{Value: call}})
		return Value{IR: ir.EmptyWithType(types.Void{})}
	}
	tmp := g.nextTemp()
	g.emit(ir.Statement{Data: &ir.VarDecl{Name: tmp, Type: call.Type, Initializer: &call}})
	return Value{IR: tempVarValue(tmp, call.Type)}
}

func staticOrVarName(callee ast.Expression) (string, token.Token, bool) {
	switch c := callee.(type) {
	case *ast.Variable:
		return c.Name.Lexeme, c.Name, true
	case *ast.StaticGet:
		return c.Name.Lexeme, c.Name, true
	default:
		return "", token.Token{}, false
	}
}

// evalBuiltinMacro dispatches a reserved macro name to its dedicated handler
// (spec.md §4.3.4); handled is false when name isn't one of the reserved
// set, so the caller can fall through to an undefined-symbol diagnostic.
func (g *Generator) evalBuiltinMacro(name string, tok token.Token, e *ast.Call, env *symbols.Environment, allowUnknown bool) (Value, bool) {
	switch name {
	case config.TypeOfMacroName:
		return g.evalTypeOfMacro(tok, e, env, allowUnknown), true
	case config.CastMacroName:
		return g.evalCastMacro(tok, e, env, allowUnknown), true
	case config.ConstCastMacroName:
		return g.evalConstCastMacro(tok, e, env, allowUnknown), true
	case config.AsPtrMacroName:
		return g.evalAsPtrMacro(tok, e, env, allowUnknown), true
	case config.FormatMacroName:
		return g.evalFormatMacro(tok, e, env, allowUnknown), true
	case config.FprintMacroName:
		return g.evalFprintMacro(tok, e, env, allowUnknown, false), true
	case config.FprintlnMacroName:
		return g.evalFprintMacro(tok, e, env, allowUnknown, true), true
	default:
		return Value{}, false
	}
}

// instantiateAndCall instantiates tmpl (inferring every generic without a
// default from the call's argument types; no explicit generic arguments are
// passed) and lowers the call against
// the instantiation's concrete signature (spec.md §4.3.2, §9).
func (g *Generator) instantiateAndCall(tmpl types.Template, e *ast.Call, env *symbols.Environment, allowUnknown bool) Value {
	args := make([]Value, len(e.Args))
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.mustEvaluate(a, env, true)
		argTypes[i] = args[i].IR.Type
	}

	mangledName, fnType, ok := g.instantiateTemplate(tmpl, nil, argTypes, e.Paren)
	if !ok {
		return unknownValue("?")
	}

	fn := fnType
	callArgs := make([]ir.Value, len(args))
	for i, a := range args {
		callArgs[i] = g.insertCopyIfNeeded(a, e.Paren).IR
	}
	callee := ir.Value{Data: ir.Variable{Name: mangledName}, Type: fn}
	return g.emitCall(ir.Value{Data: ir.Call{Callee: &callee, Args: callArgs}, Type: fn.Return})
}
