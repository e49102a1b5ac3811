package irgen

import (
	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/symbols"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

// destructLocal is one local variable declared inside a block whose type
// defines `__destruct__`, recorded so the block's exit drains it (spec.md
// §4.3.5).
type destructLocal struct {
	Name string
	Type types.Type
	Tok  token.Token
}

// loopCtx is one enclosing loop's state: the labels spec.md §4.3.3 assigns
// lazily (emitted only when a break/continue in the body used them), plus
// the defer/destructor stack depths at loop entry so an interrupt can run
// exactly the frames opened inside the loop.
type loopCtx struct {
	breakLabel     string
	continueLabel  string
	breakUsed      bool
	continueUsed   bool
	continuePlaced bool
	deferBase      int
	destructBase   int
}

func (g *Generator) currentLoop() *loopCtx {
	if len(g.loops) == 0 {
		return nil
	}
	return g.loops[len(g.loops)-1]
}

// withLoop runs fn with a fresh loop context on the stack and returns it, so
// the loop generator can see which labels the body ended up using. fn
// receives the context so it can place the continue label mid-body (a for
// loop's continue jumps to the increment, a do-while's to the condition).
func (g *Generator) withLoop(fn func(*loopCtx)) *loopCtx {
	ctx := &loopCtx{deferBase: len(g.deferStack), destructBase: len(g.destructStack)}
	g.loops = append(g.loops, ctx)
	fn(ctx)
	g.loops = g.loops[:len(g.loops)-1]
	return ctx
}

// placeContinueLabel emits the loop's continue label at the current point in
// the body, if any continue actually used it.
func (g *Generator) placeContinueLabel(loop *loopCtx) {
	if loop.continueUsed && !loop.continuePlaced {
		g.emit(ir.Statement{Data: &ir.Label{Name: loop.continueLabel}})
		loop.continuePlaced = true
	}
}

// generateBlockBody lowers a function/block body: pushes a fresh defer frame
// and destructor frame, generates every statement in order, then drains the
// deferred statements (reverse declaration order) followed by the locals'
// destructors (also reverse declaration order) before the block's natural
// end (spec.md §4.3.3, §4.3.5; an early `return`, `break`/`continue`, or a
// bare `?` propagation emits its own copies without popping, see
// emitDefersFrom / generateReturn / evalTryOperator). Statements following
// an interrupt are unreachable and warned about once.
func (g *Generator) generateBlockBody(body []ast.Statement, env *symbols.Environment) {
	g.deferStack = append(g.deferStack, nil)
	g.destructStack = append(g.destructStack, nil)
	interrupted := false
	for _, stmt := range body {
		if interrupted {
			g.Diags.Add(diagnostics.NewWarning("", spanToken(stmt.GetPos()), "unreachable statement"))
			interrupted = false
		}
		g.generateStmt(stmt, env)
		switch stmt.(type) {
		case *ast.Return, *ast.Break, *ast.Continue:
			interrupted = true
		}
	}
	g.drainDefers(env)
	g.drainDestructors()
}

func (g *Generator) drainDefers(env *symbols.Environment) {
	n := len(g.deferStack)
	if n == 0 {
		return
	}
	frame := g.deferStack[n-1]
	g.deferStack = g.deferStack[:n-1]
	for i := len(frame) - 1; i >= 0; i-- {
		g.generateStmt(frame[i], env)
	}
}

// emitDefersFrom emits every pending deferred statement in frames above
// base, innermost first, without popping: the frames still belong to their
// blocks, whose natural ends drain them for the non-interrupted path.
func (g *Generator) emitDefersFrom(base int, env *symbols.Environment) {
	for i := len(g.deferStack) - 1; i >= base; i-- {
		frame := g.deferStack[i]
		for j := len(frame) - 1; j >= 0; j-- {
			g.generateStmt(frame[j], env)
		}
	}
}

// drainDestructors pops the current destructor frame and emits one
// `__destruct__` call per recorded local, in reverse declaration order, each
// accompanied by a `+I-destructors` Info diagnostic mirroring
// insertCopyIfNeeded's `+I-copies` note (spec.md §4.3.5).
func (g *Generator) drainDestructors() {
	n := len(g.destructStack)
	if n == 0 {
		return
	}
	frame := g.destructStack[n-1]
	g.destructStack = g.destructStack[:n-1]
	for i := len(frame) - 1; i >= 0; i-- {
		g.emitDestructor(frame[i])
	}
}

// emitDestructorsFrom is drainDestructors' no-pop counterpart, mirroring
// emitDefersFrom for the interrupt paths.
func (g *Generator) emitDestructorsFrom(base int) {
	for i := len(g.destructStack) - 1; i >= base; i-- {
		frame := g.destructStack[i]
		for j := len(frame) - 1; j >= 0; j-- {
			g.emitDestructor(frame[j])
		}
	}
}

func (g *Generator) emitDestructor(local destructLocal) {
	recv := ir.Value{Data: ir.Variable{Name: local.Name}, Type: local.Type}
	g.Diags.Add(diagnostics.NewInfo(diagnostics.GroupDestructors, local.Tok, "inserting destructor call for "+local.Name))
	v := g.callMethod(Value{IR: recv}, types.MethodDestruct, nil, local.Tok)
	g.emit(ir.Statement{Data: &ir.Expression{Value: v.IR}})
}

// registerDestructCandidate records name as needing a `__destruct__` call at
// its enclosing block's exit, if t defines one (spec.md §4.3.5).
func (g *Generator) registerDestructCandidate(name string, t types.Type, tok token.Token) {
	if !g.hasMethod(t, types.MethodDestruct) {
		return
	}
	n := len(g.destructStack)
	if n == 0 {
		g.destructStack = append(g.destructStack, nil)
		n = 1
	}
	g.destructStack[n-1] = append(g.destructStack[n-1], destructLocal{Name: name, Type: t, Tok: tok})
}

// generateStmt lowers one statement inside a function body into the current
// scope (spec.md §4.3.3).
func (g *Generator) generateStmt(stmt ast.Statement, env *symbols.Environment) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		v := g.mustEvaluate(s.Expr, env, false)
		g.emit(ir.Statement{Data: &ir.Expression{Value: v.IR.KeepSideEffects()}, Pos: s.GetPos()})

	case *ast.VarDecl:
		g.generateLocalVar(s, env)

	case *ast.Block:
		child := env.Child()
		body := g.withScope(func() {
			g.generateBlockBody(s.Body, child)
		})
		g.emit(ir.Statement{Data: &ir.Scope{Statements: &body}, Pos: s.GetPos()})

	case *ast.If:
		g.generateIf(s, env)

	case *ast.While:
		g.generateWhile(s, env)

	case *ast.DoWhile:
		g.generateDoWhile(s, env)

	case *ast.For:
		g.generateFor(s, env)

	case *ast.Foreach:
		g.generateForeach(s, env)

	case *ast.Return:
		g.generateReturn(s, env)

	case *ast.Break:
		g.generateBreak(s, env)

	case *ast.Continue:
		g.generateContinue(s, env)

	case *ast.Switch:
		g.generateSwitch(s, env)

	case *ast.Defer:
		if containsControlFlow(s.Body) {
			g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, spanToken(s.GetPos()), "deferred statement may not contain return/break/continue/defer")
			return
		}
		n := len(g.deferStack)
		if n == 0 {
			g.deferStack = append(g.deferStack, nil)
			n = 1
		}
		g.deferStack[n-1] = append(g.deferStack[n-1], s.Body)

	case *ast.Namespace:
		g.currentNamespace = append(g.currentNamespace, s.Name.Lexeme)
		for _, inner := range s.Body {
			g.generateStmt(inner, env)
		}
		g.currentNamespace = g.currentNamespace[:len(g.currentNamespace)-1]

	case *ast.FunctionDef, *ast.StructDef, *ast.EnumDef, *ast.BitfieldDef, *ast.Interface, *ast.Impl, *ast.Template, *ast.Use, *ast.Macro:
		// Nested declarations inside a function body share file-scope
		// semantics; route them through the same dispatcher minus the
		// top-level-only diagnostics it would otherwise raise for them.
		g.generateNestedDecl(stmt)

	default:
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, spanToken(stmt.GetPos()), "this statement is not allowed here")
	}
}

func (g *Generator) generateNestedDecl(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		if def := g.generateFunction(nil, s, nil); def != nil {
			g.emit(*def)
		}
	case *ast.StructDef:
		if def := g.generateStruct(s); def != nil {
			g.emit(*def)
		}
	case *ast.EnumDef:
		for _, d := range g.generateEnum(s) {
			g.emit(d)
		}
	case *ast.BitfieldDef:
		if def := g.generateBitfield(s); def != nil {
			g.emit(*def)
		}
	case *ast.Interface:
		for _, d := range g.generateInterface(s) {
			g.emit(d)
		}
	case *ast.Impl:
		g.generateImpl(nil, s)
	case *ast.Template:
		g.registerTemplate(s)
	case *ast.Use:
		g.generateUse(s)
	}
}

func (g *Generator) generateLocalVar(s *ast.VarDecl, env *symbols.Environment) {
	var t types.Type
	var initIR *ir.Value
	if s.Init != nil {
		v := g.insertCopyIfNeeded(g.mustEvaluate(s.Init, env, false), s.Name)
		initIR = &v.IR
		t = v.IR.Type
	}
	if s.Type != nil {
		declared := g.evalType(s.Type, env, false)
		if initIR != nil && !types.Equal(declared, t, types.Permissive) {
			g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Name, "cannot initialise %s with %s", declared, t)
		}
		t = declared
	}
	env.Define(s.Name.Lexeme, symbols.Symbol{Type: t, IsConst: s.IsConst, Def: s.Name})
	g.emit(ir.Statement{Data: &ir.VarDecl{Name: s.Name.Lexeme, Type: t, Initializer: initIR}, Pos: s.GetPos()})
	g.registerDestructCandidate(s.Name.Lexeme, t, s.Name)
}

func (g *Generator) generateIf(s *ast.If, env *symbols.Environment) {
	cond := g.mustEvaluate(s.Condition, env, false)
	thenBody := g.withScope(func() { g.generateStmt(s.Then, env.Child()) })
	stmtIR := ir.Statement{Data: &ir.If{
		Condition:  cond.IR,
		ThenBranch: &ir.Statement{Data: &ir.Scope{Statements: &thenBody}},
	}, Pos: s.GetPos()}
	if s.Else != nil {
		elseBody := g.withScope(func() { g.generateStmt(s.Else, env.Child()) })
		ifData := stmtIR.Data.(*ir.If)
		ifData.ElseBranch = &ir.Statement{Data: &ir.Scope{Statements: &elseBody}}
	}
	g.emit(stmtIR)
}

// emitLoop closes out one lowered loop: the continue label (when used and
// not already placed mid-body) goes at the end of the loop body, the break
// label (when used) right after the loop itself, so the emitted C never
// carries an unused label (spec.md §4.3.3).
func (g *Generator) emitLoop(loop *loopCtx, body []ir.Statement, pos token.Span) {
	if loop.continueUsed && !loop.continuePlaced {
		body = append(body, ir.Statement{Data: &ir.Label{Name: loop.continueLabel}})
	}
	g.emit(ir.Statement{Data: &ir.Loop{Body: &ir.Statement{Data: &ir.Scope{Statements: &body}}}, Pos: pos})
	if loop.breakUsed {
		g.emit(ir.Statement{Data: &ir.Label{Name: loop.breakLabel}})
	}
}

// emitConditionCheck evaluates cond into the current (loop body) scope and
// emits `if (!cond) break;` — any prelude statements the condition needs run
// again on every iteration.
func (g *Generator) emitConditionCheck(cond ast.Expression, env *symbols.Environment) {
	v := g.mustEvaluate(cond, env, false)
	notCond := ir.Value{Data: ir.Negate{Value: &v.IR}, Type: types.IntType{Signed: false, Width: types.W8}}
	g.emit(ir.Statement{Data: &ir.If{Condition: notCond, ThenBranch: &ir.Statement{Data: &ir.Break{}}}})
}

func (g *Generator) generateWhile(s *ast.While, env *symbols.Environment) {
	var body []ir.Statement
	loop := g.withLoop(func(*loopCtx) {
		body = g.withScope(func() {
			g.emitConditionCheck(s.Condition, env)
			g.generateStmt(s.Body, env.Child())
		})
	})
	g.emitLoop(loop, body, s.GetPos())
}

func (g *Generator) generateDoWhile(s *ast.DoWhile, env *symbols.Environment) {
	var body []ir.Statement
	loop := g.withLoop(func(loop *loopCtx) {
		body = g.withScope(func() {
			g.generateStmt(s.Body, env.Child())
			g.placeContinueLabel(loop)
			g.emitConditionCheck(s.Condition, env)
		})
	})
	g.emitLoop(loop, body, s.GetPos())
}

func (g *Generator) generateFor(s *ast.For, env *symbols.Environment) {
	loopEnv := env.Child()
	if s.Init != nil {
		g.generateStmt(s.Init, loopEnv)
	}
	var body []ir.Statement
	loop := g.withLoop(func(loop *loopCtx) {
		body = g.withScope(func() {
			if s.Condition != nil {
				g.emitConditionCheck(s.Condition, loopEnv)
			}
			g.generateStmt(s.Body, loopEnv.Child())
			g.placeContinueLabel(loop)
			if s.Increment != nil {
				v := g.mustEvaluate(s.Increment, loopEnv, false)
				g.emit(ir.Statement{Data: &ir.Expression{Value: v.IR.KeepSideEffects()}})
			}
		})
	})
	g.emitLoop(loop, body, s.GetPos())
}

// generateForeach lowers `foreach name in iterable { body }` for a fixed-size
// array iterable: an index counter, a bound check that breaks out, and a
// per-iteration element binding. Any other iterable type is reported as a
// type mismatch; next()/iter() methods on the iterable are not consulted.
func (g *Generator) generateForeach(s *ast.Foreach, env *symbols.Environment) {
	iterable := g.mustEvaluate(s.Iterable, env, false)
	arr, ok := iterable.IR.Type.(types.Array)
	if !ok {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Keyword, "foreach requires an array, got %s", iterable.IR.Type)
		return
	}
	idxName := g.nextTemp()
	idxType := types.IntType{Signed: false, Width: types.Wsz}
	zero := ir.Value{Data: ir.Literal{Value: &ast.UnsignedIntLiteral{Value: 0, Bits: ast.Bsz}}, Type: idxType}
	g.emit(ir.Statement{Data: &ir.VarDecl{Name: idxName, Type: idxType, Initializer: &zero}})
	idxVar := tempVarValue(idxName, idxType)

	loopEnv := env.Child()
	var body []ir.Statement
	loop := g.withLoop(func(loop *loopCtx) {
		body = g.withScope(func() {
			sizeLit := ir.Value{Data: ir.Literal{Value: &ast.UnsignedIntLiteral{Value: uint64(arr.Size), Bits: ast.Bsz}}, Type: idxType}
			cond := ir.Value{Data: ir.Binary{Left: &idxVar, Op: ir.OpGreaterEqual, Right: &sizeLit}, Type: types.IntType{Signed: false, Width: types.W8}}
			g.emit(ir.Statement{Data: &ir.If{Condition: cond, ThenBranch: &ir.Statement{Data: &ir.Break{}}}})

			elemVar := ir.Value{Data: ir.Subscript{Subscripted: &iterable.IR, Index: &idxVar}, Type: arr.Inner}
			loopEnv.Define(s.Name.Lexeme, symbols.Symbol{Type: arr.Inner, IsConst: true, Def: s.Name})
			g.emit(ir.Statement{Data: &ir.VarDecl{Name: s.Name.Lexeme, Type: arr.Inner, Initializer: &elemVar}})

			g.generateStmt(s.Body, loopEnv.Child())
			g.placeContinueLabel(loop)

			one := ir.Value{Data: ir.Literal{Value: &ast.UnsignedIntLiteral{Value: 1, Bits: ast.Bsz}}, Type: idxType}
			incr := ir.Value{Data: ir.Assign{Target: &idxVar, Op: ir.AssignAdd, Value: &one}, Type: idxType}
			g.emit(ir.Statement{Data: &ir.Expression{Value: incr}})
		})
	})
	g.emitLoop(loop, body, s.GetPos())
}

// generateReturn evaluates the return value into a temporary first, so every
// pending deferred statement and destructor runs after evaluation but before
// the actual return (spec.md §4.3.3).
func (g *Generator) generateReturn(s *ast.Return, env *symbols.Environment) {
	if g.enclosingFn == nil {
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, s.Keyword, "return outside of a function")
		return
	}
	if s.Value == nil {
		g.emitDefersFrom(0, env)
		g.emitDestructorsFrom(0)
		g.emit(ir.Statement{Data: &ir.Return{}, Pos: s.GetPos()})
		return
	}
	v := g.mustEvaluate(s.Value, env, false)
	if !types.Equal(g.enclosingFn.Return, v.IR.Type, types.Permissive) {
		g.Diags.Errorf(diagnostics.CodeTypeMismatch, s.Keyword, "return type mismatch: expected %s, got %s", g.enclosingFn.Return, v.IR.Type)
	}
	v2 := g.insertCopyIfNeeded(v, s.Keyword)
	retVal := v2.IR
	pending := len(g.deferStack) > 0 && deferPending(g.deferStack)
	for _, frame := range g.destructStack {
		pending = pending || len(frame) > 0
	}
	if pending {
		tmp := g.makeTemporaryVar(v2.IR)
		retVal = tempVarValue(tmp, v2.IR.Type)
	}
	g.emitDefersFrom(0, env)
	g.emitDestructorsFrom(0)
	g.emit(ir.Statement{Data: &ir.Return{Value: &retVal}, Pos: s.GetPos()})
}

func deferPending(stack [][]ast.Statement) bool {
	for _, frame := range stack {
		if len(frame) > 0 {
			return true
		}
	}
	return false
}

// generateBreak lowers `break` to a goto against the innermost loop's
// lazily-assigned break label (spec.md §4.3.3), after running the deferred
// statements and destructors belonging to frames opened inside the loop.
func (g *Generator) generateBreak(s *ast.Break, env *symbols.Environment) {
	loop := g.currentLoop()
	if loop == nil {
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, s.Keyword, "break outside of a loop")
		return
	}
	g.emitDefersFrom(loop.deferBase, env)
	g.emitDestructorsFrom(loop.destructBase)
	if loop.breakLabel == "" {
		loop.breakLabel = g.nextLabel("BREAK")
	}
	loop.breakUsed = true
	g.emit(ir.Statement{Data: &ir.Goto{Label: loop.breakLabel}, Pos: s.GetPos()})
}

func (g *Generator) generateContinue(s *ast.Continue, env *symbols.Environment) {
	loop := g.currentLoop()
	if loop == nil {
		g.Diags.Errorf(diagnostics.CodeInvalidControlFlow, s.Keyword, "continue outside of a loop")
		return
	}
	g.emitDefersFrom(loop.deferBase, env)
	g.emitDestructorsFrom(loop.destructBase)
	if loop.continueLabel == "" {
		loop.continueLabel = g.nextLabel("CONTINUE")
	}
	loop.continueUsed = true
	g.emit(ir.Statement{Data: &ir.Goto{Label: loop.continueLabel}, Pos: s.GetPos()})
}

func (g *Generator) generateSwitch(s *ast.Switch, env *symbols.Environment) {
	value := g.mustEvaluate(s.Value, env, false)
	if subject, isType := value.IR.Type.(types.TypeOf); isType {
		g.generateTypeSwitch(s, subject.Inner, env)
		return
	}
	branches := make([]ir.SwitchBranch, len(s.Cases))
	for i, c := range s.Cases {
		var cases []ir.Value
		if c.Cases != nil {
			cases = make([]ir.Value, len(c.Cases))
			for j, ce := range c.Cases {
				cases[j] = g.mustEvaluate(ce, env, false).IR
			}
		}
		caseEnv := env.Child()
		body := g.withScope(func() {
			for _, stmt := range c.Code {
				g.generateStmt(stmt, caseEnv)
			}
		})
		branches[i] = ir.SwitchBranch{Cases: cases, Code: ir.Statement{Data: &ir.Scope{Statements: &body}}}
	}
	g.emit(ir.Statement{Data: &ir.Switch{Value: value.IR, Branches: branches}, Pos: s.GetPos()})
}

// generateTypeSwitch resolves a switch over a *type* at compile time
// (spec.md §4.3.3): each case's expressions evaluate as types, the first
// case matching subject at Typewise equality has its block inlined, and the
// default case catches everything else. No IR switch is emitted.
func (g *Generator) generateTypeSwitch(s *ast.Switch, subject types.Type, env *symbols.Environment) {
	var defaultCase *ast.SwitchCase
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Cases == nil {
			defaultCase = c
			continue
		}
		for _, ce := range c.Cases {
			t := g.evalType(ce, env, true)
			if types.Equal(t, subject, types.Typewise) {
				g.inlineSwitchCase(c, env)
				return
			}
		}
	}
	if defaultCase != nil {
		g.inlineSwitchCase(defaultCase, env)
	}
}

func (g *Generator) inlineSwitchCase(c *ast.SwitchCase, env *symbols.Environment) {
	caseEnv := env.Child()
	body := g.withScope(func() {
		g.generateBlockBody(c.Code, caseEnv)
	})
	g.emit(ir.Statement{Data: &ir.Scope{Statements: &body}})
}

// containsControlFlow reports whether stmt (recursively) contains a
// return/break/continue/defer, which spec.md §7 disallows inside a deferred
// statement.
func containsControlFlow(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.Return, *ast.Break, *ast.Continue, *ast.Defer:
		return true
	case *ast.Block:
		for _, b := range s.Body {
			if containsControlFlow(b) {
				return true
			}
		}
	case *ast.If:
		if containsControlFlow(s.Then) {
			return true
		}
		if s.Else != nil && containsControlFlow(s.Else) {
			return true
		}
	case *ast.While:
		return containsControlFlow(s.Body)
	case *ast.DoWhile:
		return containsControlFlow(s.Body)
	case *ast.For:
		return containsControlFlow(s.Body)
	case *ast.Foreach:
		return containsControlFlow(s.Body)
	}
	return false
}
