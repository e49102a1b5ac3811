// Package constfold implements the second compiler pass (spec.md §4.2): it
// walks every expression/statement and folds literal arithmetic, unary, and
// control-flow constructs in place. The pass runs twice — once before macro
// expansion (so literal arguments fold before hygienic substitution sees
// them) and once after (so macro-produced literal arithmetic folds too).
// Grounded on constant_folder.rs, using internal/trampoline in place of the
// original's reblessive::Stk recursion, the same substitution the import
// resolver (internal/imports) makes for its own recursive descent.
package constfold

import (
	"math"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/diagnostics"
	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/trampoline"
)

// Folder runs the constant-folding pass over a statement tree, accumulating
// diagnostics for overflow and out-of-bounds literal subscripts.
type Folder struct {
	Diags *diagnostics.Bag

	// inMacro, when non-zero, is the expansion-site span attached as a note
	// to any error raised while folding — spec.md §4.2: "when a fold
	// originates inside a macro expansion, an additional note points at the
	// expansion site".
	inMacro *token.Span
}

// New builds a Folder reporting into diags.
func New(diags *diagnostics.Bag) *Folder {
	return &Folder{Diags: diags}
}

// Fold runs one folding pass over statements in place, returning the same
// slice for convenience.
func (f *Folder) Fold(statements []ast.Statement) []ast.Statement {
	stack := trampoline.New()
	f.foldMany(stack, statements)
	return statements
}

func (f *Folder) foldMany(stack *trampoline.Stack, statements []ast.Statement) {
	for i := range statements {
		_ = stack.Call(func(stack *trampoline.Stack) error {
			statements[i] = f.foldStmt(stack, statements[i])
			return nil
		})
	}
}

func (f *Folder) foldManyExpr(stack *trampoline.Stack, exprs []ast.Expression) {
	for i := range exprs {
		_ = stack.Call(func(stack *trampoline.Stack) error {
			exprs[i] = f.foldExpr(stack, exprs[i])
			return nil
		})
	}
}

func (f *Folder) errorf(code diagnostics.Code, tok token.Token, format string, args ...any) {
	d := f.Diags.Errorf(code, tok, format, args...)
	if f.inMacro != nil {
		d.WithNote("expanded from this macro invocation", token.Token{Line: f.inMacro.Line, Source: f.inMacro.Source})
	}
}

// foldStmt folds every nested expression and statement slot, then applies
// the statement-level fold rules (if/switch collapsing isn't named for
// switch in spec.md, only ternary and if).
func (f *Folder) foldStmt(stack *trampoline.Stack, stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		s.Expr = f.foldExpr(stack, s.Expr)
		return s

	case *ast.VarDecl:
		if s.Type != nil {
			s.Type = f.foldExpr(stack, s.Type)
		}
		if s.Init != nil {
			s.Init = f.foldExpr(stack, s.Init)
		}
		return s

	case *ast.Block:
		f.foldMany(stack, s.Body)
		return s

	case *ast.While:
		s.Condition = f.foldExpr(stack, s.Condition)
		s.Body = f.foldStmt(stack, s.Body)
		return s

	case *ast.DoWhile:
		s.Condition = f.foldExpr(stack, s.Condition)
		s.Body = f.foldStmt(stack, s.Body)
		return s

	case *ast.For:
		if s.Init != nil {
			s.Init = f.foldStmt(stack, s.Init)
		}
		if s.Condition != nil {
			s.Condition = f.foldExpr(stack, s.Condition)
		}
		if s.Increment != nil {
			s.Increment = f.foldExpr(stack, s.Increment)
		}
		s.Body = f.foldStmt(stack, s.Body)
		return s

	case *ast.Foreach:
		s.Iterable = f.foldExpr(stack, s.Iterable)
		s.Body = f.foldStmt(stack, s.Body)
		return s

	case *ast.Return:
		if s.Value != nil {
			s.Value = f.foldExpr(stack, s.Value)
		}
		return s

	case *ast.If:
		s.Condition = f.foldExpr(stack, s.Condition)
		s.Then = f.foldStmt(stack, s.Then)
		if s.Else != nil {
			s.Else = f.foldStmt(stack, s.Else)
		}
		return f.collapseIf(s)

	case *ast.Switch:
		s.Value = f.foldExpr(stack, s.Value)
		for i := range s.Cases {
			if s.Cases[i].Cases != nil {
				f.foldManyExpr(stack, s.Cases[i].Cases)
			}
			f.foldMany(stack, s.Cases[i].Code)
		}
		return s

	case *ast.FunctionDef:
		if s.Body != nil {
			f.foldMany(stack, s.Body)
		}
		return s

	case *ast.Namespace:
		f.foldMany(stack, s.Body)
		return s

	case *ast.Impl:
		f.foldMany(stack, s.Body)
		return s

	case *ast.Defer:
		s.Body = f.foldStmt(stack, s.Body)
		return s

	case *ast.Template:
		s.Declaration = f.foldStmt(stack, s.Declaration)
		return s

	case *ast.ImportedBlock:
		f.foldMany(stack, s.Statements)
		return s

	case *ast.Macro:
		if s.Body.Kind == ast.MacroBodyBlock {
			f.foldMany(stack, s.Body.Block)
		} else if s.Body.Expression != nil {
			s.Body.Expression = f.foldExpr(stack, s.Body.Expression)
		}
		return s

	default:
		return stmt
	}
}

// collapseIf implements spec.md §4.2: "Ternary and if with a literal
// integer condition collapse to the taken branch (the untaken branch is
// discarded; if without else collapses to empty)".
func (f *Folder) collapseIf(s *ast.If) ast.Statement {
	truth, ok := literalTruthiness(s.Condition)
	if !ok {
		return s
	}
	if truth {
		return s.Then
	}
	if s.Else != nil {
		return s.Else
	}
	return &ast.Block{OpenBrace: s.Keyword, Body: nil}
}

// foldExpr folds the receiver after recursively folding every child, then
// applies whichever literal-fold rule matches the resulting shape.
func (f *Folder) foldExpr(stack *trampoline.Stack, expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Grouping:
		e.Expr = f.foldExpr(stack, e.Expr)
		return e

	case *ast.InMacro:
		prev := f.inMacro
		span := e.Source
		f.inMacro = &span
		e.Inner = f.foldExpr(stack, e.Inner)
		f.inMacro = prev
		return e

	case *ast.MacroExpandedStatements:
		prev := f.inMacro
		span := e.Source
		f.inMacro = &span
		f.foldMany(stack, e.Inner)
		f.inMacro = prev
		return e

	case *ast.Unary:
		e.Expr = f.foldExpr(stack, e.Expr)
		return f.foldUnary(e)

	case *ast.Binary:
		e.Left = f.foldExpr(stack, e.Left)
		e.Right = f.foldExpr(stack, e.Right)
		return f.foldBinary(e)

	case *ast.Ternary:
		e.Condition = f.foldExpr(stack, e.Condition)
		e.Then = f.foldExpr(stack, e.Then)
		e.Else = f.foldExpr(stack, e.Else)
		if truth, ok := literalTruthiness(e.Condition); ok {
			if truth {
				return e.Then
			}
			return e.Else
		}
		return e

	case *ast.Subscript:
		e.Subscripted = f.foldExpr(stack, e.Subscripted)
		f.foldManyExpr(stack, e.Args)
		return f.foldSubscript(e)

	case *ast.Assign:
		e.Target = f.foldExpr(stack, e.Target)
		e.Value = f.foldExpr(stack, e.Value)
		return e

	case *ast.Call:
		e.Callee = f.foldExpr(stack, e.Callee)
		f.foldManyExpr(stack, e.Args)
		return e

	case *ast.CompoundLiteral:
		e.Type = f.foldExpr(stack, e.Type)
		for i := range e.Fields {
			e.Fields[i].Expr = f.foldExpr(stack, e.Fields[i].Expr)
		}
		return e

	case *ast.Slice:
		f.foldManyExpr(stack, e.Items)
		return e

	case *ast.ArrayLiteral:
		f.foldManyExpr(stack, e.Items)
		return e

	case *ast.ArrayType:
		e.Item = f.foldExpr(stack, e.Item)
		if e.Size != nil {
			e.Size = f.foldExpr(stack, e.Size)
		}
		return e

	case *ast.Get:
		e.Object = f.foldExpr(stack, e.Object)
		return e

	case *ast.StaticGet:
		e.Object = f.foldExpr(stack, e.Object)
		return e

	case *ast.FnPtr:
		e.ReturnType = f.foldExpr(stack, e.ReturnType)
		return e

	default:
		return expr
	}
}

// literalTruthiness reports the boolean value of expr if it is a literal
// integer, and whether expr was such a literal at all.
func literalTruthiness(expr ast.Expression) (truth bool, ok bool) {
	switch e := expr.(type) {
	case *ast.SignedIntLiteral:
		return e.Value != 0, true
	case *ast.UnsignedIntLiteral:
		return e.Value != 0, true
	default:
		return false, false
	}
}

func boolLiteral(b bool, tok token.Token) ast.Expression {
	var v uint64
	if b {
		v = 1
	}
	return &ast.UnsignedIntLiteral{Value: v, Tok: tok, Bits: ast.B8}
}

// foldUnary implements the unary fold rules of spec.md §4.2.
func (f *Folder) foldUnary(e *ast.Unary) ast.Expression {
	switch e.Op.Type {
	case token.Plus:
		switch e.Expr.(type) {
		case *ast.SignedIntLiteral, *ast.UnsignedIntLiteral, *ast.FloatLiteral:
			return e.Expr
		}
		return e

	case token.Minus:
		switch v := e.Expr.(type) {
		case *ast.SignedIntLiteral:
			if v.Bits == ast.AnyInt {
				if v.Value > 0 && uint64(v.Value) > uint64(math.MaxInt64)+1 {
					f.errorf(diagnostics.CodeOverflow, v.Tok, "negation of literal %d exceeds i64::MIN magnitude", v.Value)
					return e
				}
				return &ast.SignedIntLiteral{Value: -v.Value, Tok: v.Tok, Bits: v.Bits}
			}
			min, _ := signedRange(v.Bits)
			if v.Value == min {
				f.errorf(diagnostics.CodeOverflow, v.Tok, "negating %d overflows %s", v.Value, v.Bits)
				return e
			}
			return &ast.SignedIntLiteral{Value: -v.Value, Tok: v.Tok, Bits: v.Bits}
		case *ast.UnsignedIntLiteral:
			f.errorf(diagnostics.CodeOverflow, v.Tok, "unary - is not supported on an unsigned literal")
			return e
		case *ast.FloatLiteral:
			return &ast.FloatLiteral{Value: -v.Value, Tok: v.Tok, Bits: v.Bits}
		}
		return e

	case token.Tilde:
		switch v := e.Expr.(type) {
		case *ast.SignedIntLiteral:
			if v.Bits == ast.Bsz {
				return e // unknown width: left unfolded
			}
			return &ast.SignedIntLiteral{Value: ^v.Value, Tok: v.Tok, Bits: v.Bits}
		case *ast.UnsignedIntLiteral:
			if v.Bits == ast.Bsz {
				return e
			}
			mask := unsignedMax(v.Bits)
			return &ast.UnsignedIntLiteral{Value: (^v.Value) & mask, Tok: v.Tok, Bits: v.Bits}
		}
		return e

	case token.Bang:
		switch v := e.Expr.(type) {
		case *ast.SignedIntLiteral:
			return boolLiteral(v.Value == 0, v.Tok)
		case *ast.UnsignedIntLiteral:
			return boolLiteral(v.Value == 0, v.Tok)
		case *ast.FloatLiteral:
			return boolLiteral(v.Value == 0, v.Tok)
		}
		return e

	default:
		return e
	}
}

// foldBinary implements the binary literal fold rules of spec.md §4.2: only
// + and - fold; every other operator is left untouched, for floats too.
func (f *Folder) foldBinary(e *ast.Binary) ast.Expression {
	switch e.Op.Type {
	case token.Plus, token.Minus:
		return f.foldAddSub(e)
	default:
		return e
	}
}

// foldAddSub implements the +/- fold rules including the signed/unsigned
// mixed-family cases spec.md §4.2 spells out.
func (f *Folder) foldAddSub(e *ast.Binary) ast.Expression {
	if lf, lok := e.Left.(*ast.FloatLiteral); lok {
		if rf, rok := e.Right.(*ast.FloatLiteral); rok && lf.Bits == rf.Bits {
			var result float64
			if e.Op.Type == token.Plus {
				result = lf.Value + rf.Value
			} else {
				result = lf.Value - rf.Value
			}
			return &ast.FloatLiteral{Value: result, Tok: lf.Tok, Bits: lf.Bits}
		}
		return e
	}

	ls, lSigned := e.Left.(*ast.SignedIntLiteral)
	lu, lUnsigned := e.Left.(*ast.UnsignedIntLiteral)
	rs, rSigned := e.Right.(*ast.SignedIntLiteral)
	ru, rUnsigned := e.Right.(*ast.UnsignedIntLiteral)

	sub := e.Op.Type == token.Minus

	switch {
	case lSigned && rSigned:
		if ls.Bits != rs.Bits {
			return e
		}
		rv := rs.Value
		if sub {
			rv = -rv
		}
		sum, overflow := checkedAddSigned(ls.Value, rv, ls.Bits)
		if !overflow {
			return &ast.SignedIntLiteral{Value: sum, Tok: ls.Tok, Bits: ls.Bits}
		}
		// promote to unsigned of the same width if the sum exceeds i64::MAX and fits
		if uv, fits := promoteToUnsigned(ls.Value, rv, ls.Bits); fits {
			return &ast.UnsignedIntLiteral{Value: uv, Tok: ls.Tok, Bits: ls.Bits}
		}
		f.errorf(diagnostics.CodeOverflow, ls.Tok, "%d %s %d overflows %s", ls.Value, e.Op.Type, rs.Value, ls.Bits)
		return e

	case lUnsigned && rUnsigned:
		if lu.Bits != ru.Bits {
			return e
		}
		sum, overflow := checkedAddUnsigned(lu.Value, ru.Value, sub, lu.Bits)
		if overflow {
			f.errorf(diagnostics.CodeOverflow, lu.Tok, "%d %s %d overflows %s", lu.Value, e.Op.Type, ru.Value, lu.Bits)
			return e
		}
		return &ast.UnsignedIntLiteral{Value: sum, Tok: lu.Tok, Bits: lu.Bits}

	case lSigned && rUnsigned:
		// signed(L) + unsigned(R): width from L; overflow in L's width is fatal.
		rv := int64(ru.Value)
		if sub {
			rv = -rv
		}
		sum, overflow := checkedAddSigned(ls.Value, rv, ls.Bits)
		if overflow {
			f.errorf(diagnostics.CodeOverflow, ls.Tok, "%d %s %d overflows %s", ls.Value, e.Op.Type, ru.Value, ls.Bits)
			return e
		}
		return &ast.SignedIntLiteral{Value: sum, Tok: ls.Tok, Bits: ls.Bits}

	case lUnsigned && rSigned:
		// unsigned(L) + signed(R): width from L, checked_add_signed semantics.
		delta := rs.Value
		if sub {
			delta = -delta
		}
		var sum int64
		if delta < 0 {
			sum = int64(lu.Value) + delta
		} else {
			sum = int64(lu.Value) + delta
		}
		max := unsignedMax(lu.Bits)
		if sum < 0 || uint64(sum) > max {
			f.errorf(diagnostics.CodeOverflow, lu.Tok, "%d %s %d overflows %s", lu.Value, e.Op.Type, rs.Value, lu.Bits)
			return e
		}
		return &ast.UnsignedIntLiteral{Value: uint64(sum), Tok: lu.Tok, Bits: lu.Bits}

	default:
		return e
	}
}

// foldSubscript implements spec.md §4.2: subscript of a literal array/slice
// by a non-negative literal index, in bounds, replaces the subscript with
// the indexed element.
func (f *Folder) foldSubscript(e *ast.Subscript) ast.Expression {
	if len(e.Args) != 1 {
		return e
	}
	var items []ast.Expression
	switch v := e.Subscripted.(type) {
	case *ast.Slice:
		items = v.Items
	case *ast.ArrayLiteral:
		items = v.Items
	default:
		return e
	}

	var idx int64
	switch v := e.Args[0].(type) {
	case *ast.SignedIntLiteral:
		idx = v.Value
	case *ast.UnsignedIntLiteral:
		idx = int64(v.Value)
	default:
		return e
	}

	if idx < 0 || idx >= int64(len(items)) {
		f.errorf(diagnostics.CodeOverflow, e.Paren, "index %d is out of bounds for a literal of length %d", idx, len(items))
		return e
	}
	return items[idx]
}

func signedRange(bits ast.IntBits) (min, max int64) {
	switch bits {
	case ast.B8:
		return math.MinInt8, math.MaxInt8
	case ast.B16:
		return math.MinInt16, math.MaxInt16
	case ast.B32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func unsignedMax(bits ast.IntBits) uint64 {
	switch bits {
	case ast.B8:
		return math.MaxUint8
	case ast.B16:
		return math.MaxUint16
	case ast.B32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// checkedAddSigned adds b to a at the given tagged width, reporting overflow
// rather than silently wrapping (spec.md: "apply checked_{add,sub} at the
// tagged width").
func checkedAddSigned(a, b int64, bits ast.IntBits) (result int64, overflow bool) {
	if bits == ast.B64 || bits == ast.AnyInt {
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return 0, true
		}
		return a + b, false
	}
	min, max := signedRange(bits)
	sum := a + b
	if sum < min || sum > max {
		return 0, true
	}
	return sum, false
}

// promoteToUnsigned implements "if the signed result's magnitude now exceeds
// i64::MAX, promote to unsigned literal of the same tagged width": retried
// as unsigned arithmetic, succeeding only if the true sum exceeds i64::MAX
// and fits the width's unsigned range, so a narrower-width overflow stays an
// error. Both addends must be non-negative (an overflow toward i64::MIN has
// no unsigned rendition); their uint64 sum is then exact, since
// 2*(2^63-1) < 2^64.
func promoteToUnsigned(a, b int64, bits ast.IntBits) (uint64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	u := uint64(a) + uint64(b)
	return u, u > math.MaxInt64 && u <= unsignedMax(bits)
}

func checkedAddUnsigned(a, b uint64, sub bool, bits ast.IntBits) (uint64, bool) {
	max := unsignedMax(bits)
	if sub {
		if b > a {
			return 0, true
		}
		return a - b, false
	}
	if a > max-b {
		return 0, true
	}
	sum := a + b
	return sum, sum > max
}
