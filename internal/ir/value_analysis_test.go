package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/ast"
	"github.com/skye-lang/skyec/internal/ir"
	"github.com/skye-lang/skyec/internal/types"
)

func i32() types.Type { return types.IntType{Signed: true, Width: types.W32} }

func literal(v int64) ir.Value {
	return ir.Value{Data: ir.Literal{Value: &ast.SignedIntLiteral{Value: v, Bits: ast.B32}}, Type: i32()}
}

func call(name string) ir.Value {
	return ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: name}}},
		Type: i32(),
	}
}

func TestKeepSideEffectsDropsPureValues(t *testing.T) {
	lit := literal(5)
	kept := lit.KeepSideEffects()
	require.True(t, kept.IsEmpty(), "a bare literal has no side effects")

	v := ir.Value{Data: ir.Variable{Name: "x"}, Type: i32()}
	require.True(t, v.KeepSideEffects().IsEmpty(), "a bare variable read has no side effects")
}

func TestKeepSideEffectsKeepsCalls(t *testing.T) {
	c := call("f")
	require.Equal(t, c, c.KeepSideEffects())

	lhs := call("f")
	rhs := literal(1)
	sum := ir.Value{Data: ir.Binary{Left: &lhs, Op: ir.OpAdd, Right: &rhs}, Type: i32()}
	kept := sum.KeepSideEffects()
	require.Equal(t, lhs, kept, "only the side-effecting operand survives")
}

func TestKeepSideEffectsUnwrapsGrouping(t *testing.T) {
	c := call("f")
	grouped := ir.Value{Data: ir.Grouping{Value: &c}, Type: i32()}
	require.Equal(t, c, grouped.KeepSideEffects())
}

func TestContainsUnknownWalksNestedValues(t *testing.T) {
	clean := call("f")
	require.False(t, clean.ContainsUnknown())

	bad := ir.Value{Data: ir.Empty{}, Type: types.Unknown{Name: "T"}}
	wrapped := ir.Value{
		Data: ir.Call{Callee: &ir.Value{Data: ir.Variable{Name: "f"}}, Args: []ir.Value{bad}},
		Type: i32(),
	}
	require.True(t, wrapped.ContainsUnknown())
}
