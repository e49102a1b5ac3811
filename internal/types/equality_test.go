package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/types"
)

func TestEqualityLevels(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	constPtr := types.Pointer{Inner: i32, IsConst: true}
	mutPtr := types.Pointer{Inner: i32}

	require.True(t, types.Equal(constPtr, mutPtr, types.Typewise), "Typewise ignores constness")
	require.False(t, types.Equal(constPtr, mutPtr, types.Strict), "Strict checks constness")
	require.False(t, types.Equal(constPtr, mutPtr, types.ConstStrict))

	ref := types.Pointer{Inner: i32, IsReference: true}
	require.False(t, types.Equal(ref, mutPtr, types.Typewise), "a reference is never a raw pointer")
}

func TestPermissiveMatchesUnknown(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	unknown := types.Unknown{Name: "T"}

	require.True(t, types.Equal(unknown, i32, types.Permissive))
	require.True(t, types.Equal(i32, unknown, types.Permissive))
	require.False(t, types.Equal(i32, unknown, types.Typewise))
}

func TestNominalEquality(t *testing.T) {
	foo := types.Struct{FullName: "Foo", Fields: map[string]types.Type{}}
	alsoFoo := types.Struct{FullName: "Foo"}
	bar := types.Struct{FullName: "Bar"}

	require.True(t, types.Equal(foo, alsoFoo, types.Strict), "structs compare by full name")
	require.False(t, types.Equal(foo, bar, types.Strict))
}

func TestGroupIsSymmetric(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	f64 := types.FloatType{Width: types.FW64}

	a := types.Group{First: i32, Second: f64}
	b := types.Group{First: f64, Second: i32}
	require.True(t, types.Equal(a, b, types.Strict))
}

func TestSatisfiesBound(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	f64 := types.FloatType{Width: types.FW64}
	u8 := types.IntType{Signed: false, Width: types.W8}

	require.True(t, types.SatisfiesBound(i32, nil), "nil bound accepts anything")
	require.True(t, types.SatisfiesBound(i32, types.Group{First: i32, Second: f64}))
	require.False(t, types.SatisfiesBound(u8, types.Group{First: i32, Second: f64}))
	require.True(t, types.SatisfiesBound(f64, f64))
}

func TestContainsUnknownRecurses(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	require.False(t, types.ContainsUnknown(i32))
	require.True(t, types.ContainsUnknown(types.Pointer{Inner: types.Unknown{Name: "T"}}))
	require.True(t, types.ContainsUnknown(types.Function{Params: []types.Type{types.Unknown{Name: "T"}}, Return: i32}))
	require.False(t, types.ContainsUnknown(types.Function{Return: i32}))
}
