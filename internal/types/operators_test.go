package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/token"
	"github.com/skye-lang/skyec/internal/types"
)

func TestBinaryMethodNames(t *testing.T) {
	name, ok := types.BinaryMethodName(token.Plus)
	require.True(t, ok)
	require.Equal(t, types.MethodAdd, name)

	_, ok = types.BinaryMethodName(token.LogicAnd)
	require.False(t, ok, "&& always lowers to control flow, never a method")
}

func TestNativeBinarySupport(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	f64 := types.FloatType{Width: types.FW64}
	ptr := types.Pointer{Inner: i32}
	str := types.Struct{FullName: "Foo"}

	require.True(t, types.NativelySupportsBinary(i32, token.Plus, i32))
	require.True(t, types.NativelySupportsBinary(f64, token.Star, f64))
	require.True(t, types.NativelySupportsBinary(ptr, token.Plus, i32), "pointer arithmetic")
	require.True(t, types.NativelySupportsBinary(ptr, token.EqualEqual, ptr))
	require.False(t, types.NativelySupportsBinary(f64, token.Amp, f64), "no bitwise ops on floats")
	require.False(t, types.NativelySupportsBinary(str, token.Plus, str))
}

func TestClassify(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	str := types.Struct{FullName: "Foo"}

	require.Equal(t, types.Native, types.Classify(i32, token.Plus, i32, false))
	require.Equal(t, types.ThirdParty, types.Classify(str, token.Plus, str, true))
	require.Equal(t, types.No, types.Classify(str, token.Plus, str, false))
}
