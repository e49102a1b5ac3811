package irgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/irgen"
	"github.com/skye-lang/skyec/internal/types"
)

func TestMangleNamespacePath(t *testing.T) {
	require.Equal(t, "Name", irgen.Mangle(nil, "Name"))
	require.Equal(t, "Outer_DOT_Inner_DOT_Name", irgen.Mangle([]string{"Outer", "Inner"}, "Name"))
}

// Testable property 5: mangling is injective over (namespace path, generic
// arguments) — distinct argument lists never collide.
func TestMangleGenericInjective(t *testing.T) {
	i32 := types.IntType{Signed: true, Width: types.W32}
	u8 := types.IntType{Signed: false, Width: types.W8}

	cases := [][]types.Type{
		{i32},
		{u8},
		{types.FloatType{Width: types.FW64}},
		{types.Pointer{Inner: i32}},
		{types.Pointer{Inner: i32, IsReference: true}},
		{types.Pointer{Inner: i32, IsConst: true}},
		{types.Array{Inner: i32, Size: 4}},
		{i32, u8},
		{u8, i32},
		{types.Struct{FullName: "pkg_DOT_Foo"}},
	}

	seen := map[string][]types.Type{}
	for _, args := range cases {
		name := irgen.MangleGeneric("id", args)
		prev, dup := seen[name]
		require.False(t, dup, "mangling collision between %v and %v: %s", prev, args, name)
		seen[name] = args
	}
}

func TestVariantNames(t *testing.T) {
	require.Equal(t, "Shape_DOT_Circle", irgen.VariantConstructorName("Shape", "Circle"))
	require.Equal(t, "Shape_DOT_Kind_DOT_Circle", irgen.VariantKindName("Shape", "Circle"))
}
