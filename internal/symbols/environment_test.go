package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/symbols"
)

func TestLookupWalksChain(t *testing.T) {
	globals := symbols.NewGlobals()
	globals.Define("outer", symbols.Symbol{Type: "g"})

	child := globals.Child()
	child.Define("inner", symbols.Symbol{Type: "c"})

	sym, ok := child.Get("outer")
	require.True(t, ok)
	require.Equal(t, "g", sym.Type)

	_, ok = globals.Get("inner")
	require.False(t, ok, "a child binding must not leak upward")

	_, ok = child.GetLocal("outer")
	require.False(t, ok, "GetLocal must not walk the chain")
}

func TestShadowingLeavesOuterIntact(t *testing.T) {
	globals := symbols.NewGlobals()
	globals.Define("x", symbols.Symbol{Type: "outer"})

	child := globals.Child()
	child.Define("x", symbols.Symbol{Type: "inner"})

	sym, _ := child.Get("x")
	require.Equal(t, "inner", sym.Type)
	sym, _ = globals.Get("x")
	require.Equal(t, "outer", sym.Type)
}

func TestAssignRewritesDefiningScope(t *testing.T) {
	globals := symbols.NewGlobals()
	globals.Define("x", symbols.Symbol{Type: "old"})
	child := globals.Child()

	require.True(t, child.Assign("x", symbols.Symbol{Type: "new"}))
	sym, _ := globals.Get("x")
	require.Equal(t, "new", sym.Type)

	require.False(t, child.Assign("missing", symbols.Symbol{}))
}

// Template capture (spec.md §9): a clone taken at definition time must not
// see later additions to the real globals.
func TestCloneGlobalsIsolation(t *testing.T) {
	globals := symbols.NewGlobals()
	globals.Define("early", symbols.Symbol{Type: "e"})

	captured := globals.CloneGlobals()
	globals.Define("late", symbols.Symbol{Type: "l"})

	_, ok := captured.Get("early")
	require.True(t, ok)
	_, ok = captured.Get("late")
	require.False(t, ok, "later globals must not leak into the captured clone")

	captured.Define("inside", symbols.Symbol{})
	_, ok = globals.Get("inside")
	require.False(t, ok, "writes to the clone must not touch the real globals")
}
