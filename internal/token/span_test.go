package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/token"
)

// Testable property 1's merge rule: spans merge only when they share a file
// and a line; otherwise the left span dominates.
func TestMergeSameLine(t *testing.T) {
	src := token.Source{Text: "let x = a + b", Filename: "main.skye"}
	left := token.Span{Source: src, Start: 4, End: 5, Line: 1}
	right := token.Span{Source: src, Start: 8, End: 13, Line: 1}

	merged := token.Merge(left, right)
	require.Equal(t, 4, merged.Start)
	require.Equal(t, 13, merged.End)
	require.Equal(t, 1, merged.Line)
}

func TestMergeDifferentLineLeftDominates(t *testing.T) {
	src := token.Source{Filename: "main.skye"}
	left := token.Span{Source: src, Start: 4, End: 5, Line: 1}
	right := token.Span{Source: src, Start: 20, End: 25, Line: 2}

	require.Equal(t, left, token.Merge(left, right))
}

func TestMergeDifferentFileLeftDominates(t *testing.T) {
	left := token.Span{Source: token.Source{Filename: "a.skye"}, Start: 0, End: 3, Line: 1}
	right := token.Span{Source: token.Source{Filename: "b.skye"}, Start: 0, End: 3, Line: 1}

	require.Equal(t, left, token.Merge(left, right))
}

func TestContains(t *testing.T) {
	file := token.Span{Source: token.Source{Filename: "a.skye"}, Start: 0, End: 100}
	inner := token.Span{Source: token.Source{Filename: "a.skye"}, Start: 10, End: 20}
	other := token.Span{Source: token.Source{Filename: "b.skye"}, Start: 10, End: 20}

	require.True(t, file.Contains(inner))
	require.False(t, file.Contains(other))
	require.False(t, inner.Contains(file))
}

func TestFromToken(t *testing.T) {
	tok := token.Token{Source: token.Source{Filename: "a.skye"}, Pos: 3, End: 7, Line: 2}
	span := token.FromToken(tok)
	require.Equal(t, 3, span.Start)
	require.Equal(t, 7, span.End)
	require.Equal(t, 2, span.Line)
}
