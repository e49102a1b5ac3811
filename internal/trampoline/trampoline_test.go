package trampoline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skye-lang/skyec/internal/trampoline"
)

// A recursion far deeper than any native stack would tolerate with large
// frames must complete (spec.md §5/§9 deep-nesting requirement).
func TestDeepRecursionCompletes(t *testing.T) {
	const depth = 200_000

	var descend func(s *trampoline.Stack, n int) error
	descend = func(s *trampoline.Stack, n int) error {
		if n == 0 {
			return nil
		}
		return s.Call(func(s *trampoline.Stack) error {
			return descend(s, n-1)
		})
	}

	require.NoError(t, descend(trampoline.New(), depth))
}

func TestCallPropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	err := trampoline.New().Call(func(*trampoline.Stack) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
}

func TestCallValueSynthesizes(t *testing.T) {
	var sum func(s *trampoline.Stack, n int) (int, error)
	sum = func(s *trampoline.Stack, n int) (int, error) {
		if n == 0 {
			return 0, nil
		}
		return trampoline.CallValue(s, func(s *trampoline.Stack) (int, error) {
			rest, err := sum(s, n-1)
			return rest + n, err
		})
	}

	total, err := sum(trampoline.New(), 10_000)
	require.NoError(t, err)
	require.Equal(t, 10_000*10_001/2, total)
}
