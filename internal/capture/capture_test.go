package capture

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedCapturesBothStreams(t *testing.T) {
	stdout, stderr, err := Scoped(func() error {
		fmt.Println("iteration 1 converged")
		fmt.Fprintln(os.Stderr, "numerical warning")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "iteration 1 converged\n", stdout)
	assert.Equal(t, "numerical warning\n", stderr)
}

func TestScopedPassesErrorThrough(t *testing.T) {
	want := errors.New("engine blew up")

	stdout, _, err := Scoped(func() error {
		fmt.Println("partial output")
		return want
	})

	assert.Equal(t, want, err)
	assert.Equal(t, "partial output\n", stdout)
}

func TestScopedRestoresStreams(t *testing.T) {
	origOut, origErr := os.Stdout, os.Stderr

	_, _, err := Scoped(func() error { return nil })
	require.NoError(t, err)

	assert.Same(t, origOut, os.Stdout)
	assert.Same(t, origErr, os.Stderr)
}

func TestScopedRestoresOnPanic(t *testing.T) {
	origOut, origErr := os.Stdout, os.Stderr

	assert.Panics(t, func() {
		_, _, _ = Scoped(func() error {
			panic("engine corrupted its own heap")
		})
	})

	assert.Same(t, origOut, os.Stdout)
	assert.Same(t, origErr, os.Stderr)
}

func TestScopedNestedCallsSequential(t *testing.T) {
	for i := 0; i < 3; i++ {
		stdout, _, err := Scoped(func() error {
			fmt.Printf("run %d\n", i)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("run %d\n", i), stdout)
	}
}
