package envelope

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTaggedFailureValue(t *testing.T) {
	f := Fail(KindInputNotFound, "input file not found: case9.raw").
		With("path", "case9.raw")

	env := Normalize(f, nil)

	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "input file not found: case9.raw", env.Message)
	assert.Equal(t, KindInputNotFound, env.ErrorKind())
	assert.Equal(t, "case9.raw", env.Data["path"])
}

func TestNormalizeTaggedFailureError(t *testing.T) {
	// A Failure wrapped through a normal error chain is still preserved.
	wrapped := fmt.Errorf("solve step: %w", StateNotLoaded("network"))

	env := Normalize(nil, wrapped)

	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, KindStateNotLoaded, env.ErrorKind())
	assert.Contains(t, env.Message, "no network is currently loaded")
}

func TestNormalizePlainError(t *testing.T) {
	env := Normalize(nil, errors.New("segfault in solver"))

	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, KindUnknownEngineError, env.ErrorKind())
	assert.Equal(t, "segfault in solver", env.Message)
}

func TestNormalizeSuccessMap(t *testing.T) {
	env := Normalize(map[string]any{
		"message":   "power flow completed",
		"converged": true,
	}, nil)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, "power flow completed", env.Message)
	assert.Equal(t, true, env.Data["converged"])
	assert.NotContains(t, env.Data, "message")
}

func TestNormalizeSuccessStruct(t *testing.T) {
	type pf struct {
		Converged  bool `json:"converged"`
		Iterations int  `json:"iterations"`
	}

	env := Normalize(pf{Converged: false, Iterations: 10}, nil)

	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, false, env.Data["converged"])
	assert.Equal(t, float64(10), env.Data["iterations"])
}

func TestNormalizeNil(t *testing.T) {
	env := Normalize(nil, nil)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Empty(t, env.Data)
}

func TestNormalizeFailureBeatsValue(t *testing.T) {
	// err wins over value per the priority order.
	env := Normalize(map[string]any{"converged": true}, errors.New("late crash"))
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "late crash", env.Message)
}
