package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilealdway/PowerMCP/internal/envelope"
)

func TestGetBeforeSetFails(t *testing.T) {
	s := NewStore()

	h, err := s.Get("andes")
	assert.Nil(t, h)

	var f *envelope.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, envelope.KindStateNotLoaded, f.Kind)
	assert.False(t, s.Loaded())
}

func TestSetThenGet(t *testing.T) {
	s := NewStore()
	s.Set("andes", "caseA")

	h, err := s.Get("andes")
	require.NoError(t, err)
	assert.Equal(t, "caseA", h.Value)
	assert.Equal(t, "andes", h.Engine)
	assert.False(t, h.ActivatedAt.IsZero())
}

func TestOverwrite(t *testing.T) {
	s := NewStore()

	s.Set("andes", "A")
	h, err := s.Get("andes")
	require.NoError(t, err)
	assert.Equal(t, "A", h.Value)

	s.Set("andes", "B")
	h, err = s.Get("andes")
	require.NoError(t, err)
	assert.Equal(t, "B", h.Value)
}

func TestCrossEngineGetFails(t *testing.T) {
	s := NewStore()
	s.Set("andes", "A")

	_, err := s.Get("pandapower")

	var f *envelope.Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, envelope.KindStateNotLoaded, f.Kind)
}

func TestIndependentStores(t *testing.T) {
	a := NewStore()
	b := NewStore()

	a.Set("andes", "A")
	assert.True(t, a.Loaded())
	assert.False(t, b.Loaded())
}
