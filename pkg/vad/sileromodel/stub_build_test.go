//go:build !silero

package sileromodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReturnsUnavailableWithoutSileroTag(t *testing.T) {
	m, err := New("model.onnx", "")
	require.Nil(t, m)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestModelProbabilityReturnsUnavailable(t *testing.T) {
	var m *Model
	_, err := m.Probability([]float32{0.1})
	require.ErrorIs(t, err, ErrUnavailable)
}
