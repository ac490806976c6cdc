package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry()
	Register[Position](r, "Position")

	name, data, err := r.Encode(&Position{X: 3, Y: 4})
	require.NoError(t, err)
	require.Equal(t, "Position", name)

	c, err := r.Decode(name, data)
	require.NoError(t, err)
	require.Equal(t, &Position{X: 3, Y: 4}, c)
}

func TestRegistryUnregistered(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Encode(&Position{})
	require.Error(t, err)
	_, err = r.Decode("Nope", []byte("{}"))
	require.Error(t, err)
	_, ok := r.Sample("Nope")
	require.False(t, ok)
}

func TestRegistrySample(t *testing.T) {
	r := NewRegistry()
	Register[Position](r, "Position")
	s, ok := r.Sample("Position")
	require.True(t, ok)
	require.IsType(t, (*Position)(nil), s)
	require.Equal(t, []string{"Position"}, r.Names())
}
