package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeLevel0Passthrough(t *testing.T) {
	e := NewEnvelope(0)
	data := []byte("hello world")

	out, err := e.Compress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	back, err := e.Decompress(out, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("abcabcabcabc0123"), 256)

	for _, level := range []int{1, 5, 9, 12} {
		e := NewEnvelope(level)
		compressed, err := e.Compress(data)
		require.NoError(t, err)

		back, err := e.Decompress(compressed, len(data))
		require.NoError(t, err)
		assert.Equal(t, data, back, "level %d", level)
	}
}

func TestEnvelopeLevelClamp(t *testing.T) {
	assert.Equal(t, 0, NewEnvelope(-5).Level())
	assert.Equal(t, 12, NewEnvelope(99).Level())
}

func TestEnvelopeEmptyInput(t *testing.T) {
	e := NewEnvelope(6)
	out, err := e.Compress(nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	back, err := e.Decompress(nil, 0)
	require.NoError(t, err)
	assert.Nil(t, back)
}
