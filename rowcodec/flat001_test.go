package rowcodec

import (
	"testing"

	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlatRoundTripS1 mirrors S1: three columns, three distinct rows.
func TestFlatRoundTripS1(t *testing.T) {
	lay, err := layout.New(
		layout.Column{Name: "x", Type: layout.INT32},
		layout.Column{Name: "y", Type: layout.DOUBLE},
		layout.Column{Name: "s", Type: layout.STRING},
	)
	require.NoError(t, err)

	var codec Flat001
	require.NoError(t, codec.Setup(lay))
	defer codec.Close()

	type want struct {
		x int64
		y float64
		s string
	}
	rows := []want{
		{7, 3.5, "hi"},
		{-1, 0.0, ""},
		{1 << 30, 1e-300, "αβγ"},
	}

	buf := pool.NewByteBuffer(64)
	spans := make([][2]int, 0, len(rows))
	for _, w := range rows {
		r := row.New(lay, false)
		require.NoError(t, r.SetInt64(0, w.x))
		require.NoError(t, r.SetFloat64(1, w.y))
		require.NoError(t, r.SetString(2, w.s))

		start := buf.Len()
		require.NoError(t, codec.Serialize(&r, buf))
		spans = append(spans, [2]int{start, buf.Len()})
	}

	for i, w := range rows {
		wire := buf.B[spans[i][0]:spans[i][1]]
		out := row.New(lay, false)
		require.NoError(t, codec.Deserialize(wire, &out))

		x, err := out.GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, w.x, x)

		y, err := out.GetFloat64(1)
		require.NoError(t, err)
		assert.Equal(t, w.y, y)

		s, err := out.GetString(2)
		require.NoError(t, err)
		assert.Equal(t, w.s, s)
	}
}

func TestFlatDecodeShort(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "x", Type: layout.INT64})
	require.NoError(t, err)
	var codec Flat001
	require.NoError(t, codec.Setup(lay))
	defer codec.Close()

	out := row.New(lay, false)
	err = codec.Deserialize([]byte{1, 2, 3}, &out)
	assert.Error(t, err)
}
