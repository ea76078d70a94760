package rowcodec

import (
	"testing"

	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestZohPlateauS2 mirrors S2: bool + int64, rows (true,100) x3, (false,100).
func TestZohPlateauS2(t *testing.T) {
	lay, err := layout.New(
		layout.Column{Name: "b", Type: layout.BOOL},
		layout.Column{Name: "k", Type: layout.INT64},
	)
	require.NoError(t, err)

	var enc Zoh001
	require.NoError(t, enc.Setup(lay))
	defer enc.Close()

	type rowVal struct {
		b bool
		k int64
	}
	rows := []rowVal{{true, 100}, {true, 100}, {true, 100}, {false, 100}}

	buf := pool.NewByteBuffer(64)
	spans := make([][2]int, 0, len(rows))
	for _, rv := range rows {
		r := row.New(lay, false)
		require.NoError(t, r.SetBool(0, rv.b))
		require.NoError(t, r.SetInt64(1, rv.k))
		start := buf.Len()
		require.NoError(t, enc.Serialize(&r, buf))
		spans = append(spans, [2]int{start, buf.Len()})
	}

	// Row 0 is a full emit: header only (1 byte for 2 columns), k changed so 8 bytes follow.
	assert.Equal(t, 1+8, spans[0][1]-spans[0][0])
	// Rows 1,2 are byte-identical to their predecessor -> zero-length repeat.
	assert.Equal(t, 0, spans[1][1]-spans[1][0])
	assert.Equal(t, 0, spans[2][1]-spans[2][0])
	// Row 3: bool changes to false, int unchanged -> header-only.
	assert.Equal(t, 1, spans[3][1]-spans[3][0])

	var dec Zoh001
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	// Rows must be decoded into the same reused Row: ZOH only overwrites
	// changed columns, so unchanged columns must retain their prior value. A
	// zero-length wire slice (the repeat shortcut) is never passed to
	// Deserialize, mirroring how a reader treats it.
	out := row.New(lay, false)
	for i, rv := range rows {
		wire := buf.B[spans[i][0]:spans[i][1]]
		if len(wire) > 0 {
			require.NoError(t, dec.Deserialize(wire, &out))
		}
		b, err := out.GetBool(0)
		require.NoError(t, err)
		assert.Equal(t, rv.b, b)
		k, err := out.GetInt64(1)
		require.NoError(t, err)
		assert.Equal(t, rv.k, k)
	}
}
