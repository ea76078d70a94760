package rowcodec

import (
	"testing"

	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeltaFoCLinearS3 mirrors S3: INT32 "v", rows 100,110,120,130,140.
// Row 0 delta-from-zero, row 1 delta=10, rows 2-4 FoC (zero extra bytes).
func TestDeltaFoCLinearS3(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "v", Type: layout.INT32})
	require.NoError(t, err)

	var enc Delta002
	require.NoError(t, enc.Setup(lay))
	defer enc.Close()

	values := []int64{100, 110, 120, 130, 140}
	buf := pool.NewByteBuffer(64)
	spans := make([][2]int, 0, len(values))
	for _, v := range values {
		r := row.New(lay, false)
		require.NoError(t, r.SetInt64(0, v))
		start := buf.Len()
		require.NoError(t, enc.Serialize(&r, buf))
		spans = append(spans, [2]int{start, buf.Len()})
	}

	headerLen := 1 // ceil(3 bits / 8)
	// Rows 2-4 are FoC: header only, no delta bytes.
	for i := 2; i < 5; i++ {
		assert.Equal(t, headerLen, spans[i][1]-spans[i][0], "row %d", i)
	}

	var dec Delta002
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	out := row.New(lay, false)
	for i, want := range values {
		wire := buf.B[spans[i][0]:spans[i][1]]
		require.NoError(t, dec.Deserialize(wire, &out))
		got, err := out.GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", i)
	}
}

// TestDeltaZohPlateauS4 mirrors S4: DOUBLE "t", rows 1.5,1.5,1.5,2.0.
func TestDeltaZohPlateauS4(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "t", Type: layout.DOUBLE})
	require.NoError(t, err)

	var enc Delta002
	require.NoError(t, enc.Setup(lay))
	defer enc.Close()

	values := []float64{1.5, 1.5, 1.5, 2.0}
	buf := pool.NewByteBuffer(64)
	spans := make([][2]int, 0, len(values))
	for _, v := range values {
		r := row.New(lay, false)
		require.NoError(t, r.SetFloat64(0, v))
		start := buf.Len()
		require.NoError(t, enc.Serialize(&r, buf))
		spans = append(spans, [2]int{start, buf.Len()})
	}

	headerLen := 1
	// Rows 1,2 are byte-identical to their predecessor: the repeat shortcut
	// writes nothing rather than a ZOH header.
	assert.Equal(t, 0, spans[1][1]-spans[1][0])
	assert.Equal(t, 0, spans[2][1]-spans[2][0])
	assert.Greater(t, spans[3][1]-spans[3][0], headerLen) // delta, gradient was zeroed

	var dec Delta002
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	out := row.New(lay, false)
	for i, want := range values {
		wire := buf.B[spans[i][0]:spans[i][1]]
		if len(wire) > 0 {
			require.NoError(t, dec.Deserialize(wire, &out))
		}
		got, err := out.GetFloat64(0)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", i)
	}
}

func TestDeltaMixedWithStringsAndBools(t *testing.T) {
	lay, err := layout.New(
		layout.Column{Name: "flag", Type: layout.BOOL},
		layout.Column{Name: "v", Type: layout.UINT16},
		layout.Column{Name: "name", Type: layout.STRING},
	)
	require.NoError(t, err)

	var enc Delta002
	require.NoError(t, enc.Setup(lay))
	defer enc.Close()
	var dec Delta002
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	buf := pool.NewByteBuffer(64)
	type rowVal struct {
		flag bool
		v    uint64
		name string
	}
	rows := []rowVal{
		{true, 5, "a"},
		{true, 5, "a"},
		{false, 9, "b"},
	}

	spans := make([][2]int, 0, len(rows))
	for _, rv := range rows {
		r := row.New(lay, false)
		require.NoError(t, r.SetBool(0, rv.flag))
		require.NoError(t, r.SetUint64(1, rv.v))
		require.NoError(t, r.SetString(2, rv.name))
		start := buf.Len()
		require.NoError(t, enc.Serialize(&r, buf))
		spans = append(spans, [2]int{start, buf.Len()})
	}

	// Row 1 is byte-identical to row 0 (repeat shortcut): zero-length wire,
	// never passed to Deserialize, mirroring how a reader treats it.
	assert.Equal(t, 0, spans[1][1]-spans[1][0])

	out := row.New(lay, false)
	for i, rv := range rows {
		wire := buf.B[spans[i][0]:spans[i][1]]
		if len(wire) > 0 {
			require.NoError(t, dec.Deserialize(wire, &out))
		}
		f, err := out.GetBool(0)
		require.NoError(t, err)
		assert.Equal(t, rv.flag, f)
		v, err := out.GetUint64(1)
		require.NoError(t, err)
		assert.Equal(t, rv.v, v)
		s, err := out.GetString(2)
		require.NoError(t, err)
		assert.Equal(t, rv.name, s)
	}
}

// TestDeltaUint16WideJump covers a jump large enough to overflow the header
// code field if the delta were computed at int64 width instead of the
// column's own 16-bit width: 0 -> 40000 zigzag-encodes to a value needing 3
// bytes at int64 width (code 4, which does not fit codeBitsForWidth(2)'s
// 2-bit field) but only 2 bytes once the subtraction wraps at 16 bits.
func TestDeltaUint16WideJump(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "v", Type: layout.UINT16})
	require.NoError(t, err)

	var enc Delta002
	require.NoError(t, enc.Setup(lay))
	defer enc.Close()

	values := []uint64{0, 40000, 5, 65000}
	buf := pool.NewByteBuffer(64)
	spans := make([][2]int, 0, len(values))
	for _, v := range values {
		r := row.New(lay, false)
		require.NoError(t, r.SetUint64(0, v))
		start := buf.Len()
		require.NoError(t, enc.Serialize(&r, buf))
		spans = append(spans, [2]int{start, buf.Len()})
	}

	var dec Delta002
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	out := row.New(lay, false)
	for i, want := range values {
		wire := buf.B[spans[i][0]:spans[i][1]]
		if len(wire) > 0 {
			require.NoError(t, dec.Deserialize(wire, &out))
		}
		got, err := out.GetUint64(0)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", i)
	}
}
