package rowcodec

import (
	"testing"

	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDelta001DecodeLegacy hand-constructs a DELTA001 wire stream for a
// single INT32 column and checks the decoder reconstructs the running sum.
func TestDelta001DecodeLegacy(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "v", Type: layout.INT32})
	require.NoError(t, err)

	var dec Delta001Decoder
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	// Row 1: delta = 10 from prev 0, zigzag(10) = 20, 4-byte LE.
	row1 := []byte{0b00000001, 20, 0, 0, 0}
	// Row 2: delta = 15 from prev 10, zigzag(15) = 30, 4-byte LE.
	row2 := []byte{0b00000001, 30, 0, 0, 0}

	out := row.New(lay, false)

	require.NoError(t, dec.Deserialize(row1, &out))
	v, err := out.GetInt64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	require.NoError(t, dec.Deserialize(row2, &out))
	v, err = out.GetInt64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), v)
}

func TestDelta001EncodeUnsupported(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "v", Type: layout.INT32})
	require.NoError(t, err)

	var dec Delta001Decoder
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	r := row.New(lay, false)
	err = dec.Serialize(&r, nil)
	assert.Error(t, err)
}

func TestDelta001DecodeShort(t *testing.T) {
	lay, err := layout.New(layout.Column{Name: "v", Type: layout.INT32})
	require.NoError(t, err)

	var dec Delta001Decoder
	require.NoError(t, dec.Setup(lay))
	defer dec.Close()

	out := row.New(lay, false)
	err = dec.Deserialize([]byte{0b00000001, 1, 2}, &out)
	assert.Error(t, err)
}
