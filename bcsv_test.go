package bcsv

import (
	"path/filepath"
	"testing"

	"github.com/webertob/bcsv-go/layout"

	"github.com/stretchr/testify/require"
)

// TestCreateOpenRoundTrip exercises the top-level convenience API: write a
// small file with delta encoding and compression, then read it back both
// sequentially and by direct index.
func TestCreateOpenRoundTrip(t *testing.T) {
	lay, err := layout.New(
		layout.Column{Name: "id", Type: layout.INT32},
		layout.Column{Name: "value", Type: layout.DOUBLE},
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "round.bcsv")

	w, err := Create(path, lay, WithDeltaEncoding(), WithCompressionLevel(3), WithPacketSize(5))
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		r := w.Row()
		require.NoError(t, r.SetInt64(0, int64(i)))
		require.NoError(t, r.SetFloat64(1, float64(i)*1.5))
		require.NoError(t, w.WriteRow())
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for r.ReadNext() {
		id, err := r.Row().GetInt64(0)
		require.NoError(t, err)
		require.Equal(t, int64(count), id)
		count++
	}
	require.NoError(t, err)
	require.Empty(t, r.ErrorMsg())
	require.Equal(t, 12, count)

	d, err := OpenDirect(path)
	require.NoError(t, err)
	defer d.Close()

	row, err := d.Read(9)
	require.NoError(t, err)
	v, err := row.GetFloat64(1)
	require.NoError(t, err)
	require.InDelta(t, 13.5, v, 1e-9)
}
