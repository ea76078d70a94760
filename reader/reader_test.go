package reader

import (
	"path/filepath"
	"testing"

	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/writer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T) layout.Layout {
	t.Helper()
	lay, err := layout.New(
		layout.Column{Name: "id", Type: layout.INT32},
		layout.Column{Name: "name", Type: layout.STRING},
		layout.Column{Name: "active", Type: layout.BOOL},
	)
	require.NoError(t, err)
	return lay
}

// writeFile writes n rows, packetSize rows per packet, through writer.Writer
// configured by opts, and returns the path.
func writeFile(t *testing.T, n int, packetSize uint32, opts ...writer.Option) string {
	t.Helper()
	lay := testLayout(t)
	path := filepath.Join(t.TempDir(), "data.bcsv")

	allOpts := append([]writer.Option{writer.WithPacketSize(packetSize)}, opts...)
	w, err := writer.Open(path, lay, allOpts...)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		r := w.Row()
		require.NoError(t, r.SetInt64(0, int64(i)))
		require.NoError(t, r.SetString(1, "row-"+string(rune('a'+i%26))))
		require.NoError(t, r.SetBool(2, i%3 == 0))
		require.NoError(t, w.WriteRow())
	}
	require.NoError(t, w.Close())
	return path
}

func TestSequentialReadFlat(t *testing.T) {
	path := writeFile(t, 25, 10)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for r.ReadNext() {
		id, err := r.Row().GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, int64(count), id)
		assert.Equal(t, uint64(count), r.RowPos())
		count++
	}
	assert.Empty(t, r.ErrorMsg())
	assert.Equal(t, 25, count)
}

func TestSequentialReadZoh(t *testing.T) {
	path := writeFile(t, 20, 7, writer.WithZeroOrderHold())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for r.ReadNext() {
		id, err := r.Row().GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, int64(count), id)
		count++
	}
	assert.Empty(t, r.ErrorMsg())
	assert.Equal(t, 20, count)
}

func TestSequentialReadDelta(t *testing.T) {
	path := writeFile(t, 30, 9, writer.WithDeltaEncoding())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for r.ReadNext() {
		id, err := r.Row().GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, int64(count), id)
		count++
	}
	assert.Empty(t, r.ErrorMsg())
	assert.Equal(t, 30, count)
}

// writeRepeatingFile writes rows that repeat in runs, to exercise the
// byte-identical-row shortcut across a packet boundary.
func writeRepeatingFile(t *testing.T, packetSize uint32, opts ...writer.Option) (string, []int64) {
	t.Helper()
	lay := testLayout(t)
	path := filepath.Join(t.TempDir(), "data.bcsv")

	allOpts := append([]writer.Option{writer.WithPacketSize(packetSize)}, opts...)
	w, err := writer.Open(path, lay, allOpts...)
	require.NoError(t, err)

	ids := []int64{0, 0, 0, 1, 1, 2, 2, 2, 2, 3}
	for _, id := range ids {
		r := w.Row()
		require.NoError(t, r.SetInt64(0, id))
		require.NoError(t, r.SetString(1, "same"))
		require.NoError(t, r.SetBool(2, true))
		require.NoError(t, w.WriteRow())
	}
	require.NoError(t, w.Close())
	return path, ids
}

func TestSequentialReadZohRepeats(t *testing.T) {
	path, ids := writeRepeatingFile(t, 4, writer.WithZeroOrderHold())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var got []int64
	for r.ReadNext() {
		id, err := r.Row().GetInt64(0)
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.Empty(t, r.ErrorMsg())
	assert.Equal(t, ids, got)
}

func TestSequentialReadDeltaRepeats(t *testing.T) {
	path, ids := writeRepeatingFile(t, 4, writer.WithDeltaEncoding())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var got []int64
	for r.ReadNext() {
		id, err := r.Row().GetInt64(0)
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.Empty(t, r.ErrorMsg())
	assert.Equal(t, ids, got)
}

func TestLayoutMatchesWritten(t *testing.T) {
	path := writeFile(t, 3, 10)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.Layout().ColumnCount())
	name, err := r.Layout().ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "name", name)
}
