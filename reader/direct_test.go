package reader

import (
	"testing"

	"github.com/webertob/bcsv-go/writer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectAccessMatchesSequential(t *testing.T) {
	path := writeFile(t, 50, 8, writer.WithDeltaEncoding())

	seq, err := Open(path)
	require.NoError(t, err)
	defer seq.Close()

	var ids []int64
	for seq.ReadNext() {
		id, err := seq.Row().GetInt64(0)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Len(t, ids, 50)

	dr, err := OpenDirect(path)
	require.NoError(t, err)
	defer dr.Close()

	assert.Equal(t, uint64(50), dr.RowCount())

	// Read backwards, and skip around, to exercise the packet cache's replay
	// reset when an index before the cached cursor is requested.
	for i := 49; i >= 0; i-- {
		row, err := dr.Read(uint64(i))
		require.NoError(t, err)
		id, err := row.GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, ids[i], id)
	}

	// Jump across a packet boundary both ways (packet size 8: row 7 and 8
	// live in different packets).
	row, err := dr.Read(7)
	require.NoError(t, err)
	id, err := row.GetInt64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	row, err = dr.Read(8)
	require.NoError(t, err)
	id, err = row.GetInt64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
}

// TestDirectAccessRepeats exercises the replay path over rows that collapse
// to zero-length wire slices (the byte-identical-row shortcut), including
// random access into the middle of a repeated run.
func TestDirectAccessRepeats(t *testing.T) {
	path, ids := writeRepeatingFile(t, 4, writer.WithDeltaEncoding())

	dr, err := OpenDirect(path)
	require.NoError(t, err)
	defer dr.Close()

	assert.Equal(t, uint64(len(ids)), dr.RowCount())

	for i := len(ids) - 1; i >= 0; i-- {
		row, err := dr.Read(uint64(i))
		require.NoError(t, err)
		id, err := row.GetInt64(0)
		require.NoError(t, err)
		assert.Equal(t, ids[i], id, "row %d", i)
	}
}

func TestDirectAccessOutOfRange(t *testing.T) {
	path := writeFile(t, 5, 5)

	dr, err := OpenDirect(path)
	require.NoError(t, err)
	defer dr.Close()

	_, err = dr.Read(5)
	assert.Error(t, err)
}
