package bwire

import (
	"testing"

	"github.com/webertob/bcsv-go/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsRoundTrip(t *testing.T) {
	f := NewFlags(true, false, 9)
	assert.True(t, f.ZeroOrderHold())
	assert.False(t, f.DeltaEncoding())
	assert.Equal(t, 9, f.CompressionLevel())

	f2 := NewFlags(false, true, 63)
	assert.False(t, f2.ZeroOrderHold())
	assert.True(t, f2.DeltaEncoding())
	assert.Equal(t, 63, f2.CompressionLevel())
}

func TestFileHeaderRoundTrip(t *testing.T) {
	h := NewFileHeader(256, 3, NewFlags(false, true, 5))
	b := h.Bytes()
	assert.Len(t, b, HeaderSize)
	assert.Equal(t, "BCSV", string(b[0:4]))

	got, err := ParseFileHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestFileHeaderBadMagic(t *testing.T) {
	b := NewFileHeader(1, 0, 0).Bytes()
	b[0] = 'X'
	_, err := ParseFileHeader(b)
	assert.Error(t, err)
}

func TestFileHeaderShort(t *testing.T) {
	_, err := ParseFileHeader([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestLayoutBlockRoundTrip(t *testing.T) {
	lay, err := layout.New(
		layout.Column{Name: "x", Type: layout.INT32},
		layout.Column{Name: "name", Type: layout.STRING},
		layout.Column{Name: "flag", Type: layout.BOOL},
	)
	require.NoError(t, err)

	b, err := EncodeLayout(lay)
	require.NoError(t, err)

	got, n, err := DecodeLayout(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), n)
	assert.True(t, lay.IsCompatible(got))
	assert.Equal(t, 3, got.ColumnCount())

	name, err := got.ColumnName(1)
	require.NoError(t, err)
	assert.Equal(t, "name", name)
}

func TestPacketHeaderRoundTrip(t *testing.T) {
	h := PacketHeader{Rows: 64, UncompressedLen: 4096, CompressedLen: 1024}
	b := h.Bytes()
	got, err := ParsePacketHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestByteIndexRoundTrip(t *testing.T) {
	offsets := []uint32{0, 10, 20, 20, 35}
	b := EncodeByteIndex(offsets)
	got, err := DecodeByteIndex(b, 4)
	require.NoError(t, err)
	assert.Equal(t, offsets, got)
}

func TestCatalogRoundTrip(t *testing.T) {
	entries := []CatalogEntry{
		{FileOffset: 13, FirstRowIndex: 0, Rows: 64},
		{FileOffset: 9001, FirstRowIndex: 64, Rows: 64},
	}
	b := EncodeCatalog(entries)
	got, err := DecodeCatalog(b, 2)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestFooterRoundTrip(t *testing.T) {
	f := Footer{CatalogOffset: 12345, CatalogEntries: 7, Crc32: 0xdeadbeef}
	b := f.Bytes()
	got, err := ParseFooter(b)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}
