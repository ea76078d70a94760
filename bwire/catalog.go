package bwire

import (
	"encoding/binary"

	"github.com/webertob/bcsv-go/errs"
)

// CatalogEntrySize is the fixed byte length of one CatalogEntry: fileOffset(8)
// + firstRowIndex(8) + rows(4).
const CatalogEntrySize = 20

// CatalogEntry locates one packet within the file.
type CatalogEntry struct {
	FileOffset    uint64
	FirstRowIndex uint64
	Rows          uint32
}

// Bytes serializes the entry into a new CatalogEntrySize-byte slice.
func (e CatalogEntry) Bytes() []byte {
	b := make([]byte, CatalogEntrySize)
	binary.LittleEndian.PutUint64(b[0:8], e.FileOffset)
	binary.LittleEndian.PutUint64(b[8:16], e.FirstRowIndex)
	binary.LittleEndian.PutUint32(b[16:20], e.Rows)
	return b
}

// ParseCatalogEntry decodes one CatalogEntry from data.
func ParseCatalogEntry(data []byte) (CatalogEntry, error) {
	if len(data) < CatalogEntrySize {
		return CatalogEntry{}, &errs.DecodeShortError{Need: CatalogEntrySize, Have: len(data)}
	}
	return CatalogEntry{
		FileOffset:    binary.LittleEndian.Uint64(data[0:8]),
		FirstRowIndex: binary.LittleEndian.Uint64(data[8:16]),
		Rows:          binary.LittleEndian.Uint32(data[16:20]),
	}, nil
}

// EncodeCatalog serializes a full catalog as a contiguous block of entries.
func EncodeCatalog(entries []CatalogEntry) []byte {
	b := make([]byte, CatalogEntrySize*len(entries))
	for i, e := range entries {
		copy(b[CatalogEntrySize*i:], e.Bytes())
	}
	return b
}

// DecodeCatalog parses n CatalogEntry records from the start of data.
func DecodeCatalog(data []byte, n int) ([]CatalogEntry, error) {
	need := CatalogEntrySize * n
	if len(data) < need {
		return nil, &errs.DecodeShortError{Need: need, Have: len(data)}
	}
	entries := make([]CatalogEntry, n)
	for i := 0; i < n; i++ {
		e, err := ParseCatalogEntry(data[CatalogEntrySize*i:])
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}
