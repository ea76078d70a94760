package bwire

import (
	"encoding/binary"

	"github.com/webertob/bcsv-go/errs"
)

// FooterSize is the fixed byte length of Footer: catalogOffset(8) +
// catalogEntries(4) + crc32(4).
const FooterSize = 16

// Footer is the file's fixed-size trailing record.
type Footer struct {
	CatalogOffset  uint64
	CatalogEntries uint32
	Crc32          uint32
}

// Bytes serializes the footer into a new FooterSize-byte slice.
func (f Footer) Bytes() []byte {
	b := make([]byte, FooterSize)
	binary.LittleEndian.PutUint64(b[0:8], f.CatalogOffset)
	binary.LittleEndian.PutUint32(b[8:12], f.CatalogEntries)
	binary.LittleEndian.PutUint32(b[12:16], f.Crc32)
	return b
}

// ParseFooter decodes a Footer from data, which must be at least FooterSize
// bytes.
func ParseFooter(data []byte) (Footer, error) {
	if len(data) < FooterSize {
		return Footer{}, &errs.DecodeShortError{Need: FooterSize, Have: len(data)}
	}
	return Footer{
		CatalogOffset:  binary.LittleEndian.Uint64(data[0:8]),
		CatalogEntries: binary.LittleEndian.Uint32(data[8:12]),
		Crc32:          binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}
