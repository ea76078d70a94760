package bwire

import (
	"encoding/binary"

	"github.com/webertob/bcsv-go/errs"
)

// Magic is the 4-byte file signature, ASCII "BCSV".
var Magic = [4]byte{'B', 'C', 'S', 'V'}

const (
	FormatMajor uint8 = 1
	FormatMinor uint8 = 0

	// HeaderSize is the fixed byte length of FileHeader on disk:
	// magic(4) + major(1) + minor(1) + flags(2) + packetSize(4) + codecID(1).
	HeaderSize = 13
)

// FileHeader is the file's fixed-size leading record.
type FileHeader struct {
	VersionMajor uint8
	VersionMinor uint8
	Flags        Flags
	PacketSize   uint32
	RowCodecID   uint8
}

// NewFileHeader builds a current-version FileHeader.
func NewFileHeader(packetSize uint32, codecID uint8, flags Flags) FileHeader {
	return FileHeader{
		VersionMajor: FormatMajor,
		VersionMinor: FormatMinor,
		Flags:        flags,
		PacketSize:   packetSize,
		RowCodecID:   codecID,
	}
}

// Bytes serializes the header into a new HeaderSize-byte slice.
func (h FileHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], Magic[:])
	b[4] = h.VersionMajor
	b[5] = h.VersionMinor
	binary.LittleEndian.PutUint16(b[6:8], uint16(h.Flags))
	binary.LittleEndian.PutUint32(b[8:12], h.PacketSize)
	b[12] = h.RowCodecID
	return b
}

// ParseFileHeader decodes and validates a FileHeader from data, which must be
// at least HeaderSize bytes. Rejects a bad magic or a major version this
// build does not understand.
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < HeaderSize {
		return FileHeader{}, &errs.DecodeShortError{Need: HeaderSize, Have: len(data)}
	}
	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return FileHeader{}, &errs.CorruptFileError{Offset: 0, Msg: "bad magic"}
	}
	h := FileHeader{
		VersionMajor: data[4],
		VersionMinor: data[5],
		Flags:        Flags(binary.LittleEndian.Uint16(data[6:8])),
		PacketSize:   binary.LittleEndian.Uint32(data[8:12]),
		RowCodecID:   data[12],
	}
	if h.VersionMajor > FormatMajor {
		return FileHeader{}, &errs.CorruptFileError{Offset: 4, Msg: "format version too new"}
	}
	return h, nil
}
