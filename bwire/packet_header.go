package bwire

import (
	"encoding/binary"

	"github.com/webertob/bcsv-go/errs"
)

// PacketHeaderSize is the fixed byte length of PacketHeader: rows(4) +
// uncompressedLen(4) + compressedLen(4).
const PacketHeaderSize = 12

// PacketHeader is a packet's fixed-size leading record.
type PacketHeader struct {
	Rows            uint32
	UncompressedLen uint32
	CompressedLen   uint32
}

// Bytes serializes the header into a new PacketHeaderSize-byte slice.
func (h PacketHeader) Bytes() []byte {
	b := make([]byte, PacketHeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.Rows)
	binary.LittleEndian.PutUint32(b[4:8], h.UncompressedLen)
	binary.LittleEndian.PutUint32(b[8:12], h.CompressedLen)
	return b
}

// ParsePacketHeader decodes a PacketHeader from data, which must be at least
// PacketHeaderSize bytes.
func ParsePacketHeader(data []byte) (PacketHeader, error) {
	if len(data) < PacketHeaderSize {
		return PacketHeader{}, &errs.DecodeShortError{Need: PacketHeaderSize, Have: len(data)}
	}
	return PacketHeader{
		Rows:            binary.LittleEndian.Uint32(data[0:4]),
		UncompressedLen: binary.LittleEndian.Uint32(data[4:8]),
		CompressedLen:   binary.LittleEndian.Uint32(data[8:12]),
	}, nil
}

// EncodeByteIndex serializes rows+1 u32 offsets as a contiguous little-endian
// block, the packet's byte index.
func EncodeByteIndex(offsets []uint32) []byte {
	b := make([]byte, 4*len(offsets))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(b[4*i:4*i+4], off)
	}
	return b
}

// DecodeByteIndex parses rows+1 u32 offsets from the start of data.
func DecodeByteIndex(data []byte, rows int) ([]uint32, error) {
	n := rows + 1
	need := 4 * n
	if len(data) < need {
		return nil, &errs.DecodeShortError{Need: need, Have: len(data)}
	}
	offsets := make([]uint32, n)
	for i := 0; i < n; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[4*i : 4*i+4])
	}
	return offsets, nil
}
