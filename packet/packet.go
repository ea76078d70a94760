// Package packet implements the BCSV packet: a self-contained, independently
// decodable run of rows with its own byte index and LZ4 compression envelope.
// Builder accumulates rows on the write side; Packet holds a decoded packet
// ready for row-slice lookups on the read side.
package packet

import (
	"github.com/webertob/bcsv-go/bwire"
	"github.com/webertob/bcsv-go/compress"
	"github.com/webertob/bcsv-go/errs"
)

// Packet is a decoded packet: its header, byte index, and decompressed
// payload, ready for per-row slicing.
type Packet struct {
	Header  bwire.PacketHeader
	Offsets []uint32 // len == Header.Rows + 1
	Payload []byte   // len == Header.UncompressedLen
}

// Decode parses a packet from its three wire sections: the fixed header, the
// byte-index block, and the (possibly compressed) payload. env decompresses
// the payload using the file's configured compression level.
func Decode(headerBytes, indexBytes, compressedPayload []byte, env compress.Envelope) (Packet, error) {
	h, err := bwire.ParsePacketHeader(headerBytes)
	if err != nil {
		return Packet{}, err
	}

	offsets, err := bwire.DecodeByteIndex(indexBytes, int(h.Rows))
	if err != nil {
		return Packet{}, err
	}

	payload, err := decompressPayload(compressedPayload, int(h.UncompressedLen), env)
	if err != nil {
		return Packet{}, err
	}
	if len(payload) != int(h.UncompressedLen) {
		return Packet{}, &errs.CorruptFileError{Msg: "packet payload length mismatch"}
	}

	return Packet{Header: h, Offsets: offsets, Payload: payload}, nil
}

// decompressPayload returns a payload whose length already equals the
// uncompressed length unchanged: compress.Envelope.Compress stores the
// payload raw at level 0 and when LZ4 declines an incompressible block.
// Any other payload goes through compress.Envelope.Decompress, which by
// itself passes data through only at level 0 or for an empty payload.
func decompressPayload(data []byte, rawLen int, env compress.Envelope) ([]byte, error) {
	if len(data) == rawLen {
		return data, nil
	}
	return env.Decompress(data, rawLen)
}

// RowSlice returns the uncompressed wire bytes for row i within the packet.
func (p Packet) RowSlice(i int) ([]byte, error) {
	if i < 0 || i+1 >= len(p.Offsets) {
		return nil, errs.ErrOutOfRange
	}
	return p.Payload[p.Offsets[i]:p.Offsets[i+1]], nil
}

// RowCount returns the number of rows in the packet.
func (p Packet) RowCount() int { return int(p.Header.Rows) }
