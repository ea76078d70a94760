package packet

import (
	"github.com/webertob/bcsv-go/bwire"
	"github.com/webertob/bcsv-go/compress"
	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/row"
	"github.com/webertob/bcsv-go/rowcodec"
)

// Builder accumulates rows for one packet: a growing payload buffer plus the
// byte-index offsets the writer needs once the packet is flushed.
type Builder struct {
	codec   *rowcodec.Dispatch
	payload *pool.ByteBuffer
	offsets []uint32
}

// NewBuilder returns an empty Builder bound to codec (already Setup against
// the file's layout).
func NewBuilder(codec *rowcodec.Dispatch) *Builder {
	b := &Builder{
		codec:   codec,
		payload: pool.GetPacketBuffer(),
		offsets: make([]uint32, 1, 256),
	}
	return b
}

// Rows returns the number of rows accumulated so far.
func (b *Builder) Rows() int { return len(b.offsets) - 1 }

// AddRow serializes r via the builder's codec and appends its byte-index
// entry. On error the payload is rolled back to its pre-row length and the
// byte index is left unextended, so the packet is unaffected by the failure.
func (b *Builder) AddRow(r *row.Row) error {
	before := b.payload.Len()
	if err := b.codec.Active().Serialize(r, b.payload); err != nil {
		b.payload.SetLength(before)
		return err
	}
	b.offsets = append(b.offsets, uint32(b.payload.Len()))
	return nil
}

// Reset clears the builder for the next packet and resets the codec's
// inter-row state.
func (b *Builder) Reset() {
	b.payload.Reset()
	b.offsets = b.offsets[:1]
	b.offsets[0] = 0
	b.codec.Active().Reset()
}

// Release returns the builder's payload buffer to the shared pool. Call once
// the builder will no longer be used.
func (b *Builder) Release() {
	pool.PutPacketBuffer(b.payload)
	b.payload = nil
}

// Flush compresses the accumulated payload at env's level and returns the
// packet's three wire sections: the fixed header, the byte-index block, and
// the compressed payload. At level 0, or when LZ4 declines an incompressible
// block, compressedPayload aliases the builder's own payload buffer — the
// caller must write it out before calling Reset or Release.
func (b *Builder) Flush(env compress.Envelope) (headerBytes, indexBytes, compressedPayload []byte, err error) {
	uncompressed := b.payload.Bytes()
	compressedPayload, err = env.Compress(uncompressed)
	if err != nil {
		return nil, nil, nil, err
	}

	h := bwire.PacketHeader{
		Rows:            uint32(b.Rows()),
		UncompressedLen: uint32(len(uncompressed)),
		CompressedLen:   uint32(len(compressedPayload)),
	}
	headerBytes = h.Bytes()
	indexBytes = bwire.EncodeByteIndex(b.offsets)
	return headerBytes, indexBytes, compressedPayload, nil
}
