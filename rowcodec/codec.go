// Package rowcodec implements the three interchangeable per-row wire
// codecs — FLAT001 (dense), ZOH001 (zero-order hold), DELTA002
// (delta/first-order-constant/VLE) — plus a decode-only legacy DELTA001,
// and the Dispatch wrapper that selects one per file/packet.
package rowcodec

import (
	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"
)

// ID values are the wire format's row codec id byte.
const (
	IDFlat001  = 0
	IDZoh001   = 1
	IDDelta001 = 2 // legacy, decode-only
	IDDelta002 = 3
)

// File header flag bits that select a codec.
const (
	FlagZeroOrderHold uint16 = 1 << 0
	FlagDeltaEncoding uint16 = 1 << 1
)

// Codec is the uniform contract every row wire format implements.
type Codec interface {
	// Setup acquires a layout.Guard and precomputes per-column offsets
	// grouped by scalar type. Must be called before Serialize/Deserialize.
	Setup(lay layout.Layout) error

	// Reset clears inter-row state (previous row, gradients). Called at
	// packet boundaries so every packet decodes independently.
	Reset()

	// Serialize appends r's per-row wire image to buf.
	Serialize(r *row.Row, buf *pool.ByteBuffer) error

	// Deserialize populates r by decoding wire, a single row's wire slice.
	Deserialize(wire []byte, r *row.Row) error

	// Close releases the layout.Guard acquired by Setup.
	Close()
}

// idOf returns the wire format id this codec implements.
func idOf(c Codec) int {
	switch c.(type) {
	case *Flat001:
		return IDFlat001
	case *Zoh001:
		return IDZoh001
	case *Delta002:
		return IDDelta002
	case *Delta001Decoder:
		return IDDelta001
	default:
		return -1
	}
}
