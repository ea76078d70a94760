// Package compress implements the LZ4 block envelope that wraps a packet's
// serialized row payload on the wire.
//
// Level 0 stores the payload raw (the file's "uncompressed" flag value);
// levels 1-12 run it through LZ4 block compression. The file header only has 6 bits
// for the level (0-63), but lz4.CompressionLevel only defines Fast and
// Level1..Level9, so levels above 9 clamp to Level9.
package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse; the compressor
// maintains internal hash-table state that benefits from reuse across calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// Envelope compresses and decompresses a packet's row payload at a fixed
// level, 0-12. Level 0 is a raw passthrough; levels 1-12 select an
// lz4.CompressionLevel, clamped to the range LZ4 actually defines.
type Envelope struct {
	level int
}

// NewEnvelope returns an Envelope at the given level, clamped to [0, 12].
func NewEnvelope(level int) Envelope {
	if level < 0 {
		level = 0
	}
	if level > 12 {
		level = 12
	}
	return Envelope{level: level}
}

// Level returns the envelope's configured level.
func (e Envelope) Level() int { return e.level }

func (e Envelope) lz4Level() lz4.CompressionLevel {
	switch {
	case e.level <= 1:
		return lz4.Fast
	case e.level >= 9:
		return lz4.Level9
	default:
		return lz4.CompressionLevel(uint32(e.level-1) << 8)
	}
}

// Compress returns the wire payload for data: data itself at level 0, or the
// LZ4 block-compressed form otherwise. The caller records the uncompressed
// length separately (the packet header), since LZ4 blocks don't self-describe it.
func (e Envelope) Compress(data []byte) ([]byte, error) {
	if e.level == 0 || len(data) == 0 {
		return data, nil
	}

	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, dstSize)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	lc.Level = e.lz4Level()
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible input: lz4 declines to emit a block, store raw.
		return data, nil
	}

	return dst[:n], nil
}

// Decompress expands an LZ4 block back to rawLen bytes. At level 0 the input
// is returned unchanged. rawLen must be the exact uncompressed size recorded
// in the packet header; lz4 block format carries no length of its own.
func (e Envelope) Decompress(data []byte, rawLen int) ([]byte, error) {
	if e.level == 0 || rawLen == 0 {
		return data, nil
	}

	dst := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n != rawLen {
		return nil, errors.New("bcsv: lz4 decompressed size mismatch")
	}
	return dst, nil
}
