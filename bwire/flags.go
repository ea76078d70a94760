package bwire

// Flags is the file header's packed u16 flags field: bit 0 selects
// zero-order-hold row coding, bit 1 selects delta row coding, bits 2-7 carry
// the compression level (0-63, only 0-12 meaningful), bits 8-15 are reserved
// and must be zero.
type Flags uint16

const (
	FlagZeroOrderHold Flags = 1 << 0
	FlagDeltaEncoding Flags = 1 << 1

	compressionLevelShift = 2
	compressionLevelMask  = 0x3F // 6 bits
)

// NewFlags packs the zero-order-hold bit, delta bit, and compression level
// into a single Flags value. level is clamped to [0, 63].
func NewFlags(zeroOrderHold, deltaEncoding bool, level int) Flags {
	if level < 0 {
		level = 0
	}
	if level > compressionLevelMask {
		level = compressionLevelMask
	}
	var f Flags
	if zeroOrderHold {
		f |= FlagZeroOrderHold
	}
	if deltaEncoding {
		f |= FlagDeltaEncoding
	}
	f |= Flags(level&compressionLevelMask) << compressionLevelShift
	return f
}

// ZeroOrderHold reports whether the ZERO_ORDER_HOLD bit is set.
func (f Flags) ZeroOrderHold() bool { return f&FlagZeroOrderHold != 0 }

// DeltaEncoding reports whether the DELTA_ENCODING bit is set.
func (f Flags) DeltaEncoding() bool { return f&FlagDeltaEncoding != 0 }

// CompressionLevel extracts the 6-bit compression level field.
func (f Flags) CompressionLevel() int {
	return int(f>>compressionLevelShift) & compressionLevelMask
}
