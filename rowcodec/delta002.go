package rowcodec

import (
	"math"
	"math/bits"

	"github.com/webertob/bcsv-go/bitset"
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"
)

// codeBitsForWidth returns the header field width, in bits, for a numeric
// column of the given byte width.
func codeBitsForWidth(width int) int {
	switch width {
	case 1:
		return 2
	case 2:
		return 2
	case 4:
		return 3
	default:
		return 4
	}
}

// deltaState tracks one non-bool, non-string column's previous value and
// gradient across a packet. Integer and float columns use separate fields
// because gradient arithmetic (for the FoC prediction check) happens in the
// column's natural domain; the wire bytes for a delta code use a different
// transform (zigzag for ints, IEEE bit-XOR for floats). unsigned records
// whether the column is one of the UINTn types, needed to reinterpret a
// width-wrapped sum back into the right logical value.
type deltaState struct {
	isFloat  bool
	unsigned bool
	width    int
	prevInt  int64
	gradInt  int64
	prevF    float64
	gradF    float64
	gradSet  bool
}

// Delta002 is the preferred codec: a packed header of per-column codes
// (ZOH / first-order-constant / N-byte VLE delta) plus the corresponding
// delta bytes.
type Delta002 struct {
	lay      layout.Layout
	guard    layout.Guard
	group    []int
	bitOff   []int // header bit offset of each group column's code/flag field
	bitW     []int // header bit width of each group column's code/flag field
	states   []deltaState
	prevStr  []string
	prevBits bitset.Bitset
	rows     int
}

var _ Codec = (*Delta002)(nil)

func (c *Delta002) Setup(lay layout.Layout) error {
	c.lay = lay
	c.guard = lay.NewGuard()
	c.group = lay.TypeGroupOrder()
	c.states = make([]deltaState, len(c.group))
	c.prevStr = make([]string, len(c.group))
	c.bitOff = make([]int, len(c.group))
	c.bitW = make([]int, len(c.group))
	c.prevBits = bitset.New(lay.BoolCount())

	off := lay.BoolCount()
	for gi, i := range c.group {
		t, err := lay.ColumnType(i)
		if err != nil {
			return err
		}
		w := 1
		if t != layout.STRING {
			w = codeBitsForWidth(t.ByteWidth())
			c.states[gi] = deltaState{
				isFloat:  t == layout.FLOAT || t == layout.DOUBLE,
				unsigned: isUnsignedInt(t),
				width:    t.ByteWidth(),
			}
		}
		c.bitOff[gi] = off
		c.bitW[gi] = w
		off += w
	}
	c.rows = 0
	return nil
}

func (c *Delta002) Reset() {
	for gi := range c.states {
		c.states[gi].prevInt, c.states[gi].gradInt = 0, 0
		c.states[gi].prevF, c.states[gi].gradF = 0, 0
		c.states[gi].gradSet = false
	}
	for i := range c.prevStr {
		c.prevStr[i] = ""
	}
	c.prevBits.ResetAll()
	c.rows = 0
}

func (c *Delta002) Close() { c.guard.Release() }

func (c *Delta002) headerBits() int {
	if len(c.bitOff) == 0 {
		return c.lay.BoolCount()
	}
	return c.bitOff[len(c.bitOff)-1] + c.bitW[len(c.bitW)-1]
}

func zigzagEncode(n int64) uint64 { return uint64((n << 1) ^ (n >> 63)) }
func zigzagDecode(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

func minBytes(u uint64) int {
	if u == 0 {
		return 1
	}
	return (bits.Len64(u) + 7) / 8
}

// isUnsignedInt reports whether t is one of the UINTn integer types.
func isUnsignedInt(t layout.ColumnType) bool {
	switch t {
	case layout.UINT8, layout.UINT16, layout.UINT32, layout.UINT64:
		return true
	default:
		return false
	}
}

// wrapDelta computes cur-prev in the column's native byte width, wrapping
// modulo 2^(width*8) and sign-extending the result to int64. This mirrors
// computeIntDelta in the row codec this format is based on: the subtraction
// happens at the column's own width (via make_unsigned_t<T>, there), not at
// int64 width, so the result always fits in `width` bytes once
// zigzag-encoded — a column's own header code field is sized for exactly
// that many bytes.
func wrapDelta(width int, cur, prev int64) int64 {
	diff := uint64(cur) - uint64(prev)
	if width >= 8 {
		return int64(diff)
	}
	bitsW := uint(width * 8)
	diff &= (uint64(1) << bitsW) - 1
	shift := 64 - bitsW
	return int64(diff<<shift) >> shift
}

// applyDelta reconstructs a column value from a previous value and a delta
// produced by wrapDelta, adding them modulo 2^(width*8) and reinterpreting
// the sum as unsigned (zero-extended) or signed (sign-extended) to match the
// column's own type. Mirrors applyIntDelta/checkIntFoC's use of
// static_cast<U>(p) + g_u reinterpreted back to T.
func applyDelta(width int, unsigned bool, prev, delta int64) int64 {
	sum := uint64(prev) + uint64(delta)
	if width >= 8 {
		return int64(sum)
	}
	bitsW := uint(width * 8)
	sum &= (uint64(1) << bitsW) - 1
	if unsigned {
		return int64(sum)
	}
	shift := 64 - bitsW
	return int64(sum<<shift) >> shift
}

func (c *Delta002) Serialize(r *row.Row, buf *pool.ByteBuffer) error {
	header := bitset.New(c.headerBits())
	if err := bitset.AssignRange(&header, 0, r.Bits(), 0, c.lay.BoolCount()); err != nil {
		return err
	}

	type pending struct {
		numeric  bool
		code     int
		val      uint64
		numBytes int
		strVal   string
		strFlag  bool
	}
	items := make([]pending, len(c.group))
	rowsBefore := c.rows
	anyChanged := false

	for gi, i := range c.group {
		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}
		if t == layout.STRING {
			s, err := r.GetString(i)
			if err != nil {
				return err
			}
			if len(s) > 65535 {
				return &errs.StringTooLongError{Index: i, Length: len(s)}
			}
			changed := s != c.prevStr[gi]
			anyChanged = anyChanged || changed
			items[gi] = pending{strFlag: changed, strVal: s}
			if err := header.Encode(c.bitOff[gi], c.bitW[gi], boolToU8(changed)); err != nil {
				return err
			}
			c.prevStr[gi] = s
			continue
		}

		st := &c.states[gi]
		var code int
		var wireVal uint64

		if st.isFloat {
			cur, err := r.GetFloat64(i)
			if err != nil {
				return err
			}
			if cur == st.prevF {
				code = 0
			} else if st.gradSet && st.prevF+st.gradF == cur {
				code = 1
			} else {
				xor := floatBitsXOR(t, cur, st.prevF)
				code = 1 + minBytes(xor)
				wireVal = xor
			}
			newGrad := cur - st.prevF
			if code == 0 {
				newGrad = 0
			} else if code == 1 {
				newGrad = st.gradF
			}
			st.gradSet = rowsBefore >= 1
			st.prevF = cur
			st.gradF = newGrad
		} else {
			cur, err := intValue(c.lay, r, i, t)
			if err != nil {
				return err
			}
			var newGrad int64
			if cur == st.prevInt {
				code = 0
			} else if st.gradSet && applyDelta(st.width, st.unsigned, st.prevInt, st.gradInt) == cur {
				code = 1
				newGrad = st.gradInt
			} else {
				delta := wrapDelta(st.width, cur, st.prevInt)
				z := zigzagEncode(delta)
				nb := minBytes(z)
				if nb > st.width {
					nb = st.width // safety clamp; wrapDelta already bounds nb <= width
				}
				code = 1 + nb
				wireVal = z
				newGrad = delta
			}
			st.gradSet = rowsBefore >= 1
			st.prevInt = cur
			st.gradInt = newGrad
		}

		numBytes := 0
		if code >= 2 {
			numBytes = code - 1
		}
		anyChanged = anyChanged || code != 0
		items[gi] = pending{numeric: true, code: code, val: wireVal, numBytes: numBytes}
		if err := header.Encode(c.bitOff[gi], c.bitW[gi], uint8(code)); err != nil {
			return err
		}
	}

	// A row byte-identical to the previous one (same bools, every column
	// coded ZOH/unflagged) needs no wire bytes at all: the byte index records
	// a zero-length span and the reader leaves its row buffer as the
	// previous row's output instead of calling Deserialize.
	if rowsBefore > 0 && !anyChanged && r.Bits().Equal(&c.prevBits) {
		c.rows++
		return nil
	}
	c.prevBits = r.Bits().Clone()

	buf.MustWrite(header.Bytes())

	for gi := range items {
		it := items[gi]
		if it.numeric {
			if it.numBytes == 0 {
				continue
			}
			var tmp [8]byte
			for k := 0; k < it.numBytes; k++ {
				tmp[k] = byte(it.val >> uint(8*k))
			}
			buf.MustWrite(tmp[:it.numBytes])
			continue
		}
		if it.strFlag {
			var lenBuf [2]byte
			l := len(it.strVal)
			lenBuf[0] = byte(l)
			lenBuf[1] = byte(l >> 8)
			buf.MustWrite(lenBuf[:])
			buf.MustWrite([]byte(it.strVal))
		}
	}

	c.rows++
	return nil
}

func (c *Delta002) Deserialize(wire []byte, r *row.Row) error {
	headerLen := (c.headerBits() + 7) / 8
	if len(wire) < headerLen {
		return &errs.DecodeShortError{Need: headerLen, Have: len(wire)}
	}
	header := bitset.New(c.headerBits())
	if err := header.ReadFrom(wire[:headerLen]); err != nil {
		return err
	}
	if err := bitset.AssignRange(r.Bits(), 0, &header, 0, c.lay.BoolCount()); err != nil {
		return err
	}

	rowsBefore := c.rows
	cursor := headerLen

	for gi, i := range c.group {
		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}
		code, err := header.Decode(c.bitOff[gi], c.bitW[gi])
		if err != nil {
			return err
		}

		if t == layout.STRING {
			if code != 0 {
				if len(wire)-cursor < 2 {
					return &errs.DecodeShortError{Need: cursor + 2, Have: len(wire)}
				}
				l := int(wire[cursor]) | int(wire[cursor+1])<<8
				cursor += 2
				if len(wire)-cursor < l {
					return &errs.DecodeShortError{Need: cursor + l, Have: len(wire)}
				}
				c.prevStr[gi] = string(wire[cursor : cursor+l])
				cursor += l
			}
			// An unchanged string still restores the codec's previous value, so
			// a row decoded right after Reset does not keep the row buffer's
			// string from an earlier packet.
			if err := r.SetString(i, c.prevStr[gi]); err != nil {
				return err
			}
			continue
		}

		st := &c.states[gi]
		switch {
		case code == 0:
			if st.isFloat {
				st.gradF = 0
			} else {
				st.gradInt = 0
			}
		case code == 1:
			if st.isFloat {
				st.prevF = st.prevF + st.gradF
			} else {
				st.prevInt = applyDelta(st.width, st.unsigned, st.prevInt, st.gradInt)
			}
		default:
			numBytes := int(code) - 1
			if len(wire)-cursor < numBytes {
				return &errs.DecodeShortError{Need: cursor + numBytes, Have: len(wire)}
			}
			var v uint64
			for k := 0; k < numBytes; k++ {
				v |= uint64(wire[cursor+k]) << uint(8*k)
			}
			cursor += numBytes
			if st.isFloat {
				newF := floatFromXOR(t, st.prevF, v)
				st.gradF = newF - st.prevF
				st.prevF = newF
			} else {
				delta := zigzagDecode(v)
				st.gradInt = delta
				st.prevInt = applyDelta(st.width, st.unsigned, st.prevInt, delta)
			}
		}
		st.gradSet = rowsBefore >= 1

		if st.isFloat {
			if err := r.SetFloat64(i, st.prevF); err != nil {
				return err
			}
		} else {
			if err := setIntValue(c.lay, r, i, t, st.prevInt); err != nil {
				return err
			}
		}
	}

	c.rows++
	return nil
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// intValue reads column i's value widened to int64, for integer columns only.
func intValue(lay layout.Layout, r *row.Row, i int, t layout.ColumnType) (int64, error) {
	switch t {
	case layout.UINT8, layout.UINT16, layout.UINT32, layout.UINT64:
		v, err := r.GetUint64(i)
		return int64(v), err
	default:
		return r.GetInt64(i)
	}
}

func setIntValue(lay layout.Layout, r *row.Row, i int, t layout.ColumnType, v int64) error {
	switch t {
	case layout.UINT8, layout.UINT16, layout.UINT32, layout.UINT64:
		return r.SetUint64(i, uint64(v))
	default:
		return r.SetInt64(i, v)
	}
}

// floatBitsXOR returns the IEEE bit-pattern XOR of cur against prev, in the
// column's own width (FLOAT uses 32-bit patterns, DOUBLE uses 64-bit).
func floatBitsXOR(t layout.ColumnType, cur, prev float64) uint64 {
	if t == layout.FLOAT {
		return uint64(math.Float32bits(float32(cur)) ^ math.Float32bits(float32(prev)))
	}
	return math.Float64bits(cur) ^ math.Float64bits(prev)
}

// floatFromXOR reconstructs the current value from a previous value and an
// IEEE bit-pattern XOR delta, in the column's own width.
func floatFromXOR(t layout.ColumnType, prev float64, xor uint64) float64 {
	if t == layout.FLOAT {
		bits := math.Float32bits(float32(prev)) ^ uint32(xor)
		return float64(math.Float32frombits(bits))
	}
	bits := math.Float64bits(prev) ^ xor
	return math.Float64frombits(bits)
}
