package rowcodec

import (
	"encoding/binary"

	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"
)

// Flat001 is the dense per-row codec: every row carries every column.
// It has no inter-row state, so Reset is a no-op.
type Flat001 struct {
	lay   layout.Layout
	guard layout.Guard
}

var _ Codec = (*Flat001)(nil)

func (c *Flat001) Setup(lay layout.Layout) error {
	c.lay = lay
	c.guard = lay.NewGuard()
	return nil
}

func (c *Flat001) Reset() {}

func (c *Flat001) Close() { c.guard.Release() }

// Serialize writes, in order: the bits section (bool values), the scalar
// section (layout order, packed), the string length prefixes, then the
// string payloads.
func (c *Flat001) Serialize(r *row.Row, buf *pool.ByteBuffer) error {
	bitsLen := c.lay.WireBitsSize()
	start := len(buf.B)
	buf.ExtendOrGrow(c.lay.WireFixedSize())
	out := buf.B[start:]

	if bitsLen > 0 {
		_ = r.Bits().WriteTo(out[:bitsLen])
	}

	scalarOff := bitsLen
	lenOff := bitsLen + c.lay.WireDataSize()

	n := c.lay.ColumnCount()
	for i := 0; i < n; i++ {
		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}
		if !t.IsScalar() {
			continue
		}
		src, _, err := r.RawScalar(i)
		if err != nil {
			return err
		}
		wireOff, err := c.lay.ColumnOffsetWire(i)
		if err != nil {
			return err
		}
		copy(out[scalarOff+wireOff:], src)
	}

	strCount := c.lay.StringCount()
	strs := make([]string, strCount)
	for i := 0; i < n; i++ {
		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}
		if t != layout.STRING {
			continue
		}
		si, err := c.lay.ColumnStringIndex(i)
		if err != nil {
			return err
		}
		s, err := r.GetString(i)
		if err != nil {
			return err
		}
		if len(s) > 65535 {
			return &errs.StringTooLongError{Index: i, Length: len(s)}
		}
		binary.LittleEndian.PutUint16(out[lenOff+2*si:], uint16(len(s)))
		strs[si] = s
	}

	// Append payload bytes only after every write into `out` is done: buf.B
	// may reallocate on append, which would invalidate `out`.
	for _, s := range strs {
		buf.B = append(buf.B, s...)
	}

	return nil
}

// Deserialize mirrors Serialize's sections, populating r's three storage regions.
func (c *Flat001) Deserialize(wire []byte, r *row.Row) error {
	fixed := c.lay.WireFixedSize()
	if len(wire) < fixed {
		return &errs.DecodeShortError{Need: fixed, Have: len(wire)}
	}

	bitsLen := c.lay.WireBitsSize()
	if bitsLen > 0 {
		if err := r.Bits().ReadFrom(wire[:bitsLen]); err != nil {
			return err
		}
	}

	scalarOff := bitsLen
	lenOff := bitsLen + c.lay.WireDataSize()
	cursor := fixed

	n := c.lay.ColumnCount()
	for i := 0; i < n; i++ {
		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}
		if !t.IsScalar() {
			continue
		}
		wireOff, err := c.lay.ColumnOffsetWire(i)
		if err != nil {
			return err
		}
		w := t.ByteWidth()
		if err := r.SetRawScalar(i, wire[scalarOff+wireOff:scalarOff+wireOff+w]); err != nil {
			return err
		}
	}

	for i := 0; i < n; i++ {
		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}
		if t != layout.STRING {
			continue
		}
		si, err := c.lay.ColumnStringIndex(i)
		if err != nil {
			return err
		}
		l := int(binary.LittleEndian.Uint16(wire[lenOff+2*si:]))
		if cursor+l > len(wire) {
			return &errs.DecodeShortError{Need: cursor + l, Have: len(wire)}
		}
		if err := r.SetString(i, string(wire[cursor:cursor+l])); err != nil {
			return err
		}
		cursor += l
	}

	return nil
}
