package rowcodec

import (
	"bytes"
	"encoding/binary"

	"github.com/webertob/bcsv-go/bitset"
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"
)

// Zoh001 is the zero-order-hold codec: a per-row change-flag header
// (bool values plus one flag per non-bool column, type-grouped) followed by
// the raw bytes of only the columns that changed since the previous row.
type Zoh001 struct {
	lay    layout.Layout
	guard  layout.Guard
	group  []int // layout.TypeGroupOrder(), cached
	prev   row.Row
	first  bool
}

var _ Codec = (*Zoh001)(nil)

func (c *Zoh001) Setup(lay layout.Layout) error {
	c.lay = lay
	c.guard = lay.NewGuard()
	c.group = lay.TypeGroupOrder()
	c.prev = row.New(lay, false)
	c.first = true
	return nil
}

func (c *Zoh001) Reset() {
	c.prev.Clear()
	c.first = true
}

func (c *Zoh001) Close() { c.guard.Release() }

func (c *Zoh001) Serialize(r *row.Row, buf *pool.ByteBuffer) error {
	n := c.lay.ColumnCount()
	header := bitset.New(n)

	if err := bitset.AssignRange(&header, 0, r.Bits(), 0, c.lay.BoolCount()); err != nil {
		return err
	}

	changed := make([]bool, len(c.group))
	anyChanged := false
	for gi, i := range c.group {
		isChanged := c.first
		if !isChanged {
			var err error
			isChanged, err = columnDiffers(c.lay, r, &c.prev, i)
			if err != nil {
				return err
			}
		}
		changed[gi] = isChanged
		anyChanged = anyChanged || isChanged
		header.SetBit(c.lay.BoolCount()+gi, isChanged)
	}

	// A row byte-identical to the previous one (same bools, every non-bool
	// column unchanged) needs no wire bytes at all: the byte index records a
	// zero-length span and the reader leaves its row buffer as the previous
	// row's output instead of calling Deserialize.
	if !c.first && !anyChanged && r.Bits().Equal(c.prev.Bits()) {
		return nil
	}

	buf.MustWrite(header.Bytes())

	for gi, i := range c.group {
		if !changed[gi] {
			continue
		}
		if err := writeColumnRaw(c.lay, r, buf, i); err != nil {
			return err
		}
	}

	if err := copyRowInto(c.lay, r, &c.prev); err != nil {
		return err
	}
	c.first = false
	return nil
}

func (c *Zoh001) Deserialize(wire []byte, r *row.Row) error {
	n := c.lay.ColumnCount()
	headerLen := (n + 7) / 8
	if len(wire) < headerLen {
		return &errs.DecodeShortError{Need: headerLen, Have: len(wire)}
	}

	header := bitset.New(n)
	if err := header.ReadFrom(wire[:headerLen]); err != nil {
		return err
	}

	if err := bitset.AssignRange(r.Bits(), 0, &header, 0, c.lay.BoolCount()); err != nil {
		return err
	}

	cursor := headerLen
	for gi, i := range c.group {
		flag, _ := header.Get(c.lay.BoolCount() + gi)
		if !flag {
			continue
		}
		consumed, err := readColumnRaw(c.lay, r, wire[cursor:], i)
		if err != nil {
			return err
		}
		cursor += consumed
	}
	return nil
}

// columnDiffers reports whether column i's value in r differs from the
// value stored in prev.
func columnDiffers(lay layout.Layout, r *row.Row, prev *row.Row, i int) (bool, error) {
	t, err := lay.ColumnType(i)
	if err != nil {
		return false, err
	}
	if t == layout.STRING {
		cur, err := r.GetString(i)
		if err != nil {
			return false, err
		}
		old, err := prev.GetString(i)
		if err != nil {
			return false, err
		}
		return cur != old, nil
	}
	cur, _, err := r.RawScalar(i)
	if err != nil {
		return false, err
	}
	old, _, err := prev.RawScalar(i)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(cur, old), nil
}

// copyRowInto copies every column's current value from r into dst, used to
// keep a codec's previous-row snapshot in sync after each serialize.
func copyRowInto(lay layout.Layout, r *row.Row, dst *row.Row) error {
	n := lay.ColumnCount()
	for i := 0; i < n; i++ {
		t, err := lay.ColumnType(i)
		if err != nil {
			return err
		}
		switch t {
		case layout.BOOL:
			v, err := r.GetBool(i)
			if err != nil {
				return err
			}
			if err := dst.SetBool(i, v); err != nil {
				return err
			}
		case layout.STRING:
			v, err := r.GetString(i)
			if err != nil {
				return err
			}
			if err := dst.SetString(i, v); err != nil {
				return err
			}
		default:
			src, _, err := r.RawScalar(i)
			if err != nil {
				return err
			}
			if err := dst.SetRawScalar(i, src); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeColumnRaw appends column i's raw wire bytes to buf: fixed-width
// bytes for scalars, a u16 length prefix plus UTF-8 bytes for strings.
func writeColumnRaw(lay layout.Layout, r *row.Row, buf *pool.ByteBuffer, i int) error {
	t, err := lay.ColumnType(i)
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
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
		buf.MustWrite(lenBuf[:])
		buf.MustWrite([]byte(s))
		return nil
	}
	src, _, err := r.RawScalar(i)
	if err != nil {
		return err
	}
	buf.MustWrite(src)
	return nil
}

// readColumnRaw reads column i's raw wire bytes from the front of wire into
// r, returning the number of bytes consumed.
func readColumnRaw(lay layout.Layout, r *row.Row, wire []byte, i int) (int, error) {
	t, err := lay.ColumnType(i)
	if err != nil {
		return 0, err
	}
	if t == layout.STRING {
		if len(wire) < 2 {
			return 0, &errs.DecodeShortError{Need: 2, Have: len(wire)}
		}
		l := int(binary.LittleEndian.Uint16(wire))
		if len(wire) < 2+l {
			return 0, &errs.DecodeShortError{Need: 2 + l, Have: len(wire)}
		}
		if err := r.SetString(i, string(wire[2:2+l])); err != nil {
			return 0, err
		}
		return 2 + l, nil
	}
	w := t.ByteWidth()
	if len(wire) < w {
		return 0, &errs.DecodeShortError{Need: w, Have: len(wire)}
	}
	if err := r.SetRawScalar(i, wire[:w]); err != nil {
		return 0, err
	}
	return w, nil
}
