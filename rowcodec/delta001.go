package rowcodec

import (
	"github.com/webertob/bcsv-go/bitset"
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/internal/pool"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/row"
)

// Delta001Decoder decodes the legacy DELTA001 wire format: superseded by
// DELTA002 (no first-order-constant prediction, no variable-length delta
// sizing — every changed column writes its full fixed width). Kept so
// files written by older BCSV tooling remain readable; new files are
// always written with DELTA002. Encoding is intentionally unsupported.
type Delta001Decoder struct {
	lay   layout.Layout
	guard layout.Guard
	group []int
	prevI []int64
	prevF []float64
}

var _ Codec = (*Delta001Decoder)(nil)

func (c *Delta001Decoder) Setup(lay layout.Layout) error {
	c.lay = lay
	c.guard = lay.NewGuard()
	c.group = lay.TypeGroupOrder()
	c.prevI = make([]int64, len(c.group))
	c.prevF = make([]float64, len(c.group))
	return nil
}

func (c *Delta001Decoder) Reset() {
	for i := range c.prevI {
		c.prevI[i] = 0
	}
	for i := range c.prevF {
		c.prevF[i] = 0
	}
}

func (c *Delta001Decoder) Close() { c.guard.Release() }

// Serialize always fails: DELTA001 is a read-only legacy format.
func (c *Delta001Decoder) Serialize(r *row.Row, buf *pool.ByteBuffer) error {
	return errs.ErrUnsupportedCodec
}

func (c *Delta001Decoder) Deserialize(wire []byte, r *row.Row) error {
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

		t, err := c.lay.ColumnType(i)
		if err != nil {
			return err
		}

		if t == layout.STRING {
			consumed, err := readColumnRaw(c.lay, r, wire[cursor:], i)
			if err != nil {
				return err
			}
			cursor += consumed
			continue
		}

		w := t.ByteWidth()
		if len(wire)-cursor < w {
			return &errs.DecodeShortError{Need: cursor + w, Have: len(wire)}
		}
		var u uint64
		for k := 0; k < w; k++ {
			u |= uint64(wire[cursor+k]) << uint(8*k)
		}
		cursor += w

		if t == layout.FLOAT || t == layout.DOUBLE {
			newF := floatFromXOR(t, c.prevF[gi], u)
			c.prevF[gi] = newF
			if err := r.SetFloat64(i, newF); err != nil {
				return err
			}
		} else {
			delta := zigzagDecode(u)
			c.prevI[gi] += delta
			if err := setIntValue(c.lay, r, i, t, c.prevI[gi]); err != nil {
				return err
			}
		}
	}
	return nil
}
