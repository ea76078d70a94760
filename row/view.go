package row

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
)

// View is a non-owning, zero-copy view over a FLAT001-serialized row
// buffer: bools via byte+bit math, scalars via direct byte slicing, strings
// via an unsafe zero-copy string header into the buffer's string region.
type View struct {
	lay       layout.Layout
	buf       []byte
	stringOff []int
	stringLen []int
}

// NewView validates buf against lay (shallow) and returns a View over it.
func NewView(lay layout.Layout, buf []byte) (View, error) {
	v := View{lay: lay, buf: buf}
	if err := v.Validate(false); err != nil {
		return View{}, err
	}
	return v, nil
}

// Validate checks that buf is large enough to hold lay's fixed sections and
// every declared string payload. deep additionally re-derives every string
// offset/length and checks each lies inside buf (shallow validation already
// guarantees this arithmetically, so deep mainly documents the stronger
// intent).
func (v *View) Validate(deep bool) error {
	fixed := v.lay.WireFixedSize()
	if len(v.buf) < fixed {
		return &errs.DecodeShortError{Need: fixed, Have: len(v.buf)}
	}

	n := v.lay.StringCount()
	lenSectionOff := v.lay.WireBitsSize() + v.lay.WireDataSize()
	offs := make([]int, n)
	lens := make([]int, n)
	cursor := fixed
	for k := 0; k < n; k++ {
		l := int(binary.LittleEndian.Uint16(v.buf[lenSectionOff+2*k:]))
		offs[k] = cursor
		lens[k] = l
		cursor += l
	}
	if cursor > len(v.buf) {
		return &errs.DecodeShortError{Need: cursor, Have: len(v.buf)}
	}
	if deep {
		for k := 0; k < n; k++ {
			if offs[k]+lens[k] > len(v.buf) {
				return &errs.DecodeShortError{Need: offs[k] + lens[k], Have: len(v.buf)}
			}
		}
	}

	v.stringOff = offs
	v.stringLen = lens
	return nil
}

// GetBool returns the value of bool column i.
func (v *View) GetBool(i int) (bool, error) {
	t, err := v.lay.ColumnType(i)
	if err != nil {
		return false, err
	}
	if t != layout.BOOL {
		return false, &errs.TypeMismatchError{Index: i, Expected: "BOOL", Got: t.String()}
	}
	bitIdx, err := v.lay.ColumnBoolIndex(i)
	if err != nil {
		return false, err
	}
	return v.buf[bitIdx/8]&(1<<uint(bitIdx%8)) != 0, nil
}

// SetBool overwrites the value of bool column i in place.
func (v *View) SetBool(i int, val bool) error {
	t, err := v.lay.ColumnType(i)
	if err != nil {
		return err
	}
	if t != layout.BOOL {
		return &errs.TypeMismatchError{Index: i, Expected: "BOOL", Got: t.String()}
	}
	bitIdx, err := v.lay.ColumnBoolIndex(i)
	if err != nil {
		return err
	}
	mask := byte(1) << uint(bitIdx%8)
	if val {
		v.buf[bitIdx/8] |= mask
	} else {
		v.buf[bitIdx/8] &^= mask
	}
	return nil
}

func (v *View) scalarBytes(i int) ([]byte, layout.ColumnType, error) {
	t, err := v.lay.ColumnType(i)
	if err != nil {
		return nil, 0, err
	}
	if !t.IsScalar() {
		return nil, 0, &errs.TypeMismatchError{Index: i, Expected: "scalar", Got: t.String()}
	}
	off, err := v.lay.ColumnOffsetWire(i)
	if err != nil {
		return nil, 0, err
	}
	base := v.lay.WireBitsSize()
	w := t.ByteWidth()
	return v.buf[base+off : base+off+w], t, nil
}

// GetUint64 returns the value of an unsigned integer column widened to uint64.
func (v *View) GetUint64(i int) (uint64, error) {
	b, t, err := v.scalarBytes(i)
	if err != nil {
		return 0, err
	}
	switch t {
	case layout.UINT8:
		return uint64(b[0]), nil
	case layout.UINT16:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case layout.UINT32:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case layout.UINT64:
		return binary.LittleEndian.Uint64(b), nil
	default:
		return 0, &errs.TypeMismatchError{Index: i, Expected: "unsigned integer", Got: t.String()}
	}
}

// SetUint64 overwrites the value of an unsigned integer column in place.
func (v *View) SetUint64(i int, val uint64) error {
	b, t, err := v.scalarBytes(i)
	if err != nil {
		return err
	}
	switch t {
	case layout.UINT8:
		b[0] = byte(val)
	case layout.UINT16:
		binary.LittleEndian.PutUint16(b, uint16(val))
	case layout.UINT32:
		binary.LittleEndian.PutUint32(b, uint32(val))
	case layout.UINT64:
		binary.LittleEndian.PutUint64(b, val)
	default:
		return &errs.TypeMismatchError{Index: i, Expected: "unsigned integer", Got: t.String()}
	}
	return nil
}

// GetInt64 returns the value of a signed integer column widened to int64.
func (v *View) GetInt64(i int) (int64, error) {
	b, t, err := v.scalarBytes(i)
	if err != nil {
		return 0, err
	}
	switch t {
	case layout.INT8:
		return int64(int8(b[0])), nil
	case layout.INT16:
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	case layout.INT32:
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	case layout.INT64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	default:
		return 0, &errs.TypeMismatchError{Index: i, Expected: "signed integer", Got: t.String()}
	}
}

// SetInt64 overwrites the value of a signed integer column in place.
func (v *View) SetInt64(i int, val int64) error {
	b, t, err := v.scalarBytes(i)
	if err != nil {
		return err
	}
	switch t {
	case layout.INT8:
		b[0] = byte(int8(val))
	case layout.INT16:
		binary.LittleEndian.PutUint16(b, uint16(int16(val)))
	case layout.INT32:
		binary.LittleEndian.PutUint32(b, uint32(int32(val)))
	case layout.INT64:
		binary.LittleEndian.PutUint64(b, uint64(val))
	default:
		return &errs.TypeMismatchError{Index: i, Expected: "signed integer", Got: t.String()}
	}
	return nil
}

// GetFloat64 returns the value of a FLOAT/DOUBLE column widened to float64.
func (v *View) GetFloat64(i int) (float64, error) {
	b, t, err := v.scalarBytes(i)
	if err != nil {
		return 0, err
	}
	switch t {
	case layout.FLOAT:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case layout.DOUBLE:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	default:
		return 0, &errs.TypeMismatchError{Index: i, Expected: "floating point", Got: t.String()}
	}
}

// SetFloat64 overwrites the value of a FLOAT/DOUBLE column in place.
func (v *View) SetFloat64(i int, val float64) error {
	b, t, err := v.scalarBytes(i)
	if err != nil {
		return err
	}
	switch t {
	case layout.FLOAT:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(val)))
	case layout.DOUBLE:
		binary.LittleEndian.PutUint64(b, math.Float64bits(val))
	default:
		return &errs.TypeMismatchError{Index: i, Expected: "floating point", Got: t.String()}
	}
	return nil
}

// GetString returns a zero-copy view of string column i's payload. The
// returned string aliases the view's buffer and is invalid once the buffer
// is reused or released.
func (v *View) GetString(i int) (string, error) {
	t, err := v.lay.ColumnType(i)
	if err != nil {
		return "", err
	}
	if t != layout.STRING {
		return "", &errs.TypeMismatchError{Index: i, Expected: "STRING", Got: t.String()}
	}
	si, err := v.lay.ColumnStringIndex(i)
	if err != nil {
		return "", err
	}
	off, l := v.stringOff[si], v.stringLen[si]
	if l == 0 {
		return "", nil
	}
	return unsafe.String(&v.buf[off], l), nil
}

// SetString overwrites string column i in place. The replacement must have
// the exact same byte length as the existing value; a size-changing write
// returns ErrViewSizeChange (in-place FLAT buffers cannot grow or shrink a
// string without re-serializing the whole row).
func (v *View) SetString(i int, val string) error {
	t, err := v.lay.ColumnType(i)
	if err != nil {
		return err
	}
	if t != layout.STRING {
		return &errs.TypeMismatchError{Index: i, Expected: "STRING", Got: t.String()}
	}
	si, err := v.lay.ColumnStringIndex(i)
	if err != nil {
		return err
	}
	off, l := v.stringOff[si], v.stringLen[si]
	if len(val) != l {
		return errs.ErrViewSizeChange
	}
	copy(v.buf[off:off+l], val)
	return nil
}

// Bytes returns the view's underlying buffer.
func (v *View) Bytes() []byte { return v.buf }
