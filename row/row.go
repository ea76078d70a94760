// Package row implements the in-memory record (Row) and the zero-copy
// view over a FLAT-serialized wire buffer (RowView), both bound to a
// layout.Layout.
package row

import (
	"encoding/binary"
	"math"

	"github.com/webertob/bcsv-go/bitset"
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
)

// Row is one in-memory record against a Layout. Storage is split into three
// regions: bits (bool values), scalars (aligned non-bool non-string bytes),
// and strings (owned UTF-8). When tracking is enabled, per-column change
// flags are kept in a separate bitset.
type Row struct {
	lay     layout.Layout
	bits    bitset.Bitset
	changed bitset.Bitset // zero-length when change tracking is disabled
	scalars []byte
	strings []string
	track   bool
}

// New allocates a Row against lay. track enables change-flag bookkeeping,
// a policy fixed at creation time for the row's lifetime.
func New(lay layout.Layout, track bool) Row {
	r := Row{
		lay:     lay,
		bits:    bitset.New(lay.BoolCount()),
		scalars: make([]byte, lay.ScalarSize()),
		strings: make([]string, lay.StringCount()),
		track:   track,
	}
	if track {
		r.changed = bitset.New(lay.ColumnCount())
	}
	return r
}

// Layout returns the layout this row is bound to.
func (r *Row) Layout() layout.Layout { return r.lay }

// Clear resets every column to its type's zero value and clears change flags.
func (r *Row) Clear() {
	r.bits.ResetAll()
	for i := range r.scalars {
		r.scalars[i] = 0
	}
	for i := range r.strings {
		r.strings[i] = ""
	}
	if r.track {
		r.changed.ResetAll()
	}
}

func (r *Row) markChanged(i int) {
	if r.track {
		r.changed.SetBit(i, true)
	}
}

// Changed reports whether column i has a pending change flag. Bool columns
// always report true (their bit is the value on wire). Returns false when
// change tracking is disabled.
func (r *Row) Changed(i int) bool {
	if !r.track {
		return false
	}
	t, err := r.lay.ColumnType(i)
	if err != nil {
		return false
	}
	if t == layout.BOOL {
		return true
	}
	v, _ := r.changed.Get(i)
	return v
}

// ClearChanged clears every change flag.
func (r *Row) ClearChanged() {
	if r.track {
		r.changed.ResetAll()
	}
}

// GetBool returns the value of bool column i.
func (r *Row) GetBool(i int) (bool, error) {
	idx, err := r.boolIndex(i)
	if err != nil {
		return false, err
	}
	return r.bits.Get(idx)
}

// SetBool sets the value of bool column i.
func (r *Row) SetBool(i int, v bool) error {
	idx, err := r.boolIndex(i)
	if err != nil {
		return err
	}
	if err := r.bits.Set(idx, v); err != nil {
		return err
	}
	r.markChanged(i)
	return nil
}

func (r *Row) boolIndex(i int) (int, error) {
	t, err := r.lay.ColumnType(i)
	if err != nil {
		return 0, err
	}
	if t != layout.BOOL {
		return 0, &errs.TypeMismatchError{Index: i, Expected: "BOOL", Got: t.String()}
	}
	return r.lay.ColumnBoolIndex(i)
}

// GetString returns the value of string column i.
func (r *Row) GetString(i int) (string, error) {
	t, err := r.lay.ColumnType(i)
	if err != nil {
		return "", err
	}
	if t != layout.STRING {
		return "", &errs.TypeMismatchError{Index: i, Expected: "STRING", Got: t.String()}
	}
	si, err := r.lay.ColumnStringIndex(i)
	if err != nil {
		return "", err
	}
	return r.strings[si], nil
}

// SetString sets the value of string column i. Values over 65535 bytes
// return ErrStringTooLong; the caller decides whether to truncate.
func (r *Row) SetString(i int, v string) error {
	t, err := r.lay.ColumnType(i)
	if err != nil {
		return err
	}
	if t != layout.STRING {
		return &errs.TypeMismatchError{Index: i, Expected: "STRING", Got: t.String()}
	}
	if len(v) > 65535 {
		return &errs.StringTooLongError{Index: i, Length: len(v)}
	}
	si, err := r.lay.ColumnStringIndex(i)
	if err != nil {
		return err
	}
	if r.strings[si] != v {
		r.markChanged(i)
	}
	r.strings[si] = v
	return nil
}

func (r *Row) scalarBytes(i int) ([]byte, layout.ColumnType, error) {
	t, err := r.lay.ColumnType(i)
	if err != nil {
		return nil, 0, err
	}
	if !t.IsScalar() {
		return nil, 0, &errs.TypeMismatchError{Index: i, Expected: "scalar", Got: t.String()}
	}
	off, err := r.lay.ColumnOffset(i)
	if err != nil {
		return nil, 0, err
	}
	w := t.ByteWidth()
	return r.scalars[off : off+w], t, nil
}

// GetUint64 returns the value of an unsigned integer column widened to uint64.
func (r *Row) GetUint64(i int) (uint64, error) {
	b, t, err := r.scalarBytes(i)
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

// SetUint64 sets the value of an unsigned integer column, narrowing from uint64.
func (r *Row) SetUint64(i int, v uint64) error {
	b, t, err := r.scalarBytes(i)
	if err != nil {
		return err
	}
	changed := false
	switch t {
	case layout.UINT8:
		changed = b[0] != byte(v)
		b[0] = byte(v)
	case layout.UINT16:
		changed = binary.LittleEndian.Uint16(b) != uint16(v)
		binary.LittleEndian.PutUint16(b, uint16(v))
	case layout.UINT32:
		changed = binary.LittleEndian.Uint32(b) != uint32(v)
		binary.LittleEndian.PutUint32(b, uint32(v))
	case layout.UINT64:
		changed = binary.LittleEndian.Uint64(b) != v
		binary.LittleEndian.PutUint64(b, v)
	default:
		return &errs.TypeMismatchError{Index: i, Expected: "unsigned integer", Got: t.String()}
	}
	if changed {
		r.markChanged(i)
	}
	return nil
}

// GetInt64 returns the value of a signed integer column widened to int64.
func (r *Row) GetInt64(i int) (int64, error) {
	b, t, err := r.scalarBytes(i)
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

// SetInt64 sets the value of a signed integer column, narrowing from int64.
func (r *Row) SetInt64(i int, v int64) error {
	b, t, err := r.scalarBytes(i)
	if err != nil {
		return err
	}
	changed := false
	switch t {
	case layout.INT8:
		changed = int8(b[0]) != int8(v)
		b[0] = byte(int8(v))
	case layout.INT16:
		changed = int16(binary.LittleEndian.Uint16(b)) != int16(v)
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case layout.INT32:
		changed = int32(binary.LittleEndian.Uint32(b)) != int32(v)
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	case layout.INT64:
		changed = int64(binary.LittleEndian.Uint64(b)) != v
		binary.LittleEndian.PutUint64(b, uint64(v))
	default:
		return &errs.TypeMismatchError{Index: i, Expected: "signed integer", Got: t.String()}
	}
	if changed {
		r.markChanged(i)
	}
	return nil
}

// GetFloat64 returns the value of a FLOAT/DOUBLE column widened to float64.
func (r *Row) GetFloat64(i int) (float64, error) {
	b, t, err := r.scalarBytes(i)
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

// SetFloat64 sets the value of a FLOAT/DOUBLE column, narrowing from float64.
func (r *Row) SetFloat64(i int, v float64) error {
	b, t, err := r.scalarBytes(i)
	if err != nil {
		return err
	}
	changed := false
	switch t {
	case layout.FLOAT:
		bits := math.Float32bits(float32(v))
		changed = binary.LittleEndian.Uint32(b) != bits
		binary.LittleEndian.PutUint32(b, bits)
	case layout.DOUBLE:
		bits := math.Float64bits(v)
		changed = binary.LittleEndian.Uint64(b) != bits
		binary.LittleEndian.PutUint64(b, bits)
	default:
		return &errs.TypeMismatchError{Index: i, Expected: "floating point", Got: t.String()}
	}
	if changed {
		r.markChanged(i)
	}
	return nil
}

// Bits returns the row's bool-value bitset, used by codecs for a bulk
// assignRange copy into the wire header.
func (r *Row) Bits() *bitset.Bitset { return &r.bits }

// RawScalar returns the exact little-endian wire bytes backing non-bool,
// non-string column i, along with its type. Row codecs use this to copy or
// compare column values without going through typed get/set conversions.
func (r *Row) RawScalar(i int) ([]byte, layout.ColumnType, error) {
	return r.scalarBytes(i)
}

// SetRawScalar overwrites non-bool, non-string column i with exact
// little-endian wire bytes (src must be the column's ByteWidth long).
func (r *Row) SetRawScalar(i int, src []byte) error {
	dst, _, err := r.scalarBytes(i)
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

// Scalars returns the row's raw scalar byte region.
func (r *Row) Scalars() []byte { return r.scalars }

// Strings returns the row's string slice, in layout order among string columns.
func (r *Row) Strings() []string { return r.strings }

// CopyFrom overwrites r's columns with src's values, column by column. src
// must be bound to a layout compatible with r's (same column count, names,
// and types); callers that only need wire-compatible layouts should check
// Layout.IsCompatible first.
func (r *Row) CopyFrom(src *Row) error {
	n := r.lay.ColumnCount()
	for i := 0; i < n; i++ {
		t, err := r.lay.ColumnType(i)
		if err != nil {
			return err
		}
		switch t {
		case layout.BOOL:
			v, err := src.GetBool(i)
			if err != nil {
				return err
			}
			if err := r.SetBool(i, v); err != nil {
				return err
			}
		case layout.STRING:
			v, err := src.GetString(i)
			if err != nil {
				return err
			}
			if err := r.SetString(i, v); err != nil {
				return err
			}
		default:
			b, _, err := src.RawScalar(i)
			if err != nil {
				return err
			}
			if err := r.SetRawScalar(i, b); err != nil {
				return err
			}
		}
	}
	return nil
}
