// Package layout implements the BCSV schema: an ordered list of named,
// typed columns plus a derived plan (byte/bit offsets) recomputed on every
// structural mutation. Guard is the structural-lock discipline that blocks
// mutation while a codec, writer, or reader is associated with the layout,
// so the layout stays unchanged for as long as a Guard is held.
package layout

import (
	"sync/atomic"

	"github.com/webertob/bcsv-go/errs"
)

// maxColumns is the wire format's columnCount ceiling: it is stored as a u16.
const maxColumns = 65535

// Column is a single (name, type) pair used to construct or extend a Layout.
type Column struct {
	Name string
	Type ColumnType
}

type columnDef struct {
	name string
	typ  ColumnType
}

// plan is the layout's derived, always-consistent-with-columns state.
type plan struct {
	memOffset      []int // in-memory scalar offset, -1 for bool/string columns
	wireOffset     []int // packed wire scalar offset, -1 for bool/string columns
	boolBitIndex   []int // bit index among bool columns, -1 otherwise
	stringIndex    []int // index among string columns, -1 otherwise
	groupBitIndex  []int // change-flag bit position in type-grouped order, -1 for bool columns
	typeGroupOrder []int // non-bool column indices in scalarTypeOrder grouping
	typeCounts     [12]int

	boolCount    int
	stringCount  int
	scalarSize   int
	wireDataSize int
}

// layoutData is the schema's shared backing store. Layout and Guard values
// both hold a pointer to the same layoutData, so the data outlives any
// Layout facade the caller drops as long as a Guard is alive.
type layoutData struct {
	columns []columnDef
	names   map[string]int
	lock    atomic.Int32
	version uint64
	plan    plan
}

// Layout is the schema handle. The zero value is not usable; construct with New.
type Layout struct {
	data *layoutData
}

// New constructs a Layout from an ordered column list.
func New(columns ...Column) (Layout, error) {
	l := Layout{data: &layoutData{}}
	if err := l.SetColumns(columns); err != nil {
		return Layout{}, err
	}
	return l, nil
}

func (l Layout) locked() bool { return l.data.lock.Load() > 0 }

// ColumnCount returns the number of columns.
func (l Layout) ColumnCount() int { return len(l.data.columns) }

// ColumnName returns the name of column i.
func (l Layout) ColumnName(i int) (string, error) {
	if i < 0 || i >= len(l.data.columns) {
		return "", errs.ErrOutOfRange
	}
	return l.data.columns[i].name, nil
}

// ColumnType returns the type of column i.
func (l Layout) ColumnType(i int) (ColumnType, error) {
	if i < 0 || i >= len(l.data.columns) {
		return 0, errs.ErrOutOfRange
	}
	return l.data.columns[i].typ, nil
}

// ColumnIndex returns the index of the column named name.
func (l Layout) ColumnIndex(name string) (int, error) {
	i, ok := l.data.names[name]
	if !ok {
		return 0, errs.ErrUnknownColumn
	}
	return i, nil
}

// HasColumn reports whether a column named name exists.
func (l Layout) HasColumn(name string) bool {
	_, ok := l.data.names[name]
	return ok
}

// TypeCount returns how many columns have type t.
func (l Layout) TypeCount(t ColumnType) int { return l.data.plan.typeCounts[t] }

// ColumnOffset returns the in-memory aligned scalar byte offset of column i.
// Returns ErrTypeMismatch for bool/string columns, which have no scalar offset.
func (l Layout) ColumnOffset(i int) (int, error) {
	if i < 0 || i >= len(l.data.columns) {
		return 0, errs.ErrOutOfRange
	}
	off := l.data.plan.memOffset[i]
	if off < 0 {
		return 0, errs.ErrTypeMismatch
	}
	return off, nil
}

// ColumnOffsetWire returns the packed wire scalar byte offset of column i.
func (l Layout) ColumnOffsetWire(i int) (int, error) {
	if i < 0 || i >= len(l.data.columns) {
		return 0, errs.ErrOutOfRange
	}
	off := l.data.plan.wireOffset[i]
	if off < 0 {
		return 0, errs.ErrTypeMismatch
	}
	return off, nil
}

// ColumnBoolIndex returns the bit index of bool column i among all bool columns.
func (l Layout) ColumnBoolIndex(i int) (int, error) {
	if i < 0 || i >= len(l.data.columns) {
		return 0, errs.ErrOutOfRange
	}
	idx := l.data.plan.boolBitIndex[i]
	if idx < 0 {
		return 0, errs.ErrTypeMismatch
	}
	return idx, nil
}

// ColumnStringIndex returns the index of string column i among all string columns.
func (l Layout) ColumnStringIndex(i int) (int, error) {
	if i < 0 || i >= len(l.data.columns) {
		return 0, errs.ErrOutOfRange
	}
	idx := l.data.plan.stringIndex[i]
	if idx < 0 {
		return 0, errs.ErrTypeMismatch
	}
	return idx, nil
}

// GroupBitIndex returns the change-flag bit position of non-bool column i
// within the type-grouped header used by ZOH/DELTA codecs.
func (l Layout) GroupBitIndex(i int) (int, error) {
	if i < 0 || i >= len(l.data.columns) {
		return 0, errs.ErrOutOfRange
	}
	idx := l.data.plan.groupBitIndex[i]
	if idx < 0 {
		return 0, errs.ErrTypeMismatch
	}
	return idx, nil
}

// TypeGroupOrder returns, in scalarTypeOrder grouping, the column indices of
// every non-bool column. Used by ZOH/DELTA codecs to walk change-flag bits
// and payload bytes in the same deterministic order as the header.
func (l Layout) TypeGroupOrder() []int { return l.data.plan.typeGroupOrder }

// BoolCount returns the number of BOOL columns.
func (l Layout) BoolCount() int { return l.data.plan.boolCount }

// StringCount returns the number of STRING columns.
func (l Layout) StringCount() int { return l.data.plan.stringCount }

// ScalarSize returns the aligned in-memory byte size of the scalar region.
func (l Layout) ScalarSize() int { return l.data.plan.scalarSize }

// WireDataSize returns the packed wire byte size of the scalar region.
func (l Layout) WireDataSize() int { return l.data.plan.wireDataSize }

// WireBitsSize returns ceil(boolCount/8), the bits section's byte size.
func (l Layout) WireBitsSize() int { return (l.data.plan.boolCount + 7) / 8 }

// WireStringCount returns the number of STRING columns (2 bytes of length
// prefix per column on the wire, in FLAT's fixed section).
func (l Layout) WireStringCount() int { return l.data.plan.stringCount }

// WireFixedSize returns the fixed-size portion of a FLAT-encoded row: the
// bits section, the scalar section, and the string length prefixes. It
// excludes variable-length string payload bytes.
func (l Layout) WireFixedSize() int {
	return l.WireBitsSize() + l.data.plan.wireDataSize + 2*l.data.plan.stringCount
}

// Version returns the mutation counter, incremented on every successful
// structural or rename mutation. Codecs cache this to detect unseen changes.
func (l Layout) Version() uint64 { return l.data.version }

// IsCompatible reports whether l and other have the same column count and
// the same type in every position. Names are ignored.
func (l Layout) IsCompatible(other Layout) bool {
	if len(l.data.columns) != len(other.data.columns) {
		return false
	}
	for i, c := range l.data.columns {
		if c.typ != other.data.columns[i].typ {
			return false
		}
	}
	return true
}

// AddColumn appends a column, failing with ErrLayoutLocked if a Guard is held.
func (l Layout) AddColumn(name string, t ColumnType) error {
	if l.locked() {
		return errs.ErrLayoutLocked
	}
	if _, dup := l.data.names[name]; dup {
		return errs.ErrDuplicateColumnName
	}
	if len(l.data.columns) >= maxColumns {
		return errs.ErrOutOfRange
	}
	cols := append(l.data.columns, columnDef{name: name, typ: t})
	l.rebuild(cols)
	return nil
}

// RemoveColumn removes the column at index i.
func (l Layout) RemoveColumn(i int) error {
	if l.locked() {
		return errs.ErrLayoutLocked
	}
	if i < 0 || i >= len(l.data.columns) {
		return errs.ErrOutOfRange
	}
	cols := make([]columnDef, 0, len(l.data.columns)-1)
	cols = append(cols, l.data.columns[:i]...)
	cols = append(cols, l.data.columns[i+1:]...)
	l.rebuild(cols)
	return nil
}

// SetColumnType changes the type of column i in place.
func (l Layout) SetColumnType(i int, t ColumnType) error {
	if l.locked() {
		return errs.ErrLayoutLocked
	}
	if i < 0 || i >= len(l.data.columns) {
		return errs.ErrOutOfRange
	}
	cols := make([]columnDef, len(l.data.columns))
	copy(cols, l.data.columns)
	cols[i].typ = t
	l.rebuild(cols)
	return nil
}

// SetColumns replaces the entire column list.
func (l Layout) SetColumns(columns []Column) error {
	if l.locked() {
		return errs.ErrLayoutLocked
	}
	if len(columns) > maxColumns {
		return errs.ErrOutOfRange
	}
	cols := make([]columnDef, len(columns))
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := seen[c.Name]; dup {
			return errs.ErrDuplicateColumnName
		}
		seen[c.Name] = i
		cols[i] = columnDef{name: c.Name, typ: c.Type}
	}
	l.rebuild(cols)
	return nil
}

// Clear removes every column.
func (l Layout) Clear() error {
	if l.locked() {
		return errs.ErrLayoutLocked
	}
	l.rebuild(nil)
	return nil
}

// SetColumnName renames column i. Always permitted regardless of lock state,
// but still bumps the version counter and still rejects a duplicate name.
func (l Layout) SetColumnName(i int, name string) error {
	if i < 0 || i >= len(l.data.columns) {
		return errs.ErrOutOfRange
	}
	if existing, dup := l.data.names[name]; dup && existing != i {
		return errs.ErrDuplicateColumnName
	}
	delete(l.data.names, l.data.columns[i].name)
	l.data.columns[i].name = name
	l.data.names[name] = i
	l.data.version++
	return nil
}

// rebuild replaces the column list, re-derives the plan, refreshes the name
// index, and bumps the version counter. Caller must have already checked the lock.
func (l Layout) rebuild(cols []columnDef) {
	names := make(map[string]int, len(cols))
	for i, c := range cols {
		names[c.name] = i
	}
	l.data.columns = cols
	l.data.names = names
	l.data.plan = derivePlan(cols)
	l.data.version++
}

func derivePlan(cols []columnDef) plan {
	n := len(cols)
	p := plan{
		memOffset:     make([]int, n),
		wireOffset:    make([]int, n),
		boolBitIndex:  make([]int, n),
		stringIndex:   make([]int, n),
		groupBitIndex: make([]int, n),
	}

	for i := range p.memOffset {
		p.memOffset[i] = -1
		p.wireOffset[i] = -1
		p.boolBitIndex[i] = -1
		p.stringIndex[i] = -1
		p.groupBitIndex[i] = -1
	}

	memCursor := 0
	wireCursor := 0
	boolCursor := 0
	stringCursor := 0

	for i, c := range cols {
		p.typeCounts[c.typ]++
		switch {
		case c.typ == BOOL:
			p.boolBitIndex[i] = boolCursor
			boolCursor++
		case c.typ == STRING:
			p.stringIndex[i] = stringCursor
			stringCursor++
		default:
			width := c.typ.ByteWidth()
			memCursor = alignUp(memCursor, width)
			p.memOffset[i] = memCursor
			memCursor += width
			p.wireOffset[i] = wireCursor
			wireCursor += width
		}
	}

	p.boolCount = boolCursor
	p.stringCount = stringCursor
	p.scalarSize = memCursor
	p.wireDataSize = wireCursor

	// Type-grouped order for ZOH/DELTA change-flag headers and payload walk.
	groupBit := 0
	for _, t := range scalarTypeOrder {
		for i, c := range cols {
			if c.typ == t {
				p.typeGroupOrder = append(p.typeGroupOrder, i)
				p.groupBitIndex[i] = groupBit
				groupBit++
			}
		}
	}

	return p
}

func alignUp(off, width int) int {
	if width <= 1 {
		return off
	}
	rem := off % width
	if rem == 0 {
		return off
	}
	return off + (width - rem)
}
