package bwire

import (
	"encoding/binary"

	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
)

// EncodeLayout serializes lay as the file's layout block: u16 column count,
// then per column a u16 name length, the UTF-8 name bytes, and a u8 type tag.
func EncodeLayout(lay layout.Layout) ([]byte, error) {
	n := lay.ColumnCount()
	size := 2
	names := make([]string, n)
	for i := 0; i < n; i++ {
		name, err := lay.ColumnName(i)
		if err != nil {
			return nil, err
		}
		names[i] = name
		size += 2 + len(name) + 1
	}

	b := make([]byte, size)
	binary.LittleEndian.PutUint16(b[0:2], uint16(n))
	cursor := 2
	for i := 0; i < n; i++ {
		name := names[i]
		t, err := lay.ColumnType(i)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(b[cursor:cursor+2], uint16(len(name)))
		cursor += 2
		copy(b[cursor:], name)
		cursor += len(name)
		b[cursor] = uint8(t)
		cursor++
	}
	return b, nil
}

// DecodeLayout parses a LAYOUT_BLOCK from the start of data and returns the
// resulting Layout along with the number of bytes consumed.
func DecodeLayout(data []byte) (layout.Layout, int, error) {
	if len(data) < 2 {
		return layout.Layout{}, 0, &errs.DecodeShortError{Need: 2, Have: len(data)}
	}
	n := int(binary.LittleEndian.Uint16(data[0:2]))
	cursor := 2

	cols := make([]layout.Column, n)
	for i := 0; i < n; i++ {
		if len(data)-cursor < 2 {
			return layout.Layout{}, 0, &errs.DecodeShortError{Need: cursor + 2, Have: len(data)}
		}
		nameLen := int(binary.LittleEndian.Uint16(data[cursor : cursor+2]))
		cursor += 2
		if len(data)-cursor < nameLen+1 {
			return layout.Layout{}, 0, &errs.DecodeShortError{Need: cursor + nameLen + 1, Have: len(data)}
		}
		name := string(data[cursor : cursor+nameLen])
		cursor += nameLen
		typ := layout.ColumnType(data[cursor])
		cursor++
		cols[i] = layout.Column{Name: name, Type: typ}
	}

	lay, err := layout.New(cols...)
	if err != nil {
		return layout.Layout{}, 0, err
	}
	return lay, cursor, nil
}
