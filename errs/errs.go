// Package errs defines the sentinel errors returned across the bcsv module.
//
// Call sites wrap a sentinel with fmt.Errorf("%w: detail", errs.ErrX, ...) so
// callers can both match with errors.Is and read the human-readable detail.
// A handful of errors carry structured fields a caller may want to inspect
// programmatically (an offset, an index, a size); those are typed structs
// that wrap the matching sentinel via Unwrap.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIO covers file-not-found, permission-denied, short-write and other
	// os/io failures surfaced while opening, reading, or writing a file.
	ErrIO = errors.New("bcsv: io error")

	// ErrCorruptFile covers magic mismatch, version too new, truncated
	// packet, checksum mismatch, and byte-index bounds errors.
	ErrCorruptFile = errors.New("bcsv: corrupt file")

	// ErrLayoutLocked is returned by a structural Layout mutation while a
	// LayoutGuard is held.
	ErrLayoutLocked = errors.New("bcsv: layout is locked by an active codec/reader/writer")

	// ErrUnknownColumn is returned by name-based column lookups that miss.
	ErrUnknownColumn = errors.New("bcsv: unknown column")

	// ErrOutOfRange is returned by index-based column lookups and Bitset
	// position accessors that fall outside the valid range.
	ErrOutOfRange = errors.New("bcsv: index out of range")

	// ErrDuplicateColumnName is returned when a rename would collide with
	// an existing column name.
	ErrDuplicateColumnName = errors.New("bcsv: duplicate column name")

	// ErrTypeMismatch is returned by a typed Row accessor whose requested
	// type does not match (or losslessly convert to) the column's type.
	ErrTypeMismatch = errors.New("bcsv: column type mismatch")

	// ErrStringTooLong is returned when a string column value exceeds the
	// wire format's 65535-byte limit.
	ErrStringTooLong = errors.New("bcsv: string exceeds 65535 bytes")

	// ErrDecodeShort is returned when a per-row wire buffer is too small
	// for the layout a codec is decoding against.
	ErrDecodeShort = errors.New("bcsv: row buffer too short to decode")

	// ErrIndexOutOfRange is returned by DirectReader.Read for a row index
	// at or beyond the file's row count.
	ErrIndexOutOfRange = errors.New("bcsv: row index beyond end of file")

	// ErrViewSizeChange is returned by RowView.Set when the new value would
	// change the size of the column's in-place wire representation.
	ErrViewSizeChange = errors.New("bcsv: row view write would change row size")

	// ErrClosed is returned by Writer/Reader operations invoked after Close.
	ErrClosed = errors.New("bcsv: already closed")

	// ErrUnsupportedCodec is returned when encoding is requested from the
	// decode-only legacy DELTA001 codec. A file that declares an unknown row
	// codec id yields ErrCorruptFile instead.
	ErrUnsupportedCodec = errors.New("bcsv: unsupported row codec id")
)

// CorruptFileError reports a structural problem found at a specific byte
// offset within a BCSV file (magic mismatch, truncated packet, checksum
// mismatch, out-of-bounds byte-index entry).
type CorruptFileError struct {
	Offset int64
	Msg    string
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("bcsv: corrupt file at offset %d: %s", e.Offset, e.Msg)
}

func (e *CorruptFileError) Unwrap() error { return ErrCorruptFile }

// DecodeShortError reports that a row's wire buffer had fewer bytes than the
// codec needed to decode the declared layout.
type DecodeShortError struct {
	Need int
	Have int
}

func (e *DecodeShortError) Error() string {
	return fmt.Sprintf("bcsv: row buffer too short: need %d bytes, have %d", e.Need, e.Have)
}

func (e *DecodeShortError) Unwrap() error { return ErrDecodeShort }

// IndexOutOfRangeError reports a direct-access read past the end of the file.
type IndexOutOfRangeError struct {
	Index    uint64
	RowCount uint64
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("bcsv: row index %d out of range, row count is %d", e.Index, e.RowCount)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// TypeMismatchError reports a typed Row accessor used against the wrong
// column type.
type TypeMismatchError struct {
	Index    int
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("bcsv: column %d: expected %s, got %s", e.Index, e.Expected, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// StringTooLongError reports a string value that exceeds the wire format's
// 65535-byte limit for a given column.
type StringTooLongError struct {
	Index  int
	Length int
}

func (e *StringTooLongError) Error() string {
	return fmt.Sprintf("bcsv: column %d: string of %d bytes exceeds 65535-byte limit", e.Index, e.Length)
}

func (e *StringTooLongError) Unwrap() error { return ErrStringTooLong }
