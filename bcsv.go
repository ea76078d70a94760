// Package bcsv implements a binary columnar row-file format: fixed-width
// and string columns grouped into packets of rows, each packet independently
// LZ4-compressed and indexed for random access.
//
// A file is a schema (layout.Layout) plus a sequence of packets, one of
// three interchangeable row codecs, and a trailing catalog that locates
// every packet by file offset and first row index.
//
// # Basic usage
//
// Writing a file:
//
//	lay, _ := layout.New(
//	    layout.Column{Name: "id", Type: layout.INT32},
//	    layout.Column{Name: "name", Type: layout.STRING},
//	)
//	w, _ := bcsv.Create("data.bcsv", lay, bcsv.WithDeltaEncoding(), bcsv.WithCompressionLevel(5))
//	r := w.Row()
//	r.SetInt64(0, 1)
//	r.SetString(1, "first")
//	w.WriteRow()
//	w.Close()
//
// Reading it back in order:
//
//	r, _ := bcsv.Open("data.bcsv")
//	defer r.Close()
//	for r.ReadNext() {
//	    id, _ := r.Row().GetInt64(0)
//	}
//
// Or by row index:
//
//	d, _ := bcsv.OpenDirect("data.bcsv")
//	defer d.Close()
//	row, _ := d.Read(42)
//
// For the on-disk layout, row codecs, and packet/catalog details, see the
// bwire, rowcodec, and packet packages. This package only forwards to
// writer and reader; use those packages directly for anything beyond the
// common path.
package bcsv

import (
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/reader"
	"github.com/webertob/bcsv-go/writer"
)

// Option configures a Writer at Create time.
type Option = writer.Option

// WithPacketSize sets the number of rows buffered per packet before an
// automatic flush.
func WithPacketSize(n uint32) Option { return writer.WithPacketSize(n) }

// WithCompressionLevel sets the LZ4 envelope level (0 disables compression,
// clamped to [0, 12]).
func WithCompressionLevel(level int) Option { return writer.WithCompressionLevel(level) }

// WithZeroOrderHold selects the ZOH001 row codec.
func WithZeroOrderHold() Option { return writer.WithZeroOrderHold() }

// WithDeltaEncoding selects the DELTA002 row codec; it takes priority over
// WithZeroOrderHold if both are given.
func WithDeltaEncoding() Option { return writer.WithDeltaEncoding() }

// Writer builds one BCSV file, row by row.
type Writer = writer.Writer

// Create opens path for writing, truncating any existing file, and writes
// the file header and layout block.
func Create(path string, lay layout.Layout, opts ...Option) (*Writer, error) {
	return writer.Open(path, lay, opts...)
}

// Reader walks a BCSV file's rows in order.
type Reader = reader.Reader

// Open opens path for sequential reading.
func Open(path string) (*Reader, error) {
	return reader.Open(path)
}

// DirectReader provides random access to a BCSV file's rows by index.
type DirectReader = reader.DirectReader

// OpenDirect opens path for random-access reading.
func OpenDirect(path string) (*DirectReader, error) {
	return reader.OpenDirect(path)
}
