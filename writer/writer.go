// Package writer assembles BCSV files: a file header and layout block
// followed by a run of packets and a trailing catalog/footer, built up one
// row at a time.
package writer

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/webertob/bcsv-go/bwire"
	"github.com/webertob/bcsv-go/compress"
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/internal/options"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/packet"
	"github.com/webertob/bcsv-go/row"
	"github.com/webertob/bcsv-go/rowcodec"
)

// Writer builds one BCSV file. Not safe for concurrent use: a single
// goroutine owns a Writer for its entire lifetime.
type Writer struct {
	f       *os.File
	lay     layout.Layout
	cfg     config
	env     compress.Envelope
	codec   rowcodec.Dispatch
	builder *packet.Builder
	row     row.Row

	offset        int64
	firstRowIndex uint64
	catalog       []bwire.CatalogEntry
	crc           uint32
	closed        bool
}

// Open creates path, truncating any existing file, and writes the file
// header and layout block. lay is locked against structural changes for the
// lifetime of the returned Writer via the row codec's layout guard.
func Open(path string, lay layout.Layout, opts ...Option) (*Writer, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s", errs.ErrIO, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrIO, err)
	}

	w := &Writer{
		f:   f,
		lay: lay,
		cfg: cfg,
		env: compress.NewEnvelope(cfg.compressionLevel),
		row: row.New(lay, false),
	}

	flags := bwire.NewFlags(cfg.zeroOrderHold, cfg.deltaEncoding, cfg.compressionLevel)
	if err := w.codec.SelectCodec(uint16(flags), lay); err != nil {
		f.Close()
		return nil, err
	}

	hdr := bwire.NewFileHeader(cfg.packetSize, uint8(w.codec.ID()), flags)
	if err := w.write(hdr.Bytes()); err != nil {
		w.codec.Close()
		f.Close()
		return nil, err
	}

	layoutBytes, err := bwire.EncodeLayout(lay)
	if err != nil {
		w.codec.Close()
		f.Close()
		return nil, err
	}
	if err := w.write(layoutBytes); err != nil {
		w.codec.Close()
		f.Close()
		return nil, err
	}

	w.builder = packet.NewBuilder(&w.codec)
	return w, nil
}

// write appends b to the file, advancing offset and folding b into the
// file-level checksum recorded in the footer.
func (w *Writer) write(b []byte) error {
	if _, err := w.f.Write(b); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrIO, err)
	}
	w.offset += int64(len(b))
	w.crc = crc32.Update(w.crc, crc32.IEEETable, b)
	return nil
}

// Row returns the writer's reusable row buffer. Set every column before
// calling WriteRow; unlike a sequential Reader, a Writer's row does not need
// to be the same instance across calls (the codec tracks its own previous
// row internally), but reusing it avoids an allocation per row.
func (w *Writer) Row() *row.Row { return &w.row }

// WriteRow serializes the writer's current row buffer into the in-progress
// packet, automatically flushing once the packet reaches its configured row
// count. On a serialize error (e.g. a string that overflows 65535 bytes in
// delta mode) the in-progress packet is left exactly as it was before the
// call; the row can be corrected and retried.
func (w *Writer) WriteRow() error {
	if w.closed {
		return errs.ErrClosed
	}
	if err := w.builder.AddRow(&w.row); err != nil {
		return err
	}
	if uint32(w.builder.Rows()) >= w.cfg.packetSize {
		return w.Flush()
	}
	return nil
}

// Write copies src's columns into the writer's row buffer and calls
// WriteRow. src must be bound to a layout compatible with the writer's.
func (w *Writer) Write(src *row.Row) error {
	if w.closed {
		return errs.ErrClosed
	}
	if err := w.row.CopyFrom(src); err != nil {
		return err
	}
	return w.WriteRow()
}

// Flush finalizes the in-progress packet, if it has any rows, writing its
// header, byte index, and compressed payload to the file and appending a
// catalog entry for it. A no-op when no rows are pending.
func (w *Writer) Flush() error {
	if w.closed {
		return errs.ErrClosed
	}
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	rows := w.builder.Rows()
	if rows == 0 {
		return nil
	}

	headerBytes, indexBytes, payload, err := w.builder.Flush(w.env)
	if err != nil {
		return err
	}

	packetOffset := uint64(w.offset)
	// Write order matches PacketHeader -> byte index -> payload on disk; the
	// payload must be fully written before Reset can reclaim its buffer.
	if err := w.write(headerBytes); err != nil {
		return err
	}
	if err := w.write(indexBytes); err != nil {
		return err
	}
	if err := w.write(payload); err != nil {
		return err
	}

	w.catalog = append(w.catalog, bwire.CatalogEntry{
		FileOffset:    packetOffset,
		FirstRowIndex: w.firstRowIndex,
		Rows:          uint32(rows),
	})
	w.firstRowIndex += uint64(rows)

	w.builder.Reset()
	return nil
}

// Close flushes any in-progress packet, writes the catalog and footer, and
// closes the underlying file. Idempotent: calling Close more than once
// returns nil after the first call.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.codec.Close()
	defer w.builder.Release()
	defer w.f.Close()

	if err := w.flushLocked(); err != nil {
		return err
	}

	catalogOffset := uint64(w.offset)
	if err := w.write(bwire.EncodeCatalog(w.catalog)); err != nil {
		return err
	}

	footer := bwire.Footer{
		CatalogOffset:  catalogOffset,
		CatalogEntries: uint32(len(w.catalog)),
		Crc32:          w.crc,
	}
	if _, err := w.f.Write(footer.Bytes()); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrIO, err)
	}
	return nil
}
