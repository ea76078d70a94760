// Package reader implements sequential and direct-access readers over a
// BCSV file: both parse the same file header, layout block, and catalog on
// open, then differ in how they walk the packets that follow.
package reader

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/webertob/bcsv-go/bwire"
	"github.com/webertob/bcsv-go/compress"
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/packet"
)

// fileInfo is the bootstrap state shared by Reader and DirectReader: the
// open file handle, its header, layout, catalog, and compression envelope.
type fileInfo struct {
	f       *os.File
	header  bwire.FileHeader
	lay     layout.Layout
	catalog []bwire.CatalogEntry
	env     compress.Envelope
}

// openFile parses a BCSV file's framing: header, layout block, footer, and
// catalog. It does not touch any packet payload.
func openFile(path string) (*fileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrIO, err)
	}

	fi := &fileInfo{f: f}
	if err := fi.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	if err := fi.readLayout(); err != nil {
		f.Close()
		return nil, err
	}
	if err := fi.readCatalog(); err != nil {
		f.Close()
		return nil, err
	}
	fi.env = compress.NewEnvelope(fi.header.Flags.CompressionLevel())
	return fi, nil
}

func (fi *fileInfo) readHeader() error {
	buf := make([]byte, bwire.HeaderSize)
	if _, err := fi.f.ReadAt(buf, 0); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrIO, err)
	}
	h, err := bwire.ParseFileHeader(buf)
	if err != nil {
		return err
	}
	fi.header = h
	return nil
}

// readLayout decodes the layout block that follows the file header, growing
// its read buffer until DecodeLayout reports how many bytes it actually
// needed.
func (fi *fileInfo) readLayout() error {
	size := 256
	for {
		buf := make([]byte, size)
		n, err := fi.f.ReadAt(buf, int64(bwire.HeaderSize))
		truncated := err != nil
		if err != nil && n == 0 {
			return fmt.Errorf("%w: %s", errs.ErrIO, err)
		}
		buf = buf[:n]

		lay, _, derr := bwire.DecodeLayout(buf)
		if derr == nil {
			fi.lay = lay
			return nil
		}
		var short *errs.DecodeShortError
		if !truncated && errors.As(derr, &short) && short.Need > size {
			size = short.Need
			continue
		}
		return derr
	}
}

func (fi *fileInfo) readCatalog() error {
	size := fi.stat()
	if size < bwire.FooterSize {
		return &errs.CorruptFileError{Offset: size, Msg: "file too short for footer"}
	}

	footerBuf := make([]byte, bwire.FooterSize)
	if _, err := fi.f.ReadAt(footerBuf, size-bwire.FooterSize); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrIO, err)
	}
	footer, err := bwire.ParseFooter(footerBuf)
	if err != nil {
		return err
	}

	n := int(footer.CatalogEntries)
	catalogBuf := make([]byte, n*bwire.CatalogEntrySize)
	if n > 0 {
		if _, err := fi.f.ReadAt(catalogBuf, int64(footer.CatalogOffset)); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrIO, err)
		}
	}
	entries, err := bwire.DecodeCatalog(catalogBuf, n)
	if err != nil {
		return err
	}
	fi.catalog = entries
	return nil
}

func (fi *fileInfo) stat() int64 {
	info, err := fi.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// rowCount returns the total number of rows across all packets.
func (fi *fileInfo) rowCount() uint64 {
	if len(fi.catalog) == 0 {
		return 0
	}
	last := fi.catalog[len(fi.catalog)-1]
	return last.FirstRowIndex + uint64(last.Rows)
}

// packetAt returns the index of the catalog entry containing row index, and
// that row's offset within the packet.
func (fi *fileInfo) packetAt(index uint64) (int, int, error) {
	if index >= fi.rowCount() {
		return 0, 0, &errs.IndexOutOfRangeError{Index: index, RowCount: fi.rowCount()}
	}
	i := sort.Search(len(fi.catalog), func(i int) bool {
		return fi.catalog[i].FirstRowIndex+uint64(fi.catalog[i].Rows) > index
	})
	return i, int(index - fi.catalog[i].FirstRowIndex), nil
}

// readPacket loads and decodes the packet at catalog index i.
func (fi *fileInfo) readPacket(i int) (packet.Packet, error) {
	entry := fi.catalog[i]

	headerBuf := make([]byte, bwire.PacketHeaderSize)
	if _, err := fi.f.ReadAt(headerBuf, int64(entry.FileOffset)); err != nil {
		return packet.Packet{}, fmt.Errorf("%w: %s", errs.ErrIO, err)
	}
	h, err := bwire.ParsePacketHeader(headerBuf)
	if err != nil {
		return packet.Packet{}, err
	}

	indexLen := 4 * (int(h.Rows) + 1)
	indexBuf := make([]byte, indexLen)
	indexOffset := int64(entry.FileOffset) + bwire.PacketHeaderSize
	if _, err := fi.f.ReadAt(indexBuf, indexOffset); err != nil {
		return packet.Packet{}, fmt.Errorf("%w: %s", errs.ErrIO, err)
	}

	payloadBuf := make([]byte, h.CompressedLen)
	payloadOffset := indexOffset + int64(indexLen)
	if len(payloadBuf) > 0 {
		if _, err := fi.f.ReadAt(payloadBuf, payloadOffset); err != nil {
			return packet.Packet{}, fmt.Errorf("%w: %s", errs.ErrIO, err)
		}
	}

	return packet.Decode(headerBuf, indexBuf, payloadBuf, fi.env)
}
