package reader

import (
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/packet"
	"github.com/webertob/bcsv-go/row"
	"github.com/webertob/bcsv-go/rowcodec"
)

// DirectReader provides random access to a BCSV file's rows by index. It
// caches at most one decoded packet at a time: repeated reads within the
// same packet avoid re-reading it from disk, but ZOH/DELTA-coded packets
// still replay sequentially from the packet's first row up to the requested
// one, since only the changed columns are written per row. Not safe for
// concurrent use.
type DirectReader struct {
	fi    *fileInfo
	codec rowcodec.Dispatch
	row   row.Row

	cachedIdx    int // catalog index of the cached packet, -1 if none
	cachedPkt    packet.Packet
	replayCursor int // next not-yet-decoded row within the cached packet

	closed bool
}

// OpenDirect parses path's framing and arms the row codec the file declares.
func OpenDirect(path string) (*DirectReader, error) {
	fi, err := openFile(path)
	if err != nil {
		return nil, err
	}

	r := &DirectReader{fi: fi, cachedIdx: -1}
	if err := r.codec.SetupByID(fi.header.RowCodecID, fi.lay); err != nil {
		fi.f.Close()
		return nil, err
	}
	r.row = row.New(fi.lay, false)
	return r, nil
}

// Layout returns the file's column layout.
func (r *DirectReader) Layout() layout.Layout { return r.fi.lay }

// RowCount returns the total number of rows in the file.
func (r *DirectReader) RowCount() uint64 { return r.fi.rowCount() }

// Read decodes row index into the reader's row buffer and returns it. The
// returned *row.Row is only valid until the next call to Read.
func (r *DirectReader) Read(index uint64) (*row.Row, error) {
	if r.closed {
		return nil, errs.ErrClosed
	}

	packetIdx, localIdx, err := r.fi.packetAt(index)
	if err != nil {
		return nil, err
	}

	if packetIdx != r.cachedIdx {
		pkt, err := r.fi.readPacket(packetIdx)
		if err != nil {
			return nil, err
		}
		r.cachedIdx = packetIdx
		r.cachedPkt = pkt
		r.codec.Active().Reset()
		r.replayCursor = 0
	}

	needsReplay := r.codec.IsDelta() || r.codec.IsZoh()
	if needsReplay {
		if localIdx < r.replayCursor {
			r.codec.Active().Reset()
			r.replayCursor = 0
		}
		for r.replayCursor <= localIdx {
			wire, err := r.cachedPkt.RowSlice(r.replayCursor)
			if err != nil {
				return nil, err
			}
			// A zero-length slice is the writer's byte-identical-repeat
			// shortcut: re-emit the previous row by leaving r.row untouched.
			if len(wire) > 0 {
				if err := r.codec.Active().Deserialize(wire, &r.row); err != nil {
					return nil, err
				}
			}
			r.replayCursor++
		}
		return &r.row, nil
	}

	wire, err := r.cachedPkt.RowSlice(localIdx)
	if err != nil {
		return nil, err
	}
	if err := r.codec.Active().Deserialize(wire, &r.row); err != nil {
		return nil, err
	}
	return &r.row, nil
}

// Close releases the reader's layout guard and closes the underlying file.
// Idempotent.
func (r *DirectReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.codec.Close()
	return r.fi.f.Close()
}
