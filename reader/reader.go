package reader

import (
	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
	"github.com/webertob/bcsv-go/packet"
	"github.com/webertob/bcsv-go/row"
	"github.com/webertob/bcsv-go/rowcodec"
)

// Reader walks a BCSV file's rows in order, packet by packet. Not safe for
// concurrent use.
type Reader struct {
	fi    *fileInfo
	codec rowcodec.Dispatch
	row   row.Row

	packetIdx   int
	pkt         packet.Packet
	rowInPacket int
	nextRowPos  uint64
	curRowPos   uint64

	errMsg string
	closed bool
}

// Open parses path's framing and arms the row codec the file declares.
func Open(path string) (*Reader, error) {
	fi, err := openFile(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{fi: fi, packetIdx: -1}
	if err := r.codec.SetupByID(fi.header.RowCodecID, fi.lay); err != nil {
		fi.f.Close()
		return nil, err
	}
	r.row = row.New(fi.lay, false)
	return r, nil
}

// Layout returns the file's column layout.
func (r *Reader) Layout() layout.Layout { return r.fi.lay }

// Row returns the reader's row buffer, valid after a ReadNext that returned
// true. The same instance is reused across calls: ZOH/DELTA-coded files rely
// on unchanged columns retaining their previous value in this buffer.
func (r *Reader) Row() *row.Row { return &r.row }

// RowPos returns the 0-based index of the row currently held in Row().
func (r *Reader) RowPos() uint64 { return r.curRowPos }

// ErrorMsg returns the detail of the error that stopped the most recent
// ReadNext, or "" if the last ReadNext succeeded or none has run yet.
func (r *Reader) ErrorMsg() string { return r.errMsg }

// ReadNext decodes the next row into Row(). It returns false at end of file
// or on error; callers distinguish the two with ErrorMsg.
func (r *Reader) ReadNext() bool {
	if r.closed {
		r.errMsg = errs.ErrClosed.Error()
		return false
	}
	r.errMsg = ""

	for r.rowInPacket >= r.pkt.RowCount() {
		r.packetIdx++
		if r.packetIdx >= len(r.fi.catalog) {
			return false
		}
		pkt, err := r.fi.readPacket(r.packetIdx)
		if err != nil {
			r.errMsg = err.Error()
			return false
		}
		r.pkt = pkt
		r.rowInPacket = 0
		r.codec.Active().Reset()
	}

	wire, err := r.pkt.RowSlice(r.rowInPacket)
	if err != nil {
		r.errMsg = err.Error()
		return false
	}
	// A zero-length slice is the writer's byte-identical-repeat shortcut:
	// valid only for ZOH/DELTA, where it means "re-emit the previous row"
	// and Row() is left exactly as it was after the prior ReadNext.
	if len(wire) == 0 && (r.codec.IsZoh() || r.codec.IsDelta()) {
		r.rowInPacket++
		r.curRowPos = r.nextRowPos
		r.nextRowPos++
		return true
	}
	if err := r.codec.Active().Deserialize(wire, &r.row); err != nil {
		r.errMsg = err.Error()
		return false
	}

	r.rowInPacket++
	r.curRowPos = r.nextRowPos
	r.nextRowPos++
	return true
}

// Close releases the reader's layout guard and closes the underlying file.
// Idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.codec.Close()
	return r.fi.f.Close()
}
