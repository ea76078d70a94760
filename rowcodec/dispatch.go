package rowcodec

import (
	"fmt"

	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"
)

// Dispatch holds one instance of every codec this build implements and
// selects a single active one, either automatically from file flags (the
// writer's path) or explicitly by id (the reader's path, after reading the
// file header). Switching codecs inside a file is never done in practice;
// Dispatch models it as a field assignment, not a branch in the hot path.
type Dispatch struct {
	flat    Flat001
	zoh     Zoh001
	delta   Delta002
	legacy  Delta001Decoder
	active  Codec
	lay     layout.Layout
}

// SelectCodec auto-picks a codec from file header flags: DELTA_ENCODING
// takes priority over ZERO_ORDER_HOLD, which takes priority over FLAT001.
func (d *Dispatch) SelectCodec(flags uint16, lay layout.Layout) error {
	d.lay = lay
	switch {
	case flags&FlagDeltaEncoding != 0:
		if err := d.delta.Setup(lay); err != nil {
			return err
		}
		d.active = &d.delta
	case flags&FlagZeroOrderHold != 0:
		if err := d.zoh.Setup(lay); err != nil {
			return err
		}
		d.active = &d.zoh
	default:
		if err := d.flat.Setup(lay); err != nil {
			return err
		}
		d.active = &d.flat
	}
	return nil
}

// SetupByID explicitly selects a codec by its wire format id, used by
// readers after reading the file's declared row codec id. Unknown ids are
// rejected rather than guessed.
func (d *Dispatch) SetupByID(id uint8, lay layout.Layout) error {
	d.lay = lay
	switch id {
	case IDFlat001:
		if err := d.flat.Setup(lay); err != nil {
			return err
		}
		d.active = &d.flat
	case IDZoh001:
		if err := d.zoh.Setup(lay); err != nil {
			return err
		}
		d.active = &d.zoh
	case IDDelta002:
		if err := d.delta.Setup(lay); err != nil {
			return err
		}
		d.active = &d.delta
	case IDDelta001:
		if err := d.legacy.Setup(lay); err != nil {
			return err
		}
		d.active = &d.legacy
	default:
		return fmt.Errorf("%w: unknown row codec id %d", errs.ErrCorruptFile, id)
	}
	return nil
}

// Active returns the currently selected codec.
func (d *Dispatch) Active() Codec { return d.active }

// ID returns the wire format id of the currently selected codec.
func (d *Dispatch) ID() int { return idOf(d.active) }

// IsDelta reports whether the active codec is DELTA002 (has inter-row
// gradient state the writer must reset at packet boundaries).
func (d *Dispatch) IsDelta() bool { return d.active == Codec(&d.delta) }

// IsZoh reports whether the active codec is ZOH001.
func (d *Dispatch) IsZoh() bool { return d.active == Codec(&d.zoh) }

// Close releases the active codec's layout guard.
func (d *Dispatch) Close() {
	if d.active != nil {
		d.active.Close()
	}
}
