package bitset

import "github.com/webertob/bcsv-go/errs"

// Slice is a non-owning view over [start, start+length) of a parent Bitset.
// It supports the same per-bit and shift operations as Bitset, scoped to the
// window; shifting vacates bits at the window's edges with zero, it never
// touches bits outside the window.
type Slice struct {
	parent *Bitset
	start  int
	length int
}

// MakeSlice returns a Slice view over [start, start+length) of b.
func MakeSlice(b *Bitset, start, length int) (Slice, error) {
	if start < 0 || length < 0 || start+length > b.n {
		return Slice{}, errs.ErrOutOfRange
	}
	return Slice{parent: b, start: start, length: length}, nil
}

// Len returns the number of bits in the window.
func (s Slice) Len() int { return s.length }

// Get returns the bit at i (relative to the window start).
func (s Slice) Get(i int) (bool, error) {
	if i < 0 || i >= s.length {
		return false, errs.ErrOutOfRange
	}
	return s.parent.getUnchecked(s.start + i), nil
}

// Set assigns the bit at i (relative to the window start).
func (s Slice) Set(i int, v bool) error {
	if i < 0 || i >= s.length {
		return errs.ErrOutOfRange
	}
	s.parent.setUnchecked(s.start+i, v)
	return nil
}

// Reset clears the bit at i.
func (s Slice) Reset(i int) error { return s.Set(i, false) }

// Flip inverts the bit at i.
func (s Slice) Flip(i int) error {
	if i < 0 || i >= s.length {
		return errs.ErrOutOfRange
	}
	s.parent.setUnchecked(s.start+i, !s.parent.getUnchecked(s.start+i))
	return nil
}

// SetAll sets every bit in the window to 1.
func (s Slice) SetAll() {
	for i := 0; i < s.length; i++ {
		s.parent.setUnchecked(s.start+i, true)
	}
}

// ResetAll clears every bit in the window to 0.
func (s Slice) ResetAll() {
	for i := 0; i < s.length; i++ {
		s.parent.setUnchecked(s.start+i, false)
	}
}

// FlipAll inverts every bit in the window.
func (s Slice) FlipAll() {
	for i := 0; i < s.length; i++ {
		s.parent.setUnchecked(s.start+i, !s.parent.getUnchecked(s.start+i))
	}
}

// snapshot materializes the window into a standalone Bitset.
func (s Slice) snapshot() Bitset {
	out := New(s.length)
	for i := 0; i < s.length; i++ {
		if s.parent.getUnchecked(s.start + i) {
			out.setUnchecked(i, true)
		}
	}
	return out
}

// assignFrom writes a standalone Bitset's bits back into the window.
func (s Slice) assignFrom(b Bitset) {
	for i := 0; i < s.length; i++ {
		s.parent.setUnchecked(s.start+i, b.getUnchecked(i))
	}
}

// AndAssign computes window &= other, windows must be equal length.
func (s Slice) AndAssign(other Slice) error {
	if s.length != other.length {
		return errs.ErrOutOfRange
	}
	for i := 0; i < s.length; i++ {
		v := s.parent.getUnchecked(s.start+i) && other.parent.getUnchecked(other.start+i)
		s.parent.setUnchecked(s.start+i, v)
	}
	return nil
}

// OrAssign computes window |= other, windows must be equal length.
func (s Slice) OrAssign(other Slice) error {
	if s.length != other.length {
		return errs.ErrOutOfRange
	}
	for i := 0; i < s.length; i++ {
		v := s.parent.getUnchecked(s.start+i) || other.parent.getUnchecked(other.start+i)
		s.parent.setUnchecked(s.start+i, v)
	}
	return nil
}

// XorAssign computes window ^= other, windows must be equal length.
func (s Slice) XorAssign(other Slice) error {
	if s.length != other.length {
		return errs.ErrOutOfRange
	}
	for i := 0; i < s.length; i++ {
		v := s.parent.getUnchecked(s.start+i) != other.parent.getUnchecked(other.start+i)
		s.parent.setUnchecked(s.start+i, v)
	}
	return nil
}

// ShiftLeftAssign shifts the window's bits toward higher indices by shift,
// zero-filling the low end. Bits outside the window are untouched.
func (s Slice) ShiftLeftAssign(shift int) {
	cur := s.snapshot()
	shifted := cur.ShiftLeft(shift)
	s.assignFrom(shifted)
}

// ShiftRightAssign shifts the window's bits toward lower indices by shift,
// zero-filling the high end. Bits outside the window are untouched.
func (s Slice) ShiftRightAssign(shift int) {
	cur := s.snapshot()
	shifted := cur.ShiftRight(shift)
	s.assignFrom(shifted)
}

// AssignRange copies length bits from src[srcOff:srcOff+length] into
// dst[dstOff:dstOff+length]. When both offsets are word-aligned (multiples
// of 64), whole words are copied directly; otherwise each bit is
// extracted-and-scattered individually.
func AssignRange(dst *Bitset, dstOff int, src *Bitset, srcOff int, length int) error {
	if dstOff < 0 || length < 0 || dstOff+length > dst.n {
		return errs.ErrOutOfRange
	}
	if srcOff < 0 || srcOff+length > src.n {
		return errs.ErrOutOfRange
	}

	if dstOff%wordBits == 0 && srcOff%wordBits == 0 {
		fullWords := length / wordBits
		dw := dstOff / wordBits
		sw := srcOff / wordBits
		copy(dst.words[dw:dw+fullWords], src.words[sw:sw+fullWords])
		for i := fullWords * wordBits; i < length; i++ {
			dst.setUnchecked(dstOff+i, src.getUnchecked(srcOff+i))
		}
		return nil
	}

	for i := 0; i < length; i++ {
		dst.setUnchecked(dstOff+i, src.getUnchecked(srcOff+i))
	}
	return nil
}

// EqualRange reports whether length bits starting at aOff in a equal the
// length bits starting at bOff in b.
func EqualRange(a *Bitset, aOff int, b *Bitset, bOff int, length int) (bool, error) {
	if aOff < 0 || length < 0 || aOff+length > a.n {
		return false, errs.ErrOutOfRange
	}
	if bOff < 0 || bOff+length > b.n {
		return false, errs.ErrOutOfRange
	}
	for i := 0; i < length; i++ {
		if a.getUnchecked(aOff+i) != b.getUnchecked(bOff+i) {
			return false, nil
		}
	}
	return true, nil
}
