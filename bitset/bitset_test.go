package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripBytes(t *testing.T) {
	b := New(37)
	for _, pos := range []int{0, 1, 5, 8, 16, 31, 36} {
		require.NoError(t, b.Set(pos, true))
	}

	raw := b.Bytes()
	require.Len(t, raw, 5) // ceil(37/8)

	var c Bitset
	c = New(37)
	require.NoError(t, c.ReadFrom(raw))
	assert.True(t, b.Equal(&c))

	out2 := c.Bytes()
	assert.Equal(t, raw, out2)
}

func TestOperators(t *testing.T) {
	a := New(70)
	for _, pos := range []int{0, 3, 40, 69} {
		require.NoError(t, a.Set(pos, true))
	}

	xorSelf := a.Clone()
	require.NoError(t, xorSelf.Xor(&a))
	assert.True(t, xorSelf.None())

	orSelf := a.Clone()
	require.NoError(t, orSelf.Or(&a))
	assert.True(t, orSelf.Equal(&a))

	andSelf := a.Clone()
	require.NoError(t, andSelf.And(&a))
	assert.True(t, andSelf.Equal(&a))

	doubleNot := a.Not()
	doubleNot = doubleNot.Not()
	assert.True(t, doubleNot.Equal(&a))

	assert.Equal(t, 4, a.Count())
}

func TestEncodeDecodeField(t *testing.T) {
	b := New(16)
	require.NoError(t, b.Encode(4, 5, 0x1b))
	v, err := b.Decode(4, 5)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x1b), v)
}

// TestSliceShift mirrors S5: size 128, bits at {0,5,63,64,127}, slice(3,60)
// shifted left by 2 should match an independently constructed reference.
func TestSliceShift(t *testing.T) {
	src := New(128)
	for _, pos := range []int{0, 5, 63, 64, 127} {
		require.NoError(t, src.Set(pos, true))
	}

	working := src.Clone()
	sl, err := MakeSlice(&working, 3, 60)
	require.NoError(t, err)
	sl.ShiftLeftAssign(2)

	// Build an independent reference: shift the [3,63) window left by 2
	// directly and splice it back next to the untouched bits.
	ref := src.Clone()
	window := New(60)
	for i := 0; i < 60; i++ {
		if v, _ := src.Get(3 + i); v {
			window.SetBit(i, true)
		}
	}
	shifted := window.ShiftLeft(2)
	for i := 0; i < 60; i++ {
		ref.SetBit(3+i, shifted.Bit(i))
	}

	assert.True(t, working.Equal(&ref))

	for _, pos := range []int{2, 63, 64, 127} {
		a, _ := working.Get(pos)
		b, _ := ref.Get(pos)
		assert.Equal(t, b, a, "pos %d", pos)
	}
}

func TestAssignRangeEqualRange(t *testing.T) {
	src := New(10)
	require.NoError(t, src.Set(0, true))
	require.NoError(t, src.Set(3, true))
	require.NoError(t, src.Set(9, true))

	dst := New(10)
	require.NoError(t, AssignRange(&dst, 0, &src, 0, 10))

	eq, err := EqualRange(&src, 0, &dst, 0, 10)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestInsertErase(t *testing.T) {
	b := New(4)
	require.NoError(t, b.Set(0, true))
	require.NoError(t, b.Set(1, false))
	require.NoError(t, b.Set(2, true))
	require.NoError(t, b.Set(3, false))

	require.NoError(t, b.Insert(1, true))
	assert.Equal(t, 5, b.Len())
	v0, _ := b.Get(0)
	v1, _ := b.Get(1)
	v2, _ := b.Get(2)
	assert.True(t, v0)
	assert.True(t, v1)
	assert.False(t, v2)

	require.NoError(t, b.Erase(1))
	assert.Equal(t, 4, b.Len())
	v0, _ = b.Get(0)
	v1, _ = b.Get(1)
	assert.True(t, v0)
	assert.False(t, v1)
}

func TestOutOfRange(t *testing.T) {
	b := New(8)
	assert.Error(t, b.Set(8, true))
	assert.Error(t, b.Reset(-1))
	_, err := b.Get(100)
	assert.Error(t, err)
}
