package rowcodec

import (
	"testing"

	"github.com/webertob/bcsv-go/errs"
	"github.com/webertob/bcsv-go/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDispatchLayout(t *testing.T) layout.Layout {
	t.Helper()
	lay, err := layout.New(layout.Column{Name: "v", Type: layout.INT32})
	require.NoError(t, err)
	return lay
}

func TestSelectCodecPriority(t *testing.T) {
	lay := testDispatchLayout(t)

	var d Dispatch
	require.NoError(t, d.SelectCodec(0, lay))
	assert.Equal(t, IDFlat001, d.ID())
	d.Close()

	require.NoError(t, d.SelectCodec(FlagZeroOrderHold, lay))
	assert.Equal(t, IDZoh001, d.ID())
	assert.True(t, d.IsZoh())
	d.Close()

	require.NoError(t, d.SelectCodec(FlagDeltaEncoding, lay))
	assert.Equal(t, IDDelta002, d.ID())
	assert.True(t, d.IsDelta())
	d.Close()

	// Delta takes priority when both flags are set.
	require.NoError(t, d.SelectCodec(FlagZeroOrderHold|FlagDeltaEncoding, lay))
	assert.Equal(t, IDDelta002, d.ID())
	d.Close()
}

func TestSetupByID(t *testing.T) {
	lay := testDispatchLayout(t)

	var d Dispatch
	require.NoError(t, d.SetupByID(IDFlat001, lay))
	assert.Equal(t, IDFlat001, d.ID())
	d.Close()

	require.NoError(t, d.SetupByID(IDZoh001, lay))
	assert.Equal(t, IDZoh001, d.ID())
	d.Close()

	require.NoError(t, d.SetupByID(IDDelta002, lay))
	assert.Equal(t, IDDelta002, d.ID())
	d.Close()

	require.NoError(t, d.SetupByID(IDDelta001, lay))
	assert.Equal(t, IDDelta001, d.ID())
	d.Close()
}

func TestSetupByIDUnknown(t *testing.T) {
	lay := testDispatchLayout(t)
	var d Dispatch
	err := d.SetupByID(255, lay)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCorruptFile)
}
