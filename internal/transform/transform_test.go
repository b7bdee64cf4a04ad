package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/frame"
)

func TestParseOpRoundTripsEveryName(t *testing.T) {
	for _, op := range AllOps() {
		got, err := ParseOp(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
}

func TestParseOpUnknown(t *testing.T) {
	_, err := ParseOp("unknownOp")
	assert.ErrorIs(t, err, ErrUnknownOp)

	_, err = ParseOps([]string{"hue_shift", "nope"})
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestOpStringOutOfRange(t *testing.T) {
	assert.Equal(t, "op(99)", Op(99).String())
	assert.False(t, Op(-1).Valid())
}

func TestTableOpsSorted(t *testing.T) {
	table := Table{
		Kaleidoscope: IdentityFunc,
		ChannelSwap:  IdentityFunc,
		HueShift:     IdentityFunc,
	}

	assert.Equal(t, []Op{ChannelSwap, HueShift, Kaleidoscope}, table.Ops())
	assert.Equal(t, []string{"channel_swap", "hue_shift", "kaleidoscope"}, table.Names())
	assert.True(t, table.Has(HueShift))
	assert.False(t, table.Has(Burnify))
}

func TestMergeOverlays(t *testing.T) {
	base := Table{Identity: IdentityFunc}
	merged := base.Merge(Table{Burnify: IdentityFunc})

	assert.Len(t, merged, 2)
	assert.Len(t, base, 1)
}

func TestIdentityFuncCopies(t *testing.T) {
	f, err := frame.Filled(2, 2, frame.Red)
	require.NoError(t, err)

	out, err := IdentityFunc(Input{Frame: f})
	require.NoError(t, err)
	out.Set(0, 0, frame.Blue)

	assert.Equal(t, frame.Red, f.At(0, 0))
}

func TestCheckResult(t *testing.T) {
	a, _ := frame.New(4, 4)
	b, _ := frame.New(4, 2)

	assert.NoError(t, CheckResult(Identity, a, a.Clone()))
	assert.Error(t, CheckResult(Identity, a, b))

	bad := a.Clone()
	bad.Pix = bad.Pix[:5]
	assert.Error(t, CheckResult(Identity, a, bad))
}
