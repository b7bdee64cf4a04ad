package colorchaos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

func gradient(t *testing.T, w, h int) frame.Frame {
	t.Helper()
	f, err := frame.New(w, h)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, frame.BGR{B: uint8(x), G: uint8(y), R: uint8(x + y)})
		}
	}
	return f
}

func TestPoolsShareOpsAcrossBands(t *testing.T) {
	pools := Pools()
	require.NoError(t, pools.Validate())

	assert.Len(t, pools.High.Ops, 10)
	assert.Equal(t, pools.High.Ops, pools.Low.Ops)
	assert.Contains(t, pools.Low.Ops, transform.ChannelShifting)
	assert.Equal(t, 30, pools.High.MinDuration)
	assert.Equal(t, 60, pools.High.MaxDuration)
	assert.Equal(t, 10, pools.Low.MinDuration)
	assert.Equal(t, 30, pools.Low.MaxDuration)
}

func TestTableBindsEveryPooledOp(t *testing.T) {
	table := New(selection.NewSource(1)).Table()
	for _, op := range Pools().High.Ops {
		assert.True(t, table.Has(op), op.String())
	}
}

func TestRGBSplitMovesOuterChannels(t *testing.T) {
	in := gradient(t, 16, 4)
	// sin(0) = 0, so the offset is 2.
	out, err := RGBSplit(transform.Input{Frame: in})
	require.NoError(t, err)
	require.True(t, in.SameSize(out))

	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			got := out.At(x, y)
			assert.Equal(t, in.At((x-2+16)%16, y).B, got.B)
			assert.Equal(t, in.At(x, y).G, got.G)
			assert.Equal(t, in.At((x+2)%16, y).R, got.R)
		}
	}
}

func TestChannelShiftingPassesLowBandThrough(t *testing.T) {
	in := gradient(t, 20, 6)

	tests := []struct {
		name    string
		input   transform.Input
		shifted bool
	}{
		{"below threshold", transform.Input{Frame: in, Complexity: 40, Threshold: 50, Calibrated: true}, false},
		{"tie counts as below", transform.Input{Frame: in, Complexity: 50, Threshold: 50, Calibrated: true}, false},
		{"above threshold", transform.Input{Frame: in, Complexity: 60, Threshold: 50, Calibrated: true}, true},
		{"uncalibrated", transform.Input{Frame: in, Complexity: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ChannelShifting(tt.input)
			require.NoError(t, err)
			assert.Equal(t, !tt.shifted, out.PixelsEqual(in))
		})
	}
}

func TestChannelShiftingLeavesGreenAndInput(t *testing.T) {
	in := gradient(t, 20, 6)
	before := in.Clone()

	out, err := ChannelShifting(transform.Input{Frame: in})
	require.NoError(t, err)

	assert.True(t, in.PixelsEqual(before))
	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			assert.Equal(t, in.At(x, y).G, out.At(x, y).G)
		}
	}
	// Row 1 is not a multiple of three, so blue stays put.
	assert.Equal(t, in.At(5, 1).B, out.At(5, 1).B)
	// Row 0 rolls blue three to the left.
	assert.Equal(t, in.At(8, 0).B, out.At(5, 0).B)
}

func TestKaleidoscopeOutsideWindowPassesThrough(t *testing.T) {
	in := gradient(t, 8, 8)
	p := New(selection.NewSource(1))

	out, err := p.Kaleidoscope(transform.Input{Frame: in, Elapsed: 5 * time.Second})
	require.NoError(t, err)
	assert.True(t, in.PixelsEqual(out))

	out, err = p.Kaleidoscope(transform.Input{Frame: in, Elapsed: 121500 * time.Millisecond})
	require.NoError(t, err)
	assert.True(t, in.PixelsEqual(out))
}

func TestMirrorBlacksOutCorners(t *testing.T) {
	in, err := frame.Filled(20, 20, frame.BGR{B: 200, G: 100, R: 50})
	require.NoError(t, err)

	out, err := Mirror(in, 6)
	require.NoError(t, err)
	require.True(t, in.SameSize(out))

	assert.Equal(t, frame.BGR{}, out.At(0, 0))
	assert.Equal(t, frame.BGR{B: 200, G: 100, R: 50}, out.At(10, 10))

	_, err = Mirror(in, 0)
	assert.Error(t, err)
}

func TestChannelSwapPermutesPlanes(t *testing.T) {
	in, err := frame.Filled(8, 8, frame.BGR{B: 10, G: 20, R: 30})
	require.NoError(t, err)

	out, err := New(selection.NewSource(3)).ChannelSwap(transform.Input{Frame: in})
	require.NoError(t, err)

	px := out.At(4, 4)
	assert.ElementsMatch(t, []uint8{10, 20, 30}, []uint8{px.B, px.G, px.R})
}

func TestColorBlastCapsIntensity(t *testing.T) {
	in, err := frame.Filled(4, 4, frame.BGR{B: 100, G: 100, R: 100})
	require.NoError(t, err)

	out, err := New(selection.NewSource(5)).ColorBlast(transform.Input{Frame: in, Complexity: 100, Threshold: 1})
	require.NoError(t, err)

	px := out.At(0, 0)
	// 0.7 of the original plus at most 0.3 of 255.
	for _, v := range []uint8{px.B, px.G, px.R} {
		assert.GreaterOrEqual(t, v, uint8(70))
		assert.LessOrEqual(t, v, uint8(147))
	}
	assert.True(t, in.SameSize(out))
}
