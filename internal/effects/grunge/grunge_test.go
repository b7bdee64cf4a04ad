package grunge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

func TestIntensityIsOddAndBounded(t *testing.T) {
	tests := []struct {
		multiplier int
		normalized float64
		want       int
	}{
		{1, 0, 1},
		{1, 0.5, 3},
		{3, 0.5, 7},
		{2, 0.5, 5},
		{3, 1, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Intensity(tt.multiplier, tt.normalized))
	}
}

func TestBurnifyPosterises(t *testing.T) {
	in, err := frame.FromBytes(2, 1, []uint8{0, 127, 128, 255, 10, 200})
	require.NoError(t, err)

	out, err := Burnify(transform.Input{Frame: in})
	require.NoError(t, err)

	// At t=0 the low level is max(0, 5*sin 0) and the high level clips to 155.
	assert.Equal(t, []uint8{0, 0, 155, 155, 0, 155}, out.Pix)
	assert.Equal(t, uint8(127), in.Pix[1])
}

func TestDreamifyRejectsEvenKernel(t *testing.T) {
	in, err := frame.New(8, 8)
	require.NoError(t, err)

	_, err = Dreamify(in, 4)
	assert.Error(t, err)
	_, err = Dreamify(in, 0)
	assert.Error(t, err)
}

func TestMastersKeepGeometry(t *testing.T) {
	in, err := frame.Filled(32, 24, frame.BGR{B: 90, G: 140, R: 200})
	require.NoError(t, err)
	in = in.WithLabel(frame.Label{Text: "keep"})

	p := New(selection.NewSource(2))
	for _, fn := range []transform.Func{p.MasterComplex, p.MasterSimple} {
		out, err := fn(transform.Input{Frame: in, Complexity: 4, Threshold: 3, Samples: 20})
		require.NoError(t, err)
		assert.True(t, in.SameSize(out))
		assert.True(t, out.HasLabel("keep"))
	}
}

func TestPoolsAreBound(t *testing.T) {
	table := New(selection.NewSource(1)).Table()
	pools := Pools()
	require.NoError(t, pools.Validate())
	assert.True(t, table.Has(pools.High.Ops[0]))
	assert.True(t, table.Has(pools.Low.Ops[0]))
}
