package effect

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/calibration"
	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

func invert(in transform.Input) (frame.Frame, error) {
	out := in.Frame.Clone()
	for i := range out.Pix {
		out.Pix[i] = 255 - out.Pix[i]
	}
	return out, nil
}

func testConfig() Config {
	return Config{
		Calibration: calibration.DefaultConfig(),
		Pools: selection.Pools{
			High: selection.Pool{Ops: []transform.Op{transform.ColorBlast}, MinDuration: 2, MaxDuration: 2},
			Low:  selection.Pool{Ops: []transform.Op{transform.Identity}, MinDuration: 1, MaxDuration: 1},
		},
	}
}

func newInstance(t *testing.T, ops transform.Table, opts ...Option) *Instance {
	t.Helper()
	inst, err := New("Stub", testConfig(), ops, selection.NewSource(1), opts...)
	require.NoError(t, err)
	return inst
}

func grey(t *testing.T) frame.Frame {
	t.Helper()
	f, err := frame.Filled(4, 4, frame.BGR{B: 100, G: 100, R: 100})
	require.NoError(t, err)
	return f
}

func TestProcessBeforeCalibrationLabelsOnly(t *testing.T) {
	inst := newInstance(t, transform.Table{transform.ColorBlast: invert})
	in := grey(t)

	for i := 0; i < 10; i++ {
		inst.Observe(float64(i))
		out, decision, err := inst.Process(in, float64(i))
		require.NoError(t, err)
		assert.True(t, decision.Calibrating)
		assert.True(t, out.HasLabel(CalibratingText))
		assert.True(t, out.PixelsEqual(in))
		assert.False(t, in.HasLabel(CalibratingText))
	}
}

func TestProcessAfterCalibrationDispatchesByClass(t *testing.T) {
	inst := newInstance(t, transform.Table{transform.ColorBlast: invert})
	for i := 1; i <= 11; i++ {
		inst.Observe(float64(i))
	}
	require.True(t, inst.IsCalibrated())
	in := grey(t)

	out, decision, err := inst.Process(in, 100)
	require.NoError(t, err)
	assert.False(t, decision.Calibrating)
	assert.Equal(t, transform.ColorBlast, decision.Choice.Op)
	assert.Equal(t, frame.BGR{B: 155, G: 155, R: 155}, out.At(0, 0))
	assert.Equal(t, frame.BGR{B: 100, G: 100, R: 100}, in.At(0, 0))

	// held for the second frame even though the class flipped
	out, decision, err = inst.Process(in, 0)
	require.NoError(t, err)
	assert.Equal(t, transform.ColorBlast, decision.Choice.Op)
	assert.False(t, decision.Choice.Drawn)
	assert.False(t, out.PixelsEqual(in))

	out, decision, err = inst.Process(in, 0)
	require.NoError(t, err)
	assert.Equal(t, transform.Identity, decision.Choice.Op)
	assert.True(t, out.PixelsEqual(in))
}

func TestNewRejectsUnboundPoolOp(t *testing.T) {
	_, err := New("Broken", testConfig(), transform.Table{}, nil)
	assert.Error(t, err)
}

func TestApplyPassesContext(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var seen transform.Input
	capture := func(in transform.Input) (frame.Frame, error) {
		seen = in
		return in.Frame.Clone(), nil
	}
	inst := newInstance(t, transform.Table{transform.ColorBlast: capture}, WithClock(clock))

	_, err := inst.Apply(transform.ColorBlast, grey(t), 1)
	require.NoError(t, err)
	assert.False(t, seen.Calibrated)

	for i := 1; i <= 11; i++ {
		inst.Observe(float64(i))
	}
	now = now.Add(3 * time.Second)

	_, err = inst.Apply(transform.ColorBlast, grey(t), 7.5)
	require.NoError(t, err)
	assert.True(t, seen.Calibrated)
	assert.Equal(t, 7.5, seen.Complexity)
	assert.InDelta(t, 6.0, seen.Threshold, 1e-12)
	assert.Equal(t, 11, seen.Samples)
	assert.Equal(t, 3*time.Second, seen.Elapsed)
}

func TestApplyUnknownAndFailingOps(t *testing.T) {
	failing := func(in transform.Input) (frame.Frame, error) {
		return frame.Frame{}, errors.New("kaput")
	}
	shrink := func(in transform.Input) (frame.Frame, error) {
		return frame.New(1, 1)
	}
	inst := newInstance(t, transform.Table{
		transform.ColorBlast: invert,
		transform.Burnify:    failing,
		transform.Dreamify:   shrink,
	})
	in := grey(t)

	out, err := inst.Apply(transform.HueShift, in, 0)
	assert.ErrorIs(t, err, transform.ErrUnknownOp)
	assert.True(t, out.PixelsEqual(in))

	out, err = inst.Apply(transform.Burnify, in, 0)
	assert.Error(t, err)
	assert.True(t, out.PixelsEqual(in))

	out, err = inst.Apply(transform.Dreamify, in, 0)
	assert.Error(t, err)
	assert.True(t, out.PixelsEqual(in))
}

func TestNoneInstanceIsIdentity(t *testing.T) {
	none, err := NewNone(Config{Calibration: calibration.DefaultConfig()}, selection.NewSource(2))
	require.NoError(t, err)
	assert.Equal(t, NoneName, none.Name())
	assert.Equal(t, []transform.Op{transform.Identity}, none.Ops())

	in := grey(t)
	out, decision, err := none.Process(in, 1)
	require.NoError(t, err)
	assert.True(t, decision.Calibrating)
	assert.True(t, out.HasLabel(CalibratingText))

	for i := 0; i < 11; i++ {
		none.Observe(float64(i))
	}
	for _, score := range []float64{-5, 0, 5, 50} {
		out, decision, err = none.Process(in, score)
		require.NoError(t, err)
		assert.False(t, decision.Calibrating)
		assert.True(t, out.PixelsEqual(in))
		assert.Empty(t, out.Labels)
	}
}
