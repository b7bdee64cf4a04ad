package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-artifacts/internal/calibration"
	"visual-artifacts/internal/capture"
	"visual-artifacts/internal/effect"
	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/registry"
	"visual-artifacts/internal/render"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

type scripted struct {
	scores []float64
	i      int
	err    error
}

func (s *scripted) Score(frame.Frame) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.scores[s.i%len(s.scores)]
	s.i++
	return v, nil
}

type collector struct {
	frames []frame.Frame
}

func (c *collector) Write(f frame.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}

type keyboard struct {
	keys  []render.Command
	shown []frame.Frame
}

func (k *keyboard) Show(f frame.Frame) (render.Command, error) {
	k.shown = append(k.shown, f)
	if len(k.keys) == 0 {
		return render.CommandNone, nil
	}
	cmd := k.keys[0]
	k.keys = k.keys[1:]
	return cmd, nil
}

func invert(in transform.Input) (frame.Frame, error) {
	out := in.Frame.Clone()
	for i := range out.Pix {
		out.Pix[i] = 255 - out.Pix[i]
	}
	return out, nil
}

func newRegistry(t *testing.T) *registry.Manager {
	t.Helper()
	pool := selection.Pool{Ops: []transform.Op{transform.Burnify}, MinDuration: 1, MaxDuration: 1}
	inst, err := effect.New("Invert", effect.Config{
		Calibration: calibration.DefaultConfig(),
		Pools:       selection.Pools{High: pool, Low: pool},
	}, transform.Table{transform.Burnify: invert}, selection.NewSource(1))
	require.NoError(t, err)

	reg := registry.NewManager(nil)
	require.NoError(t, reg.Register(inst))
	require.NoError(t, reg.Activate("Invert"))
	return reg
}

func greyFrames(t *testing.T, n int) []frame.Frame {
	t.Helper()
	f, err := frame.Filled(4, 4, frame.BGR{B: 10, G: 20, R: 30})
	require.NoError(t, err)
	frames := make([]frame.Frame, n)
	for i := range frames {
		frames[i] = f
	}
	return frames
}

func TestRunCalibratesThenTransforms(t *testing.T) {
	sink := &collector{}
	var progress []Stats

	r, err := New(Config{
		Source:        capture.NewFrames(greyFrames(t, 15), 30, false),
		Analyzer:      &scripted{scores: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}},
		Registry:      newRegistry(t),
		Sink:          sink,
		ProgressEvery: 5,
		Progress:      func(s Stats) { progress = append(progress, s) },
	})
	require.NoError(t, err)
	_, err = uuid.Parse(r.SessionID())
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.frames, 15)
	for i := 0; i < 10; i++ {
		assert.True(t, sink.frames[i].HasLabel(effect.CalibratingText), "frame %d", i)
		assert.Equal(t, frame.BGR{B: 10, G: 20, R: 30}, sink.frames[i].At(0, 0))
	}
	for i := 10; i < 15; i++ {
		assert.False(t, sink.frames[i].HasLabel(effect.CalibratingText), "frame %d", i)
		assert.Equal(t, frame.BGR{B: 245, G: 235, R: 225}, sink.frames[i].At(0, 0))
	}

	assert.Equal(t, 15, stats.Frames)
	assert.True(t, stats.Calibrated)
	assert.True(t, stats.Done)
	assert.Equal(t, "end of input", stats.StopReason)
	assert.Equal(t, "Invert", stats.Instance)
	// Progress at 5, 10, 15 plus the final report.
	assert.Len(t, progress, 4)
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	sink := &collector{}
	r, err := New(Config{
		Source:    capture.NewFrames(greyFrames(t, 2), 30, true),
		Analyzer:  &scripted{scores: []float64{1}},
		Registry:  newRegistry(t),
		Sink:      sink,
		MaxFrames: 7,
	})
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, sink.frames, 7)
	assert.Equal(t, "frame limit", stats.StopReason)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &collector{}
	r, err := New(Config{
		Source:   capture.NewFrames(greyFrames(t, 2), 30, true),
		Analyzer: &scripted{scores: []float64{1}},
		Registry: newRegistry(t),
		Sink:     sink,
	})
	require.NoError(t, err)

	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, sink.frames)
	assert.Equal(t, "cancelled", stats.StopReason)
}

func TestDisplayKeysDriveRegistryAndDebug(t *testing.T) {
	reg := newRegistry(t)
	kb := &keyboard{keys: []render.Command{
		render.CommandToggleEnabled,
		render.CommandToggleDebug,
		render.CommandNone,
		render.CommandQuit,
	}}

	r, err := New(Config{
		Source:   capture.NewFrames(greyFrames(t, 1), 30, true),
		Analyzer: &scripted{scores: []float64{1}},
		Registry: reg,
		Display:  kb,
	})
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "quit", stats.StopReason)
	assert.Len(t, kb.shown, 4)
	assert.False(t, reg.Enabled())
	assert.True(t, stats.Debug)

	// Disabled after the first frame: no calibrating label, pixels untouched.
	assert.False(t, kb.shown[1].HasLabel(effect.CalibratingText))
	assert.True(t, kb.shown[2].HasLabel("EFFECT: Invert"))
}

func TestAnalyzerFailurePassesFrameThrough(t *testing.T) {
	sink := &collector{}
	r, err := New(Config{
		Source:   capture.NewFrames(greyFrames(t, 3), 30, false),
		Analyzer: &scripted{err: errors.New("bad frame")},
		Registry: newRegistry(t),
		Sink:     sink,
	})
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Failed)
	require.Len(t, sink.frames, 3)
	assert.False(t, sink.frames[0].HasLabel(effect.CalibratingText))
}

func TestRunWithoutActiveInstance(t *testing.T) {
	r, err := New(Config{
		Source:   capture.NewFrames(greyFrames(t, 1), 30, false),
		Analyzer: &scripted{scores: []float64{1}},
		Registry: registry.NewManager(nil),
		Sink:     &collector{},
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveInstance)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = New(Config{
		Source:   capture.NewFrames(nil, 30, false),
		Analyzer: &scripted{scores: []float64{1}},
		Registry: registry.NewManager(nil),
	})
	assert.Error(t, err)
}

func TestOverlayLabels(t *testing.T) {
	o := Overlay{Elapsed: 1500 * time.Millisecond, FPS: 29.97, Complexity: 3.14159, Instance: "Grunge"}
	texts := func(labels []frame.Label) []string {
		out := make([]string, len(labels))
		for i, l := range labels {
			out[i] = l.Text
		}
		return out
	}

	assert.Equal(t, []string{
		"TIME PASSED : 1.50 SECONDS",
		"FPS : 29.97",
		"COMPLEXITY : 3.14",
		"EFFECT: Grunge",
	}, texts(o.Labels()))

	o.Calibrated, o.Threshold = true, 2
	assert.Contains(t, texts(o.Labels()), "THRESHOLD : 2.00")
	assert.Contains(t, texts(o.Labels()), "CALIBRATED FRAME")

	o.Threshold = 5
	assert.Contains(t, texts(o.Labels()), "UNPROCESSED FRAME")
}
