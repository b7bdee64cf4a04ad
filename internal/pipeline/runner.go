// Package pipeline drives frames from a source through analysis, calibration
// and dispatch to a sink or display, one frame at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visual-artifacts/internal/capture"
	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/logger"
	"visual-artifacts/internal/registry"
	"visual-artifacts/internal/render"
	"visual-artifacts/internal/timing"
)

const component = "Pipeline"

const DefaultProgressEvery = 30

var ErrNoActiveInstance = errors.New("no active effect instance")

type Config struct {
	Source   capture.Source
	Analyzer Analyzer
	Registry *registry.Manager

	// Exactly one of Sink and Display is normally set.
	Sink    render.Sink
	Display Display

	ExplicitOps []string
	Debug       bool
	// MaxFrames stops the run after that many frames; 0 is unlimited.
	MaxFrames     int
	ProgressEvery int
	Progress      ProgressFunc

	Timing *timing.Tracker
	Logger logger.Logger
	Clock  func() time.Time
}

// Stats summarises a run so far.
type Stats struct {
	SessionID  string
	Frames     int
	Failed     int
	Elapsed    time.Duration
	FPS        float64
	SourceFPS  float64
	Instance   string
	Calibrated bool
	Threshold  float64
	Complexity float64
	Enabled    bool
	Debug      bool
	Done       bool
	StopReason string
}

type Runner struct {
	cfg       Config
	sessionID string
	debug     bool
	start     time.Time
	stats     Stats
	log       logger.Logger
}

func New(cfg Config) (*Runner, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("pipeline requires a frame source")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("pipeline requires a complexity analyzer")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("pipeline requires a registry")
	}
	if cfg.Sink == nil && cfg.Display == nil {
		return nil, fmt.Errorf("pipeline requires a sink or a display")
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	if cfg.Timing == nil {
		cfg.Timing = timing.NewTracker(timing.DefaultWindow)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	sessionID := uuid.NewString()
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Runner{
		cfg:       cfg,
		sessionID: sessionID,
		debug:     cfg.Debug,
		log:       log,
		stats:     Stats{SessionID: sessionID, SourceFPS: cfg.Source.FPS()},
	}, nil
}

func (r *Runner) SessionID() string {
	return r.sessionID
}

// Run loops until end of input, MaxFrames, a quit key or ctx cancellation.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	if r.cfg.Registry.Active() == nil {
		return r.stats, ErrNoActiveInstance
	}

	r.start = r.cfg.Clock()
	r.log.Info(component, "run started", map[string]interface{}{
		"session":      r.sessionID,
		"instance":     r.cfg.Registry.Active().Name(),
		"explicit_ops": r.cfg.ExplicitOps,
		"max_frames":   r.cfg.MaxFrames,
	})

	reason, err := r.loop(ctx)

	r.stats = r.snapshot()
	r.stats.Done = true
	r.stats.StopReason = reason
	r.report()

	fields := map[string]interface{}{
		"session": r.sessionID,
		"reason":  reason,
		"frames":  r.stats.Frames,
		"failed":  r.stats.Failed,
		"fps":     r.stats.FPS,
	}
	for stage, avg := range r.cfg.Timing.Summary() {
		fields["avg_"+stage] = avg
	}
	r.log.Info(component, "run finished", fields)

	return r.stats, err
}

func (r *Runner) loop(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "cancelled", nil
		default:
		}

		if r.cfg.MaxFrames > 0 && r.stats.Frames >= r.cfg.MaxFrames {
			return "frame limit", nil
		}

		ok, cmd, err := r.Step(ctx)
		if err != nil {
			return "output error", err
		}
		if !ok {
			return "end of input", nil
		}
		if cmd == render.CommandQuit {
			return "quit", nil
		}
	}
}

// Step processes one frame. ok is false at end of input.
func (r *Runner) Step(ctx context.Context) (ok bool, cmd render.Command, err error) {
	if r.start.IsZero() {
		r.start = r.cfg.Clock()
	}
	tt := r.cfg.Timing

	span := tt.Start(ctx, "capture")
	ok, f := r.cfg.Source.Read()
	tt.End(span)
	if !ok {
		return false, render.CommandNone, nil
	}

	span = tt.Start(ctx, "analyze")
	score, err := r.cfg.Analyzer.Score(f)
	tt.End(span)

	var out frame.Frame
	if err != nil {
		r.stats.Failed++
		r.log.Error(component, err, map[string]interface{}{
			"stage": "analyze",
			"frame": r.stats.Frames,
		})
		out = f
	} else {
		if active := r.cfg.Registry.Active(); active != nil {
			active.Observe(score)
		}
		span = tt.Start(ctx, "dispatch")
		out = r.cfg.Registry.Dispatch(f, score, r.cfg.ExplicitOps)
		tt.End(span)
	}

	r.stats.Frames++
	r.stats.Complexity = score
	tt.Tick()

	if r.debug {
		out = r.overlay(score).Apply(out)
	}

	span = tt.Start(ctx, "output")
	cmd, err = r.emit(out)
	tt.End(span)
	if err != nil {
		return true, render.CommandNone, err
	}

	r.handle(cmd)
	if r.stats.Frames%r.cfg.ProgressEvery == 0 {
		r.stats = r.snapshot()
		r.report()
	}
	return true, cmd, nil
}

func (r *Runner) emit(f frame.Frame) (render.Command, error) {
	if r.cfg.Display != nil {
		cmd, err := r.cfg.Display.Show(f)
		if err != nil {
			return render.CommandNone, fmt.Errorf("display frame %d: %w", r.stats.Frames, err)
		}
		return cmd, nil
	}
	if err := r.cfg.Sink.Write(f); err != nil {
		return render.CommandNone, fmt.Errorf("write frame %d: %w", r.stats.Frames, err)
	}
	return render.CommandNone, nil
}

func (r *Runner) handle(cmd render.Command) {
	switch cmd {
	case render.CommandToggleEnabled:
		enabled := r.cfg.Registry.Toggle()
		r.log.Info(component, "effects toggled", map[string]interface{}{"enabled": enabled})
	case render.CommandToggleDebug:
		r.debug = !r.debug
		r.log.Info(component, "debug overlay toggled", map[string]interface{}{"debug": r.debug})
	case render.CommandQuit:
		r.log.Info(component, "quit requested", nil)
	}
}

func (r *Runner) overlay(score float64) Overlay {
	o := Overlay{
		Elapsed:    r.cfg.Clock().Sub(r.start),
		FPS:        r.cfg.Source.FPS(),
		Complexity: score,
	}
	if active := r.cfg.Registry.Active(); active != nil {
		o.Instance = active.Name()
		o.Threshold, o.Calibrated = active.Threshold()
	}
	return o
}

func (r *Runner) snapshot() Stats {
	s := r.stats
	s.Elapsed = r.cfg.Clock().Sub(r.start)
	s.FPS = r.cfg.Timing.FPS()
	s.Enabled = r.cfg.Registry.Enabled()
	s.Debug = r.debug
	if active := r.cfg.Registry.Active(); active != nil {
		s.Instance = active.Name()
		s.Threshold, s.Calibrated = active.Threshold()
	}
	return s
}

func (r *Runner) report() {
	if r.cfg.Progress != nil {
		r.cfg.Progress(r.stats)
	}
	r.log.Debug(component, "progress", map[string]interface{}{
		"frames":     r.stats.Frames,
		"fps":        r.stats.FPS,
		"instance":   r.stats.Instance,
		"calibrated": r.stats.Calibrated,
	})
}
