// Package effect bundles the per-instance state that drives automatic effect
// selection: complexity history, threshold, selection machine, and the table
// of operations the instance exposes.
package effect

import (
	"fmt"
	"time"

	"visual-artifacts/internal/calibration"
	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/logger"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

const CalibratingText = "CALIBRATING..."

// CalibratingLabel marks frames emitted before the threshold exists.
var CalibratingLabel = frame.Label{Text: CalibratingText, X: 50, Y: 50, Color: frame.Green, Scale: 1}

// Clock abstracts wall time for time-driven transforms.
type Clock func() time.Time

type Config struct {
	Calibration calibration.Config
	Pools       selection.Pools
}

type Instance struct {
	name    string
	tracker *calibration.Tracker
	machine *selection.Machine
	ops     transform.Table
	start   time.Time
	clock   Clock
	log     logger.Logger
}

type Option func(*Instance)

func WithClock(c Clock) Option {
	return func(i *Instance) { i.clock = c }
}

func WithLogger(l logger.Logger) Option {
	return func(i *Instance) { i.log = l }
}

// New validates that every pooled operation is bound in ops.
func New(name string, cfg Config, ops transform.Table, rng selection.Source, opts ...Option) (*Instance, error) {
	tracker, err := calibration.NewTracker(cfg.Calibration)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", name, err)
	}

	machine, err := selection.NewMachine(cfg.Pools, rng)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", name, err)
	}

	bound := ops.Merge(transform.Table{transform.Identity: transform.IdentityFunc})
	for _, pool := range []selection.Pool{cfg.Pools.High, cfg.Pools.Low} {
		for _, op := range pool.Ops {
			if !bound.Has(op) {
				return nil, fmt.Errorf("instance %s: pooled operation %s is not bound", name, op)
			}
		}
	}

	inst := &Instance{
		name:    name,
		tracker: tracker,
		machine: machine,
		ops:     bound,
		clock:   time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(inst)
	}
	inst.start = inst.clock()

	return inst, nil
}

func (i *Instance) Name() string {
	return i.name
}

// Observe records a complexity score.
func (i *Instance) Observe(score float64) {
	if !i.tracker.Observe(score) {
		return
	}
	threshold, _ := i.tracker.Threshold()
	i.log.Debug("Calibration", "threshold updated", map[string]interface{}{
		"instance":  i.name,
		"threshold": threshold,
		"samples":   i.tracker.Count(),
	})
}

func (i *Instance) IsCalibrated() bool {
	return i.tracker.IsCalibrated()
}

func (i *Instance) Threshold() (float64, bool) {
	return i.tracker.Threshold()
}

func (i *Instance) Tracker() *calibration.Tracker {
	return i.tracker
}

func (i *Instance) Machine() *selection.Machine {
	return i.machine
}

func (i *Instance) StartTime() time.Time {
	return i.start
}

func (i *Instance) Elapsed() time.Duration {
	return i.clock().Sub(i.start)
}

// Ops lists the operations available for explicit dispatch.
func (i *Instance) Ops() []transform.Op {
	return i.ops.Ops()
}

func (i *Instance) Has(op transform.Op) bool {
	return i.ops.Has(op)
}

// Decision describes what Process did with a frame.
type Decision struct {
	Calibrating bool
	Choice      selection.Choice
}

// Process runs automatic selection for one frame. Before calibration the
// frame comes back untouched apart from the calibrating label.
func (i *Instance) Process(f frame.Frame, score float64) (frame.Frame, Decision, error) {
	class, err := i.tracker.Classify(score)
	if err != nil {
		return f.WithLabel(CalibratingLabel), Decision{Calibrating: true}, nil
	}

	choice := i.machine.Next(class)
	if choice.Drawn {
		i.log.Debug("Selection", "operation drawn", map[string]interface{}{
			"instance":  i.name,
			"operation": choice.Op.String(),
			"class":     class.String(),
			"duration":  choice.Remaining + 1,
		})
	}

	out, err := i.Apply(choice.Op, f, score)
	return out, Decision{Choice: choice}, err
}

// Apply runs a single operation by enum key.
func (i *Instance) Apply(op transform.Op, f frame.Frame, score float64) (frame.Frame, error) {
	fn, ok := i.ops.Lookup(op)
	if !ok {
		return f, fmt.Errorf("%w: %s on %s", transform.ErrUnknownOp, op, i.name)
	}

	threshold, calibrated := i.tracker.Threshold()
	out, err := fn(transform.Input{
		Frame:      f,
		Complexity: score,
		Threshold:  threshold,
		Calibrated: calibrated,
		Samples:    i.tracker.Count(),
		Elapsed:    i.Elapsed(),
	})
	if err != nil {
		return f, fmt.Errorf("%s on %s: %w", op, i.name, err)
	}
	if err := transform.CheckResult(op, f, out); err != nil {
		return f, err
	}
	return out, nil
}
