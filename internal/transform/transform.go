// Package transform declares the pluggable frame operations dispatched by
// effect instances.
//
// Providers declare their operations statically as a Table built at
// construction; nothing is discovered at runtime.
package transform

import (
	"fmt"
	"sort"
	"time"

	"visual-artifacts/internal/frame"
)

// Input is everything a transform may read for one frame.
type Input struct {
	Frame      frame.Frame
	Complexity float64
	Threshold  float64 // zero until the owning instance is calibrated
	Samples    int     // complexity samples observed by the owning instance
	Calibrated bool
	Elapsed    time.Duration
}

// Func transforms in.Frame. It must not mutate in.Frame and must return a
// frame with identical dimensions. Returning the input unchanged is a valid
// outcome, e.g. for time-gated effects outside their window.
type Func func(in Input) (frame.Frame, error)

// Table binds operations to their implementations.
type Table map[Op]Func

func (t Table) Lookup(op Op) (Func, bool) {
	fn, ok := t[op]
	return fn, ok
}

func (t Table) Has(op Op) bool {
	_, ok := t[op]
	return ok
}

// Ops lists the table's operations in declaration order.
func (t Table) Ops() []Op {
	ops := make([]Op, 0, len(t))
	for op := range t {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

func (t Table) Names() []string {
	ops := t.Ops()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.String()
	}
	return names
}

// Merge returns a table holding t's bindings overlaid with other's.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for op, fn := range t {
		out[op] = fn
	}
	for op, fn := range other {
		out[op] = fn
	}
	return out
}

// IdentityFunc returns a private copy of the input frame.
func IdentityFunc(in Input) (frame.Frame, error) {
	return in.Frame.Clone(), nil
}

// CheckResult verifies a transform kept the frame geometry.
func CheckResult(op Op, in, out frame.Frame) error {
	if !in.SameSize(out) {
		return fmt.Errorf("%s changed frame size from %dx%d to %dx%d", op, in.Width, in.Height, out.Width, out.Height)
	}
	if len(out.Pix) != out.Width*out.Height*frame.Channels {
		return fmt.Errorf("%s returned a malformed buffer of %d bytes", op, len(out.Pix))
	}
	return nil
}
