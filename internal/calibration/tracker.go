// Package calibration tracks the complexity history of one effect instance
// and derives the threshold that splits frames into high and low complexity.
//
// Thresholds aggregate the whole retained history, not a sliding window, so
// early samples keep influencing later decisions unless HistoryCap bounds the
// history to a ring of the most recent samples.
package calibration

import (
	"errors"
	"sort"
)

var ErrNotCalibrated = errors.New("calibration threshold not available")

// Class is the outcome of comparing a score against the threshold.
type Class int

const (
	Below Class = iota
	Above
)

func (c Class) String() string {
	if c == Above {
		return "above"
	}
	return "below"
}

type Tracker struct {
	cfg       Config
	history   []float64
	next      int // ring write position when capped
	count     int // total samples observed
	threshold float64
	ready     bool
}

func NewTracker(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	capacity := cfg.HistoryCap
	if capacity == 0 {
		capacity = 64
	}
	return &Tracker{
		cfg:     cfg,
		history: make([]float64, 0, capacity),
	}, nil
}

// Observe appends score and reports whether the threshold was (re)computed.
func (t *Tracker) Observe(score float64) bool {
	t.append(score)
	t.count++

	if t.count <= t.cfg.MinSamples {
		return false
	}

	recompute := !t.ready
	if t.cfg.Policy == PolicyPeriodic && t.count%t.cfg.Interval == 0 {
		recompute = true
	}
	if !recompute {
		return false
	}

	t.threshold = t.aggregate()
	t.ready = true
	return true
}

func (t *Tracker) append(score float64) {
	if t.cfg.HistoryCap == 0 || len(t.history) < t.cfg.HistoryCap {
		t.history = append(t.history, score)
		return
	}
	t.history[t.next] = score
	t.next = (t.next + 1) % t.cfg.HistoryCap
}

func (t *Tracker) aggregate() float64 {
	if t.cfg.Aggregate == AggregateMedian {
		return median(t.history)
	}
	return mean(t.history)
}

func (t *Tracker) IsCalibrated() bool {
	return t.ready
}

// Threshold returns the current threshold and whether one exists.
func (t *Tracker) Threshold() (float64, bool) {
	return t.threshold, t.ready
}

// Classify compares score to the threshold. Ties classify as Below.
func (t *Tracker) Classify(score float64) (Class, error) {
	if !t.ready {
		return Below, ErrNotCalibrated
	}
	if score > t.threshold {
		return Above, nil
	}
	return Below, nil
}

// Count is the number of samples observed, including evicted ones.
func (t *Tracker) Count() int {
	return t.count
}

// History returns the retained samples, oldest first.
func (t *Tracker) History() []float64 {
	out := make([]float64, 0, len(t.history))
	if t.cfg.HistoryCap > 0 && len(t.history) == t.cfg.HistoryCap {
		out = append(out, t.history[t.next:]...)
		return append(out, t.history[:t.next]...)
	}
	return append(out, t.history...)
}

func (t *Tracker) Config() Config {
	return t.cfg
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
