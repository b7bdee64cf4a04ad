// Package timing records per-stage latencies and frame rate for the
// processing loop.
package timing

import (
	"context"
	"sort"
	"sync"
	"time"
)

type timingKey struct{}

type span struct {
	stage string
	start time.Time
}

// Tracker keeps the most recent Window durations per stage.
type Tracker struct {
	timings map[string][]time.Duration
	frames  []time.Time
	window  int
	now     func() time.Time
	mu      sync.RWMutex
	enabled bool
}

const DefaultWindow = 120

func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		timings: make(map[string][]time.Duration),
		window:  window,
		now:     time.Now,
		enabled: true,
	}
}

// Start opens a span for stage. Pass the returned context to End.
func (t *Tracker) Start(ctx context.Context, stage string) context.Context {
	if !t.Enabled() {
		return ctx
	}
	return context.WithValue(ctx, timingKey{}, span{stage: stage, start: t.now()})
}

func (t *Tracker) End(ctx context.Context) time.Duration {
	if !t.Enabled() {
		return 0
	}

	s, ok := ctx.Value(timingKey{}).(span)
	if !ok {
		return 0
	}

	d := t.now().Sub(s.start)
	t.Record(s.stage, d)
	return d
}

func (t *Tracker) Record(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timings[stage] = appendBounded(t.timings[stage], d, t.window)
}

// Tick marks a completed frame for FPS estimation.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.frames = append(t.frames, now)
	if len(t.frames) > t.window {
		t.frames = t.frames[len(t.frames)-t.window:]
	}
}

// FPS is the frame rate over the retained ticks, 0 with fewer than two.
func (t *Tracker) FPS() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.frames) < 2 {
		return 0
	}
	span := t.frames[len(t.frames)-1].Sub(t.frames[0])
	if span <= 0 {
		return 0
	}
	return float64(len(t.frames)-1) / span.Seconds()
}

func (t *Tracker) Timings(stage string) []time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	timings := t.timings[stage]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (t *Tracker) Average(stage string) time.Duration {
	timings := t.Timings(stage)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range timings {
		total += d
	}
	return total / time.Duration(len(timings))
}

// Stages lists recorded stage names alphabetically.
func (t *Tracker) Stages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stages := make([]string, 0, len(t.timings))
	for stage := range t.timings {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	return stages
}

// Summary maps each stage to its average, for log fields.
func (t *Tracker) Summary() map[string]interface{} {
	out := make(map[string]interface{})
	for _, stage := range t.Stages() {
		out[stage] = t.Average(stage).String()
	}
	return out
}

func (t *Tracker) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

func (t *Tracker) Reset(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if stage == "" {
		t.timings = make(map[string][]time.Duration)
		t.frames = nil
	} else {
		delete(t.timings, stage)
	}
}

func appendBounded(s []time.Duration, d time.Duration, limit int) []time.Duration {
	s = append(s, d)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}
