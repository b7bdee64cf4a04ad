// Package selection chooses which transform runs on each frame.
//
// The machine draws a transform from the pool matching the frame's complexity
// class and keeps it for a randomly drawn number of frames before re-rolling.
// Busy frames get the longer-lived pool.
package selection

import (
	"fmt"
	"math/rand/v2"
	"time"

	"visual-artifacts/internal/calibration"
	"visual-artifacts/internal/transform"
)

// Source is the randomness the machine draws from.
type Source interface {
	IntN(n int) int
}

// NewSource returns a seeded generator; seed 0 picks a time-based seed.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Pool is a candidate set of operations with a duration range in frames.
type Pool struct {
	Ops         []transform.Op
	MinDuration int
	MaxDuration int
}

func (p Pool) Validate() error {
	if p.MinDuration < 1 {
		return fmt.Errorf("pool min duration must be at least 1, got %d", p.MinDuration)
	}
	if p.MaxDuration < p.MinDuration {
		return fmt.Errorf("pool max duration %d below min %d", p.MaxDuration, p.MinDuration)
	}
	for _, op := range p.Ops {
		if !op.Valid() {
			return fmt.Errorf("pool holds invalid operation %s", op)
		}
	}
	return nil
}

// Pools pairs the high- and low-complexity candidate sets.
type Pools struct {
	High Pool
	Low  Pool
}

func (p Pools) For(class calibration.Class) Pool {
	if class == calibration.Above {
		return p.High
	}
	return p.Low
}

func (p Pools) Validate() error {
	if err := p.High.Validate(); err != nil {
		return fmt.Errorf("high pool: %w", err)
	}
	if err := p.Low.Validate(); err != nil {
		return fmt.Errorf("low pool: %w", err)
	}
	return nil
}

// Choice is the decision for one frame.
type Choice struct {
	Op        transform.Op
	Class     calibration.Class
	Remaining int
	Drawn     bool // a new op was drawn this frame
}

type Machine struct {
	pools     Pools
	rng       Source
	current   transform.Op
	remaining int
	draws     int
}

func NewMachine(pools Pools, rng Source) (*Machine, error) {
	if err := pools.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewSource(0)
	}
	return &Machine{pools: pools, rng: rng, current: transform.Identity}, nil
}

// Next advances the machine by one frame of the given class.
func (m *Machine) Next(class calibration.Class) Choice {
	drawn := false
	if m.remaining <= 0 {
		pool := m.pools.For(class)
		m.current = m.pick(pool)
		m.remaining = m.duration(pool)
		m.draws++
		drawn = true
	}

	m.remaining--

	return Choice{
		Op:        m.current,
		Class:     class,
		Remaining: m.remaining,
		Drawn:     drawn,
	}
}

func (m *Machine) pick(pool Pool) transform.Op {
	if len(pool.Ops) == 0 {
		return transform.Identity
	}
	return pool.Ops[m.rng.IntN(len(pool.Ops))]
}

func (m *Machine) duration(pool Pool) int {
	span := pool.MaxDuration - pool.MinDuration + 1
	return pool.MinDuration + m.rng.IntN(span)
}

// Current returns the active operation and the frames left before a re-roll.
func (m *Machine) Current() (transform.Op, int) {
	return m.current, m.remaining
}

// Draws counts how many times a new operation was drawn.
func (m *Machine) Draws() int {
	return m.draws
}

func (m *Machine) Pools() Pools {
	return m.pools
}

// Reset forces a re-roll on the next frame.
func (m *Machine) Reset() {
	m.remaining = 0
	m.current = transform.Identity
}
