package calibration

import (
	"fmt"
	"strings"
)

// Policy decides when the threshold is recomputed once calibrated.
type Policy int

const (
	// PolicyPeriodic recomputes whenever the sample count is a multiple of
	// Interval, letting the threshold follow scene changes.
	PolicyPeriodic Policy = iota
	// PolicyOnce computes the threshold the first time the sample count
	// exceeds MinSamples and freezes it.
	PolicyOnce
)

// Aggregate selects the statistic taken over the retained history.
type Aggregate int

const (
	AggregateMean Aggregate = iota
	AggregateMedian
)

type Config struct {
	Policy     Policy
	Aggregate  Aggregate
	MinSamples int // threshold appears once count > MinSamples
	Interval   int // periodic recompute cadence
	HistoryCap int // 0 keeps every sample
}

func DefaultConfig() Config {
	return Config{
		Policy:     PolicyPeriodic,
		Aggregate:  AggregateMean,
		MinSamples: 10,
		Interval:   10,
	}
}

func (c Config) Validate() error {
	if c.MinSamples < 0 {
		return fmt.Errorf("min samples must be non-negative, got %d", c.MinSamples)
	}
	if c.Policy == PolicyPeriodic && c.Interval <= 0 {
		return fmt.Errorf("periodic policy requires a positive interval, got %d", c.Interval)
	}
	if c.HistoryCap < 0 {
		return fmt.Errorf("history cap must be non-negative, got %d", c.HistoryCap)
	}
	switch c.Policy {
	case PolicyPeriodic, PolicyOnce:
	default:
		return fmt.Errorf("unknown policy %d", int(c.Policy))
	}
	switch c.Aggregate {
	case AggregateMean, AggregateMedian:
	default:
		return fmt.Errorf("unknown aggregate %d", int(c.Aggregate))
	}
	return nil
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "periodic":
		return PolicyPeriodic, nil
	case "once":
		return PolicyOnce, nil
	default:
		return PolicyPeriodic, fmt.Errorf("unknown calibration policy: %s", s)
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyPeriodic:
		return "periodic"
	case PolicyOnce:
		return "once"
	default:
		return "unknown"
	}
}

func ParseAggregate(s string) (Aggregate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean":
		return AggregateMean, nil
	case "median":
		return AggregateMedian, nil
	default:
		return AggregateMean, fmt.Errorf("unknown calibration aggregate: %s", s)
	}
}

func (a Aggregate) String() string {
	switch a {
	case AggregateMean:
		return "mean"
	case AggregateMedian:
		return "median"
	default:
		return "unknown"
	}
}
