// Package effects assembles the built-in effect instances into a registry.
package effects

import (
	"fmt"

	"visual-artifacts/internal/calibration"
	"visual-artifacts/internal/effect"
	"visual-artifacts/internal/effects/colorchaos"
	"visual-artifacts/internal/effects/grunge"
	"visual-artifacts/internal/effects/tracker"
	"visual-artifacts/internal/logger"
	"visual-artifacts/internal/registry"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

type Options struct {
	Calibration calibration.Config
	// Seed 0 seeds every generator from the clock.
	Seed   uint64
	Logger logger.Logger
	Clock  effect.Clock
}

type provider struct {
	name  string
	pools func() selection.Pools
	table func(rng selection.Source) transform.Table
}

var providers = []provider{
	{
		name:  tracker.Name,
		pools: tracker.Pools,
		table: func(rng selection.Source) transform.Table { return tracker.New(rng).Table() },
	},
	{
		name:  colorchaos.Name,
		pools: colorchaos.Pools,
		table: func(rng selection.Source) transform.Table { return colorchaos.New(rng).Table() },
	},
	{
		name:  grunge.Name,
		pools: grunge.Pools,
		table: func(rng selection.Source) transform.Table { return grunge.New(rng).Table() },
	},
}

// Names lists the instances Build registers, in registration order.
func Names() []string {
	names := make([]string, 0, len(providers)+1)
	for _, p := range providers {
		names = append(names, p.name)
	}
	return append(names, effect.NoneName)
}

func Build(opts Options) (*registry.Manager, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	instOpts := []effect.Option{effect.WithLogger(log)}
	if opts.Clock != nil {
		instOpts = append(instOpts, effect.WithClock(opts.Clock))
	}

	manager := registry.NewManager(log)
	for i, p := range providers {
		cfg := effect.Config{Calibration: opts.Calibration, Pools: p.pools()}

		inst, err := effect.New(p.name, cfg, p.table(source(opts.Seed, 2*i)), source(opts.Seed, 2*i+1), instOpts...)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", p.name, err)
		}
		if err := manager.Register(inst); err != nil {
			return nil, err
		}
	}

	none, err := effect.NewNone(effect.Config{Calibration: opts.Calibration}, source(opts.Seed, 2*len(providers)), instOpts...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", effect.NoneName, err)
	}
	if err := manager.Register(none); err != nil {
		return nil, err
	}

	log.Debug("Effects", "registry built", map[string]interface{}{
		"instances": manager.Names(),
	})
	return manager, nil
}

// source gives each generator its own stream; a zero seed stays clock-based.
func source(seed uint64, stream int) selection.Source {
	if seed == 0 {
		return selection.NewSource(0)
	}
	return selection.NewSource(seed + uint64(stream))
}
