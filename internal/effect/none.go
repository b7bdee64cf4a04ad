package effect

import (
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

const NoneName = "None"

// NewNone builds the reserved no-op instance. It calibrates like any other
// instance but its pools only ever yield the identity transform.
func NewNone(cfg Config, rng selection.Source, opts ...Option) (*Instance, error) {
	cfg.Pools = selection.Pools{
		High: selection.Pool{Ops: []transform.Op{transform.Identity}, MinDuration: 1, MaxDuration: 1},
		Low:  selection.Pool{Ops: []transform.Op{transform.Identity}, MinDuration: 1, MaxDuration: 1},
	}
	return New(NoneName, cfg, transform.Table{transform.Identity: transform.IdentityFunc}, rng, opts...)
}
