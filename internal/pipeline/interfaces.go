package pipeline

import (
	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/render"
)

// Analyzer scores a frame's complexity.
type Analyzer interface {
	Score(f frame.Frame) (float64, error)
}

// Display shows a frame and reports the key pressed, if any.
type Display interface {
	Show(f frame.Frame) (render.Command, error)
}

// ProgressFunc receives periodic snapshots of a run.
type ProgressFunc func(Stats)
