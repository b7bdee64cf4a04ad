package ui

import "visual-artifacts/internal/pipeline"

// ProgressMsg carries a pipeline snapshot.
type ProgressMsg struct {
	Stats pipeline.Stats
}

// DoneMsg ends the render view. OutputPath is empty when nothing was written.
type DoneMsg struct {
	Stats      pipeline.Stats
	OutputPath string
	Error      error
}
