package pipeline

import (
	"fmt"
	"time"

	"visual-artifacts/internal/frame"
)

const (
	overlayX      = 10
	overlayScale  = 0.7
	overlayMargin = 50
	overlayStep   = 50
)

// Overlay is the per-frame state shown in debug mode.
type Overlay struct {
	Elapsed    time.Duration
	FPS        float64
	Complexity float64
	Threshold  float64
	Calibrated bool
	Instance   string
}

// Labels lays out the debug text. Threshold and classification lines only
// appear once the instance is calibrated.
func (o Overlay) Labels() []frame.Label {
	line := func(row int, text string, c frame.BGR) frame.Label {
		return frame.Label{Text: text, X: overlayX, Y: overlayMargin + row*overlayStep, Color: c, Scale: overlayScale}
	}

	labels := []frame.Label{
		line(0, fmt.Sprintf("TIME PASSED : %.2f SECONDS", o.Elapsed.Seconds()), frame.Green),
		line(1, fmt.Sprintf("FPS : %.2f", o.FPS), frame.Green),
		line(2, fmt.Sprintf("COMPLEXITY : %.2f", o.Complexity), frame.Green),
	}
	if o.Calibrated {
		labels = append(labels, line(3, fmt.Sprintf("THRESHOLD : %.2f", o.Threshold), frame.Green))
		if o.Complexity > o.Threshold {
			labels = append(labels, line(5, "CALIBRATED FRAME", frame.Red))
		} else {
			labels = append(labels, line(5, "UNPROCESSED FRAME", frame.Red))
		}
	}
	return append(labels, line(6, "EFFECT: "+o.Instance, frame.Blue))
}

func (o Overlay) Apply(f frame.Frame) frame.Frame {
	for _, l := range o.Labels() {
		f = f.WithLabel(l)
	}
	return f
}
