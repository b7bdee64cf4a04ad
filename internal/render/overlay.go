// Package render draws overlays and hands frames to a window or an encoder.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/opencv/safe"
)

const labelThickness = 2

// Sink consumes frames in order.
type Sink interface {
	Write(f frame.Frame) error
}

// Rasterize burns f's labels into its pixels. Frames without labels are
// returned as they are.
func Rasterize(f frame.Frame) (frame.Frame, error) {
	if len(f.Labels) == 0 {
		return f, nil
	}

	out, err := safe.Process(f, "rasterize", func(src gocv.Mat, dst *gocv.Mat) error {
		src.CopyTo(dst)
		for _, l := range f.Labels {
			scale := l.Scale
			if scale <= 0 {
				scale = 1
			}
			gocv.PutText(dst, l.Text, image.Pt(l.X, l.Y), gocv.FontHersheySimplex, scale, rgba(l.Color), labelThickness)
		}
		return nil
	})
	if err != nil {
		return frame.Frame{}, err
	}
	out.Labels = nil
	return out, nil
}

func rgba(c frame.BGR) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
