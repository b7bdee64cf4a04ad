package safe

import (
	"fmt"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
)

// MatFunc writes the result of an OpenCV operation on src into dst.
type MatFunc func(src gocv.Mat, dst *gocv.Mat) error

// Process runs fn on a Mat copy of f. The result keeps f's labels and is
// rejected if fn changed the geometry.
func Process(f frame.Frame, operation string, fn MatFunc) (frame.Frame, error) {
	src, err := FromFrame(f)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%s: %w", operation, err)
	}
	defer src.Close()

	dst := Wrap(gocv.NewMat())
	defer dst.Close()

	if err := fn(src.GetMat(), dst.Ptr()); err != nil {
		return frame.Frame{}, fmt.Errorf("%s: %w", operation, err)
	}
	if err := ValidateMatForOperation(dst, operation); err != nil {
		return frame.Frame{}, err
	}

	out, err := dst.ToFrame()
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%s: %w", operation, err)
	}
	if !out.SameSize(f) {
		return frame.Frame{}, fmt.Errorf("%s: result is %dx%d, want %dx%d", operation, out.Width, out.Height, f.Width, f.Height)
	}
	return f.WithPixels(out.Pix), nil
}
