// Package conversion moves frames between colour spaces on top of gocv.
package conversion

import (
	"fmt"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/opencv/safe"
)

// Convert applies a colour conversion code into a new Mat.
func Convert(src *safe.Mat, code gocv.ColorConversionCode) (*safe.Mat, error) {
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	dst := gocv.NewMat()
	gocv.CvtColor(src.GetMat(), &dst, code)
	if dst.Empty() {
		dst.Close()
		return nil, fmt.Errorf("conversion %d produced an empty Mat", int(code))
	}

	return safe.Wrap(dst), nil
}

// ConvertToGrayscale converts multi-channel images to single-channel grayscale.
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	switch src.Channels() {
	case 1:
		return src.Clone()
	case 3:
		return Convert(src, gocv.ColorBGRToGray)
	case 4:
		dst := gocv.NewMat()
		gocv.CvtColor(src.GetMat(), &dst, gocv.ColorBGRAToGray)
		return safe.Wrap(dst), nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}

func ConvertGrayToBGR(src *safe.Mat) (*safe.Mat, error) {
	return Convert(src, gocv.ColorGrayToBGR)
}
