package safe

import (
	"fmt"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

func ValidateFrame(f frame.Frame, operation string) error {
	if f.Empty() {
		return fmt.Errorf("frame is empty for operation: %s", operation)
	}
	if err := frame.ValidateDimensions(f.Width, f.Height); err != nil {
		return fmt.Errorf("%w for operation: %s", err, operation)
	}
	if len(f.Pix) != f.Width*f.Height*frame.Channels {
		return fmt.Errorf("frame buffer holds %d bytes, want %d for operation: %s",
			len(f.Pix), f.Width*f.Height*frame.Channels, operation)
	}
	return nil
}

func ValidateColorConversion(src *Mat, code gocv.ColorConversionCode) error {
	if err := ValidateMatForOperation(src, "CvtColor"); err != nil {
		return err
	}

	channels := src.Channels()

	switch code {
	case gocv.ColorBGRToGray, gocv.ColorBGRToHSV, gocv.ColorHSVToBGR, gocv.ColorBGRToLab, gocv.ColorLabToBGR:
		if channels != 3 {
			return fmt.Errorf("conversion %d requires 3 channels, got %d", int(code), channels)
		}
	case gocv.ColorGrayToBGR:
		if channels != 1 {
			return fmt.Errorf("Gray to BGR conversion requires 1 channel, got %d", channels)
		}
	}

	return nil
}
