package conversion

import (
	"fmt"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/opencv/safe"
)

// ColorSpace represents different color space types
type ColorSpace int

const (
	ColorSpaceBGR ColorSpace = iota
	ColorSpaceHSV
	ColorSpaceLab
	ColorSpaceGray
)

var (
	toCodes = map[ColorSpace]gocv.ColorConversionCode{
		ColorSpaceHSV:  gocv.ColorBGRToHSV,
		ColorSpaceLab:  gocv.ColorBGRToLab,
		ColorSpaceGray: gocv.ColorBGRToGray,
	}
	fromCodes = map[ColorSpace]gocv.ColorConversionCode{
		ColorSpaceHSV:  gocv.ColorHSVToBGR,
		ColorSpaceLab:  gocv.ColorLabToBGR,
		ColorSpaceGray: gocv.ColorGrayToBGR,
	}
)

// FromBGR converts a BGR Mat into space.
func FromBGR(src *safe.Mat, space ColorSpace) (*safe.Mat, error) {
	if space == ColorSpaceBGR {
		return src.Clone()
	}
	code, ok := toCodes[space]
	if !ok {
		return nil, fmt.Errorf("unsupported color space: %d", int(space))
	}
	return Convert(src, code)
}

// ToBGR converts a Mat in space back to BGR.
func ToBGR(src *safe.Mat, space ColorSpace) (*safe.Mat, error) {
	if space == ColorSpaceBGR {
		return src.Clone()
	}
	code, ok := fromCodes[space]
	if !ok {
		return nil, fmt.Errorf("unsupported color space: %d", int(space))
	}
	return Convert(src, code)
}

// MapChannel converts src into space, rewrites one channel with fn and
// converts back to BGR.
func MapChannel(src *safe.Mat, space ColorSpace, channel int, fn func(v uint8) uint8) (*safe.Mat, error) {
	converted, err := FromBGR(src, space)
	if err != nil {
		return nil, err
	}
	defer converted.Close()

	m := converted.GetMat()
	if channel < 0 || channel >= m.Channels() {
		return nil, fmt.Errorf("channel %d out of bounds [0, %d)", channel, m.Channels())
	}

	data, err := m.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("channel access failed: %w", err)
	}
	step := m.Channels()
	for i := channel; i < len(data); i += step {
		data[i] = fn(data[i])
	}

	return ToBGR(converted, space)
}
