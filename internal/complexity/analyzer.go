// Package complexity scores how visually busy a frame is.
package complexity

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/opencv/conversion"
	"visual-artifacts/internal/opencv/safe"
)

const (
	VarianceWeight = 0.5
	EdgeWeight     = 0.3
	BrightWeight   = 0.2
)

// Analyzer blends luminance variance, Canny edge density and brightness
// spread into one non-negative score. It holds no history.
type Analyzer struct {
	LowThreshold  float32
	HighThreshold float32
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{LowThreshold: 50, HighThreshold: 150}
}

// Stats are the components of a score, exposed for the debug overlay.
type Stats struct {
	Variance    float64
	EdgeDensity float64
	StdNorm     float64
}

// Score is log1p(variance)*0.5 + edgeDensity*0.3 + std/255*0.2.
func (s Stats) Score() float64 {
	return math.Log1p(s.Variance)*VarianceWeight + s.EdgeDensity*EdgeWeight + s.StdNorm*BrightWeight
}

// Score returns 0 for an empty frame.
func (a *Analyzer) Score(f frame.Frame) (float64, error) {
	stats, err := a.Measure(f)
	if err != nil {
		return 0, err
	}
	return stats.Score(), nil
}

func (a *Analyzer) Measure(f frame.Frame) (Stats, error) {
	if f.Empty() {
		return Stats{}, nil
	}

	src, err := safe.FromFrame(f)
	if err != nil {
		return Stats{}, fmt.Errorf("complexity input: %w", err)
	}
	defer src.Close()

	gray, err := conversion.ConvertToGrayscale(src)
	if err != nil {
		return Stats{}, fmt.Errorf("complexity luminance: %w", err)
	}
	defer gray.Close()

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(gray.GetMat(), &mean, &stddev)
	std := stddev.GetDoubleAt(0, 0)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray.GetMat(), &edges, a.LowThreshold, a.HighThreshold)

	total := edges.Total()
	density := 0.0
	if total > 0 {
		density = float64(gocv.CountNonZero(edges)) / float64(total)
	}

	stats := Stats{
		Variance:    std * std,
		EdgeDensity: density,
		StdNorm:     std / 255.0,
	}
	if math.IsNaN(stats.Score()) || math.IsInf(stats.Score(), 0) {
		return Stats{}, fmt.Errorf("complexity score is not finite: %+v", stats)
	}
	return stats, nil
}
