// Package tracker provides edge-tracing transforms.
package tracker

import (
	"image"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/opencv/safe"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

const Name = "Tracker"

const (
	cannyLow  = 50
	cannyHigh = 150
)

// Pools pins one transform per class and re-evaluates every frame.
func Pools() selection.Pools {
	return selection.Pools{
		High: selection.Pool{Ops: []transform.Op{transform.EdgeFlash}, MinDuration: 1, MaxDuration: 1},
		Low:  selection.Pool{Ops: []transform.Op{transform.EdgeOverlay}, MinDuration: 1, MaxDuration: 1},
	}
}

type Provider struct {
	rng selection.Source
}

func New(rng selection.Source) *Provider {
	return &Provider{rng: rng}
}

func (p *Provider) Table() transform.Table {
	return transform.Table{
		transform.EdgeFlash:   p.EdgeFlash,
		transform.EdgeOverlay: EdgeOverlay,
	}
}

// EdgeFlash paints detected edges in a random colour and blends them in.
func (p *Provider) EdgeFlash(in transform.Input) (frame.Frame, error) {
	paint := gocv.NewScalar(float64(p.rng.IntN(256)), float64(p.rng.IntN(256)), float64(p.rng.IntN(256)), 0)

	return safe.Process(in.Frame, "edge_flash", func(src gocv.Mat, dst *gocv.Mat) error {
		edges := detectEdges(src, false)
		defer edges.Close()

		colored := gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
		defer colored.Close()
		colored.SetTo(gocv.NewScalar(0, 0, 0, 0))

		fill := gocv.NewMatWithSizeFromScalar(paint, src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
		defer fill.Close()
		fill.CopyToWithMask(&colored, edges)

		gocv.AddWeighted(src, 0.5, colored, 0.5, 0, dst)
		return nil
	})
}

// EdgeOverlay blends white edges of a lightly blurred frame over it.
func EdgeOverlay(in transform.Input) (frame.Frame, error) {
	return safe.Process(in.Frame, "edge_overlay", func(src gocv.Mat, dst *gocv.Mat) error {
		edges := detectEdges(src, true)
		defer edges.Close()

		edgesBGR := gocv.NewMat()
		defer edgesBGR.Close()
		gocv.CvtColor(edges, &edgesBGR, gocv.ColorGrayToBGR)

		gocv.AddWeighted(src, 0.5, edgesBGR, 0.5, 0, dst)
		return nil
	})
}

func detectEdges(src gocv.Mat, blur bool) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	if blur {
		gocv.GaussianBlur(gray, &gray, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)
	}

	edges := gocv.NewMat()
	gocv.Canny(gray, &edges, cannyLow, cannyHigh)
	return edges
}
