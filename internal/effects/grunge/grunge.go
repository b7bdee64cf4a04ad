// Package grunge provides washed-out, bloomed and vignetted looks, and the
// two composites that chain them at a complexity-driven intensity.
package grunge

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/opencv/conversion"
	"visual-artifacts/internal/opencv/safe"
	"visual-artifacts/internal/perceptual"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

const Name = "Grunge"

const (
	maxIntensity     = 10
	defaultIntensity = 5
)

func Pools() selection.Pools {
	return selection.Pools{
		High: selection.Pool{Ops: []transform.Op{transform.GrungeMasterComplex}, MinDuration: 1, MaxDuration: 1},
		Low:  selection.Pool{Ops: []transform.Op{transform.GrungeMasterSimple}, MinDuration: 1, MaxDuration: 1},
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
		transform.BleachBypass:        BleachBypass,
		transform.EmoBloom:            EmoBloom,
		transform.WashedEmoLayers:     WashedEmoLayers,
		transform.Burnify:             Burnify,
		transform.Dreamify:            func(in transform.Input) (frame.Frame, error) { return Dreamify(in.Frame, defaultIntensity) },
		transform.GrungeMasterComplex: p.MasterComplex,
		transform.GrungeMasterSimple:  p.MasterSimple,
	}
}

// BleachBypass equalises lightness in Lab and washes the result toward grey.
func BleachBypass(in transform.Input) (frame.Frame, error) {
	return safe.Process(in.Frame, "grunge_bleach_bypass", func(src gocv.Mat, dst *gocv.Mat) error {
		lab := gocv.NewMat()
		defer lab.Close()
		gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

		planes := gocv.Split(lab)
		defer closeAll(planes)
		gocv.EqualizeHist(planes[0], &planes[0])
		gocv.Merge(planes, &lab)

		contrasted := gocv.NewMat()
		defer contrasted.Close()
		gocv.CvtColor(lab, &contrasted, gocv.ColorLabToBGR)

		wash := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(25, 25, 25, 0), src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
		defer wash.Close()
		gocv.AddWeighted(contrasted, 0.8, wash, 0.2, 0, dst)
		return nil
	})
}

// EmoBloom adds a wide glow and boosts saturation by 30%.
func EmoBloom(in transform.Input) (frame.Frame, error) {
	glowed, err := safe.Process(in.Frame, "emo_bloom_effect", func(src gocv.Mat, dst *gocv.Mat) error {
		bloom := gocv.NewMat()
		defer bloom.Close()
		gocv.GaussianBlur(src, &bloom, image.Point{X: 35, Y: 35}, 0, 0, gocv.BorderDefault)
		gocv.AddWeighted(src, 0.7, bloom, 0.4, 0, dst)
		return nil
	})
	if err != nil {
		return frame.Frame{}, err
	}

	return safe.Process(glowed, "emo_bloom_effect", func(src gocv.Mat, dst *gocv.Mat) error {
		bgr, err := safe.NewMatFromMat(src)
		if err != nil {
			return err
		}
		defer bgr.Close()

		saturated, err := conversion.MapChannel(bgr, conversion.ColorSpaceHSV, 1, func(s uint8) uint8 {
			return uint8(math.Min(255, float64(s)*1.3))
		})
		if err != nil {
			return err
		}
		defer saturated.Close()
		saturated.GetMat().CopyTo(dst)
		return nil
	})
}

// WashedEmoLayers dims red and green, blurs and grains blue, then lifts the
// whole frame.
func WashedEmoLayers(in transform.Input) (frame.Frame, error) {
	return safe.Process(in.Frame, "washed_emo_layers", func(src gocv.Mat, dst *gocv.Mat) error {
		planes := gocv.Split(src)
		defer closeAll(planes)

		gocv.GaussianBlur(planes[0], &planes[0], image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)
		blue := gocv.NewMat()
		defer blue.Close()
		planes[0].ConvertTo(&blue, gocv.MatTypeCV32FC1)

		noise := gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV32FC1)
		defer noise.Close()
		gocv.RandN(&noise, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(15, 0, 0, 0))

		grained := gocv.NewMat()
		defer grained.Close()
		gocv.AddWeighted(blue, 0.9, noise, 1, 0, &grained)
		grained.ConvertTo(&planes[0], gocv.MatTypeCV8UC1)

		gocv.ConvertScaleAbs(planes[1], &planes[1], 0.7, 0)
		gocv.ConvertScaleAbs(planes[2], &planes[2], 0.7, 0)

		merged := gocv.NewMat()
		defer merged.Close()
		gocv.Merge(planes, &merged)
		gocv.ConvertScaleAbs(merged, dst, 1.1, 10)
		return nil
	})
}

// Burnify posterises every channel to a near-black or a burnt highlight.
func Burnify(in transform.Input) (frame.Frame, error) {
	t := in.Elapsed.Seconds() * 0.05
	low := uint8(math.Max(0, math.Min(100, 5*math.Sin(t))))
	high := uint8(math.Max(155, math.Min(255, 5*math.Cos(t))))

	out := in.Frame.Clone()
	for i, v := range out.Pix {
		if v < 128 {
			out.Pix[i] = low
		} else {
			out.Pix[i] = high
		}
	}
	return out, nil
}

// Dreamify warms, softens, vignettes and grains the frame. intensity is the
// blur kernel size and noise sigma and must be odd.
func Dreamify(f frame.Frame, intensity int) (frame.Frame, error) {
	if intensity < 1 || intensity%2 == 0 {
		return frame.Frame{}, fmt.Errorf("dreamify intensity must be odd and positive, got %d", intensity)
	}

	return safe.Process(f, "dreamify", func(src gocv.Mat, dst *gocv.Mat) error {
		planes := gocv.Split(src)
		defer closeAll(planes)
		gocv.ConvertScaleAbs(planes[0], &planes[0], 0.6, 0)
		gocv.ConvertScaleAbs(planes[1], &planes[1], 0.8, 0)

		warm := gocv.NewMat()
		defer warm.Close()
		gocv.Merge(planes, &warm)
		gocv.GaussianBlur(warm, &warm, image.Point{X: intensity, Y: intensity}, 3, 3, gocv.BorderDefault)

		soft := gocv.NewMat()
		defer soft.Close()
		warm.ConvertTo(&soft, gocv.MatTypeCV32FC3)

		mask := vignette(src.Rows(), src.Cols())
		defer mask.Close()
		gocv.Multiply(soft, mask, &soft)

		noise := gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV32FC3)
		defer noise.Close()
		sigma := float64(intensity)
		gocv.RandN(&noise, gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(sigma, sigma, sigma, 0))
		gocv.Add(soft, noise, &soft)

		soft.ConvertTo(dst, gocv.MatTypeCV8UC3)
		return nil
	})
}

// vignette darkens toward the corners, never below 40%.
func vignette(rows, cols int) gocv.Mat {
	single := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC1)
	defer single.Close()

	cy, cx := float64(rows)/2, float64(cols)/2
	radius := math.Hypot(cy, cx)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d := math.Hypot(float64(y)-cy, float64(x)-cx) / radius
			v := 0.6 + 0.4*(1-d*d)
			single.SetFloatAt(y, x, float32(math.Max(0.4, math.Min(1, v))))
		}
	}

	mask := gocv.NewMat()
	gocv.Merge([]gocv.Mat{single, single, single}, &mask)
	return mask
}

// MasterComplex runs the full chain with an intensity from the Weber-weighted
// texture sigmoid centred on half the samples seen so far.
func (p *Provider) MasterComplex(in transform.Input) (frame.Frame, error) {
	normalized, err := perceptual.PerceptualSigmoid(in.Complexity, float64(in.Samples/2), perceptual.Texture, in.Complexity)
	if err != nil {
		return frame.Frame{}, err
	}
	return p.chain(in, normalized, "grunge_master_complex")
}

// MasterSimple runs the full chain with an intensity from the plain sigmoid.
func (p *Provider) MasterSimple(in transform.Input) (frame.Frame, error) {
	return p.chain(in, perceptual.Normalize(in.Complexity), "grunge_master_simple")
}

func (p *Provider) chain(in transform.Input, normalized float64, operation string) (frame.Frame, error) {
	intensity := Intensity(1+p.rng.IntN(3), normalized)

	current := in
	for _, step := range []transform.Func{BleachBypass, WashedEmoLayers, EmoBloom} {
		out, err := step(current)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("%s: %w", operation, err)
		}
		current.Frame = out
	}

	out, err := Dreamify(current.Frame, intensity)
	if err != nil {
		return frame.Frame{}, fmt.Errorf("%s: %w", operation, err)
	}
	return out, nil
}

// Intensity maps a multiplier and a normalized level onto an odd kernel
// size in [1, 11].
func Intensity(multiplier int, normalized float64) int {
	raw := int(float64(multiplier) * normalized * 5)
	v := max(1, min(maxIntensity, raw))
	if v%2 == 0 {
		v++
	}
	return v
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
