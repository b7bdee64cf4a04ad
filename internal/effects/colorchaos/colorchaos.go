// Package colorchaos provides the ColorChaos transforms: channel games, hue
// rotation, wave distortion and a time-gated kaleidoscope.
package colorchaos

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"gocv.io/x/gocv"

	"visual-artifacts/internal/frame"
	"visual-artifacts/internal/opencv/conversion"
	"visual-artifacts/internal/opencv/safe"
	"visual-artifacts/internal/selection"
	"visual-artifacts/internal/transform"
)

const Name = "ColorChaos"

var blackRGBA = color.RGBA{}

const (
	maxBlastIntensity = 0.3
	kaleidoscopeCycle = 120 // seconds
	shiftingChance    = 10  // one in N psychedelic frames
)

var segmentChoices = []int{4, 6, 8}

// Pools draws from the same ten operations in both bands, only the
// durations differ.
func Pools() selection.Pools {
	ops := []transform.Op{
		transform.ChannelSwap,
		transform.ColorBlast,
		transform.PsychedelicMaster,
		transform.HueShift,
		transform.SineDistortion,
		transform.RGBSplit,
		transform.ChannelShifting,
		transform.LCDSineShift,
		transform.LCDTanShift,
		transform.Kaleidoscope,
	}
	return selection.Pools{
		High: selection.Pool{Ops: ops, MinDuration: 30, MaxDuration: 60},
		Low:  selection.Pool{Ops: append([]transform.Op(nil), ops...), MinDuration: 10, MaxDuration: 30},
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
		transform.ChannelSwap:       p.ChannelSwap,
		transform.ColorBlast:        p.ColorBlast,
		transform.PsychedelicMaster: p.PsychedelicMaster,
		transform.HueShift:          HueShift,
		transform.SineDistortion:    SineDistortion,
		transform.RGBSplit:          RGBSplit,
		transform.ChannelShifting:   ChannelShifting,
		transform.LCDSineShift:      LCDSineShift,
		transform.LCDTanShift:       LCDTanShift,
		transform.Kaleidoscope:      p.Kaleidoscope,
	}
}

// ChannelSwap shuffles the three colour planes.
func (p *Provider) ChannelSwap(in transform.Input) (frame.Frame, error) {
	order := []int{0, 1, 2}
	for i := len(order) - 1; i > 0; i-- {
		j := p.rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	return safe.Process(in.Frame, "channel_swap", func(src gocv.Mat, dst *gocv.Mat) error {
		planes := gocv.Split(src)
		defer closeAll(planes)
		gocv.Merge([]gocv.Mat{planes[order[0]], planes[order[1]], planes[order[2]]}, dst)
		return nil
	})
}

// ColorBlast blends a random solid colour over the frame, stronger for
// frames well above the threshold.
func (p *Provider) ColorBlast(in transform.Input) (frame.Frame, error) {
	intensity := maxBlastIntensity
	if in.Threshold > 0 {
		intensity = math.Min(maxBlastIntensity, in.Complexity/(in.Threshold*8))
	}
	intensity = math.Max(0, intensity)

	tint := gocv.NewScalar(float64(p.rng.IntN(256)), float64(p.rng.IntN(256)), float64(p.rng.IntN(256)), 0)

	return safe.Process(in.Frame, "color_blast", func(src gocv.Mat, dst *gocv.Mat) error {
		solid := gocv.NewMatWithSizeFromScalar(tint, src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
		defer solid.Close()
		gocv.AddWeighted(src, 1-intensity, solid, intensity, 0, dst)
		return nil
	})
}

// HueShift rotates hue by up to 30 OpenCV hue units, oscillating over time.
func HueShift(in transform.Input) (frame.Frame, error) {
	shift := int(math.Sin(in.Elapsed.Seconds()*0.5) * 30)

	return safe.Process(in.Frame, "hue_shift", func(src gocv.Mat, dst *gocv.Mat) error {
		bgr, err := safe.NewMatFromMat(src)
		if err != nil {
			return err
		}
		defer bgr.Close()

		result, err := conversion.MapChannel(bgr, conversion.ColorSpaceHSV, 0, func(h uint8) uint8 {
			return uint8(((int(h)+shift)%180 + 180) % 180)
		})
		if err != nil {
			return err
		}
		defer result.Close()
		result.GetMat().CopyTo(dst)
		return nil
	})
}

// SineDistortion displaces pixels along a travelling sine wave.
func SineDistortion(in transform.Input) (frame.Frame, error) {
	t := in.Elapsed.Seconds()
	phase := t * 0.5 * 2
	strength := 5 + 3*math.Sin(t*0.03)

	return safe.Process(in.Frame, "sine_distortion", func(src gocv.Mat, dst *gocv.Mat) error {
		rows, cols := src.Rows(), src.Cols()
		mapX := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC1)
		defer mapX.Close()
		mapY := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC1)
		defer mapY.Close()

		for y := 0; y < rows; y++ {
			waveX := math.Sin(float64(y)*0.05+phase) * strength
			for x := 0; x < cols; x++ {
				waveY := math.Cos(float64(x)*0.05+phase) * strength
				mapX.SetFloatAt(y, x, float32(clamp(float64(x)+waveX, 0, float64(cols-1))))
				mapY.SetFloatAt(y, x, float32(clamp(float64(y)+waveY, 0, float64(rows-1))))
			}
		}

		gocv.Remap(src, dst, &mapX, &mapY, gocv.InterpolationCubic, gocv.BorderReflect, blackRGBA)
		return nil
	})
}

// RGBSplit pushes blue right and red left by a time-varying offset.
func RGBSplit(in transform.Input) (frame.Frame, error) {
	offset := int(2 + math.Sin(in.Elapsed.Seconds()*0.2)*3)
	out := in.Frame.Clone()
	for y := 0; y < out.Height; y++ {
		rollRow(out, in.Frame, y, 0, offset)
		rollRow(out, in.Frame, y, 2, -offset)
	}
	return out, nil
}

// ChannelShifting rolls each red row by a sine-modulated amount and every
// third blue row three pixels left. Calibrated frames in the low band pass
// through unchanged.
func ChannelShifting(in transform.Input) (frame.Frame, error) {
	if in.Calibrated && in.Complexity <= in.Threshold {
		return in.Frame, nil
	}
	return shiftChannels(in)
}

func shiftChannels(in transform.Input) (frame.Frame, error) {
	out := in.Frame.Clone()
	for y := 0; y < out.Height; y++ {
		rollRow(out, in.Frame, y, 2, 1024+int(math.Sin(float64(y)*0.03)*2))
		if y%3 == 0 {
			rollRow(out, in.Frame, y, 0, -3)
		}
	}
	return out, nil
}

// LCDSineShift overdrives the frame and slides it sideways, gain following
// a slow sine.
func LCDSineShift(in transform.Input) (frame.Frame, error) {
	t := in.Elapsed.Seconds() * 0.01
	gain := 3 + 8*math.Sin(t)
	if gain < 0 {
		gain = 5 + 12*math.Sin(t)
	}
	return lcdShift(in.Frame, "lcd_sine_shift", gain)
}

// LCDTanShift is LCDSineShift driven by a tangent, so it spikes.
func LCDTanShift(in transform.Input) (frame.Frame, error) {
	t := in.Elapsed.Seconds() * 0.01
	gain := 3 + 8*math.Tan(t)
	if gain < 0 {
		gain = 5 + 12*math.Tan(t)
	}
	return lcdShift(in.Frame, "lcd_tan_shift", gain)
}

func lcdShift(f frame.Frame, operation string, gain float64) (frame.Frame, error) {
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		return frame.Frame{}, fmt.Errorf("%s: gain is not finite", operation)
	}

	scaled, err := safe.Process(f, operation, func(src gocv.Mat, dst *gocv.Mat) error {
		gocv.ConvertScaleAbs(src, dst, gain, 0)
		return nil
	})
	if err != nil {
		return frame.Frame{}, err
	}

	shift := int(math.Mod(gain, float64(f.Width)))
	out := scaled.Clone()
	for y := 0; y < out.Height; y++ {
		for c := 0; c < frame.Channels; c++ {
			rollRow(out, scaled, y, c, shift)
		}
	}
	return out, nil
}

// Kaleidoscope mirrors a wedge of the frame around its centre. It only fires
// when the whole seconds elapsed are a multiple of the cycle; otherwise the
// frame passes through untouched.
func (p *Provider) Kaleidoscope(in transform.Input) (frame.Frame, error) {
	if int(in.Elapsed/time.Second)%kaleidoscopeCycle != 0 {
		return in.Frame.Clone(), nil
	}
	return Mirror(in.Frame, segmentChoices[p.rng.IntN(len(segmentChoices))])
}

// Mirror folds the frame into segments wedges inside the inscribed circle.
// Pixels outside the circle become black.
func Mirror(f frame.Frame, segments int) (frame.Frame, error) {
	if segments < 1 {
		return frame.Frame{}, fmt.Errorf("kaleidoscope needs at least one segment, got %d", segments)
	}

	return safe.Process(f, "kaleidoscope", func(src gocv.Mat, dst *gocv.Mat) error {
		rows, cols := src.Rows(), src.Cols()
		cx, cy := cols/2, rows/2
		radius := float64(min(cx, cy))
		step := 360.0 / float64(segments)

		mapX := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC1)
		defer mapX.Close()
		mapY := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32FC1)
		defer mapY.Close()

		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				dx, dy := float64(x-cx), float64(y-cy)
				r := math.Hypot(dx, dy)
				if r > radius {
					mapX.SetFloatAt(y, x, -1)
					mapY.SetFloatAt(y, x, -1)
					continue
				}

				theta := math.Mod(math.Atan2(dy, dx)*180/math.Pi+360, 360)
				local := math.Mod(theta, step)
				if local > step/2 {
					local = step - local
				}
				source := (local + math.Floor(theta/step)*step) * math.Pi / 180

				sx := clamp(float64(int(r*math.Cos(source)+float64(cx))), 0, float64(cols-1))
				sy := clamp(float64(int(r*math.Sin(source)+float64(cy))), 0, float64(rows-1))
				mapX.SetFloatAt(y, x, float32(sx))
				mapY.SetFloatAt(y, x, float32(sy))
			}
		}

		gocv.Remap(src, dst, &mapX, &mapY, gocv.InterpolationNearestNeighbor, gocv.BorderConstant, blackRGBA)
		return nil
	})
}

// PsychedelicMaster chains the LCD shift, hue rotation, wave, RGB split, an
// occasional channel shift and the gated kaleidoscope.
func (p *Provider) PsychedelicMaster(in transform.Input) (frame.Frame, error) {
	steps := []transform.Func{LCDSineShift, HueShift, SineDistortion, RGBSplit}
	if p.rng.IntN(shiftingChance) == 0 {
		steps = append(steps, shiftChannels)
	}
	steps = append(steps, p.Kaleidoscope)

	current := in
	for _, step := range steps {
		out, err := step(current)
		if err != nil {
			return frame.Frame{}, fmt.Errorf("psychedelic_master: %w", err)
		}
		current.Frame = out
	}
	return current.Frame, nil
}

// rollRow rotates channel c of row y, reading from src and writing to dst.
// Positive shifts move pixels right.
func rollRow(dst, src frame.Frame, y, c, shift int) {
	w := src.Width
	if w == 0 {
		return
	}
	shift = ((shift % w) + w) % w
	if shift == 0 {
		return
	}
	base := y * w * frame.Channels
	for x := 0; x < w; x++ {
		dst.Pix[base+((x+shift)%w)*frame.Channels+c] = src.Pix[base+x*frame.Channels+c]
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
