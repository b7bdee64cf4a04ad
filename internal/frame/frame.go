// Package frame holds the pixel buffer passed between capture, analysis,
// transforms and rendering.
//
// A Frame is BGR, 8 bits per channel, stored row-major and interleaved. It is
// immutable-in, owned-out: transforms receive a frame they must not mutate and
// return a frame they own, usually obtained through Clone.
package frame

import (
	"bytes"
	"fmt"
)

const Channels = 3

// MaxDimension mirrors the bound enforced on OpenCV mats.
const MaxDimension = 32768

type Frame struct {
	Width  int
	Height int
	Pix    []uint8

	// Labels are text overlays drawn by the renderer. They never touch Pix.
	Labels []Label
}

// Label is a text overlay anchored at a pixel position.
type Label struct {
	Text  string
	X, Y  int
	Color BGR
	Scale float64
}

type BGR struct {
	B, G, R uint8
}

var (
	Green = BGR{G: 255}
	Red   = BGR{R: 255}
	Blue  = BGR{B: 255}
)

// New allocates a black frame.
func New(width, height int) (Frame, error) {
	if err := ValidateDimensions(width, height); err != nil {
		return Frame{}, err
	}
	return Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}, nil
}

// FromBytes wraps an existing BGR buffer without copying it.
func FromBytes(width, height int, pix []uint8) (Frame, error) {
	if err := ValidateDimensions(width, height); err != nil {
		return Frame{}, err
	}
	if len(pix) != width*height*Channels {
		return Frame{}, fmt.Errorf("buffer length %d does not match %dx%dx%d", len(pix), width, height, Channels)
	}
	return Frame{Width: width, Height: height, Pix: pix}, nil
}

// Filled returns a frame with every pixel set to c.
func Filled(width, height int, c BGR) (Frame, error) {
	f, err := New(width, height)
	if err != nil {
		return Frame{}, err
	}
	for i := 0; i < len(f.Pix); i += Channels {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.B, c.G, c.R
	}
	return f, nil
}

func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size", width, height)
	}
	return nil
}

func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) == 0
}

// Clone deep-copies pixels and labels.
func (f Frame) Clone() Frame {
	out := Frame{Width: f.Width, Height: f.Height}
	if f.Pix != nil {
		out.Pix = make([]uint8, len(f.Pix))
		copy(out.Pix, f.Pix)
	}
	if len(f.Labels) > 0 {
		out.Labels = make([]Label, len(f.Labels))
		copy(out.Labels, f.Labels)
	}
	return out
}

// WithPixels returns a frame sharing f's labels but carrying pix.
func (f Frame) WithPixels(pix []uint8) Frame {
	out := Frame{Width: f.Width, Height: f.Height, Pix: pix}
	if len(f.Labels) > 0 {
		out.Labels = make([]Label, len(f.Labels))
		copy(out.Labels, f.Labels)
	}
	return out
}

// WithLabel returns a copy of f with l appended. Pixels are shared.
func (f Frame) WithLabel(l Label) Frame {
	labels := make([]Label, len(f.Labels), len(f.Labels)+1)
	copy(labels, f.Labels)
	f.Labels = append(labels, l)
	return f
}

func (f Frame) HasLabel(text string) bool {
	for _, l := range f.Labels {
		if l.Text == text {
			return true
		}
	}
	return false
}

func (f Frame) SameSize(o Frame) bool {
	return f.Width == o.Width && f.Height == o.Height
}

// PixelsEqual reports whether both frames have identical dimensions and pixels.
func (f Frame) PixelsEqual(o Frame) bool {
	return f.SameSize(o) && bytes.Equal(f.Pix, o.Pix)
}

func (f Frame) offset(x, y int) int {
	return (y*f.Width + x) * Channels
}

func (f Frame) At(x, y int) BGR {
	i := f.offset(x, y)
	return BGR{B: f.Pix[i], G: f.Pix[i+1], R: f.Pix[i+2]}
}

func (f Frame) Set(x, y int, c BGR) {
	i := f.offset(x, y)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = c.B, c.G, c.R
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame(%dx%d, %d labels)", f.Width, f.Height, len(f.Labels))
}
