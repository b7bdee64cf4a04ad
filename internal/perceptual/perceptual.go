// Package perceptual maps unbounded statistics onto a bounded [0,1] intensity.
//
// SigmoidNormalize is a plain logistic curve. PerceptualSigmoid applies
// Weber-Fechner scaling: inputs are log-compressed and the curve flattens as
// the ambient complexity raises the just-noticeable difference of a channel.
package perceptual

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	DefaultCenter    = 8.0
	DefaultSteepness = 1.0

	baseSteepness      = 8.0
	weberSteepnessGain = 10.0
	complexityGain     = 3.0
)

var ErrUnknownChannel = errors.New("unknown perceptual channel")

// Channel is a semantic stimulus dimension with its own Weber fraction.
type Channel int

const (
	Luminance Channel = iota
	Contrast
	Color
	Texture
	Edges
)

var channelNames = map[Channel]string{
	Luminance: "luminance",
	Contrast:  "contrast",
	Color:     "color",
	Texture:   "texture",
	Edges:     "edges",
}

// baseWeber holds the just-noticeable-difference fraction per channel.
var baseWeber = map[Channel]float64{
	Luminance: 0.08,
	Contrast:  0.10,
	Color:     0.15,
	Texture:   0.20,
	Edges:     0.12,
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

func ParseChannel(s string) (Channel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for c, name := range channelNames {
		if name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

func Channels() []Channel {
	return []Channel{Luminance, Contrast, Color, Texture, Edges}
}

// SigmoidNormalize evaluates 1/(1+e^(-steepness*(x-center))), kept strictly
// inside (0,1).
func SigmoidNormalize(x, center, steepness float64) float64 {
	return clampOpen(logistic(steepness * (x - center)))
}

// Normalize is SigmoidNormalize with the default center and steepness.
func Normalize(x float64) float64 {
	return SigmoidNormalize(x, DefaultCenter, DefaultSteepness)
}

// WeberFraction returns the channel's base fraction modulated by complexity
// as base*(1+3*complexity).
func WeberFraction(c Channel, complexity float64) (float64, error) {
	base, ok := baseWeber[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownChannel, c)
	}
	return base * (1 + complexityGain*complexity), nil
}

// Steepness derives the logistic slope from a Weber fraction.
func Steepness(weberFraction float64) float64 {
	return baseSteepness / (1 + weberSteepnessGain*weberFraction)
}

// PerceptualSigmoid log-compresses x and center and evaluates a logistic curve
// whose steepness shrinks as the channel's Weber fraction grows.
func PerceptualSigmoid(x, center float64, c Channel, complexity float64) (float64, error) {
	weber, err := WeberFraction(c, complexity)
	if err != nil {
		return 0, err
	}

	logX := math.Log1p(x)
	logCenter := math.Log1p(center)

	return clampOpen(logistic(Steepness(weber) * (logX - logCenter))), nil
}

func logistic(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

var (
	lowerBound = math.SmallestNonzeroFloat64
	upperBound = math.Nextafter(1, 0)
)

func clampOpen(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(lowerBound, math.Min(upperBound, v))
}
