package transform

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownOp = errors.New("unknown operation")

// Op identifies a transform. String names are only used at the CLI/config
// boundary; everything inside the core dispatches on Op.
type Op int

const (
	Identity Op = iota

	// ColorChaos
	ChannelSwap
	ColorBlast
	HueShift
	SineDistortion
	RGBSplit
	ChannelShifting
	LCDSineShift
	LCDTanShift
	Kaleidoscope
	PsychedelicMaster

	// Grunge
	BleachBypass
	EmoBloom
	WashedEmoLayers
	Burnify
	Dreamify
	GrungeMasterComplex
	GrungeMasterSimple

	// Tracker
	EdgeFlash
	EdgeOverlay

	opCount
)

var opNames = [opCount]string{
	Identity:            "identity",
	ChannelSwap:         "channel_swap",
	ColorBlast:          "color_blast",
	HueShift:            "hue_shift",
	SineDistortion:      "sine_distortion",
	RGBSplit:            "rgb_split",
	ChannelShifting:     "channel_shifting",
	LCDSineShift:        "lcd_sine_shift",
	LCDTanShift:         "lcd_tan_shift",
	Kaleidoscope:        "kaleidoscope",
	PsychedelicMaster:   "psychedelic_master",
	BleachBypass:        "grunge_bleach_bypass",
	EmoBloom:            "emo_bloom_effect",
	WashedEmoLayers:     "washed_emo_layers",
	Burnify:             "burnify",
	Dreamify:            "dreamify",
	GrungeMasterComplex: "grunge_master_complex",
	GrungeMasterSimple:  "grunge_master_simple",
	EdgeFlash:           "edge_flash",
	EdgeOverlay:         "edge_overlay",
}

func (o Op) String() string {
	if o.Valid() {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

func (o Op) Valid() bool {
	return o >= 0 && o < opCount
}

// ParseOp resolves an external operation name.
func ParseOp(name string) (Op, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range opNames {
		if n == key {
			return Op(i), nil
		}
	}
	return Identity, fmt.Errorf("%w: %q", ErrUnknownOp, name)
}

// ParseOps resolves a list of names, failing on the first unknown one.
func ParseOps(names []string) ([]Op, error) {
	ops := make([]Op, 0, len(names))
	for _, name := range names {
		op, err := ParseOp(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func AllOps() []Op {
	ops := make([]Op, 0, opCount)
	for i := Op(0); i < opCount; i++ {
		ops = append(ops, i)
	}
	return ops
}
