// SPDX-License-Identifier: EPL-2.0

package lipsync

import (
	"math"
	"time"

	"github.com/ik5/talkinghead/analysis"
	"github.com/ik5/talkinghead/utils"
)

// Morph channel names driven by a Frame.
const (
	ChannelAA        = "viseme_aa"
	ChannelE         = "viseme_E"
	ChannelI         = "viseme_I"
	ChannelO         = "viseme_O"
	ChannelU         = "viseme_U"
	ChannelMouthOpen = "mouthOpen"
)

// Channels lists every morph channel in emission order.
var Channels = [...]string{ChannelAA, ChannelE, ChannelI, ChannelO, ChannelU, ChannelMouthOpen}

// Config holds the tuned constants of the banded heuristic.
type Config struct {
	LowBandEnd int // first bin of the mid band
	MidBandEnd int // first bin of the high band

	SilenceThreshold float64 // total energy at or below this is silence
	EnergyScale      float64
	MaxTarget        float64
	HighOverLowRatio float64

	Alpha          float64
	ReferenceFrame time.Duration

	MouthOpenUWeight float64
	MouthOpenGain    float64
	ESplit           float64
}

func DefaultConfig() Config {
	return Config{
		LowBandEnd:       10,
		MidBandEnd:       50,
		SilenceThreshold: 500,
		EnergyScale:      300,
		MaxTarget:        0.6,
		HighOverLowRatio: 0.8,
		Alpha:            0.2,
		ReferenceFrame:   time.Second / 60,
		MouthOpenUWeight: 0.5,
		MouthOpenGain:    0.1,
		ESplit:           0.5,
	}
}

// State is the smoothed weight set carried between frames. The zero value
// is the neutral face.
type State struct {
	AA, E, O, U float64
	MouthOpen   float64
}

// Bands holds the per-band average energies of one snapshot.
type Bands struct {
	Low, Mid, High float64
	Total          float64
}

// Targets are the per-frame goals the state is smoothed toward.
type Targets struct {
	AA, E, O, U float64
	MouthOpen   float64
}

// Frame is one set of morph channel values, each in [0,1].
type Frame struct {
	AA, E, I, O, U float64
	MouthOpen      float64
}

// Values returns the frame in the order of Channels.
func (f Frame) Values() [len(Channels)]float64 {
	return [...]float64{f.AA, f.E, f.I, f.O, f.U, f.MouthOpen}
}

// Each calls fn once per channel in the order of Channels.
func (f Frame) Each(fn func(name string, value float64)) {
	values := f.Values()
	for i, name := range Channels {
		fn(name, values[i])
	}
}

// Measure averages snap over the low, mid and high bands. A band that
// falls outside the snapshot averages to 0.
func Measure(snap analysis.Snapshot, cfg Config) Bands {
	lowEnd := min(cfg.LowBandEnd, len(snap))
	midEnd := max(min(cfg.MidBandEnd, len(snap)), lowEnd)

	return Bands{
		Low:   average(snap[:lowEnd]),
		Mid:   average(snap[lowEnd:midEnd]),
		High:  average(snap[midEnd:]),
		Total: float64(snap.Total()),
	}
}

func average(bins analysis.Snapshot) float64 {
	if len(bins) == 0 {
		return 0
	}
	return float64(bins.Total()) / float64(len(bins))
}

// Classify picks exactly one dominant band, or none when the frame is
// silent.
func Classify(b Bands, cfg Config) Targets {
	var t Targets
	if b.Total <= cfg.SilenceThreshold {
		return t
	}

	level := func(e float64) float64 {
		return utils.Clamp(math.Min(cfg.MaxTarget, e/cfg.EnergyScale), 0, 1)
	}

	switch {
	case b.High > b.Mid && b.High > b.Low*cfg.HighOverLowRatio:
		t.E = level(b.High)
	case b.Mid > b.Low:
		t.AA = level(b.Mid)
	default:
		t.O = level(b.Low)
		t.U = t.O
	}

	t.MouthOpen = max(t.AA, t.O, t.U*cfg.MouthOpenUWeight)

	return t
}

// Smooth moves prev toward t by alpha, rescaled for dt when dt is not the
// reference frame.
func Smooth(prev State, t Targets, dt time.Duration, cfg Config) State {
	a := cfg.alpha(dt)
	step := func(w, target float64) float64 {
		return utils.Clamp(w+(target-w)*a, 0, 1)
	}

	return State{
		AA:        step(prev.AA, t.AA),
		E:         step(prev.E, t.E),
		O:         step(prev.O, t.O),
		U:         step(prev.U, t.U),
		MouthOpen: step(prev.MouthOpen, t.MouthOpen),
	}
}

func (c Config) alpha(dt time.Duration) float64 {
	a := utils.Clamp(c.Alpha, 0, 1)
	if dt <= 0 || c.ReferenceFrame <= 0 || dt == c.ReferenceFrame {
		return a
	}

	frames := float64(dt) / float64(c.ReferenceFrame)
	return 1 - math.Pow(1-a, frames)
}

// Emit maps a state onto the morph channels.
func (s State) Emit(cfg Config) Frame {
	e := utils.Clamp(s.E*cfg.ESplit, 0, 1)

	return Frame{
		AA:        s.AA,
		E:         e,
		I:         e,
		O:         s.O,
		U:         s.U,
		MouthOpen: utils.Clamp(s.MouthOpen*cfg.MouthOpenGain, 0, 1),
	}
}

// Update runs one animation frame: measure, classify, smooth, emit.
func Update(snap analysis.Snapshot, prev State, dt time.Duration, cfg Config) (Frame, State) {
	next := Smooth(prev, Classify(Measure(snap, cfg), cfg), dt, cfg)
	return next.Emit(cfg), next
}
