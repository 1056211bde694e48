// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Snapshot holds one byte of energy per frequency bin, lowest bin first.
type Snapshot []uint8

// Total sums every bin.
func (s Snapshot) Total() int {
	total := 0
	for _, v := range s {
		total += int(v)
	}
	return total
}

// Config tunes the analyser. Out of range fields fall back to
// DefaultConfig; a zero SmoothingTimeConstant disables smoothing.
type Config struct {
	FFTSize               int
	SmoothingTimeConstant float64
	MinDecibels           float64
	MaxDecibels           float64
}

func DefaultConfig() Config {
	return Config{
		FFTSize:               256,
		SmoothingTimeConstant: 0.06,
		MinDecibels:           -100,
		MaxDecibels:           -30,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()

	if c.FFTSize < minFFTSize || c.FFTSize > maxFFTSize || c.FFTSize&(c.FFTSize-1) != 0 {
		c.FFTSize = def.FFTSize
	}
	if c.SmoothingTimeConstant < 0 || c.SmoothingTimeConstant >= 1 {
		c.SmoothingTimeConstant = def.SmoothingTimeConstant
	}
	if c.MinDecibels >= c.MaxDecibels {
		c.MinDecibels, c.MaxDecibels = def.MinDecibels, def.MaxDecibels
	}

	return c
}

const (
	minFFTSize = 32
	maxFFTSize = 32768
)

// Analyser turns a window of time-domain samples into a byte frequency
// snapshot, following the browser AnalyserNode: Blackman window, FFT,
// temporal smoothing, then decibels scaled onto 0..255.
//
// An Analyser is not safe for concurrent use.
type Analyser struct {
	cfg      Config
	fft      *fourier.FFT
	window   []float64
	input    []float64
	coeffs   []complex128
	smoothed []float64
}

func NewAnalyser(cfg Config) *Analyser {
	cfg = cfg.normalized()
	n := cfg.FFTSize

	window := make([]float64, n)
	for i := range window {
		x := 2 * math.Pi * float64(i) / float64(n)
		window[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}

	return &Analyser{
		cfg:      cfg,
		fft:      fourier.NewFFT(n),
		window:   window,
		input:    make([]float64, n),
		coeffs:   make([]complex128, n/2+1),
		smoothed: make([]float64, n/2),
	}
}

func (a *Analyser) Config() Config         { return a.cfg }
func (a *Analyser) FFTSize() int           { return a.cfg.FFTSize }
func (a *Analyser) FrequencyBinCount() int { return a.cfg.FFTSize / 2 }

// Reset drops the smoothing history.
func (a *Analyser) Reset() {
	clear(a.smoothed)
}

// ByteFrequencyData analyses the last FFTSize samples of window (zero
// padded in front when shorter) and writes min(len(dst), bins) bytes.
func (a *Analyser) ByteFrequencyData(window []float32, dst Snapshot) {
	n := a.cfg.FFTSize
	if len(window) > n {
		window = window[len(window)-n:]
	}

	pad := n - len(window)
	for i := range a.input {
		if i < pad {
			a.input[i] = 0
			continue
		}
		a.input[i] = float64(window[i-pad]) * a.window[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.input)

	tau := a.cfg.SmoothingTimeConstant
	scale := 255 / (a.cfg.MaxDecibels - a.cfg.MinDecibels)
	inv := 1 / float64(n)

	for k := range a.smoothed {
		c := a.coeffs[k]
		mag := math.Hypot(real(c), imag(c)) * inv
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag

		if k >= len(dst) {
			continue
		}

		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		v := math.Floor(scale * (db - a.cfg.MinDecibels))
		switch {
		case math.IsInf(v, -1) || v < 0:
			dst[k] = 0
		case v > 255:
			dst[k] = 255
		default:
			dst[k] = uint8(v)
		}
	}
}
