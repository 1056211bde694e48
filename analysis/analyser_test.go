// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"testing"

	"github.com/ik5/talkinghead/internal/audiotest"
)

func tone(rate, n int, freq, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * audiotest.Sine(i, rate, freq))
	}
	return out
}

func TestAnalyser_Silence(t *testing.T) {
	t.Parallel()

	a := NewAnalyser(DefaultConfig())
	if a.FrequencyBinCount() != 128 {
		t.Fatalf("FrequencyBinCount() = %d, want 128", a.FrequencyBinCount())
	}

	snap := make(Snapshot, a.FrequencyBinCount())
	a.ByteFrequencyData(make([]float32, 256), snap)

	if total := snap.Total(); total != 0 {
		t.Errorf("Total() = %d, want 0 for silence", total)
	}
}

func TestAnalyser_TonePeaksAtItsBin(t *testing.T) {
	t.Parallel()

	const rate = 48000
	a := NewAnalyser(DefaultConfig())
	snap := make(Snapshot, a.FrequencyBinCount())

	// bin width is rate/256 = 187.5 Hz; bin 20 sits at 3750 Hz
	a.ByteFrequencyData(tone(rate, 256, 3750, 0.5), snap)

	peak := 0
	for k := range snap {
		if snap[k] > snap[peak] {
			peak = k
		}
	}
	if peak < 19 || peak > 21 {
		t.Errorf("peak bin = %d, want 20±1", peak)
	}
	if snap[20] < 200 {
		t.Errorf("snap[20] = %d, want a strong peak", snap[20])
	}
	if snap[100] > 50 {
		t.Errorf("snap[100] = %d, want little leakage far from the tone", snap[100])
	}
}

func TestAnalyser_SmoothingCarriesEnergy(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SmoothingTimeConstant = 0.9
	a := NewAnalyser(cfg)
	snap := make(Snapshot, a.FrequencyBinCount())

	a.ByteFrequencyData(tone(48000, 256, 3750, 0.5), snap)
	a.ByteFrequencyData(make([]float32, 256), snap)
	if snap[20] == 0 {
		t.Error("smoothing history dropped after one silent frame")
	}

	a.Reset()
	a.ByteFrequencyData(make([]float32, 256), snap)
	if snap.Total() != 0 {
		t.Errorf("Total() after Reset = %d, want 0", snap.Total())
	}
}

func TestAnalyser_ShortWindowIsPadded(t *testing.T) {
	t.Parallel()

	a := NewAnalyser(DefaultConfig())
	snap := make(Snapshot, 10)

	// must not panic on short windows or short destinations
	a.ByteFrequencyData(tone(48000, 40, 3750, 0.5), snap)
}

func TestConfig_Normalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Config
		want int
	}{
		{"zero value", Config{}, 256},
		{"not a power of two", Config{FFTSize: 300}, 256},
		{"too small", Config{FFTSize: 16}, 256},
		{"valid", Config{FFTSize: 2048}, 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := NewAnalyser(tt.in)
			if a.FFTSize() != tt.want {
				t.Errorf("FFTSize() = %d, want %d", a.FFTSize(), tt.want)
			}
			if a.Config().MinDecibels >= a.Config().MaxDecibels {
				t.Errorf("decibel range %v..%v is empty", a.Config().MinDecibels, a.Config().MaxDecibels)
			}
		})
	}
}

func BenchmarkAnalyser_ByteFrequencyData(b *testing.B) {
	a := NewAnalyser(DefaultConfig())
	window := tone(48000, 256, 440, 0.5)
	snap := make(Snapshot, a.FrequencyBinCount())

	b.ReportAllocs()
	for range b.N {
		a.ByteFrequencyData(window, snap)
	}
}
