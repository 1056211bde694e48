// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"io"
	"testing"
)

type fakeOgg struct {
	values   []float32
	channels int
}

func (f *fakeOgg) SampleRate() int { return 48000 }
func (f *fakeOgg) Channels() int   { return f.channels }

func (f *fakeOgg) Read(p []float32) (int, error) {
	if len(f.values) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.values)
	f.values = f.values[n:]
	return n, nil
}

func TestSource_ReadSamples_WholeFrames(t *testing.T) {
	t.Parallel()

	src := &source{dec: &fakeOgg{values: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, channels: 2}}

	// 5 slots only fit two stereo frames
	buf := make([]float32, 5)
	n, err := src.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Errorf("ReadSamples() n = %d, want 4", n)
	}

	n, _ = src.ReadSamples(buf)
	if n != 2 || buf[0] != 0.5 || buf[1] != 0.6 {
		t.Errorf("second read = %v (n=%d), want [0.5 0.6]", buf[:n], n)
	}

	if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("read at end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_TooSmallBuffer(t *testing.T) {
	t.Parallel()

	src := &source{dec: &fakeOgg{values: []float32{0.1, 0.2}, channels: 2}}
	if n, err := src.ReadSamples(make([]float32, 1)); n != 0 || err != nil {
		t.Errorf("ReadSamples() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but garbage"))); err == nil {
		t.Error("Decode() error = nil, want error for invalid input")
	}
}
