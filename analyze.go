// SPDX-License-Identifier: EPL-2.0

package talkinghead

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ik5/talkinghead/analysis"
	"github.com/ik5/talkinghead/audio"
	"github.com/ik5/talkinghead/lipsync"
)

// AnalyzeOptions tunes Analyze. Zero fields take their package defaults.
type AnalyzeOptions struct {
	FPS      int
	Analysis analysis.Config
	LipSync  lipsync.Config
}

// TimedFrame is the morph frame shown at At.
type TimedFrame struct {
	At    time.Duration
	Frame lipsync.Frame
}

// Analyze steps through clip at opts.FPS and returns one frame per step,
// followed by a final neutral frame at the end of the clip.
func Analyze(clip *audio.Buffer, opts AnalyzeOptions) []TimedFrame {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Analysis == (analysis.Config{}) {
		opts.Analysis = analysis.DefaultConfig()
	}
	if opts.LipSync == (lipsync.Config{}) {
		opts.LipSync = lipsync.DefaultConfig()
	}

	analyser := analysis.NewAnalyser(opts.Analysis)
	window := make([]float32, analyser.FFTSize())
	snap := make(analysis.Snapshot, analyser.FrequencyBinCount())

	step := time.Second / time.Duration(opts.FPS)
	duration := clip.Duration()
	frames := make([]TimedFrame, 0, int(duration/step)+2)

	var state lipsync.State
	for at := time.Duration(0); at < duration; at += step {
		clip.Window(clip.Offset(at), window)
		analyser.ByteFrequencyData(window, snap)

		var frame lipsync.Frame
		frame, state = lipsync.Update(snap, state, step, opts.LipSync)
		frames = append(frames, TimedFrame{At: at, Frame: frame})
	}

	return append(frames, TimedFrame{At: duration})
}

// WriteCSV writes frames with a header row: time in seconds, then one
// column per morph channel.
func WriteCSV(w io.Writer, frames []TimedFrame) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, lipsync.Channels[:]...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, f := range frames {
		row[0] = strconv.FormatFloat(f.At.Seconds(), 'f', 4, 64)
		for i, v := range f.Frame.Values() {
			row[i+1] = strconv.FormatFloat(v, 'f', 5, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
