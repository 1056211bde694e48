// SPDX-License-Identifier: EPL-2.0

// Package talkinghead drives a talking avatar from an audio clip.
//
// A clip is decoded by the formats decoders into a mono buffer (package
// audio), analysed into a byte frequency snapshot once per frame (package
// analysis) and turned into viseme weights by a banded heuristic (package
// lipsync). Package playback keeps exactly one clip playing, package
// animation runs the per-frame loop that feeds a morph target, and
// packages chat and transcript cover the question answering side.
//
// # Offline Analysis
//
// Analyze runs the same pipeline over a whole clip without playing it,
// which is handy for tuning the thresholds or baking an animation track:
//
//	reg := formats.Default()
//	clip, err := reg.DecodeClip(data, 48000)
//	if err != nil {
//		return err
//	}
//	track := talkinghead.Analyze(clip, talkinghead.AnalyzeOptions{FPS: 60})
//	talkinghead.WriteCSV(os.Stdout, track)
//
// # Live Playback
//
//	ctrl := playback.NewController(formats.Default())
//	loop := animation.NewLoop(ctrl, avatar, 128)
//	ctrl.OnIdle(loop.Reset)
//	go loop.Run(ctx, 60)
//	ctrl.Play(ctx, playback.FileInput("hello.wav"))
//
// The talkinghead command wires all of this behind an HTTP and websocket
// bridge; see cmd/talkinghead.
package talkinghead
