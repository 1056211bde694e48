// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives behind clip playback.
//
// A container decoder (see the formats packages) yields a Source of
// interleaved float32 samples in [-1,1]. Sources chain:
//
//	resampler := audio.NewResampler(src, 48000)
//	mono := audio.NewMonoMixer(resampler)
//
// ReadAllMono drains such a pipeline into an immutable Buffer, which is
// what a playback session holds and what the analyser windows over:
//
//	clip, err := audio.ReadAllMono(src, 48000, 4096)
//
// # Format Registry
//
// A Registry maps format keys to decoders. Registry.Decode sniffs the
// container from its magic bytes, so callers holding raw bytes (an upload,
// a fetched URL, a TTS response) do not need to know the format:
//
//	src, err := registry.Decode(data)
//
// Every failure from Decode is a *DecodeError.
//
// # Error Handling
//
// Sources return io.EOF when no more data is available. A read may return
// n > 0 together with io.EOF.
package audio
