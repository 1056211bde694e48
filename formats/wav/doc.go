// SPDX-License-Identifier: EPL-2.0

// Package wav decodes integer PCM WAV clips and writes mono 16-bit WAV.
//
// Decoding goes through github.com/go-audio/wav, which walks the chunk list,
// so files with LIST or other extra chunks before "data" decode fine:
//
//	src, err := wav.Decoder{}.Decode(file)
//
// WriteWAV16 is used to dump a decoded clip for inspection:
//
//	err := wav.WriteWAV16(out, 48000, pcm16)
package wav
