// SPDX-License-Identifier: EPL-2.0

// Package formats wires every container decoder into one registry.
package formats

import (
	"github.com/ik5/talkinghead/audio"
	"github.com/ik5/talkinghead/formats/aiff"
	"github.com/ik5/talkinghead/formats/mp3"
	"github.com/ik5/talkinghead/formats/vorbis"
	"github.com/ik5/talkinghead/formats/wav"
)

// Default returns a registry holding the wav, mp3, ogg and aiff decoders.
func Default() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, wav.Decoder{})
	reg.Register(audio.FormatMP3, mp3.Decoder{})
	reg.Register(audio.FormatVorbis, vorbis.Decoder{})
	reg.Register(audio.FormatAIFF, aiff.Decoder{})

	return reg
}
