// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unrecognized audio container")
	ErrNoDecoder      = errors.New("no decoder registered for format")
	ErrEmptyClip      = errors.New("clip contains no samples")
	ErrInvalidRate    = errors.New("sample rate must be positive")
)

// DecodeError reports malformed or unsupported audio.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode audio: %v", e.Err)
	}
	return fmt.Sprintf("decode %s audio: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
