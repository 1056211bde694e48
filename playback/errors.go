// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	ErrAlreadyStarted  = errors.New("output already started")
	ErrNothingToReplay = errors.New("no clip has been played yet")
	ErrEmptyInput      = errors.New("empty audio input")
)

// ErrAlreadyStopped is returned by Output.Stop for an output that has ended
// or was stopped before. The controller treats it as a no-op.
var ErrAlreadyStopped = errors.New("output already stopped")
