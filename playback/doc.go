// SPDX-License-Identifier: EPL-2.0

// Package playback owns the single active clip.
//
// A Controller is either idle or playing one Session. Play stops the
// current session, loads the input (file, in-memory blob or URL), decodes
// it into a mono buffer at the analysis rate and starts a fresh Output:
//
//	ctrl := playback.NewController(formats.Default())
//	ctrl.OnIdle(loop.Reset)
//	if _, err := ctrl.Play(ctx, playback.URLInput(url)); err != nil {
//		// *fetch.FetchError or *audio.DecodeError; ctrl is idle
//	}
//	ctrl.Wait(ctx)
//
// The controller also implements animation.SnapshotProvider: Snapshot
// analyses the samples under the play head of the current session.
package playback
