// SPDX-License-Identifier: EPL-2.0

// Package lipsync turns frequency snapshots into viseme weights.
//
// Each frame the snapshot is split into low, mid and high bands, one
// dominant band selects a viseme target, and every weight is smoothed
// toward its target:
//
//	frame, state = lipsync.Update(snap, state, dt, cfg)
//
// Update is pure. The caller owns State and resets it to the zero value
// when playback stops.
package lipsync
