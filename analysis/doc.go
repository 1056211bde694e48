// SPDX-License-Identifier: EPL-2.0

// Package analysis computes per-frame frequency snapshots of the audio
// under the play head.
//
// The defaults (256 point FFT, smoothing 0.06, -100..-30 dB) reproduce the
// analyser configuration the lip-sync thresholds were tuned against, so a
// snapshot here carries the same byte energies a browser would report.
package analysis
