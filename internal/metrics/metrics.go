// SPDX-License-Identifier: EPL-2.0

// Package metrics holds the Prometheus collectors of the avatar driver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session outcomes.
const (
	OutcomeEnded    = "ended"
	OutcomeStopped  = "stopped"
	OutcomeReplaced = "replaced"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talkinghead_sessions_started_total",
		Help: "Playback sessions started",
	})

	sessionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkinghead_sessions_finished_total",
		Help: "Playback sessions finished, by outcome",
	}, []string{"outcome"})

	activeSession = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "talkinghead_session_active",
		Help: "1 while a clip is playing",
	})

	clipDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "talkinghead_clip_duration_seconds",
		Help:    "Duration of decoded clips",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkinghead_errors_total",
		Help: "Errors by kind and component",
	}, []string{"kind", "component"})

	framesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkinghead_frames_emitted_total",
		Help: "Morph frames emitted by the animation loop",
	}, []string{"state"}) // state: "playing" or "idle"

	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talkinghead_backend_requests_total",
		Help: "Requests to the chat backend",
	}, []string{"endpoint", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talkinghead_backend_latency_seconds",
		Help:    "Chat backend latency",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	}, []string{"endpoint"})
)

func SessionStarted(duration time.Duration) {
	sessionsStarted.Inc()
	activeSession.Set(1)
	clipDuration.Observe(duration.Seconds())
}

func SessionFinished(outcome string) {
	activeSession.Set(0)
	sessionsFinished.WithLabelValues(outcome).Inc()
}

func RecordError(kind, component string) {
	errorsTotal.WithLabelValues(kind, component).Inc()
}

// FrameEmitted counts one animation frame.
func FrameEmitted(playing bool) {
	state := "idle"
	if playing {
		state = "playing"
	}
	framesEmitted.WithLabelValues(state).Inc()
}

// ObserveBackend records one backend call started at start.
func ObserveBackend(endpoint string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	backendRequests.WithLabelValues(endpoint, status).Inc()
	backendLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
