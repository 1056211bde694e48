// SPDX-License-Identifier: EPL-2.0

package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Port != "8080" || cfg.FPS != 60 || cfg.TranscriptLimit != 2 {
		t.Errorf("defaults = %+v", cfg)
	}
	if got := cfg.Analysis().FFTSize; got != 256 {
		t.Errorf("Analysis().FFTSize = %d, want 256", got)
	}
	if got := cfg.LipSync().ReferenceFrame; got != time.Second/60 {
		t.Errorf("LipSync().ReferenceFrame = %v, want %v", got, time.Second/60)
	}
	if got := cfg.TTSEndpoint(); got != "http://localhost:5000/api/tts" {
		t.Errorf("TTSEndpoint() = %q", got)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("TALKINGHEAD_FPS", "30")
	t.Setenv("TALKINGHEAD_LIPSYNC_ALPHA", "0.5")
	t.Setenv("TALKINGHEAD_TTS_URL", "http://tts.local/speak")
	t.Setenv("TALKINGHEAD_HTTP_TIMEOUT", "5s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.LipSync().Alpha != 0.5 {
		t.Errorf("LipSync().Alpha = %v, want 0.5", cfg.LipSync().Alpha)
	}
	if cfg.LipSync().ReferenceFrame != time.Second/30 {
		t.Errorf("ReferenceFrame = %v, want %v", cfg.LipSync().ReferenceFrame, time.Second/30)
	}
	if cfg.TTSEndpoint() != "http://tts.local/speak" {
		t.Errorf("TTSEndpoint() = %q", cfg.TTSEndpoint())
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero fps", "TALKINGHEAD_FPS", "0"},
		{"negative limit", "TALKINGHEAD_TRANSCRIPT_LIMIT", "-1"},
		{"not a number", "TALKINGHEAD_SAMPLE_RATE", "fast"},
		{"zero alpha", "TALKINGHEAD_LIPSYNC_ALPHA", "0"},
		{"alpha of one", "TALKINGHEAD_LIPSYNC_ALPHA", "1"},
		{"zero energy scale", "TALKINGHEAD_LIPSYNC_ENERGY_SCALE", "0"},
		{"negative silence threshold", "TALKINGHEAD_LIPSYNC_SILENCE_THRESHOLD", "-1"},
		{"max target above one", "TALKINGHEAD_LIPSYNC_MAX_TARGET", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("LoadFromEnv() with %s=%s error = nil", tt.key, tt.value)
			}
		})
	}
}
