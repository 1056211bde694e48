// SPDX-License-Identifier: EPL-2.0

// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ik5/talkinghead/analysis"
	"github.com/ik5/talkinghead/lipsync"
)

type Config struct {
	// Bridge server
	Port string `envconfig:"PORT" default:"8080"`

	// Chat backend
	BackendURL  string        `envconfig:"BACKEND_URL" default:"http://localhost:5000"`
	TTSURL      string        `envconfig:"TTS_URL" default:""` // defaults to BACKEND_URL + /api/tts
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Animation
	FPS        int `envconfig:"FPS" default:"60"`
	SampleRate int `envconfig:"SAMPLE_RATE" default:"48000"`

	FFTSize   int     `envconfig:"FFT_SIZE" default:"256"`
	Smoothing float64 `envconfig:"FFT_SMOOTHING" default:"0.06"`

	SilenceThreshold float64 `envconfig:"LIPSYNC_SILENCE_THRESHOLD" default:"500"`
	EnergyScale      float64 `envconfig:"LIPSYNC_ENERGY_SCALE" default:"300"`
	MaxTarget        float64 `envconfig:"LIPSYNC_MAX_TARGET" default:"0.6"`
	Alpha            float64 `envconfig:"LIPSYNC_ALPHA" default:"0.2"`

	TranscriptLimit int `envconfig:"TRANSCRIPT_LIMIT" default:"2"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv skips the .env file.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TALKINGHEAD", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.BackendURL == "":
		return fmt.Errorf("TALKINGHEAD_BACKEND_URL is required")
	case c.FPS <= 0:
		return fmt.Errorf("TALKINGHEAD_FPS must be positive, got %d", c.FPS)
	case c.SampleRate <= 0:
		return fmt.Errorf("TALKINGHEAD_SAMPLE_RATE must be positive, got %d", c.SampleRate)
	case c.TranscriptLimit < 0:
		return fmt.Errorf("TALKINGHEAD_TRANSCRIPT_LIMIT must not be negative, got %d", c.TranscriptLimit)
	case c.Alpha <= 0 || c.Alpha >= 1:
		return fmt.Errorf("TALKINGHEAD_LIPSYNC_ALPHA must be in (0,1), got %v", c.Alpha)
	case c.EnergyScale <= 0:
		return fmt.Errorf("TALKINGHEAD_LIPSYNC_ENERGY_SCALE must be positive, got %v", c.EnergyScale)
	case c.SilenceThreshold < 0:
		return fmt.Errorf("TALKINGHEAD_LIPSYNC_SILENCE_THRESHOLD must not be negative, got %v", c.SilenceThreshold)
	case c.MaxTarget <= 0 || c.MaxTarget > 1:
		return fmt.Errorf("TALKINGHEAD_LIPSYNC_MAX_TARGET must be in (0,1], got %v", c.MaxTarget)
	}
	return nil
}

func (c *Config) Analysis() analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.FFTSize = c.FFTSize
	cfg.SmoothingTimeConstant = c.Smoothing
	return cfg
}

func (c *Config) LipSync() lipsync.Config {
	cfg := lipsync.DefaultConfig()
	cfg.SilenceThreshold = c.SilenceThreshold
	cfg.EnergyScale = c.EnergyScale
	cfg.MaxTarget = c.MaxTarget
	cfg.Alpha = c.Alpha
	cfg.ReferenceFrame = time.Second / time.Duration(c.FPS)
	return cfg
}

func (c *Config) TTSEndpoint() string {
	if c.TTSURL != "" {
		return c.TTSURL
	}
	return c.BackendURL + "/api/tts"
}
