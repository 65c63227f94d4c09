// SPDX-License-Identifier: EPL-2.0

// Package config holds the engine settings shared by the CLI and the engine.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

type Config struct {
	// StoreDir is the root of the file-backed store.
	StoreDir string

	Backend  string
	Rate     int
	Channels int

	// LatencyMs sizes the sample buffer; PeriodMs is the device callback
	// buffer.
	LatencyMs int
	PeriodMs  int

	ControlPeriod time.Duration
	PollInterval  time.Duration

	ProbeThresholdMs   int64
	RestartThresholdMs int64
	MaxFailures        int

	DeviceAttempts int
	DeviceBackoff  time.Duration

	// MetricsAddr enables the /metrics listener when not empty.
	MetricsAddr string
	LogLevel    string
}

var backends = []string{"beep", "null", "oto"}

func Default() Config {
	return Config{
		StoreDir:           "audplay-store",
		Backend:            "oto",
		Rate:               48000,
		Channels:           2,
		LatencyMs:          250,
		PeriodMs:           20,
		ControlPeriod:      250 * time.Millisecond,
		PollInterval:       250 * time.Millisecond,
		ProbeThresholdMs:   3000,
		RestartThresholdMs: 3000,
		MaxFailures:        5,
		DeviceAttempts:     3,
		DeviceBackoff:      100 * time.Millisecond,
		LogLevel:           "info",
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case !slices.Contains(backends, c.Backend):
		return fmt.Errorf("%w: backend %q (want one of %v)", ErrInvalidConfig, c.Backend, backends)
	case c.Rate < 8000 || c.Rate > 192000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.Rate)
	case c.Channels < 1 || c.Channels > 8:
		return fmt.Errorf("%w: channels %d", ErrInvalidConfig, c.Channels)
	case c.LatencyMs <= 0:
		return fmt.Errorf("%w: latency %dms", ErrInvalidConfig, c.LatencyMs)
	case c.PeriodMs <= 0 || c.PeriodMs > c.LatencyMs:
		return fmt.Errorf("%w: device period %dms must be in (0, latency]", ErrInvalidConfig, c.PeriodMs)
	case c.ControlPeriod <= 0:
		return fmt.Errorf("%w: control period %v", ErrInvalidConfig, c.ControlPeriod)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval %v", ErrInvalidConfig, c.PollInterval)
	case c.MaxFailures <= 0:
		return fmt.Errorf("%w: max failures %d", ErrInvalidConfig, c.MaxFailures)
	case c.DeviceAttempts <= 0:
		return fmt.Errorf("%w: device attempts %d", ErrInvalidConfig, c.DeviceAttempts)
	case c.ProbeThresholdMs < 0 || c.RestartThresholdMs < 0 || c.DeviceBackoff < 0:
		return fmt.Errorf("%w: negative threshold", ErrInvalidConfig)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Level is the parsed log level, falling back to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c Config) Latency() time.Duration { return time.Duration(c.LatencyMs) * time.Millisecond }
func (c Config) Period() time.Duration  { return time.Duration(c.PeriodMs) * time.Millisecond }
