// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Renderer produces interleaved float32 samples on demand. Render runs on
// the backend's audio goroutine and must not block.
type Renderer interface {
	Render(dst []float32)
}

// Device is an open output. Close stops calling the renderer.
type Device interface {
	Close() error
}

// Format is the layout the renderer produces.
type Format struct {
	Rate     int
	Channels int
	// Period is the callback buffer duration.
	Period time.Duration
}

// PeriodFrames is the number of frames in one callback buffer.
func (f Format) PeriodFrames() int {
	return max(int(int64(f.Rate)*f.Period.Milliseconds()/1000), 1)
}

type Options struct {
	Backend string
	Format  Format

	// Attempts is how many times opening is tried; Backoff is the first
	// wait between attempts and doubles after each one.
	Attempts int
	Backoff  time.Duration

	Logger zerolog.Logger
}

const (
	DefaultAttempts = 3
	DefaultBackoff  = 100 * time.Millisecond
	DefaultPeriod   = 20 * time.Millisecond
)

type openFunc func(Format, Renderer) (Device, error)

var backends = map[string]openFunc{
	"oto":  openOto,
	"beep": openBeep,
	"null": openNull,
}

// Backends lists the known backend names.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open starts the named backend with r as its source.
func Open(ctx context.Context, opts Options, r Renderer) (Device, error) {
	open, ok := backends[opts.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if opts.Format.Period <= 0 {
		opts.Format.Period = DefaultPeriod
	}

	return retry(ctx, opts, func() (Device, error) { return open(opts.Format, r) })
}

func retry(ctx context.Context, opts Options, open func() (Device, error)) (Device, error) {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		dev, err := open()
		if err == nil {
			opts.Logger.Info().Str("backend", opts.Backend).Int("rate", opts.Format.Rate).
				Int("channels", opts.Format.Channels).Msg("audio device open")
			return dev, nil
		}
		lastErr = err

		opts.Logger.Warn().Err(err).Str("backend", opts.Backend).Int("attempt", attempt).Msg("audio device open failed")
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %w", ErrDeviceUnavailable, opts.Backend, attempts, lastErr)
}
