// SPDX-License-Identifier: EPL-2.0

package ringbuf

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultWaitInterval is how long a blocked producer sleeps before it checks
// for free space again.
const DefaultWaitInterval = 2 * time.Millisecond

// Ring is a single-producer/single-consumer buffer of interleaved float32
// samples.
type Ring struct {
	buf      []float32
	size     uint64
	channels int

	// read is advanced by the consumer (CAS) and by Drain; write only by the
	// producer.
	read  atomic.Uint64
	write atomic.Uint64

	wait time.Duration
}

// New allocates a ring holding frames frames of channels interleaved samples.
func New(frames, channels int) *Ring {
	if channels < 1 {
		channels = 1
	}
	if frames < 1 {
		frames = 1
	}

	size := frames * channels

	return &Ring{
		buf:      make([]float32, size),
		size:     uint64(size),
		channels: channels,
		wait:     DefaultWaitInterval,
	}
}

// FramesForLatency returns how many frames hold latency of audio at rate.
func FramesForLatency(rate int, latency time.Duration) int {
	frames := int(int64(rate) * latency.Milliseconds() / 1000)
	if frames < 1 {
		return 1
	}
	return frames
}

func (r *Ring) Channels() int { return r.channels }

// Cap is the capacity in samples.
func (r *Ring) Cap() int { return int(r.size) }

// Len is the number of buffered samples. Any context may call it.
func (r *Ring) Len() int {
	w := r.write.Load()
	rd := r.read.Load()
	if rd >= w {
		return 0
	}
	return int(w - rd)
}

// Free is the number of samples the producer may write without waiting.
func (r *Ring) Free() int { return int(r.size) - r.Len() }

// ReadPos is the absolute number of samples consumed or drained so far.
func (r *Ring) ReadPos() uint64 { return r.read.Load() }

// WritePos is the absolute number of samples produced so far.
func (r *Ring) WritePos() uint64 { return r.write.Load() }

// TryWrite copies as many whole frames of src as fit and returns the number
// of samples written. Producer only.
func (r *Ring) TryWrite(src []float32) int {
	w := r.write.Load()
	used := w - r.read.Load()
	if used > r.size {
		// A drain raced ahead of a stale load; nothing is buffered.
		used = 0
	}

	n := uint64(len(src))
	if free := r.size - used; n > free {
		n = free
	}
	n -= n % uint64(r.channels)
	if n == 0 {
		return 0
	}

	start := w % r.size
	first := min(n, r.size-start)
	copy(r.buf[start:start+first], src[:first])
	copy(r.buf[:n-first], src[first:n])

	r.write.Store(w + n)

	return int(n)
}

// Write copies all of src into the ring, waiting while it is full. It
// returns early with ctx.Err() when ctx is done. Producer only.
func (r *Ring) Write(ctx context.Context, src []float32) (int, error) {
	if len(src)%r.channels != 0 {
		return 0, fmt.Errorf("write %d samples: %w", len(src), ErrPartialFrame)
	}

	written := 0
	var timer *time.Timer

	for written < len(src) {
		n := r.TryWrite(src[written:])
		written += n
		if written == len(src) {
			break
		}

		if n > 0 {
			continue
		}

		if timer == nil {
			timer = time.NewTimer(r.wait)
			defer timer.Stop()
		} else {
			timer.Reset(r.wait)
		}

		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case <-timer.C:
		}
	}

	return written, nil
}

// Read fills dst from the ring and pads the remainder with silence. It
// returns the number of real samples copied. Consumer only; never blocks.
func (r *Ring) Read(dst []float32) int {
	rd := r.read.Load()
	w := r.write.Load()

	var avail uint64
	if w > rd {
		avail = w - rd
	}

	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	n -= n % uint64(r.channels)

	if n > 0 {
		start := rd % r.size
		first := min(n, r.size-start)
		copy(dst[:first], r.buf[start:start+first])
		copy(dst[first:n], r.buf[:n-first])

		// Losing the race against Drain means the copied samples are stale.
		if !r.read.CompareAndSwap(rd, rd+n) {
			n = 0
		}
	}

	clear(dst[n:])

	return int(n)
}

// Drain discards every buffered sample and returns the new read position.
// Safe to call from any context while the producer is idle.
func (r *Ring) Drain() uint64 {
	for {
		rd := r.read.Load()
		w := r.write.Load()
		if rd >= w || r.read.CompareAndSwap(rd, w) {
			return w
		}
	}
}
