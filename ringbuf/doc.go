// SPDX-License-Identifier: EPL-2.0

// Package ringbuf implements the bounded sample hand-off between the decode
// goroutine and the real-time output callback.
//
// A Ring has exactly one producer and one consumer. The consumer side
// (Read) is wait-free: it never locks, never allocates and never blocks,
// and it fills whatever it cannot serve with silence. The producer side
// (Write) waits cooperatively while the ring is full and honours context
// cancellation.
//
// Positions are absolute sample counters that only grow, so callers can
// remember a position (for example the first sample of the next track) and
// later compare it with ReadPos to learn when the output reached it.
//
//	r := ringbuf.New(48000/4, 2) // 250ms of stereo at 48kHz
//	go func() { _, _ = r.Write(ctx, decoded) }()
//	n := r.Read(deviceBuf)        // silence-padded when short
package ringbuf
