// SPDX-License-Identifier: EPL-2.0

package ringbuf

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seq(start, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(start + i)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		frames       int
		channels     int
		wantCap      int
		wantChannels int
	}{
		{"stereo", 4, 2, 8, 2},
		{"mono", 10, 1, 10, 1},
		{"zero channels", 4, 0, 4, 1},
		{"zero frames", 0, 2, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New(tt.frames, tt.channels)
			if r.Cap() != tt.wantCap {
				t.Errorf("Cap() = %d, want %d", r.Cap(), tt.wantCap)
			}
			if r.Channels() != tt.wantChannels {
				t.Errorf("Channels() = %d, want %d", r.Channels(), tt.wantChannels)
			}
			if r.Len() != 0 || r.Free() != tt.wantCap {
				t.Errorf("new ring Len=%d Free=%d", r.Len(), r.Free())
			}
		})
	}
}

func TestFramesForLatency(t *testing.T) {
	t.Parallel()

	if got := FramesForLatency(48000, 250*time.Millisecond); got != 12000 {
		t.Errorf("FramesForLatency(48000, 250ms) = %d, want 12000", got)
	}
	if got := FramesForLatency(8000, 0); got != 1 {
		t.Errorf("FramesForLatency(8000, 0) = %d, want 1", got)
	}
}

func TestRing_ReadUnderrunPadsSilence(t *testing.T) {
	t.Parallel()

	r := New(8, 2)
	r.TryWrite([]float32{1, 2, 3, 4})

	dst := []float32{9, 9, 9, 9, 9, 9, 9, 9}
	n := r.Read(dst)
	if n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}

	want := []float32{1, 2, 3, 4, 0, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	if n := r.Read(dst); n != 0 {
		t.Errorf("Read() on empty ring = %d, want 0", n)
	}
	for i, v := range dst {
		if v != 0 {
			t.Errorf("dst[%d] = %v after empty read, want silence", i, v)
		}
	}
}

func TestRing_WrapAround(t *testing.T) {
	t.Parallel()

	r := New(4, 2) // 8 samples
	dst := make([]float32, 6)

	next := 0
	for round := range 10 {
		if n := r.TryWrite(seq(next, 6)); n != 6 {
			t.Fatalf("round %d: TryWrite() = %d, want 6", round, n)
		}
		if n := r.Read(dst); n != 6 {
			t.Fatalf("round %d: Read() = %d, want 6", round, n)
		}
		for i, v := range dst {
			if v != float32(next+i) {
				t.Fatalf("round %d: dst[%d] = %v, want %d", round, i, v, next+i)
			}
		}
		next += 6
	}

	if r.ReadPos() != 60 || r.WritePos() != 60 {
		t.Errorf("positions = %d/%d, want 60/60", r.ReadPos(), r.WritePos())
	}
}

func TestRing_TryWriteKeepsWholeFrames(t *testing.T) {
	t.Parallel()

	r := New(3, 2) // 6 samples
	if n := r.TryWrite(seq(0, 4)); n != 4 {
		t.Fatalf("TryWrite() = %d, want 4", n)
	}
	// 2 samples free: one frame fits.
	if n := r.TryWrite(seq(4, 4)); n != 2 {
		t.Fatalf("TryWrite() = %d, want 2", n)
	}
	if n := r.TryWrite(seq(6, 2)); n != 0 {
		t.Fatalf("TryWrite() on full ring = %d, want 0", n)
	}
}

func TestRing_WritePartialFrame(t *testing.T) {
	t.Parallel()

	r := New(4, 2)
	_, err := r.Write(context.Background(), []float32{1, 2, 3})
	if !errors.Is(err, ErrPartialFrame) {
		t.Errorf("Write() error = %v, want ErrPartialFrame", err)
	}
}

// A producer fills the ring while the consumer is paused; once the consumer
// resumes every sample comes out once, in order.
func TestRing_FullWhilePausedResumesInOrder(t *testing.T) {
	t.Parallel()

	const total = 400
	r := New(16, 2) // 32 samples

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := r.Write(ctx, seq(0, total))
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for r.Free() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("ring never filled")
		}
		time.Sleep(time.Millisecond)
	}

	// Paused: the producer is stuck behind a full ring.
	time.Sleep(10 * time.Millisecond)
	if r.Len() != r.Cap() {
		t.Fatalf("Len() = %d, want %d", r.Len(), r.Cap())
	}

	got := make([]float32, 0, total)
	dst := make([]float32, 8)
	for len(got) < total {
		n := r.Read(dst)
		got = append(got, dst[:n]...)
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("sample %d = %v, want %d (loss or duplication)", i, v, i)
		}
	}
}

func TestRing_WriteCancelled(t *testing.T) {
	t.Parallel()

	r := New(2, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := r.Write(ctx, seq(0, 10))
		done <- err
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Write() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Write() did not return after cancel")
	}
}

func TestRing_Drain(t *testing.T) {
	t.Parallel()

	r := New(8, 2)
	r.TryWrite(seq(0, 10))

	pos := r.Drain()
	if pos != 10 {
		t.Errorf("Drain() = %d, want 10", pos)
	}
	if r.Len() != 0 {
		t.Errorf("Len() after drain = %d, want 0", r.Len())
	}

	dst := make([]float32, 4)
	if n := r.Read(dst); n != 0 {
		t.Errorf("Read() after drain = %d, want 0", n)
	}

	r.TryWrite(seq(100, 4))
	if n := r.Read(dst); n != 4 || dst[0] != 100 {
		t.Errorf("Read() after refill = %d (%v), want fresh samples", n, dst)
	}
}

// Stale samples must never surface after a drain even while the consumer
// keeps reading concurrently.
func TestRing_DrainConcurrentWithReader(t *testing.T) {
	t.Parallel()

	r := New(64, 1)
	r.TryWrite(seq(1, 64))

	got := make(chan []float32, 1)
	go func() {
		var out []float32
		dst := make([]float32, 3)
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			n := r.Read(dst)
			out = append(out, dst[:n]...)
			if n > 0 && dst[n-1] == -4 {
				break
			}
		}
		got <- out
	}()

	r.Drain()
	r.TryWrite([]float32{-1, -2, -3, -4})

	out := <-got

	// Expect a run of 1..k followed by exactly -1..-4.
	i := 0
	for i < len(out) && out[i] > 0 {
		if out[i] != float32(i+1) {
			t.Fatalf("out[%d] = %v, want %d", i, out[i], i+1)
		}
		i++
	}
	tail := out[i:]
	want := []float32{-1, -2, -3, -4}
	if len(tail) != len(want) {
		t.Fatalf("after drain got %v, want %v", tail, want)
	}
	for j := range want {
		if tail[j] != want[j] {
			t.Fatalf("after drain got %v, want %v", tail, want)
		}
	}
}

func TestRing_ReadZeroAllocs(t *testing.T) {
	r := New(1024, 2)
	src := seq(0, 512)
	dst := make([]float32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		r.TryWrite(src)
		r.Read(dst)
		r.Read(dst) // underrun path
	})

	if allocs != 0 {
		t.Errorf("Read/TryWrite allocated %.1f times per run, want 0", allocs)
	}
}

func BenchmarkRing_ReadWrite(b *testing.B) {
	r := New(4096, 2)
	src := seq(0, 1024)
	dst := make([]float32, 1024)

	b.ReportAllocs()

	for b.Loop() {
		r.TryWrite(src)
		r.Read(dst)
	}
}
