// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/queue"
	"github.com/ik5/audplay/ringbuf"
	"github.com/rs/zerolog"
)

const (
	testRate     = 8000
	testChannels = 2
)

type fakeLibrary map[string]Media

func (l fakeLibrary) Resolve(_ context.Context, id string) (Media, error) {
	m, ok := l[id]
	if !ok {
		return Media{}, fmt.Errorf("%w: %s", ErrUnknownMedia, id)
	}
	return m, nil
}

func libraryOf(ids ...string) fakeLibrary {
	lib := fakeLibrary{}
	for _, id := range ids {
		lib[id] = Media{ID: id, Path: id + ".wav", Title: "Track " + id}
	}
	return lib
}

// fakeOpener builds sessions over constant mock sources. Each id gets its
// own level so rendered audio shows which track it came from.
type fakeOpener struct {
	frames int
	levels map[string]float32
	fail   map[string]error
	// failAt makes the source for an id fail after that many frames.
	failAt map[string]int

	mu      sync.Mutex
	opened  []string
	sources []*audiotest.MockSource
}

func (o *fakeOpener) Open(_ context.Context, m Media) (*Session, error) {
	if err := o.fail[m.ID]; err != nil {
		return nil, err
	}

	level := o.levels[m.ID]
	if level == 0 {
		level = 0.5
	}

	var src *audiotest.MockSource
	if at, ok := o.failAt[m.ID]; ok {
		src = audiotest.NewFailingSource(testRate, testChannels, at, level, fmt.Errorf("%w: bad frame", audio.ErrCorruptStream))
	} else {
		src = audiotest.NewConstantSource(testRate, testChannels, o.frames, level)
	}

	o.mu.Lock()
	o.opened = append(o.opened, m.ID)
	o.sources = append(o.sources, src)
	o.mu.Unlock()

	return NewSession(m, src, nil, testRate, testChannels)
}

func (o *fakeOpener) openCount(id string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := 0
	for _, x := range o.opened {
		if x == id {
			n++
		}
	}
	return n
}

type countingObserver struct {
	mu       sync.Mutex
	failures map[string]int
	gapless  int
}

func (c *countingObserver) TrackFailed(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures == nil {
		c.failures = map[string]int{}
	}
	c.failures[kind]++
}

func (c *countingObserver) GaplessTransition() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gapless++
}

// harness plays the device role: every step renders one buffer and runs
// one control tick.
type harness struct {
	ctl    *Controller
	out    *Output
	ring   *ringbuf.Ring
	obs    *countingObserver
	buf    []float32
	levels []float32 // non-silent rendered samples, in order
}

func newHarness(t *testing.T, lib Library, opener SessionOpener, maxFailures int) *harness {
	t.Helper()

	ring := ringbuf.New(2048, testChannels)
	out := NewOutput(ring)
	obs := &countingObserver{}

	ctl := NewController(Options{
		Library:     lib,
		Opener:      opener,
		Pipeline:    NewPipeline(ring, out, testRate),
		Queue:       queue.New(rand.New(rand.NewPCG(1, 2))),
		Logger:      zerolog.Nop(),
		Observer:    obs,
		MaxFailures: maxFailures,
	})
	t.Cleanup(ctl.Close)

	return &harness{ctl: ctl, out: out, ring: ring, obs: obs, buf: make([]float32, 128*testChannels)}
}

func (h *harness) step() {
	h.out.Render(h.buf)
	for _, v := range h.buf {
		if v != 0 {
			h.levels = append(h.levels, v)
		}
	}
	h.ctl.Tick(context.Background())
}

// until steps until cond holds, calling observe after every step.
func (h *harness) until(t *testing.T, cond func(State) bool, observe func(State)) State {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		h.step()
		st := h.ctl.State()
		if observe != nil {
			observe(st)
		}
		if cond(st) {
			return st
		}
		time.Sleep(100 * time.Microsecond)
	}

	t.Fatalf("condition not reached, state %+v", h.ctl.State())
	return State{}
}
