// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/ik5/audplay/ringbuf"
)

type EventKind int

const (
	// EventTransition: the queued session was spliced in; its first sample
	// sits at Pos in the ring.
	EventTransition EventKind = iota
	// EventEnded: the stream ended; the last sample sits before Pos.
	EventEnded
	// EventFailed: the current session failed with Err.
	EventFailed
)

// Event is reported by the decode worker. Gen identifies the Start call the
// worker belongs to, so events from superseded workers can be ignored.
type Event struct {
	Kind  EventKind
	Gen   uint64
	Pos   uint64
	Media Media
	Err   error

	// session is the spliced-in session of an EventTransition.
	session *Session
}

const eventBuffer = 16

// Pipeline owns the sample ring's producer side: one decode worker at a
// time reads a Session and writes the ring. A second session may be queued
// and is spliced in without a gap when the current one ends.
type Pipeline struct {
	ring *ringbuf.Ring
	out  *Output
	rate int

	events chan Event
	next   atomic.Pointer[Session]

	cancel context.CancelFunc
	done   chan struct{}
	cur    *Session
}

func NewPipeline(ring *ringbuf.Ring, out *Output, rate int) *Pipeline {
	return &Pipeline{
		ring:   ring,
		out:    out,
		rate:   rate,
		events: make(chan Event, eventBuffer),
	}
}

func (p *Pipeline) Ring() *ringbuf.Ring  { return p.ring }
func (p *Pipeline) Output() *Output      { return p.out }
func (p *Pipeline) Rate() int            { return p.rate }
func (p *Pipeline) Channels() int        { return p.ring.Channels() }
func (p *Pipeline) Events() <-chan Event { return p.events }
func (p *Pipeline) Running() bool        { return p.done != nil }

// Start launches a worker on s. Any running worker must be stopped first.
func (p *Pipeline) Start(s *Session, gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.cur = s

	go p.work(ctx, s, gen, p.done)
}

// Stop cancels the worker, waits for it and discards everything still in
// the ring. It returns the session the worker was reading, which may be a
// spliced-in queued session, or nil when no worker ran.
func (p *Pipeline) Stop() *Session {
	if p.done == nil {
		return nil
	}

	p.cancel()
	<-p.done
	p.done = nil
	p.ring.Drain()

	s := p.cur
	p.cur = nil
	return s
}

// Queue hands s to the worker for a gapless splice and returns whatever was
// queued before.
func (p *Pipeline) Queue(s *Session) *Session { return p.next.Swap(s) }

// Unqueue takes back a queued session that was not spliced in yet.
func (p *Pipeline) Unqueue() *Session { return p.next.Swap(nil) }

// Drop discards pending events.
func (p *Pipeline) Drop() {
	for {
		select {
		case <-p.events:
		default:
			return
		}
	}
}

func (p *Pipeline) work(ctx context.Context, s *Session, gen uint64, done chan struct{}) {
	defer close(done)

	buf := make([]float32, sessionBlockFrames*p.ring.Channels())

	for {
		n, err := s.Read(buf)
		if n > 0 {
			if _, werr := p.ring.Write(ctx, buf[:n]); werr != nil {
				return
			}
		}

		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			next := p.next.Swap(nil)
			if next == nil {
				p.emit(ctx, Event{Kind: EventEnded, Gen: gen, Pos: p.ring.WritePos()})
				return
			}

			s.Close()
			s = next
			p.cur = s
			p.emit(ctx, Event{Kind: EventTransition, Gen: gen, Pos: p.ring.WritePos(), Media: s.Media, session: s})
		default:
			p.emit(ctx, Event{Kind: EventFailed, Gen: gen, Media: s.Media, Err: err})
			return
		}
	}
}

func (p *Pipeline) emit(ctx context.Context, ev Event) {
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}
