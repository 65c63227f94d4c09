// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"sync"
)

type probeResult struct {
	gen     uint64
	session *Session
	err     error
}

// Prober opens the upcoming track in the background. Each Start bumps a
// generation; a result whose generation is stale when it arrives is closed
// and dropped.
type Prober struct {
	opener  SessionOpener
	results chan probeResult
	wg      sync.WaitGroup

	gen    uint64
	id     string
	cancel context.CancelFunc
	ready  *Session
	failed error
}

func NewProber(opener SessionOpener) *Prober {
	return &Prober{opener: opener, results: make(chan probeResult, 1)}
}

// Target is the id being probed or held ready, if any.
func (p *Prober) Target() string { return p.id }

// Err is the failure of the last completed probe for Target.
func (p *Prober) Err() error { return p.failed }

// Start probes m unless m is already the target.
func (p *Prober) Start(ctx context.Context, m Media) {
	if p.id == m.ID && (p.cancel != nil || p.ready != nil || p.failed != nil) {
		return
	}
	p.Invalidate()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.id = m.ID
	gen := p.gen

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		s, err := p.opener.Open(ctx, m)
		if ctx.Err() != nil {
			if s != nil {
				s.Close()
			}
			return
		}
		select {
		case p.results <- probeResult{gen: gen, session: s, err: err}:
		case <-ctx.Done():
			if s != nil {
				s.Close()
			}
		}
	}()
}

// Invalidate cancels an in-flight probe and closes a ready session.
func (p *Prober) Invalidate() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.ready != nil {
		p.ready.Close()
		p.ready = nil
	}
	p.id = ""
	p.failed = nil
	p.drain()
}

// Close invalidates, waits for in-flight probes and closes whatever they
// opened.
func (p *Prober) Close() {
	p.Invalidate()
	p.wg.Wait()
	p.drain()
}

// drain closes every queued result. Callers bump gen first, so all of
// them are stale.
func (p *Prober) drain() {
	for {
		select {
		case r := <-p.results:
			if r.session != nil {
				r.session.Close()
			}
		default:
			return
		}
	}
}

// Poll collects finished probes without blocking and reports whether a
// session for Target is ready.
func (p *Prober) Poll() bool {
	for {
		select {
		case r := <-p.results:
			if r.gen != p.gen {
				if r.session != nil {
					r.session.Close()
				}
				continue
			}
			p.cancel()
			p.cancel = nil
			p.ready, p.failed = r.session, r.err
		default:
			return p.ready != nil
		}
	}
}

// Take hands over the ready session for id. Anything else held is
// discarded.
func (p *Prober) Take(id string) *Session {
	p.Poll()
	if p.id != id || p.ready == nil {
		p.Invalidate()
		return nil
	}

	s := p.ready
	p.ready = nil
	p.Invalidate()
	return s
}
