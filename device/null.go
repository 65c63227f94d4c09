// SPDX-License-Identifier: EPL-2.0

package device

import (
	"sync"
	"sync/atomic"
	"time"
)

// Null pulls one period from the renderer per tick and drops it.
type Null struct {
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	frames atomic.Uint64
}

func openNull(f Format, r Renderer) (Device, error) {
	return NewNull(f, r), nil
}

func NewNull(f Format, r Renderer) *Null {
	n := &Null{stop: make(chan struct{})}
	buf := make([]float32, f.PeriodFrames()*max(f.Channels, 1))
	period := f.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-n.stop:
				return
			case <-ticker.C:
				r.Render(buf)
				n.frames.Add(uint64(f.PeriodFrames()))
			}
		}
	}()

	return n
}

// Frames is the number of frames rendered so far.
func (n *Null) Frames() uint64 { return n.frames.Load() }

func (n *Null) Close() error {
	n.once.Do(func() { close(n.stop) })
	n.wg.Wait()
	return nil
}
