// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"
	"sync/atomic"

	"github.com/ik5/audplay/dsp"
	"github.com/ik5/audplay/ringbuf"
)

// Output is the real-time end of the pipeline. Render is called from the
// device callback and never blocks, locks or allocates: it reads the ring,
// scales by volume and runs the current DSP chain. Every other method is
// safe to call from any goroutine.
type Output struct {
	ring *ringbuf.Ring

	chain  atomic.Pointer[dsp.Chain]
	volume atomic.Uint32 // float32 bits

	paused atomic.Bool
	active atomic.Bool

	underruns atomic.Uint64
}

func NewOutput(ring *ringbuf.Ring) *Output {
	o := &Output{ring: ring}
	o.SetVolume(1)
	return o
}

func (o *Output) Channels() int { return o.ring.Channels() }

// Render fills dst with the next buffer of audio. While paused or inactive
// it emits silence without consuming buffered samples.
func (o *Output) Render(dst []float32) {
	if o.paused.Load() || !o.active.Load() {
		clear(dst)
		return
	}

	if n := o.ring.Read(dst); n < len(dst) {
		o.underruns.Add(1)
	}

	if v := math.Float32frombits(o.volume.Load()); v != 1 {
		for i := range dst {
			dst[i] *= v
		}
	}

	o.chain.Load().Process(dst)
}

// SetChain publishes c to the render goroutine. The next Render call uses
// either the old chain or c in full.
func (o *Output) SetChain(c *dsp.Chain) { o.chain.Store(c) }
func (o *Output) Chain() *dsp.Chain     { return o.chain.Load() }

// SetVolume clamps v to [0, 1].
func (o *Output) SetVolume(v float64) {
	o.volume.Store(math.Float32bits(float32(min(max(v, 0), 1))))
}

func (o *Output) Volume() float64 { return float64(math.Float32frombits(o.volume.Load())) }

func (o *Output) SetPaused(paused bool) { o.paused.Store(paused) }
func (o *Output) SetActive(active bool) { o.active.Store(active) }

// Underruns counts Render calls that found fewer samples than requested
// while playing.
func (o *Output) Underruns() uint64 { return o.underruns.Load() }
