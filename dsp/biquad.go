// SPDX-License-Identifier: EPL-2.0

package dsp

import "math"

type biquadState struct {
	x1, x2, y1, y2 float64
}

// Biquad is a Direct Form I second-order section with independent state per
// channel.
type Biquad struct {
	b0, b1, b2, a1, a2 float64
	state              []biquadState
}

// NewPeakingEQ designs a peaking filter with the RBJ cookbook formulas.
func NewPeakingEQ(freqHz, gainDB, q float64, sampleRate, channels int) *Biquad {
	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * freqHz / float64(sampleRate)
	sinW0, cosW0 := math.Sincos(w0)
	alpha := sinW0 / (2 * q)

	a0 := 1 + alpha/a

	return &Biquad{
		b0:    (1 + alpha*a) / a0,
		b1:    (-2 * cosW0) / a0,
		b2:    (1 - alpha*a) / a0,
		a1:    (-2 * cosW0) / a0,
		a2:    (1 - alpha/a) / a0,
		state: make([]biquadState, max(channels, 1)),
	}
}

// Process filters interleaved samples in place.
func (b *Biquad) Process(buf []float32) {
	channels := len(b.state)

	for i := 0; i+channels <= len(buf); i += channels {
		for c := range channels {
			s := &b.state[c]
			x := float64(buf[i+c])
			y := b.b0*x + b.b1*s.x1 + b.b2*s.x2 - b.a1*s.y1 - b.a2*s.y2

			s.x2, s.x1 = s.x1, x
			s.y2, s.y1 = s.y1, y

			buf[i+c] = float32(y)
		}
	}
}

// Reset clears the filter history.
func (b *Biquad) Reset() {
	clear(b.state)
}

// GainFactor converts decibels to a linear amplitude factor.
func GainFactor(db float64) float32 {
	return float32(math.Pow(10, db/20))
}
