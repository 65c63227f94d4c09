// SPDX-License-Identifier: EPL-2.0

package dsp

type stage struct {
	kind   Kind
	biquad *Biquad
	factor float32
}

// Chain is an immutable, ordered list of filter stages. Only the output
// goroutine may call Process, since biquads carry history.
type Chain struct {
	version    uint64
	sampleRate int
	channels   int
	stages     []stage
}

// Build turns cfg into a chain for the given output layout. Specs that
// cannot be realised are skipped: unknown types, EQs with non-positive
// frequency or Q, and EQs at or above Nyquist.
func Build(cfg Config, sampleRate, channels int) *Chain {
	c := &Chain{
		version:    cfg.Version,
		sampleRate: sampleRate,
		channels:   channels,
		stages:     make([]stage, 0, len(cfg.Filters)),
	}

	nyquist := float64(sampleRate) / 2

	for _, f := range cfg.Filters {
		switch f.Type {
		case KindEQ:
			if f.FreqHz <= 0 || f.Q <= 0 || f.FreqHz >= nyquist {
				continue
			}
			c.stages = append(c.stages, stage{
				kind:   KindEQ,
				biquad: NewPeakingEQ(f.FreqHz, f.GainDB, f.Q, sampleRate, channels),
			})
		case KindGain:
			c.stages = append(c.stages, stage{kind: KindGain, factor: GainFactor(f.DB)})
		}
	}

	return c
}

func (c *Chain) Version() uint64 { return c.version }
func (c *Chain) Len() int        { return len(c.stages) }

// Kinds lists the stage kinds in processing order.
func (c *Chain) Kinds() []Kind {
	kinds := make([]Kind, len(c.stages))
	for i, s := range c.stages {
		kinds[i] = s.kind
	}
	return kinds
}

// Process runs every stage over buf in order. A nil chain is a no-op.
func (c *Chain) Process(buf []float32) {
	if c == nil {
		return
	}

	for i := range c.stages {
		s := &c.stages[i]
		switch s.kind {
		case KindEQ:
			s.biquad.Process(buf)
		case KindGain:
			for j := range buf {
				buf[j] *= s.factor
			}
		}
	}
}
