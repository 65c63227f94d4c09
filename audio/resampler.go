// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// resampleBlockFrames is how many source frames the Resampler pulls per
// ReadSamples call on its source.
const resampleBlockFrames = 1024

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count. When both rates
// match it passes samples straight through.
//
// Output frame k sits at source position k*srcRate/dstRate, so a source of
// N frames yields ceil(N*dstRate/srcRate) frames, the last one taken from
// the final source frame.
//
// Resampler forwards SeekFrame and Frames to src when src supports them,
// converting between the two rates.
type Resampler struct {
	src      Source
	srcRate  int64
	dstRate  int64
	channels int

	// window holds source frames base-1 .. base+2, edge frames repeated
	// past either end of the stream.
	window [4][]float32
	// real counts how many of window[1:] were read from src.
	real   int
	primed bool
	base   int64
	out    int64

	block    []float32
	blockOff int
	blockLen int
	eof      bool

	// One-pole low-pass state used when downsampling.
	filterState  []float32
	filterPrimed bool
	useFilter    bool
	filterAlpha  float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	useFilter := src.SampleRate() > dstRate
	var filterAlpha float32
	if useFilter {
		filterAlpha = 0.5
	}

	r := &Resampler{
		src:         src,
		srcRate:     int64(src.SampleRate()),
		dstRate:     int64(dstRate),
		channels:    channels,
		block:       make([]float32, resampleBlockFrames*channels),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (r *Resampler) passthrough() bool { return r.srcRate == r.dstRate }

// Frames reports the source length converted to the output rate.
func (r *Resampler) Frames() int64 {
	l, ok := r.src.(Lengther)
	if !ok {
		return 0
	}
	frames := l.Frames()
	if frames <= 0 {
		return 0
	}
	if r.passthrough() {
		return frames
	}
	return (frames*r.dstRate + r.srcRate - 1) / r.srcRate
}

// SeekFrame repositions to frame, counted at the output rate, and discards
// interpolation history.
func (r *Resampler) SeekFrame(frame int64) error {
	s, ok := r.src.(Seeker)
	if !ok {
		return ErrNotSeekable
	}

	if err := s.SeekFrame(frame * r.srcRate / r.dstRate); err != nil {
		return fmt.Errorf("%w", err)
	}

	r.primed = false
	r.real = 0
	r.base, r.out = 0, 0
	r.blockOff, r.blockLen = 0, 0
	r.eof = false
	r.filterPrimed = false

	return nil
}

// readFrame copies the next source frame into dst, refilling the block
// buffer when it runs dry. It reports false once src is exhausted.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for r.blockOff >= r.blockLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.block)
		n -= n % r.channels
		r.blockOff, r.blockLen = 0, n

		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}

	copy(dst, r.block[r.blockOff:r.blockOff+r.channels])
	r.blockOff += r.channels

	return true, nil
}

// pull reads and filters one source frame.
func (r *Resampler) pull(dst []float32) (bool, error) {
	ok, err := r.readFrame(dst)
	if !ok || err != nil {
		return false, err
	}

	if r.useFilter {
		if !r.filterPrimed {
			copy(r.filterState, dst)
			r.filterPrimed = true
		}
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true, nil
}

// prime fills the interpolation window from the current source position.
func (r *Resampler) prime() error {
	ok, err := r.pull(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}

	copy(r.window[0], r.window[1])
	r.real = 1

	for i := 2; i < len(r.window); i++ {
		ok, err := r.pull(r.window[i])
		if err != nil {
			return err
		}
		if ok {
			r.real++
		} else {
			copy(r.window[i], r.window[i-1])
		}
	}

	r.base, r.out = 0, 0
	r.primed = true

	return nil
}

// advance shifts the window forward by one source frame.
func (r *Resampler) advance() error {
	w := &r.window
	w[0], w[1], w[2], w[3] = w[1], w[2], w[3], w[0]
	r.real--
	r.base++

	ok, err := r.pull(w[3])
	if err != nil {
		return err
	}
	if ok {
		r.real++
	} else {
		copy(w[3], w[2])
	}

	return nil
}

// ReadSamples produces dst samples at r.dstRate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if r.passthrough() {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		num := r.out * r.srcRate
		target := num / r.dstRate

		for r.base < target && r.real > 0 {
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if r.real == 0 {
			return written * r.channels, io.EOF
		}

		alpha := float32(num%r.dstRate) / float32(r.dstRate)
		out := dst[written*r.channels : (written+1)*r.channels]

		for c := range r.channels {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], alpha)
		}

		written++
		r.out++
	}

	return written * r.channels, nil
}
