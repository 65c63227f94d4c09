// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelAdapter converts a source's channel layout to a fixed output
// channel count, frame by frame:
//
//   - equal counts pass through
//   - mono input is duplicated into every output channel
//   - mono output is the average of all input channels
//   - otherwise the first min(in, out) channels are copied, extra output
//     channels repeat input channel k%in, and surplus input channels are
//     dropped
type ChannelAdapter struct {
	src Source
	out int
	tmp []float32
}

func NewChannelAdapter(src Source, channels int) *ChannelAdapter {
	return &ChannelAdapter{
		src: src,
		out: max(channels, 1),
		tmp: make([]float32, 4096),
	}
}

func (a *ChannelAdapter) SampleRate() int { return a.src.SampleRate() }
func (a *ChannelAdapter) Channels() int   { return a.out }
func (a *ChannelAdapter) BufSize() int    { return a.src.BufSize() }

func (a *ChannelAdapter) Close() error {
	err := a.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (a *ChannelAdapter) Frames() int64 {
	if l, ok := a.src.(Lengther); ok {
		return l.Frames()
	}
	return 0
}

func (a *ChannelAdapter) SeekFrame(frame int64) error {
	s, ok := a.src.(Seeker)
	if !ok {
		return ErrNotSeekable
	}
	return s.SeekFrame(frame)
}

func (a *ChannelAdapter) ReadSamples(dst []float32) (int, error) {
	if len(dst)%a.out != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := a.src.Channels()
	if in == a.out {
		return a.src.ReadSamples(dst)
	}

	needed := len(dst) / a.out * in
	if cap(a.tmp) < needed {
		a.tmp = make([]float32, max(needed, 8192))
	}
	a.tmp = a.tmp[:needed]

	n, err := a.src.ReadSamples(a.tmp)
	if n == 0 {
		return 0, err
	}

	frames := AdaptFrames(dst, a.tmp[:n], in, a.out)

	return frames * a.out, err
}

// AdaptFrames converts interleaved frames in src (in channels) into dst
// (out channels) and returns the number of frames converted. It stops at
// whichever buffer runs out first.
func AdaptFrames(dst, src []float32, in, out int) int {
	frames := min(len(src)/in, len(dst)/out)

	switch {
	case in == out:
		copy(dst, src[:frames*in])

	case in == 1:
		if out == 2 {
			for f := range frames {
				dst[f<<1] = src[f]
				dst[f<<1+1] = src[f]
			}
			break
		}
		for f := range frames {
			row := dst[f*out : f*out+out]
			for c := range row {
				row[c] = src[f]
			}
		}

	case out == 1:
		if in == 2 {
			for f := range frames {
				dst[f] = (src[f<<1] + src[f<<1+1]) * 0.5
			}
			break
		}
		inv := float32(1) / float32(in)
		for f := range frames {
			sum := float32(0)
			for _, v := range src[f*in : f*in+in] {
				sum += v
			}
			dst[f] = sum * inv
		}

	default:
		for f := range frames {
			row := dst[f*out : f*out+out]
			frame := src[f*in : f*in+in]
			for c := range row {
				row[c] = frame[c%in]
			}
		}
	}

	return frames
}
