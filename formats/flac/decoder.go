// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	beepflac "github.com/gopxl/beep/v2/flac"
	"github.com/ik5/audplay/audio"
)

type source struct {
	stream     beep.StreamSeekCloser
	sampleRate int
	channels   int
	pairs      [][2]float64
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return cap(s.pairs) * s.channels }
func (s *source) Close() error    { return s.stream.Close() }
func (s *source) Frames() int64   { return int64(s.stream.Len()) }

func (s *source) SeekFrame(frame int64) error {
	frame = min(max(frame, 0), int64(s.stream.Len()))
	if err := s.stream.Seek(int(frame)); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrNotSeekable, err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	if frames == 0 {
		return 0, nil
	}
	if cap(s.pairs) < frames {
		s.pairs = make([][2]float64, frames)
	}
	pairs := s.pairs[:frames]

	n, ok := s.stream.Stream(pairs)
	for i := range n {
		if s.channels == 1 {
			dst[i] = float32(pairs[i][0])
			continue
		}
		dst[2*i] = float32(pairs[i][0])
		dst[2*i+1] = float32(pairs[i][1])
	}

	if !ok {
		if err := s.stream.Err(); err != nil {
			return n * s.channels, fmt.Errorf("%w: %w", audio.ErrCorruptStream, err)
		}
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, format, err := beepflac.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrCorruptStream, err)
	}

	src, err := newSource(stream, format)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}
	return src, nil
}

func newSource(stream beep.StreamSeekCloser, format beep.Format) (*source, error) {
	if format.NumChannels < 1 || format.NumChannels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFlacLayout, format.NumChannels)
	}

	return &source{
		stream:     stream,
		sampleRate: int(format.SampleRate),
		channels:   format.NumChannels,
		pairs:      make([][2]float64, 2048),
	}, nil
}
