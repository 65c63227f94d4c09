// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts go-audio style integer PCM decoders (WAV, AIFF) to
// audio.Source, including frame-accurate seeking by reopening and skipping.
package intpcm

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audplay/audio"
)

// Reader is the part of a go-audio decoder the source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Info describes a stream positioned at the start of its PCM data.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int64
	// Unsigned8 is set for formats that store 8-bit samples unsigned.
	Unsigned8 bool
}

// Opener parses headers from the start of rs and returns a reader
// positioned at the first PCM frame.
type Opener func(rs io.ReadSeeker) (Reader, Info, error)

type Source struct {
	rs     io.ReadSeeker
	open   Opener
	dec    Reader
	info   Info
	scale  float32
	offset int
	intBuf *goaudio.IntBuffer
}

// ReadSeeker returns r as an io.ReadSeeker, buffering it in memory when it
// cannot seek.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	return bytes.NewReader(data), nil
}

func NewSource(rs io.ReadSeeker, open Opener) (*Source, error) {
	dec, info, err := open(rs)
	if err != nil {
		return nil, err
	}

	s := &Source{rs: rs, open: open, dec: dec, info: info}

	switch info.BitDepth {
	case 8:
		s.scale = 128
		if info.Unsigned8 {
			s.offset = 128
		}
	case 16:
		s.scale = 32768
	case 24:
		s.scale = 8388608
	case 32:
		s.scale = 2147483648
	default:
		return nil, fmt.Errorf("%d bit: %w", info.BitDepth, audio.ErrUnsupportedFormat)
	}

	s.intBuf = &goaudio.IntBuffer{
		Data:           make([]int, 4096),
		Format:         &goaudio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate},
		SourceBitDepth: info.BitDepth,
	}

	return s, nil
}

func (s *Source) SampleRate() int { return s.info.SampleRate }
func (s *Source) Channels() int   { return s.info.Channels }
func (s *Source) BufSize() int    { return cap(s.intBuf.Data) }
func (s *Source) Frames() int64   { return s.info.Frames }
func (s *Source) Close() error    { return nil }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.info.Channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < want {
		s.intBuf.Data = make([]int, want)
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w: %w", audio.ErrCorruptStream, err)
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v-s.offset) / s.scale
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %w", audio.ErrCorruptStream, err)
	}
	if n < want {
		return n, io.EOF
	}

	return n, nil
}

// SeekFrame rewinds to the start of the PCM data and skips forward.
func (s *Source) SeekFrame(frame int64) error {
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	dec, _, err := s.open(s.rs)
	if err != nil {
		return err
	}
	s.dec = dec

	remaining := max(frame, 0) * int64(s.info.Channels)
	s.intBuf.Data = s.intBuf.Data[:cap(s.intBuf.Data)]

	for remaining > 0 {
		chunk := min(remaining, int64(len(s.intBuf.Data)))
		chunk -= chunk % int64(s.info.Channels)

		buf := &goaudio.IntBuffer{Data: s.intBuf.Data[:chunk], Format: s.intBuf.Format}
		n, err := s.dec.PCMBuffer(buf)
		remaining -= int64(n)
		if n == 0 || err != nil {
			// Past the end: reads will report EOF.
			break
		}
	}

	return nil
}
