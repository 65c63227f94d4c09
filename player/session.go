// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"io"

	"github.com/ik5/audplay/audio"
)

const sessionBlockFrames = 1024

// Session is an open decode stream converted to the device layout. It is
// primed on creation: the first block is decoded up front so that broken
// files fail at open time rather than at the track boundary.
//
// A Session is used by one goroutine at a time.
type Session struct {
	Media Media

	src      audio.Source
	file     io.Closer
	rate     int
	channels int

	buf     []float32
	pending []float32
	eof     bool
	pos     int64 // frames handed out since the start of the track
}

// NewSession converts src to rate and channels and primes it. file, when
// not nil, is closed together with the session.
func NewSession(m Media, src audio.Source, file io.Closer, rate, channels int) (*Session, error) {
	s := &Session{
		Media:    m,
		src:      audio.Convert(src, rate, channels),
		file:     file,
		rate:     rate,
		channels: channels,
		buf:      make([]float32, sessionBlockFrames*channels),
	}

	if err := s.prime(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) prime() error {
	n, err := s.src.ReadSamples(s.buf)
	s.pending = s.buf[:n]

	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		s.eof = true
		return nil
	default:
		return classified(err)
	}
}

func (s *Session) Channels() int { return s.channels }
func (s *Session) Rate() int     { return s.rate }

// DurationMs is the decoded length, or the library duration when the
// decoder cannot tell.
func (s *Session) DurationMs() int64 {
	if l, ok := s.src.(audio.Lengther); ok {
		if frames := l.Frames(); frames > 0 {
			return audio.DurationMs(frames, s.rate)
		}
	}
	return s.Media.DurationMs
}

// Read fills dst with whole frames. It returns io.EOF once the track is
// exhausted; other errors carry an audio failure class.
func (s *Session) Read(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.channels]

	if len(s.pending) > 0 {
		n := copy(dst, s.pending)
		s.pending = s.pending[n:]
		s.pos += int64(n / s.channels)
		return n, nil
	}
	if s.eof {
		return 0, io.EOF
	}

	n, err := s.src.ReadSamples(dst)
	s.pos += int64(n / s.channels)

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		s.eof = true
		if n > 0 {
			return n, nil
		}
		return 0, io.EOF
	default:
		return n, classified(err)
	}
}

// Seek moves to ms. Sources that cannot seek are advanced by decoding and
// discarding; moving backwards on those fails with audio.ErrNotSeekable and
// the caller has to reopen.
func (s *Session) Seek(ms int64) error {
	target := audio.FrameAt(max(ms, 0), s.rate)

	if sk, ok := s.src.(audio.Seeker); ok {
		err := sk.SeekFrame(target)
		if err == nil {
			s.pending = nil
			s.eof = false
			s.pos = target
			return nil
		}
		if !errors.Is(err, audio.ErrNotSeekable) {
			return classified(err)
		}
	}

	if target < s.pos {
		return audio.ErrNotSeekable
	}
	return s.discard(target - s.pos)
}

func (s *Session) discard(frames int64) error {
	for frames > 0 {
		want := min(int64(len(s.buf)), frames*int64(s.channels))
		n, err := s.Read(s.buf[:want])
		frames -= int64(n / s.channels)

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases the decoder and the underlying file.
func (s *Session) Close() error {
	err := s.src.Close()
	if s.file != nil {
		if ferr := s.file.Close(); err == nil {
			err = ferr
		}
	}
	return err
}
