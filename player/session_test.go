// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/internal/audiotest"
)

// forwardOnly hides SeekFrame.
type forwardOnly struct{ audio.Source }

func readFrames(t *testing.T, s *Session, frames int) []float32 {
	t.Helper()

	dst := make([]float32, frames*s.Channels())
	n, err := s.Read(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatal(err)
	}
	return dst[:n]
}

func TestSession_PrimeFailureClosesSource(t *testing.T) {
	t.Parallel()

	src := audiotest.NewFailingSource(testRate, 1, 0, 0, errors.New("no sync word"))
	_, err := NewSession(Media{ID: "x"}, src, nil, testRate, 1)

	if !errors.Is(err, audio.ErrCorruptStream) {
		t.Errorf("NewSession() error = %v, want ErrCorruptStream", err)
	}
	if !src.Closed() {
		t.Error("source left open after failed prime")
	}
}

func TestSession_ConvertsLayout(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(testRate, 1, 100, 0.25)
	s, err := NewSession(Media{ID: "m"}, src, nil, testRate, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := readFrames(t, s, 10)
	if len(got) != 20 || got[0] != 0.25 || got[1] != 0.25 {
		t.Errorf("mono to stereo read %v", got)
	}
	if s.DurationMs() != 12 {
		t.Errorf("DurationMs() = %d, want 12", s.DurationMs())
	}
}

func TestSession_SeekForwardOnly(t *testing.T) {
	t.Parallel()

	ramp := audiotest.NewMockSource(testRate, 1, 8000, func(i, _ int) float32 { return float32(i) })
	s, err := NewSession(Media{ID: "r"}, forwardOnly{ramp}, nil, testRate, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Seek(500); err != nil {
		t.Fatalf("Seek(500) error = %v", err)
	}
	if got := readFrames(t, s, 1); got[0] != 4000 {
		t.Errorf("after forward seek read %v, want 4000", got[0])
	}

	if err := s.Seek(100); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("backward Seek() error = %v, want ErrNotSeekable", err)
	}
}

func TestSession_SeekSeekable(t *testing.T) {
	t.Parallel()

	ramp := audiotest.NewMockSource(testRate, 1, 8000, func(i, _ int) float32 { return float32(i) })
	s, _ := NewSession(Media{ID: "r"}, ramp, nil, testRate, 1)

	_ = s.Seek(900)
	_ = s.Seek(250)
	if got := readFrames(t, s, 1); got[0] != 2000 {
		t.Errorf("after seek back read %v, want 2000", got[0])
	}
}

func TestFileOpener(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]int16, 2*4000)
	if err := wav.WritePCM16(f, 16000, 2, samples); err != nil {
		t.Fatal(err)
	}
	f.Close()

	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	opener := FileOpener{Registry: reg, Rate: testRate, Channels: 1}

	s, err := opener.Open(context.Background(), Media{ID: "t", Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.DurationMs() != 250 || s.Channels() != 1 || s.Rate() != testRate {
		t.Errorf("session %d ms, %d ch, %d Hz", s.DurationMs(), s.Channels(), s.Rate())
	}
	s.Close()

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "nope.wav"), audio.ErrIO},
		{"unknown extension", filepath.Join(dir, "notes.txt"), audio.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		_, err := opener.Open(context.Background(), Media{ID: tt.name, Path: tt.path})
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}

	garbage := filepath.Join(dir, "garbage.wav")
	_ = os.WriteFile(garbage, []byte("definitely not riff data"), 0o644)
	if _, err := opener.Open(context.Background(), Media{Path: garbage}); err == nil {
		t.Error("garbage file opened")
	}
}
