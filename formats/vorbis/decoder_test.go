// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audplay/audio"
)

// mockOggReader mimics oggvorbis.Reader over interleaved samples.
type mockOggReader struct {
	rate, channels int
	data           []float32
	pos            int // in samples
	err            error
}

func (m *mockOggReader) SampleRate() int { return m.rate }
func (m *mockOggReader) Channels() int   { return m.channels }
func (m *mockOggReader) Length() int64   { return int64(len(m.data) / m.channels) }

func (m *mockOggReader) Read(p []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func (m *mockOggReader) SetPosition(pos int64) error {
	if pos > m.Length() {
		return errors.New("oggvorbis: position out of range")
	}
	m.pos = int(pos) * m.channels
	return nil
}

var _ audio.Source = (*source)(nil)

func TestSource_BufSize(t *testing.T) {
	t.Parallel()

	for _, channels := range []int{1, 2, 3} {
		src := newSource(&mockOggReader{rate: 44100, channels: channels})
		if n := src.BufSize(); n <= 0 || n%channels != 0 {
			t.Errorf("%d channels: BufSize() = %d, want a positive multiple of the channel count", channels, n)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("OggS but not really")} {
		_, err := Decoder{}.Decode(bytes.NewReader(data))
		if !errors.Is(err, audio.ErrCorruptStream) {
			t.Errorf("Decode(%q) error = %v, want ErrCorruptStream", data, err)
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	m := &mockOggReader{rate: 48000, channels: 2, data: []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}}
	src := newSource(m)

	dst := make([]float32, 5) // odd length reads whole frames only
	n, err := src.ReadSamples(dst)
	if n != 4 || err != nil {
		t.Fatalf("ReadSamples() = %d, %v; want 4, nil", n, err)
	}

	n, _ = src.ReadSamples(dst)
	if n != 2 || dst[0] != 0.3 {
		t.Errorf("second read = %d samples, first %v", n, dst[0])
	}

	if _, err := src.ReadSamples(dst); err != io.EOF {
		t.Errorf("final read error = %v, want io.EOF", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	m := &mockOggReader{rate: 8000, channels: 1, data: []float32{0, 1, 2, 3, 4, 5}}
	src := newSource(m)

	if src.Frames() != 6 {
		t.Errorf("Frames() = %d, want 6", src.Frames())
	}
	if err := src.SeekFrame(4); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}

	dst := make([]float32, 4)
	if n, _ := src.ReadSamples(dst); n != 2 || dst[0] != 4 {
		t.Errorf("after seek read %d samples starting at %v", n, dst[0])
	}

	if err := src.SeekFrame(100); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("SeekFrame(100) error = %v, want ErrNotSeekable", err)
	}
}

func TestSource_CorruptPacket(t *testing.T) {
	t.Parallel()

	m := &mockOggReader{rate: 8000, channels: 1, data: []float32{0}, err: errors.New("invalid packet")}
	_, err := newSource(m).ReadSamples(make([]float32, 4))
	if !errors.Is(err, audio.ErrCorruptStream) {
		t.Errorf("ReadSamples() error = %v, want ErrCorruptStream", err)
	}
}
