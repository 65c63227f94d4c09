// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/dsp"
	"github.com/ik5/audplay/formats/wav"
	"github.com/samber/lo"
)

var (
	ErrUnknownFormat = errors.New("no decoder for file")
)

type RenderOptions struct {
	Rate     int
	Channels int
	// Volume scales samples before the DSP chain. Zero means 1.
	Volume float64
	DSP    dsp.Config
	// BufferSize is the read size in samples; zero picks a default.
	BufferSize int
}

// Render converts src to the requested rate and channel count, applies
// volume and the DSP chain in the same order the output stage does, and
// returns the whole stream as interleaved 16-bit PCM.
func Render(src audio.Source, opts RenderOptions) ([]int16, error) {
	if opts.Rate <= 0 {
		opts.Rate = src.SampleRate()
	}
	if opts.Channels <= 0 {
		opts.Channels = src.Channels()
	}

	volume := float32(1)
	if opts.Volume != 0 {
		volume = float32(lo.Clamp(opts.Volume, 0, 1))
	}
	chain := dsp.Build(opts.DSP, opts.Rate, opts.Channels)

	process := func(buf []float32) {
		if volume != 1 {
			for i := range buf {
				buf[i] *= volume
			}
		}
		chain.Process(buf)
	}

	pcm, err := audio.ConvertToPCM16(src, opts.Rate, opts.Channels, opts.BufferSize, process)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return pcm, nil
}

// RenderFile decodes the file at path with the decoder registered for its
// extension, renders it and writes a 16-bit WAV stream to w.
func RenderFile(r *audio.Registry, path string, w io.Writer, opts RenderOptions) error {
	dec, ok := r.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %w: %s", audio.ErrUnsupportedFormat, ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrIO, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return err
	}
	defer src.Close()

	if opts.Rate <= 0 {
		opts.Rate = src.SampleRate()
	}
	if opts.Channels <= 0 {
		opts.Channels = src.Channels()
	}

	pcm, err := Render(src, opts)
	if err != nil {
		return err
	}

	return wav.WritePCM16(w, opts.Rate, opts.Channels, pcm)
}
