// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"io"

	"github.com/go-audio/aiff"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/internal/intpcm"
)

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, err := intpcm.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	src, err := intpcm.NewSource(rs, open)
	if err != nil {
		return nil, err
	}

	return src, nil
}

func open(rs io.ReadSeeker) (intpcm.Reader, intpcm.Info, error) {
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, intpcm.Info{}, ErrNotAiffFile
	}

	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, intpcm.Info{}, ErrUnsupportedAiffLayout
	}

	return dec, intpcm.Info{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   int(dec.BitDepth),
		Frames:     int64(dec.NumSampleFrames),
	}, nil
}
