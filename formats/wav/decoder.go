// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/internal/intpcm"
)

const formatPCM = 1

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
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
	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, intpcm.Info{}, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, intpcm.Info{}, fmt.Errorf("format tag %d: %w", dec.WavAudioFormat, ErrUnsupportedWavLayout)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, intpcm.Info{}, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	info := intpcm.Info{
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
		Unsigned8:  true,
	}
	if frameBytes := channels * bitDepth / 8; frameBytes > 0 {
		info.Frames = dec.PCMLen() / int64(frameBytes)
	}

	return dec, info, nil
}
