// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// Convert wraps src so it yields rate Hz with the given channel count:
// resample first, then adapt channels. Stages that would be no-ops are
// skipped. The result stays seekable when src is.
func Convert(src Source, rate, channels int) Source {
	out := src
	if src.SampleRate() != rate {
		out = NewResampler(out, rate)
	}
	if src.Channels() != channels {
		out = NewChannelAdapter(out, channels)
	}
	return out
}

// ConvertToPCM16 runs src through Convert and collects the whole stream as
// interleaved 16-bit PCM. process, when not nil, sees every float buffer
// before quantisation.
//
//	src, _ := decoder.Decode(file)
//	pcm, err := audio.ConvertToPCM16(src, 48000, 2, 4096, nil)
func ConvertToPCM16(src Source, rate, channels, bufferSize int, process func([]float32)) ([]int16, error) {
	pipeline := Convert(src, rate, channels)

	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		bufferSize = channels * 1024
	}

	var pcm16 []int16
	buf := make([]float32, bufferSize)

	for {
		n, err := pipeline.ReadSamples(buf)
		if n > 0 {
			if process != nil {
				process(buf[:n])
			}
			for _, v := range buf[:n] {
				pcm16 = append(pcm16, utils.Float32ToInt16(v))
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	return pcm16, nil
}
