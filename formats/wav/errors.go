// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"

	"github.com/ik5/audplay/audio"
)

var (
	ErrNotWavFile           = fmt.Errorf("%w: not a WAV file", audio.ErrUnsupportedFormat)
	ErrUnsupportedWavLayout = fmt.Errorf("%w: only integer PCM WAV is supported", audio.ErrUnsupportedFormat)
	ErrUnsupportedWavChunks = fmt.Errorf("%w: WAV data chunk not found", audio.ErrCorruptStream)
	ErrInvalidChannels      = errors.New("channel count must be between 1 and 65535")
)
