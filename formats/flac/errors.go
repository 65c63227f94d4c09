// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"

	"github.com/ik5/audplay/audio"
)

var ErrUnsupportedFlacLayout = fmt.Errorf("%w: only mono and stereo FLAC is supported", audio.ErrUnsupportedFormat)
