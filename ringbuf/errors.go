// SPDX-License-Identifier: EPL-2.0

package ringbuf

import "errors"

var (
	ErrPartialFrame = errors.New("sample count is not a multiple of the frame size")
)
