// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrClosed = errors.New("engine: closed")
)
