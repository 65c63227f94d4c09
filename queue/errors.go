// SPDX-License-Identifier: EPL-2.0

package queue

import "errors"

var (
	ErrInvalidRepeat = errors.New("repeat mode must be off, all or one")
)
