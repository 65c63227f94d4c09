// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid dsp config")
)
