// SPDX-License-Identifier: EPL-2.0

package clock

import "errors"

var (
	ErrInvalidModulus = errors.New("partition modulus must be > 0")
	ErrInvalidEvery   = errors.New("pulse interval must be > 0")
)
