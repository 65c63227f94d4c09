// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrUnknownBackend    = errors.New("unknown audio backend")
)
