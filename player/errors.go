// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	// ErrFailureLimit is recorded when too many tracks in a row failed to
	// decode and automatic advance has been halted.
	ErrFailureLimit = errors.New("too many consecutive track failures")

	ErrUnknownMedia   = errors.New("unknown media id")
	ErrInvalidCommand = errors.New("invalid command")
	ErrNoDecoder      = errors.New("no decoder for file")
)
