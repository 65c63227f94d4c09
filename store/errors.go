// SPDX-License-Identifier: EPL-2.0

package store

import "errors"

var (
	ErrNotFound    = errors.New("store: record not found")
	ErrInvalidPath = errors.New("store: invalid record path")
)
