// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"io/fs"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// Decode failure classes. Format packages wrap one of these so callers
	// can tell them apart with errors.Is.
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptStream     = errors.New("corrupt stream")
	ErrIO                = errors.New("i/o error")

	ErrNotSeekable = errors.New("source is not seekable")
)

// Classify maps err onto one of the decode failure classes. Errors that
// already carry a class keep it; file system errors and truncated reads are
// ErrIO; anything else is treated as a corrupt stream. Nil stays nil.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrUnsupportedFormat
	case errors.Is(err, ErrIO):
		return ErrIO
	case errors.Is(err, ErrCorruptStream):
		return ErrCorruptStream
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
		return ErrIO
	}

	return ErrCorruptStream
}
