// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files through
// github.com/go-audio/aiff.
//
//	source, err := aiff.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// 8, 16, 24 and 32-bit PCM is supported in any channel layout. Sources are
// seekable; seeking rewinds to the sound data and skips forward, so it
// costs time proportional to the target offset.
//
// Inputs that are not io.ReadSeeker are buffered in memory first.
//
// ErrNotAiffFile wraps audio.ErrUnsupportedFormat; AIFF-C (.aifc) files
// are rejected with it.
package aiff
