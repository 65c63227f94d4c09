// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
//
// Samples are decoded straight into the caller's buffer. Seeking and
// Frames need the input to implement io.Seeker; otherwise SeekFrame fails
// with audio.ErrNotSeekable.
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
package vorbis
