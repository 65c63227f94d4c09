// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// Output is always stereo, matching go-mp3; mono files come out with both
// channels equal. When the input implements io.Seeker the source knows its
// length and can seek to any frame; otherwise SeekFrame fails with
// audio.ErrNotSeekable and Frames reports 0.
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
package mp3
