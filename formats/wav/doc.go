// SPDX-License-Identifier: EPL-2.0

// Package wav decodes integer PCM WAV files (8, 16, 24 and 32 bit, any
// channel count) through github.com/go-audio/wav and writes 16-bit PCM WAV.
//
//	source, err := wav.Decoder{}.Decode(file)
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// Sources are seekable and report their length; see audio.Seeker and
// audio.Lengther.
//
// WritePCM16 emits a canonical 44-byte header followed by interleaved
// samples:
//
//	err := wav.WritePCM16(out, 48000, 2, pcm)
//
// Errors wrap the audio package classes: ErrNotWavFile and
// ErrUnsupportedWavLayout are audio.ErrUnsupportedFormat,
// ErrUnsupportedWavChunks is audio.ErrCorruptStream.
package wav
