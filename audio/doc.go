// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decode-side audio primitives.
//
//   - Source interface for pull-based PCM input, with optional Seeker and
//     Lengther capabilities
//   - Registry mapping file extensions to decoders
//   - Resampler for sample rate conversion
//   - ChannelAdapter for channel layout conversion
//   - Classify for sorting decode errors into unsupported, corrupt and I/O
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders and processors implement Source so they can be chained. The
// player builds its decode pipeline with Convert:
//
//	src, err := decoder.Decode(file)
//	out := audio.Convert(src, 48000, 2) // resample, then adapt channels
//
// # Channel Layouts
//
// ChannelAdapter duplicates mono into every output channel, averages
// everything down for mono output, and otherwise copies matching channels,
// repeats input channels cyclically into extra outputs and drops surplus
// inputs.
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0], interleaved by frame.
//
// # Error Handling
//
// ReadSamples returns io.EOF when the stream is finished; it may return the
// last samples together with io.EOF. Other errors come from the source:
//
//	n, err := source.ReadSamples(buf)
//	switch audio.Classify(err) {
//	case audio.ErrCorruptStream, audio.ErrIO:
//	    // give up on this track
//	}
package audio
