// SPDX-License-Identifier: EPL-2.0

// Package audplay is a real-time media playback engine.
//
// The engine decodes audio files, converts them to the output device's
// rate and channel layout, hands the samples to the device through a
// lock-free ring buffer and runs them through a hot-swappable DSP chain on
// the way out. A single control loop (package engine) consumes commands
// from a path-addressed store, drives the playback state machine (package
// player), advances a partitioned musical clock (package clock) and
// publishes the resulting state back to the store.
//
// # Supported Formats
//
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - AIFF via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - FLAC via formats/flac
//
// NewRegistry returns a registry with all of them keyed by file extension.
//
// # Offline Rendering
//
// Render runs a source through the same conversion and DSP stages the
// engine uses and collects 16-bit PCM, which is handy for checking an EQ
// setting without an audio device:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm, err := audplay.Render(src, audplay.RenderOptions{
//		Rate:     48000,
//		Channels: 2,
//		DSP:      dsp.Config{Filters: []dsp.FilterSpec{dsp.Gain(-6)}},
//	})
//
// RenderFile does the same from a path and writes a WAV file.
//
// # Packages
//
//   - audio: Source contracts, Resampler, ChannelAdapter, decode errors
//   - ringbuf: single-producer single-consumer sample buffer
//   - dsp: peaking EQ and gain filters, chain configuration
//   - queue: ordered queue with shuffle and repeat
//   - clock: mixed-radix tick counter with pulses
//   - player: decode sessions, pre-probing, output stage, controller
//   - engine: control loop, store publishing, metrics
//   - device: oto, beep and null output backends
//   - store: record store contract with memory and directory backends
package audplay
