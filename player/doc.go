// SPDX-License-Identifier: EPL-2.0

// Package player is the playback core: decode sessions, the decode worker
// that feeds the sample ring, the real-time output stage and the
// controller state machine that ties them to a queue.
//
// Three goroutines touch playback data. The device goroutine calls
// Output.Render and only ever reads the ring and an atomically published
// DSP chain. The decode worker started by Pipeline writes the ring. The
// controller owns everything else and is driven from a single control
// loop through Dispatch, SetQueue and Tick.
//
//	ring := ringbuf.New(ringbuf.FramesForLatency(48000, 250*time.Millisecond), 2)
//	out := player.NewOutput(ring)
//	ctl := player.NewController(player.Options{
//		Library:  lib,
//		Opener:   player.FileOpener{Registry: reg, Rate: 48000, Channels: 2},
//		Pipeline: player.NewPipeline(ring, out, 48000),
//	})
package player
