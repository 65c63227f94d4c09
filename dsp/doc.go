// SPDX-License-Identifier: EPL-2.0

// Package dsp provides the per-buffer filter chain applied on the output
// path: peaking EQ biquads and flat gain stages, run in declared order over
// interleaved float32 samples.
//
// A Chain is built from a Config away from the real-time path and then
// handed to the output stage as a whole. Process never allocates.
//
// Config JSON:
//
//	{"version": 3, "filters": [
//	  {"type": "eq", "freq_hz": 80, "gain_db": 3.0, "q": 0.7},
//	  {"type": "gain", "db": -1.5}
//	]}
package dsp
