// SPDX-License-Identifier: EPL-2.0

// Package engine runs the control loop. Each cycle it consumes stored
// commands and queue requests, drives the playback controller, advances the
// clock, rebuilds the DSP chain when its version changes and publishes the
// playback state, queue and clock records back to the store. It is the
// only writer of those records.
package engine
