// SPDX-License-Identifier: EPL-2.0

// Package device connects a Renderer to a platform audio output.
//
// Backends:
//   - "oto": github.com/ebitengine/oto/v3 with float32 little-endian output
//   - "beep": the github.com/gopxl/beep/v2 speaker (always stereo)
//   - "null": renders on a timer and discards the audio, for headless runs
//
// The oto and beep backends need cgo on Linux; builds without it report
// ErrDeviceUnavailable for them. Open retries a failing backend a few
// times with exponential backoff before giving up.
package device
