// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC through the gopxl/beep/v2 flac decoder, which
// in turn uses github.com/mewkiz/flac.
//
// beep streams are always stereo pairs; mono files are folded back to one
// channel so the source reports the file's real layout.
package flac
