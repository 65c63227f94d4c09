// SPDX-License-Identifier: EPL-2.0

// Package queue holds the ordered playback sequence together with its
// shuffle permutation and repeat-aware navigation.
//
// While shuffling, the logical index walks Order rather than Items. Turning
// shuffle on keeps the playing item first in the new permutation, and
// turning it off maps the logical index back onto Items, so toggling never
// changes what is playing. Under RepeatAll a wrap past either end draws a
// fresh permutation before continuing.
package queue
