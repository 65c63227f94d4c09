// SPDX-License-Identifier: EPL-2.0

package device

// renderStreamer adapts a Renderer to beep's Streamer interface. beep
// always works in stereo pairs; mono renderers are duplicated to both
// sides and any channels past the second are dropped.
type renderStreamer struct {
	r        Renderer
	channels int
	buf      []float32
}

func newRenderStreamer(r Renderer, channels, frames int) *renderStreamer {
	channels = max(channels, 1)
	return &renderStreamer{r: r, channels: channels, buf: make([]float32, frames*channels)}
}

func (s *renderStreamer) Stream(samples [][2]float64) (int, bool) {
	need := len(samples) * s.channels
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:need]

	s.r.Render(buf)

	for i := range samples {
		frame := buf[i*s.channels:]
		left := float64(frame[0])
		right := left
		if s.channels > 1 {
			right = float64(frame[1])
		}
		samples[i] = [2]float64{left, right}
	}
	return len(samples), true
}

func (s *renderStreamer) Err() error { return nil }
