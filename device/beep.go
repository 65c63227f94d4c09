// SPDX-License-Identifier: EPL-2.0

//go:build (linux && cgo) || windows || darwin

package device

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

type beepDevice struct {
	streamer *renderStreamer
}

func openBeep(f Format, r Renderer) (Device, error) {
	rate := beep.SampleRate(f.Rate)
	if err := speaker.Init(rate, rate.N(f.Period)); err != nil {
		return nil, err
	}

	s := newRenderStreamer(r, f.Channels, f.PeriodFrames())
	speaker.Play(s)
	return &beepDevice{streamer: s}, nil
}

func (d *beepDevice) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}
