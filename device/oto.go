// SPDX-License-Identifier: EPL-2.0

//go:build (linux && cgo) || windows || darwin

package device

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audplay/utils"
)

// oto allows a single context per process.
var (
	otoMu  sync.Mutex
	otoCtx *oto.Context
	otoFmt Format
)

type otoDevice struct {
	player   *oto.Player
	renderer Renderer
	channels int
	buf      []float32
}

func openOto(f Format, r Renderer) (Device, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   f.Rate,
			ChannelCount: f.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   f.Period,
		})
		if err != nil {
			return nil, err
		}
		<-ready
		otoCtx, otoFmt = ctx, f
	} else if otoFmt.Rate != f.Rate || otoFmt.Channels != f.Channels {
		return nil, fmt.Errorf("oto context already open at %d Hz, %d ch", otoFmt.Rate, otoFmt.Channels)
	}

	d := &otoDevice{
		renderer: r,
		channels: f.Channels,
		buf:      make([]float32, f.PeriodFrames()*f.Channels),
	}
	d.player = otoCtx.NewPlayer(d)
	d.player.Play()

	return d, nil
}

// Read is called by oto's audio goroutine. It always fills p with whole
// frames.
func (d *otoDevice) Read(p []byte) (int, error) {
	frameBytes := 4 * d.channels
	samples := (len(p) / frameBytes) * d.channels
	if samples == 0 {
		return 0, nil
	}

	if cap(d.buf) < samples {
		d.buf = make([]float32, samples)
	}
	buf := d.buf[:samples]

	d.renderer.Render(buf)
	return utils.PutFloat32LE(p, buf) * 4, nil
}

func (d *otoDevice) Close() error {
	return d.player.Close()
}
