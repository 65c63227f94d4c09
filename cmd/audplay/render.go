// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay"
	"github.com/ik5/audplay/dsp"
	"github.com/spf13/cobra"
)

type RenderParams struct {
	Rate     int      `short:"r" help:"Output sample rate; 0 keeps the input rate." default:"0"`
	Channels int      `short:"c" help:"Output channels; 0 keeps the input layout." default:"0"`
	Volume   float64  `short:"v" help:"Volume in percent." default:"100"`
	Filters  []string `short:"f" optional:"true" help:"DSP filter eq:FREQ:GAIN_DB[:Q] or gain:DB (repeatable)."`
	In       string   `pos:"true" required:"true" help:"Input audio file."`
	Out      string   `pos:"true" required:"true" help:"Output WAV file."`
}

func RenderCmd() *cobra.Command {
	return boa.CmdT[RenderParams]{
		Use:         "render",
		Short:       "Render a file through the DSP chain to WAV",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *RenderParams, cmd *cobra.Command, args []string) {
			exitOn("render", renderFile(params))
		},
	}.ToCobra()
}

func renderFile(params *RenderParams) (err error) {
	filters, err := parseFilters(params.Filters)
	if err != nil {
		return err
	}
	if params.Volume <= 0 || params.Volume > 100 {
		return fmt.Errorf("%w: volume %v not in (0, 100]", errUsage, params.Volume)
	}

	out, err := os.Create(params.Out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	return audplay.RenderFile(audplay.NewRegistry(), params.In, out, audplay.RenderOptions{
		Rate:     params.Rate,
		Channels: params.Channels,
		Volume:   params.Volume / 100,
		DSP:      dsp.Config{Filters: filters},
	})
}
