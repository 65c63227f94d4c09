// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/internal/config"
	"github.com/spf13/cobra"
)

type RunParams struct {
	Store       string `short:"s" help:"Store directory." default:"audplay-store"`
	Backend     string `short:"b" help:"Audio backend: oto, beep or null." default:"oto"`
	Rate        int    `short:"r" help:"Output sample rate in Hz." default:"48000"`
	Channels    int    `short:"c" help:"Output channel count." default:"2"`
	LatencyMs   int    `help:"Sample buffer size in milliseconds." default:"250"`
	PeriodMs    int    `help:"Device buffer period in milliseconds." default:"20"`
	ControlMs   int    `help:"Control loop period in milliseconds." default:"250"`
	MaxFailures int    `help:"Consecutive track failures before giving up." default:"5"`
	MetricsAddr string `short:"m" help:"Serve Prometheus metrics on this address." default:""`
	LogLevel    string `short:"l" help:"Log level: debug, info, warn or error." default:"info"`
}

func RunCmd() *cobra.Command {
	return boa.CmdT[RunParams]{
		Use:         "run",
		Short:       "Run the playback engine",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *RunParams, cmd *cobra.Command, args []string) {
			exitOn("run", runEngine(cmd.Context(), params))
		},
	}.ToCobra()
}

func (p *RunParams) config() config.Config {
	cfg := config.Default()
	cfg.StoreDir = p.Store
	cfg.Backend = p.Backend
	cfg.Rate = p.Rate
	cfg.Channels = p.Channels
	cfg.LatencyMs = p.LatencyMs
	cfg.PeriodMs = p.PeriodMs
	cfg.ControlPeriod = time.Duration(p.ControlMs) * time.Millisecond
	cfg.MaxFailures = p.MaxFailures
	cfg.MetricsAddr = p.MetricsAddr
	cfg.LogLevel = p.LogLevel
	return cfg
}

func runEngine(ctx context.Context, params *RunParams) error {
	cfg := params.config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg.Level())

	st, err := openStore(cfg.StoreDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctxOrBackground(ctx), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine.New(ctx, engine.Options{Config: cfg, Store: st, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("store", cfg.StoreDir).Str("backend", cfg.Backend).
		Int("rate", cfg.Rate).Int("channels", cfg.Channels).Msg("engine running")

	return e.Run(ctx)
}
