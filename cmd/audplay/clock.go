// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay/clock"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

type ClockParams struct {
	Store      string   `short:"s" help:"Store directory." default:"audplay-store"`
	Partitions []string `short:"p" optional:"true" help:"Partition NAME:MODULUS, fastest first (repeatable)."`
	Pulses     []string `short:"u" optional:"true" help:"Pulse NAME:EVERY (repeatable)."`
}

func ClockCmd() *cobra.Command {
	return boa.CmdT[ClockParams]{
		Use:         "clock",
		Short:       "Configure clock partitions and pulses",
		Long:        "Writes the clock configuration. With no partitions or pulses the default sub/beat/bar clock is written. The engine resets the clock to tick 0 when it picks the change up.",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *ClockParams, cmd *cobra.Command, args []string) {
			cfg, err := parseClock(params.Partitions, params.Pulses)
			exitOn("clock", err)

			st, err := openStore(params.Store)
			exitOn("clock", err)

			exitOn("clock", putClock(cmd.Context(), st, cfg))
		},
	}.ToCobra()
}

func putClock(ctx context.Context, st store.Store, cfg clock.Config) error {
	_, err := st.Put(ctxOrBackground(ctx), store.ClockConfigPath, cfg)
	return err
}

// parseClock builds a config from NAME:N pairs. Intervals are checked here
// so the user sees the mistake instead of the engine falling back to the
// default.
func parseClock(partitions, pulses []string) (clock.Config, error) {
	if len(partitions) == 0 && len(pulses) == 0 {
		return clock.DefaultConfig(), nil
	}

	cfg := clock.Config{
		Partitions: make([]clock.PartitionSpec, 0, len(partitions)),
		Pulses:     make([]clock.PulseSpec, 0, len(pulses)),
	}
	for _, s := range partitions {
		name, n, err := namedInt(s)
		if err != nil {
			return clock.Config{}, err
		}
		cfg.Partitions = append(cfg.Partitions, clock.PartitionSpec{Name: name, Modulus: n})
	}
	for _, s := range pulses {
		name, n, err := namedInt(s)
		if err != nil {
			return clock.Config{}, err
		}
		cfg.Pulses = append(cfg.Pulses, clock.PulseSpec{Name: name, Every: n})
	}

	if err := cfg.Validate(); err != nil {
		return clock.Config{}, err
	}
	return cfg, nil
}

func namedInt(s string) (string, int64, error) {
	name, num, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("%w: %q, want NAME:N", errUsage, s)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %w", errUsage, s, err)
	}
	return name, n, nil
}
