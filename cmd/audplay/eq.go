// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay/dsp"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

type EQParams struct {
	Store   string   `short:"s" help:"Store directory." default:"audplay-store"`
	Filters []string `pos:"true" optional:"true" help:"Filters in order: eq:FREQ:GAIN_DB[:Q] or gain:DB. None clears the chain."`
}

func EQCmd() *cobra.Command {
	return boa.CmdT[EQParams]{
		Use:         "eq",
		Short:       "Replace the DSP chain",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *EQParams, cmd *cobra.Command, args []string) {
			filters, err := parseFilters(params.Filters)
			exitOn("eq", err)

			st, err := openStore(params.Store)
			exitOn("eq", err)

			_, err = putEQ(cmd.Context(), st, filters)
			exitOn("eq", err)
		},
	}.ToCobra()
}

// putEQ writes filters with the next chain version so the engine rebuilds.
func putEQ(ctx context.Context, st store.Store, filters []dsp.FilterSpec) (dsp.Config, error) {
	ctx = ctxOrBackground(ctx)

	var cur dsp.Config
	rec, err := st.Get(ctx, store.EQPath)
	switch {
	case err == nil:
		if cur, err = dsp.ParseConfig(rec.Data); err != nil {
			cur = dsp.Config{Version: rec.Version}
		}
	case !errors.Is(err, store.ErrNotFound):
		return dsp.Config{}, err
	}

	cfg := dsp.Config{Version: cur.Version + 1, Filters: filters}
	if cfg.Filters == nil {
		cfg.Filters = []dsp.FilterSpec{}
	}
	if _, err := st.Put(ctx, store.EQPath, cfg); err != nil {
		return dsp.Config{}, err
	}
	return cfg, nil
}

func parseFilters(specs []string) ([]dsp.FilterSpec, error) {
	filters := make([]dsp.FilterSpec, 0, len(specs))
	for _, s := range specs {
		f, err := parseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseFilter(s string) (dsp.FilterSpec, error) {
	parts := strings.Split(s, ":")
	nums := make([]float64, 0, len(parts)-1)
	for _, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return dsp.FilterSpec{}, fmt.Errorf("%w: filter %q: %w", errUsage, s, err)
		}
		nums = append(nums, v)
	}

	switch kind := dsp.Kind(strings.ToLower(parts[0])); {
	case kind == dsp.KindGain && len(nums) == 1:
		return dsp.Gain(nums[0]), nil
	case kind == dsp.KindEQ && len(nums) == 2:
		return dsp.EQ(nums[0], nums[1], dsp.DefaultQ), nil
	case kind == dsp.KindEQ && len(nums) == 3:
		return dsp.EQ(nums[0], nums[1], nums[2]), nil
	}
	return dsp.FilterSpec{}, fmt.Errorf("%w: filter %q, want eq:FREQ:GAIN_DB[:Q] or gain:DB", errUsage, s)
}
