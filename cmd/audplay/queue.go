// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

type QueueParams struct {
	Store string   `short:"s" help:"Store directory." default:"audplay-store"`
	Hold  bool     `help:"Replace the queue without starting the first item." default:"false"`
	Items []string `pos:"true" required:"true" help:"Library ids in play order."`
}

func QueueCmd() *cobra.Command {
	return boa.CmdT[QueueParams]{
		Use:         "queue",
		Short:       "Replace the play queue",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *QueueParams, cmd *cobra.Command, args []string) {
			st, err := openStore(params.Store)
			exitOn("queue", err)
			exitOn("queue", sendQueue(cmd.Context(), st, params.Items, !params.Hold))
		},
	}.ToCobra()
}

func sendQueue(ctx context.Context, st store.Store, items []string, play bool) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: queue <id>...", errUsage)
	}

	_, err := st.Put(ctxOrBackground(ctx), store.QueueRequestPath, engine.QueueRequest{Items: items, Play: play})
	return err
}
