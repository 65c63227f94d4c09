// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/queue"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

type NowParams struct {
	Store string `short:"s" help:"Store directory." default:"audplay-store"`
}

func NowCmd() *cobra.Command {
	return boa.CmdT[NowParams]{
		Use:         "now",
		Short:       "Show the playback status",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *NowParams, cmd *cobra.Command, args []string) {
			st, err := openStore(params.Store)
			exitOn("now", err)

			text, err := nowPlaying(cmd.Context(), st)
			exitOn("now", err)
			_, _ = fmt.Fprint(os.Stdout, text)
		},
	}.ToCobra()
}

func nowPlaying(ctx context.Context, st store.Store) (string, error) {
	ctx = ctxOrBackground(ctx)

	s := player.DefaultState()
	rec, err := st.Get(ctx, store.StatePath)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "no engine state published yet\n", nil
	case err != nil:
		return "", err
	}
	if err := rec.Decode(&s); err != nil {
		return "", fmt.Errorf("playback state: %w", err)
	}

	var q queue.Snapshot
	if rec, err := st.Get(ctx, store.QueueCurrentPath); err == nil {
		_ = rec.Decode(&q)
	}

	return formatState(s, q), nil
}

func formatState(s player.State, q queue.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "status:   %s\n", s.Status)
	if s.CurrentID != "" {
		fmt.Fprintf(&b, "track:    %s", s.CurrentID)
		if s.Title != "" {
			fmt.Fprintf(&b, "  %s", s.Title)
		}
		if s.Artist != "" {
			fmt.Fprintf(&b, " - %s", s.Artist)
		}
		if s.Album != "" {
			fmt.Fprintf(&b, " (%s)", s.Album)
		}
		b.WriteByte('\n')
		fmt.Fprintf(&b, "position: %s / %s\n", clockTime(s.PositionMs), clockTime(s.DurationMs))
	}
	fmt.Fprintf(&b, "volume:   %d%%\n", int(s.Volume*100+0.5))
	fmt.Fprintf(&b, "shuffle:  %s  repeat: %s\n", onOff(s.Shuffle), s.Repeat)
	if len(q.Items) > 0 {
		fmt.Fprintf(&b, "queue:    %d/%d\n", q.Index+1, len(q.Items))
	}
	if s.Error != "" {
		fmt.Fprintf(&b, "error:    %s\n", s.Error)
	}

	return b.String()
}

func clockTime(ms int64) string {
	sec := max(ms, 0) / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
