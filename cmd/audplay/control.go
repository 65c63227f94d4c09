// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/queue"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage")

type ControlParams struct {
	Store string   `short:"s" help:"Store directory." default:"audplay-store"`
	Args  []string `pos:"true" optional:"true" help:"Command argument."`
}

func controlCmd(action, short string) *cobra.Command {
	return boa.CmdT[ControlParams]{
		Use:         action,
		Short:       short,
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *ControlParams, cmd *cobra.Command, args []string) {
			c, err := parseControl(append([]string{action}, params.Args...))
			exitOn(action, err)

			st, err := openStore(params.Store)
			exitOn(action, err)

			_, err = sendCommand(cmd.Context(), st, c)
			exitOn(action, err)
		},
	}.ToCobra()
}

// parseControl turns a command line such as "seek 12.5" or "volume 80"
// into a player command. Seek takes seconds and volume a percentage.
func parseControl(fields []string) (player.Command, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty command", errUsage)
	}

	action := strings.ToLower(fields[0])
	args := fields[1:]

	arg := func(what string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%w: %s <%s>", errUsage, action, what)
		}
		return args[0], nil
	}

	switch action {
	case "pause":
		return player.Pause{}, nil
	case "resume":
		return player.Resume{}, nil
	case "stop":
		return player.Stop{}, nil
	case "next":
		return player.Next{}, nil
	case "prev", "previous":
		return player.Previous{}, nil
	case "play":
		id, err := arg("id")
		if err != nil {
			return nil, err
		}
		return player.Play{ID: id}, nil
	case "seek":
		s, err := arg("seconds")
		if err != nil {
			return nil, err
		}
		sec, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(sec) || math.IsInf(sec, 0) {
			return nil, fmt.Errorf("%w: seek position %q", errUsage, s)
		}
		return player.Seek{PositionMs: int64(math.Round(sec * 1000))}, nil
	case "volume":
		s, err := arg("0-100")
		if err != nil {
			return nil, err
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || math.IsNaN(pct) {
			return nil, fmt.Errorf("%w: volume %q", errUsage, s)
		}
		return player.SetVolume{Volume: pct / 100}, nil
	case "shuffle":
		s, err := arg("on|off")
		if err != nil {
			return nil, err
		}
		on, err := parseSwitch(s)
		if err != nil {
			return nil, err
		}
		return player.SetShuffle{Enabled: on}, nil
	case "repeat":
		s, err := arg("off|all|one")
		if err != nil {
			return nil, err
		}
		mode, err := queue.ParseRepeat(s)
		if err != nil {
			return nil, err
		}
		return player.SetRepeat{Mode: mode}, nil
	}

	return nil, fmt.Errorf("%w: unknown command %q", errUsage, fields[0])
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not on or off", errUsage, s)
}

// sendCommand stores c under a fresh, time ordered command path.
func sendCommand(ctx context.Context, st store.Store, c player.Command) (string, error) {
	data, err := player.MarshalCommand(c)
	if err != nil {
		return "", err
	}

	path := store.CommandPath()
	if _, err := st.Put(ctxOrBackground(ctx), path, json.RawMessage(data)); err != nil {
		return "", fmt.Errorf("send %s: %w", c.Action(), err)
	}
	return path, nil
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
