// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/chzyer/readline"
	"github.com/ik5/audplay/store"
	"github.com/spf13/cobra"
)

type ConsoleParams struct {
	Store string `short:"s" help:"Store directory." default:"audplay-store"`
}

func ConsoleCmd() *cobra.Command {
	return boa.CmdT[ConsoleParams]{
		Use:         "console",
		Short:       "Interactive control shell",
		ParamEnrich: defaultParamEnricher(),
		RunFunc: func(params *ConsoleParams, cmd *cobra.Command, args []string) {
			st, err := openStore(params.Store)
			exitOn("console", err)
			exitOn("console", runConsole(cmd.Context(), st))
		},
	}.ToCobra()
}

const consoleHelp = `commands:
  play <id>            pause | resume | stop | next | prev
  seek <seconds>       volume <0-100>
  shuffle on|off       repeat off|all|one
  queue <id>...        now
  help                 quit
`

func runConsole(ctx context.Context, st store.Store) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "audplay> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("play"),
			readline.PcItem("pause"),
			readline.PcItem("resume"),
			readline.PcItem("stop"),
			readline.PcItem("next"),
			readline.PcItem("prev"),
			readline.PcItem("seek"),
			readline.PcItem("volume"),
			readline.PcItem("shuffle", readline.PcItem("on"), readline.PcItem("off")),
			readline.PcItem("repeat", readline.PcItem("off"), readline.PcItem("all"), readline.PcItem("one")),
			readline.PcItem("queue"),
			readline.PcItem("now"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		out, quit := consoleLine(ctx, st, line)
		if out != "" {
			_, _ = fmt.Fprint(rl.Stdout(), out)
		}
		if quit {
			return nil
		}
	}
}

// consoleLine runs one console line and returns what to print.
func consoleLine(ctx context.Context, st store.Store, line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return "", true
	case "help", "?":
		return consoleHelp, false
	case "now", "status":
		text, err := nowPlaying(ctx, st)
		if err != nil {
			return fmt.Sprintf("error: %v\n", err), false
		}
		return text, false
	case "queue":
		if err := sendQueue(ctx, st, fields[1:], true); err != nil {
			return fmt.Sprintf("error: %v\n", err), false
		}
		return "", false
	}

	c, err := parseControl(fields)
	if err != nil {
		return fmt.Sprintf("error: %v\n", err), false
	}
	if _, err := sendCommand(ctx, st, c); err != nil {
		return fmt.Sprintf("error: %v\n", err), false
	}
	return "", false
}
