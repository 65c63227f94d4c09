// SPDX-License-Identifier: EPL-2.0

// Command audplay runs the playback engine and talks to a running engine
// through its store.
package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "audplay",
		Short:   "Real-time audio playback engine",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			RunCmd(),
			controlCmd("play", "Play a library item by id"),
			controlCmd("pause", "Pause playback"),
			controlCmd("resume", "Resume playback"),
			controlCmd("stop", "Stop playback"),
			controlCmd("next", "Skip to the next item"),
			controlCmd("prev", "Go back to the previous item, or restart the current one"),
			controlCmd("seek", "Seek to a position in seconds"),
			controlCmd("volume", "Set the volume, 0-100"),
			controlCmd("shuffle", "Turn shuffle on or off"),
			controlCmd("repeat", "Set repeat to off, all or one"),
			QueueCmd(),
			NowCmd(),
			AddCmd(),
			EQCmd(),
			ClockCmd(),
			RenderCmd(),
			ConsoleCmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-(no build info)"
	}

	if bi.Main.Version == "" {
		return "unknown-(no version)"
	}
	return bi.Main.Version
}
