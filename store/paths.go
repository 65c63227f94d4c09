// SPDX-License-Identifier: EPL-2.0

package store

import "github.com/google/uuid"

// Record layout used by the engine.
const (
	Root = "/audplay"

	LibraryPrefix    = Root + "/library/"
	CommandsPrefix   = Root + "/playback/commands/"
	StatePath        = Root + "/playback/state"
	EQPath           = Root + "/playback/eq"
	QueueRequestPath = Root + "/queue/request"
	QueueCurrentPath = Root + "/queue/current"
	ClockConfigPath  = Root + "/clock/config"
	ClockTickPath    = Root + "/clock/tick"
	PulsesPrefix     = Root + "/clock/pulses/"
)

func LibraryPath(id string) string { return LibraryPrefix + id }
func PulsePath(name string) string { return PulsesPrefix + name }

// CommandPath returns a fresh command key. UUIDv7 keys sort in creation
// order, which is the order the engine applies commands in.
func CommandPath() string {
	return CommandsPrefix + uuid.Must(uuid.NewV7()).String()
}
