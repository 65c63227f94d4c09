// SPDX-License-Identifier: EPL-2.0

package player

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ik5/audplay/queue"
)

// Command is one of the controller's transport or setting commands. The
// set is closed: Play, Pause, Resume, Stop, Seek, Next, Previous,
// SetVolume, SetShuffle and SetRepeat.
type Command interface {
	Action() string
	command()
}

type (
	Play       struct{ ID string }
	Pause      struct{}
	Resume     struct{}
	Stop       struct{}
	Seek       struct{ PositionMs int64 }
	Next       struct{}
	Previous   struct{}
	SetVolume  struct{ Volume float64 }
	SetShuffle struct{ Enabled bool }
	SetRepeat  struct{ Mode queue.Repeat }
)

func (Play) Action() string       { return "play" }
func (Pause) Action() string      { return "pause" }
func (Resume) Action() string     { return "resume" }
func (Stop) Action() string       { return "stop" }
func (Seek) Action() string       { return "seek" }
func (Next) Action() string       { return "next" }
func (Previous) Action() string   { return "previous" }
func (SetVolume) Action() string  { return "setvolume" }
func (SetShuffle) Action() string { return "setshuffle" }
func (SetRepeat) Action() string  { return "setrepeat" }

func (Play) command()       {}
func (Pause) command()      {}
func (Resume) command()     {}
func (Stop) command()       {}
func (Seek) command()       {}
func (Next) command()       {}
func (Previous) command()   {}
func (SetVolume) command()  {}
func (SetShuffle) command() {}
func (SetRepeat) command()  {}

// envelope is the stored form: {"action":"seek","position_ms":1500}.
type envelope struct {
	Action     string   `json:"action"`
	ID         string   `json:"id,omitempty"`
	PositionMs *int64   `json:"position_ms,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"`
	Mode       string   `json:"mode,omitempty"`
}

// MarshalCommand encodes c in its stored form.
func MarshalCommand(c Command) ([]byte, error) {
	env := envelope{Action: c.Action()}

	switch c := c.(type) {
	case Play:
		env.ID = c.ID
	case Seek:
		env.PositionMs = &c.PositionMs
	case SetVolume:
		env.Volume = &c.Volume
	case SetShuffle:
		env.Enabled = &c.Enabled
	case SetRepeat:
		env.Mode = string(c.Mode)
	}

	return json.Marshal(env)
}

// ParseCommand decodes a stored command. Actions are matched case
// insensitively; "prev" is accepted for previous.
func ParseCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	switch strings.ToLower(env.Action) {
	case "play":
		if env.ID == "" {
			return nil, fmt.Errorf("%w: play needs an id", ErrInvalidCommand)
		}
		return Play{ID: env.ID}, nil
	case "pause":
		return Pause{}, nil
	case "resume":
		return Resume{}, nil
	case "stop":
		return Stop{}, nil
	case "next":
		return Next{}, nil
	case "previous", "prev":
		return Previous{}, nil
	case "seek":
		if env.PositionMs == nil {
			return nil, fmt.Errorf("%w: seek needs position_ms", ErrInvalidCommand)
		}
		return Seek{PositionMs: *env.PositionMs}, nil
	case "setvolume":
		if env.Volume == nil {
			return nil, fmt.Errorf("%w: setvolume needs volume", ErrInvalidCommand)
		}
		return SetVolume{Volume: *env.Volume}, nil
	case "setshuffle":
		if env.Enabled == nil {
			return nil, fmt.Errorf("%w: setshuffle needs enabled", ErrInvalidCommand)
		}
		return SetShuffle{Enabled: *env.Enabled}, nil
	case "setrepeat":
		mode, err := queue.ParseRepeat(env.Mode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		return SetRepeat{Mode: mode}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, env.Action)
	}
}
