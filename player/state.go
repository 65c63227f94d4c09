// SPDX-License-Identifier: EPL-2.0

package player

import "github.com/ik5/audplay/queue"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
	StatusError   Status = "error"
)

const DefaultVolume = 0.8

// State is the published playback state.
type State struct {
	Status     Status       `json:"status"`
	CurrentID  string       `json:"current_id,omitempty"`
	Title      string       `json:"title,omitempty"`
	Artist     string       `json:"artist,omitempty"`
	Album      string       `json:"album,omitempty"`
	Playing    bool         `json:"playing"`
	PositionMs int64        `json:"position_ms"`
	DurationMs int64        `json:"duration_ms"`
	Volume     float64      `json:"volume"`
	Shuffle    bool         `json:"shuffle"`
	Repeat     queue.Repeat `json:"repeat"`
	Error      string       `json:"error,omitempty"`
}

func DefaultState() State {
	return State{Status: StatusIdle, Volume: DefaultVolume, Repeat: queue.RepeatOff}
}

func (s *State) setMedia(m Media, durationMs int64) {
	s.CurrentID = m.ID
	s.Title = m.Title
	s.Artist = m.Artist
	s.Album = m.Album
	s.DurationMs = durationMs
	s.PositionMs = 0
}

func (s *State) clearMedia() {
	s.setMedia(Media{}, 0)
}
