// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ik5/audplay/audio"
)

// Media is a playable library entry.
type Media struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// Library resolves media ids. Unknown ids are reported with ErrUnknownMedia.
type Library interface {
	Resolve(ctx context.Context, id string) (Media, error)
}

// SessionOpener opens a primed decode session for m.
type SessionOpener interface {
	Open(ctx context.Context, m Media) (*Session, error)
}

// FileOpener opens media from the local file system, picking a decoder by
// file extension.
type FileOpener struct {
	Registry *audio.Registry
	Rate     int
	Channels int
}

func (o FileOpener) Open(ctx context.Context, m Media) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec, ok := o.Registry.Lookup(m.Path)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", audio.ErrUnsupportedFormat, ErrNoDecoder, m.Path)
	}

	f, err := os.Open(m.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrIO, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, classified(err)
	}

	s, err := NewSession(m, src, f, o.Rate, o.Channels)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// classified makes sure err carries one of the audio failure classes.
func classified(err error) error {
	class := audio.Classify(err)
	if class == nil || errors.Is(err, class) {
		return err
	}
	return fmt.Errorf("%w: %w", class, err)
}
