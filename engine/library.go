// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/store"
)

// StoreLibrary resolves media ids from the library records of a store.
type StoreLibrary struct {
	Store store.Store
}

func (l StoreLibrary) Resolve(ctx context.Context, id string) (player.Media, error) {
	rec, err := l.Store.Get(ctx, store.LibraryPath(id))
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
		return player.Media{}, fmt.Errorf("%w: %s", player.ErrUnknownMedia, id)
	}
	if err != nil {
		return player.Media{}, err
	}

	var m player.Media
	if err := rec.Decode(&m); err != nil {
		return player.Media{}, fmt.Errorf("%w: %s: %w", player.ErrUnknownMedia, id, err)
	}
	if m.Path == "" {
		return player.Media{}, fmt.Errorf("%w: %s has no path", player.ErrUnknownMedia, id)
	}

	m.ID = id
	return m, nil
}
