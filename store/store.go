// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// Record is one versioned document.
type Record struct {
	Path      string          `json:"path"`
	Version   uint64          `json:"version"`
	Deleted   bool            `json:"deleted,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("store: %s has no data", r.Path)
	}
	return json.Unmarshal(r.Data, v)
}

// Event reports a change under a watched prefix. Delivery is best effort;
// watchers that fall behind lose events and must re-List.
type Event struct {
	Path    string
	Version uint64
	Deleted bool
}

// Store is the contract the engine needs from persistent storage.
//
// Get and Delete report ErrNotFound for absent or already deleted records.
// List returns live records whose path starts with prefix, sorted by path.
// The channel returned by Watch is closed when ctx is done.
type Store interface {
	Get(ctx context.Context, path string) (Record, error)
	Put(ctx context.Context, path string, data any) (Record, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]Record, error)
	Watch(ctx context.Context, prefix string) (<-chan Event, error)
}

const watchBuffer = 64

func checkPath(p string) error {
	if !strings.HasPrefix(p, "/") || p == "/" || path.Clean(p) != p {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for seg := range strings.SplitSeq(p[1:], "/") {
		if strings.HasPrefix(seg, ".") {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return nil
}

func checkPrefix(prefix string) error {
	if !strings.HasPrefix(prefix, "/") || strings.Contains(prefix, "..") {
		return fmt.Errorf("%w: prefix %q", ErrInvalidPath, prefix)
	}
	return nil
}

func encode(data any) (json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return raw, nil
}
