// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

type watcher struct {
	prefix string
	ch     chan Event
}

// Memory is an in-process Store.
type Memory struct {
	mu       sync.Mutex
	records  map[string]Record
	watchers []*watcher
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record), now: time.Now}
}

func (m *Memory) Get(_ context.Context, p string) (Record, error) {
	if err := checkPath(p); err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[p]
	if !ok || rec.Deleted {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Put(_ context.Context, p string, data any) (Record, error) {
	if err := checkPath(p); err != nil {
		return Record{}, err
	}
	raw, err := encode(data)
	if err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{
		Path:      p,
		Version:   m.records[p].Version + 1,
		UpdatedAt: m.now().UTC(),
		Data:      raw,
	}
	m.records[p] = rec
	m.notify(rec)
	return rec, nil
}

func (m *Memory) Delete(_ context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[p]
	if !ok || rec.Deleted {
		return ErrNotFound
	}
	rec.Version++
	rec.Deleted = true
	rec.UpdatedAt = m.now().UTC()
	m.records[p] = rec
	m.notify(rec)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]Record, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for p, rec := range m.records {
		if !rec.Deleted && strings.HasPrefix(p, prefix) {
			out = append(out, rec)
		}
	}
	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func (m *Memory) Watch(ctx context.Context, prefix string) (<-chan Event, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}

	w := &watcher{prefix: prefix, ch: make(chan Event, watchBuffer)}

	m.mu.Lock()
	m.watchers = append(m.watchers, w)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		m.watchers = slices.DeleteFunc(m.watchers, func(x *watcher) bool { return x == w })
		m.mu.Unlock()
		close(w.ch)
	}()

	return w.ch, nil
}

// notify must be called with m.mu held.
func (m *Memory) notify(rec Record) {
	ev := Event{Path: rec.Path, Version: rec.Version, Deleted: rec.Deleted}
	for _, w := range m.watchers {
		if !strings.HasPrefix(rec.Path, w.prefix) {
			continue
		}
		select {
		case w.ch <- ev:
		default:
		}
	}
}
