// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const recordExt = ".json"

// Dir keeps one JSON file per record below root. Writes go to a temp file
// in the same directory followed by a rename, so readers never observe a
// partial record.
type Dir struct {
	root string
	mu   sync.Mutex
	now  func() time.Time
}

// OpenDir creates root if needed.
func OpenDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: open %s: %w", root, err)
	}
	return &Dir{root: root, now: time.Now}, nil
}

func (d *Dir) Root() string { return d.root }

func (d *Dir) file(p string) string {
	return filepath.Join(d.root, filepath.FromSlash(p)) + recordExt
}

// recordPath maps a file below root back to its record path.
func (d *Dir) recordPath(file string) (string, bool) {
	rel, err := filepath.Rel(d.root, file)
	if err != nil || !strings.HasSuffix(rel, recordExt) || strings.HasPrefix(filepath.Base(rel), ".") {
		return "", false
	}
	return "/" + filepath.ToSlash(strings.TrimSuffix(rel, recordExt)), true
}

func (d *Dir) read(p string) (Record, error) {
	raw, err := os.ReadFile(d.file(p))
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: read %s: %w", p, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("store: decode %s: %w", p, err)
	}
	rec.Path = p
	return rec, nil
}

func (d *Dir) write(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", rec.Path, err)
	}

	target := d.file(rec.Path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: write %s: %w", rec.Path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", rec.Path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", rec.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: write %s: %w", rec.Path, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store: write %s: %w", rec.Path, err)
	}
	return nil
}

func (d *Dir) Get(_ context.Context, p string) (Record, error) {
	if err := checkPath(p); err != nil {
		return Record{}, err
	}

	rec, err := d.read(p)
	if err != nil {
		return Record{}, err
	}
	if rec.Deleted {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (d *Dir) Put(_ context.Context, p string, data any) (Record, error) {
	if err := checkPath(p); err != nil {
		return Record{}, err
	}
	raw, err := encode(data)
	if err != nil {
		return Record{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, err := d.read(p)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	rec := Record{Path: p, Version: prev.Version + 1, UpdatedAt: d.now().UTC(), Data: raw}
	if err := d.write(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (d *Dir) Delete(_ context.Context, p string) error {
	if err := checkPath(p); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.read(p)
	if err != nil {
		return err
	}
	if rec.Deleted {
		return ErrNotFound
	}

	rec.Version++
	rec.Deleted = true
	rec.UpdatedAt = d.now().UTC()
	return d.write(rec)
}

// List walks the directory that contains prefix and filters by path.
func (d *Dir) List(_ context.Context, prefix string) ([]Record, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}

	base := d.prefixDir(prefix)
	var out []Record

	err := filepath.WalkDir(base, func(file string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}

		p, ok := d.recordPath(file)
		if !ok || !strings.HasPrefix(p, prefix) {
			return nil
		}

		rec, err := d.read(p)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !rec.Deleted {
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", prefix, err)
	}

	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func (d *Dir) prefixDir(prefix string) string {
	dir := prefix
	if !strings.HasSuffix(dir, "/") {
		dir = dir[:strings.LastIndex(dir, "/")+1]
	}
	return filepath.Join(d.root, filepath.FromSlash(dir))
}

// Watch follows every directory below the prefix directory, including
// ones created later.
func (d *Dir) Watch(ctx context.Context, prefix string) (<-chan Event, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}

	base := d.prefixDir(prefix)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("store: watch %s: %w", prefix, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: failed to create fsnotify watcher: %w", err)
	}
	if err := addTree(fsw, base); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("store: watch %s: %w", prefix, err)
	}

	out := make(chan Event, watchBuffer)
	go d.watchLoop(ctx, fsw, prefix, out)
	return out, nil
}

func (d *Dir) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, prefix string, out chan<- Event) {
	defer close(out)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				_ = addTree(fsw, event.Name)
				continue
			}

			p, ok := d.recordPath(event.Name)
			if !ok || !strings.HasPrefix(p, prefix) {
				continue
			}
			rec, err := d.read(p)
			if err != nil {
				continue
			}

			select {
			case out <- Event{Path: p, Version: rec.Version, Deleted: rec.Deleted}:
			default:
			}
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
}
