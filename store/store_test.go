// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func implementations(t *testing.T) map[string]Store {
	t.Helper()

	dir, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{"memory": NewMemory(), "dir": dir}
}

func TestStore_PutGetVersions(t *testing.T) {
	t.Parallel()

	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			if _, err := s.Get(ctx, StatePath); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
			}

			for want := uint64(1); want <= 3; want++ {
				rec, err := s.Put(ctx, StatePath, payload{Name: "a", Count: int(want)})
				if err != nil {
					t.Fatal(err)
				}
				if rec.Version != want {
					t.Errorf("Put() version = %d, want %d", rec.Version, want)
				}
			}

			rec, err := s.Get(ctx, StatePath)
			if err != nil {
				t.Fatal(err)
			}

			var got payload
			if err := rec.Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got != (payload{Name: "a", Count: 3}) || rec.Version != 3 || rec.Path != StatePath {
				t.Errorf("Get() = %+v (%+v)", rec, got)
			}
		})
	}
}

func TestStore_SoftDelete(t *testing.T) {
	t.Parallel()

	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			p := CommandsPrefix + "0001"

			if err := s.Delete(ctx, p); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete() of absent record error = %v", err)
			}

			_, _ = s.Put(ctx, p, map[string]string{"action": "pause"})
			if err := s.Delete(ctx, p); err != nil {
				t.Fatalf("first Delete() error = %v", err)
			}
			if err := s.Delete(ctx, p); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete() error = %v, want ErrNotFound", err)
			}
			if _, err := s.Get(ctx, p); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v", err)
			}

			// Versions keep counting across a delete.
			rec, _ := s.Put(ctx, p, map[string]string{"action": "resume"})
			if rec.Version != 3 {
				t.Errorf("Put() after delete version = %d, want 3", rec.Version)
			}
		})
	}
}

func TestStore_ListSortedLiveOnly(t *testing.T) {
	t.Parallel()

	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			for _, k := range []string{"c", "a", "b"} {
				_, _ = s.Put(ctx, CommandsPrefix+k, k)
			}
			_, _ = s.Put(ctx, StatePath, "not a command")
			_ = s.Delete(ctx, CommandsPrefix+"b")

			recs, err := s.List(ctx, CommandsPrefix)
			if err != nil {
				t.Fatal(err)
			}

			var paths []string
			for _, r := range recs {
				paths = append(paths, strings.TrimPrefix(r.Path, CommandsPrefix))
			}
			if strings.Join(paths, ",") != "a,c" {
				t.Errorf("List() = %v, want [a c]", paths)
			}

			empty, err := s.List(ctx, LibraryPrefix)
			if err != nil || len(empty) != 0 {
				t.Errorf("List() of empty prefix = %v, %v", empty, err)
			}
		})
	}
}

func TestStore_InvalidPaths(t *testing.T) {
	t.Parallel()

	bad := []string{"", "relative", "/", "/a/../b", "/a//b", "/a/.hidden", "/trailing/"}

	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, p := range bad {
				if _, err := s.Put(context.Background(), p, 1); !errors.Is(err, ErrInvalidPath) {
					t.Errorf("Put(%q) error = %v, want ErrInvalidPath", p, err)
				}
			}
		})
	}
}

func TestStore_Watch(t *testing.T) {
	t.Parallel()

	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			events, err := s.Watch(ctx, CommandsPrefix)
			if err != nil {
				t.Fatal(err)
			}

			_, _ = s.Put(ctx, StatePath, "ignored")
			p := CommandPath()
			_, _ = s.Put(ctx, p, "stop")

			select {
			case ev := <-events:
				if ev.Path != p || ev.Deleted {
					t.Errorf("event = %+v, want put of %s", ev, p)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("no watch event")
			}

			cancel()
			for range events {
			}
		})
	}
}

func TestCommandPath_Ordered(t *testing.T) {
	t.Parallel()

	prev := CommandPath()
	for range 100 {
		next := CommandPath()
		if next <= prev {
			t.Fatalf("CommandPath() not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}
