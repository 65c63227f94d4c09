// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func seeded(seed uint64) *Queue {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestParseRepeat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Repeat
		wantErr bool
	}{
		{"off", RepeatOff, false},
		{"ALL", RepeatAll, false},
		{" one ", RepeatOne, false},
		{"shuffle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRepeat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepeat(%q) error = %v", tt.in, err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidRepeat) {
				t.Errorf("error = %v, want ErrInvalidRepeat", err)
			}
			if got != tt.want {
				t.Errorf("ParseRepeat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQueue_EmptyQueue(t *testing.T) {
	t.Parallel()

	q := seeded(1)
	if _, ok := q.Current(); ok {
		t.Error("Current() on empty queue returned ok")
	}
	if _, ok := q.Advance(Forward, RepeatAll); ok {
		t.Error("Advance() on empty queue returned ok")
	}

	q.SetShuffle(true)
	s := q.Snapshot()
	if len(s.Items) != 0 || len(s.ShuffleOrder) != 0 || s.Index != 0 {
		t.Errorf("Snapshot() = %+v", s)
	}
}

func TestQueue_AdvanceSequential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		start  int
		dir    Direction
		repeat Repeat
		want   string
		wantOK bool
	}{
		{"forward middle", 1, Forward, RepeatOff, "C", true},
		{"forward end off", 2, Forward, RepeatOff, "", false},
		{"forward end all", 2, Forward, RepeatAll, "A", true},
		{"forward end one", 2, Forward, RepeatOne, "A", true},
		{"backward middle", 1, Backward, RepeatOff, "A", true},
		{"backward start off", 0, Backward, RepeatOff, "A", true},
		{"backward start all", 0, Backward, RepeatAll, "C", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := seeded(1)
			q.SetItems([]string{"A", "B", "C"})
			q.index = tt.start

			got, ok := q.Advance(tt.dir, tt.repeat)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("Advance() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
			if !ok && q.Index() != tt.start {
				t.Errorf("failed Advance moved index to %d", q.Index())
			}
		})
	}
}

func TestQueue_ShuffleOnKeepsCurrentFirst(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d", "e", "f", "g"}

	for seed := range uint64(50) {
		q := seeded(seed)
		q.SetItems(items)
		q.JumpTo("d")

		q.SetShuffle(true)

		s := q.Snapshot()
		if !isPermutation(s.ShuffleOrder, len(items)) {
			t.Fatalf("seed %d: order %v is not a permutation", seed, s.ShuffleOrder)
		}
		if s.Index != 0 || s.ShuffleOrder[0] != 3 {
			t.Fatalf("seed %d: index=%d order=%v, want current first", seed, s.Index, s.ShuffleOrder)
		}
		if cur, _ := q.Current(); cur != "d" {
			t.Fatalf("seed %d: Current() = %q after shuffle on, want d", seed, cur)
		}
	}
}

func TestQueue_ToggleShufflePreservesCurrent(t *testing.T) {
	t.Parallel()

	q := seeded(7)
	q.SetItems([]string{"a", "b", "c", "d", "e"})
	q.SetShuffle(true)

	for range 3 {
		q.Advance(Forward, RepeatAll)
	}
	before, _ := q.Current()

	q.SetShuffle(false)
	if cur, _ := q.Current(); cur != before {
		t.Fatalf("shuffle off: Current() = %q, want %q", cur, before)
	}
	if q.Snapshot().ShuffleOrder != nil {
		t.Error("shuffle off still publishes an order")
	}

	q.SetShuffle(true)
	if cur, _ := q.Current(); cur != before {
		t.Fatalf("shuffle on again: Current() = %q, want %q", cur, before)
	}
}

func TestQueue_ShuffleVisitsEveryItemOnce(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d", "e", "f"}
	q := seeded(3)
	q.SetItems(items)
	q.SetShuffle(true)

	first, _ := q.Current()
	seen := []string{first}
	for {
		id, ok := q.Advance(Forward, RepeatOff)
		if !ok {
			break
		}
		seen = append(seen, id)
	}

	slices.Sort(seen)
	if !slices.Equal(seen, items) {
		t.Errorf("visited %v, want each of %v once", seen, items)
	}
}

func TestQueue_RepeatAllWrapReshuffles(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	q := seeded(11)
	q.SetItems(items)
	q.SetShuffle(true)

	reshuffled := false
	for lap := range 5 {
		prev := slices.Clone(q.Snapshot().ShuffleOrder)
		for range len(items) - 1 {
			q.Advance(Forward, RepeatAll)
		}

		peek, ok := q.Peek(Forward, RepeatAll)
		if !ok {
			t.Fatalf("lap %d: Peek() failed at wrap", lap)
		}
		got, _ := q.Advance(Forward, RepeatAll)
		if got != peek {
			t.Fatalf("lap %d: Advance() = %q, Peek() said %q", lap, got, peek)
		}

		s := q.Snapshot()
		if s.Index != 0 {
			t.Fatalf("lap %d: index after wrap = %d, want 0", lap, s.Index)
		}
		if !isPermutation(s.ShuffleOrder, len(items)) {
			t.Fatalf("lap %d: order %v is not a permutation", lap, s.ShuffleOrder)
		}
		if !slices.Equal(prev, s.ShuffleOrder) {
			reshuffled = true
		}
	}

	if !reshuffled {
		t.Error("wrapping under repeat=all never drew a new permutation")
	}
}

func TestQueue_BackwardWrapReshuffles(t *testing.T) {
	t.Parallel()

	q := seeded(5)
	q.SetItems([]string{"a", "b", "c", "d"})
	q.SetShuffle(true)

	peek, _ := q.Peek(Backward, RepeatAll)
	got, ok := q.Advance(Backward, RepeatAll)
	if !ok || got != peek {
		t.Fatalf("Advance(Backward) = %q, %v; Peek said %q", got, ok, peek)
	}
	if q.Index() != 3 {
		t.Errorf("index = %d, want 3", q.Index())
	}
}

func TestQueue_SetItemsResets(t *testing.T) {
	t.Parallel()

	q := seeded(2)
	q.SetItems([]string{"a", "b"})
	q.Advance(Forward, RepeatOff)

	q.SetItems([]string{"x", "y", "z"})
	if q.Index() != 0 {
		t.Errorf("index = %d, want 0", q.Index())
	}
	if cur, _ := q.Current(); cur != "x" {
		t.Errorf("Current() = %q, want x", cur)
	}

	q.SetShuffle(true)
	q.SetItems([]string{"1", "2", "3", "4"})
	if !isPermutation(q.Snapshot().ShuffleOrder, 4) {
		t.Errorf("order %v not regenerated", q.Snapshot().ShuffleOrder)
	}
}

func TestQueue_JumpTo(t *testing.T) {
	t.Parallel()

	q := seeded(9)
	q.SetItems([]string{"a", "b", "c"})

	if !q.JumpTo("c") || q.Index() != 2 {
		t.Fatalf("JumpTo(c) index = %d", q.Index())
	}
	if q.JumpTo("zz") {
		t.Error("JumpTo() of unknown id returned true")
	}

	q.SetShuffle(true)
	if !q.JumpTo("b") {
		t.Fatal("JumpTo(b) under shuffle failed")
	}
	if cur, _ := q.Current(); cur != "b" {
		t.Errorf("Current() = %q, want b", cur)
	}
}

func TestQueue_Restore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        Snapshot
		wantIndex int
	}{
		{"valid", Snapshot{Items: []string{"a", "b"}, Index: 1}, 1},
		{"index out of range", Snapshot{Items: []string{"a"}, Index: 5}, 0},
		{"broken order", Snapshot{Items: []string{"a", "b", "c"}, Shuffle: true, ShuffleOrder: []int{0, 0, 1}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := seeded(1)
			q.Restore(tt.in)
			s := q.Snapshot()
			if s.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", s.Index, tt.wantIndex)
			}
			if s.Shuffle && !isPermutation(s.ShuffleOrder, len(s.Items)) {
				t.Errorf("order %v is not a permutation", s.ShuffleOrder)
			}
		})
	}
}
