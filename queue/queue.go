// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"math/rand/v2"
	"slices"
)

// Snapshot is the published form of a queue.
type Snapshot struct {
	Items        []string `json:"items"`
	Index        int      `json:"index"`
	Shuffle      bool     `json:"shuffle"`
	ShuffleOrder []int    `json:"shuffle_order,omitempty"`
}

// Queue is owned by the control loop and is not safe for concurrent use.
type Queue struct {
	items   []string
	index   int
	shuffle bool
	order   []int

	// nextOrder is the permutation the next RepeatAll wrap will use, drawn
	// early so Peek can report what a wrap will play.
	nextOrder []int

	rng *rand.Rand
}

// New returns an empty queue. A nil rng draws from a randomly seeded PCG.
func New(rng *rand.Rand) *Queue {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Queue{rng: rng}
}

func (q *Queue) Len() int        { return len(q.items) }
func (q *Queue) Shuffle() bool   { return q.shuffle }
func (q *Queue) Index() int      { return q.index }
func (q *Queue) Items() []string { return slices.Clone(q.items) }

// SetItems replaces the sequence and rewinds to the first logical position.
func (q *Queue) SetItems(items []string) {
	q.items = slices.Clone(items)
	q.index = 0
	q.nextOrder = nil
	q.order = nil
	if q.shuffle {
		q.order = q.permutation()
	}
}

// Current returns the id at the logical index.
func (q *Queue) Current() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[q.position(q.index)], true
}

// SetShuffle toggles shuffling. Turning it on puts the current item first in
// a new permutation; turning it off resumes sequential order from the
// current item.
func (q *Queue) SetShuffle(on bool) {
	if on == q.shuffle {
		return
	}

	q.nextOrder = nil

	if !on {
		if len(q.order) > 0 {
			q.index = q.order[q.index]
		}
		q.order = nil
		q.shuffle = false
		return
	}

	q.shuffle = true
	if len(q.items) == 0 {
		q.order = []int{}
		q.index = 0
		return
	}

	current := q.index
	rest := make([]int, 0, len(q.items)-1)
	for i := range q.items {
		if i != current {
			rest = append(rest, i)
		}
	}
	q.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	q.order = append([]int{current}, rest...)
	q.index = 0
}

// JumpTo moves the logical index to the first occurrence of id.
func (q *Queue) JumpTo(id string) bool {
	pos := slices.Index(q.items, id)
	if pos < 0 {
		return false
	}

	if q.shuffle {
		q.index = slices.Index(q.order, pos)
	} else {
		q.index = pos
	}

	return true
}

// Peek reports the id Advance would move to without moving.
func (q *Queue) Peek(dir Direction, repeat Repeat) (string, bool) {
	next, wrapped, ok := q.step(dir, repeat)
	if !ok {
		return "", false
	}

	if wrapped && q.shuffle {
		return q.items[q.upcomingOrder()[next]], true
	}

	return q.items[q.position(next)], true
}

// Advance moves one step in dir. RepeatOne behaves like RepeatAll here;
// replaying the same item on natural track end is the caller's decision.
//
// Under RepeatOff, moving forward past the last item fails and leaves the
// queue unchanged, while moving backward from the first item stays put.
func (q *Queue) Advance(dir Direction, repeat Repeat) (string, bool) {
	next, wrapped, ok := q.step(dir, repeat)
	if !ok {
		return "", false
	}

	if wrapped && q.shuffle {
		q.order = q.upcomingOrder()
		q.nextOrder = nil
	}

	q.index = next

	return q.items[q.position(q.index)], true
}

// Snapshot copies the queue for publication.
func (q *Queue) Snapshot() Snapshot {
	s := Snapshot{
		Items:   slices.Clone(q.items),
		Index:   q.index,
		Shuffle: q.shuffle,
	}
	if s.Items == nil {
		s.Items = []string{}
	}
	if q.shuffle {
		s.ShuffleOrder = slices.Clone(q.order)
	}
	return s
}

// Restore replaces the queue with a previously published snapshot. Invalid
// snapshots are normalised rather than rejected.
func (q *Queue) Restore(s Snapshot) {
	q.items = slices.Clone(s.Items)
	q.shuffle = s.Shuffle
	q.nextOrder = nil
	q.order = nil
	q.index = 0

	if q.shuffle {
		if isPermutation(s.ShuffleOrder, len(q.items)) {
			q.order = slices.Clone(s.ShuffleOrder)
		} else {
			q.order = q.permutation()
		}
	}

	if s.Index >= 0 && s.Index < len(q.items) {
		q.index = s.Index
	}
}

func (q *Queue) step(dir Direction, repeat Repeat) (next int, wrapped, ok bool) {
	n := len(q.items)
	if n == 0 {
		return 0, false, false
	}

	switch dir {
	case Backward:
		if q.index > 0 {
			return q.index - 1, false, true
		}
		if repeat == RepeatOff {
			return 0, false, true
		}
		return n - 1, true, true
	default:
		if q.index < n-1 {
			return q.index + 1, false, true
		}
		if repeat == RepeatOff {
			return 0, false, false
		}
		return 0, true, true
	}
}

func (q *Queue) position(logical int) int {
	if q.shuffle && logical < len(q.order) {
		return q.order[logical]
	}
	return logical
}

func (q *Queue) upcomingOrder() []int {
	if q.nextOrder == nil {
		q.nextOrder = q.permutation()
	}
	return q.nextOrder
}

func (q *Queue) permutation() []int {
	return q.rng.Perm(len(q.items))
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
