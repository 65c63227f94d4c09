// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"fmt"
	"strings"
)

type Repeat string

const (
	RepeatOff Repeat = "off"
	RepeatAll Repeat = "all"
	RepeatOne Repeat = "one"
)

// ParseRepeat accepts the mode names case-insensitively.
func ParseRepeat(s string) (Repeat, error) {
	switch r := Repeat(strings.ToLower(strings.TrimSpace(s))); r {
	case RepeatOff, RepeatAll, RepeatOne:
		return r, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidRepeat)
	}
}

func (r *Repeat) UnmarshalText(b []byte) error {
	v, err := ParseRepeat(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type Direction int

const (
	Forward Direction = iota
	Backward
)
