// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"fmt"
	"slices"
)

type PartitionSpec struct {
	Name    string `json:"name"`
	Modulus int64  `json:"modulus"`
}

type PulseSpec struct {
	Name  string `json:"name"`
	Every int64  `json:"every"`
}

// Config describes the partitions (fastest first) and pulses of a clock.
type Config struct {
	Partitions []PartitionSpec `json:"partitions"`
	Pulses     []PulseSpec     `json:"pulses"`
}

// DefaultConfig is substituted whenever a configuration fails validation:
// sub, beat and bar partitions of modulus 4, with beat, bar and phrase
// pulses every 4, 16 and 64 ticks.
func DefaultConfig() Config {
	return Config{
		Partitions: []PartitionSpec{
			{Name: "sub", Modulus: 4},
			{Name: "beat", Modulus: 4},
			{Name: "bar", Modulus: 4},
		},
		Pulses: []PulseSpec{
			{Name: "beat", Every: 4},
			{Name: "bar", Every: 16},
			{Name: "phrase", Every: 64},
		},
	}
}

// Validate reports the first partition or pulse with a non-positive
// interval.
func (c Config) Validate() error {
	for _, p := range c.Partitions {
		if p.Modulus <= 0 {
			return fmt.Errorf("partition %q modulus %d: %w", p.Name, p.Modulus, ErrInvalidModulus)
		}
	}
	for _, p := range c.Pulses {
		if p.Every <= 0 {
			return fmt.Errorf("pulse %q every %d: %w", p.Name, p.Every, ErrInvalidEvery)
		}
	}
	return nil
}

// Equal compares configs element by element.
func (c Config) Equal(o Config) bool {
	return slices.Equal(c.Partitions, o.Partitions) && slices.Equal(c.Pulses, o.Pulses)
}

func (c Config) clone() Config {
	return Config{
		Partitions: slices.Clone(c.Partitions),
		Pulses:     slices.Clone(c.Pulses),
	}
}
