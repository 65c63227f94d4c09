// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindEQ   Kind = "eq"
	KindGain Kind = "gain"
)

// Defaults for EQ fields missing from a filter spec.
const (
	DefaultFreqHz = 1000.0
	DefaultQ      = 0.707
)

// FilterSpec is one entry of a Config. Which fields apply depends on Type.
type FilterSpec struct {
	Type   Kind    `json:"type"`
	FreqHz float64 `json:"freq_hz,omitempty"`
	GainDB float64 `json:"gain_db,omitempty"`
	Q      float64 `json:"q,omitempty"`
	DB     float64 `json:"db,omitempty"`
}

func EQ(freqHz, gainDB, q float64) FilterSpec {
	return FilterSpec{Type: KindEQ, FreqHz: freqHz, GainDB: gainDB, Q: q}
}

func Gain(db float64) FilterSpec {
	return FilterSpec{Type: KindGain, DB: db}
}

func (f *FilterSpec) UnmarshalJSON(b []byte) error {
	type plain FilterSpec

	p := plain{FreqHz: DefaultFreqHz, Q: DefaultQ}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	*f = FilterSpec(p)
	return nil
}

// Config is the persisted chain description. Version grows on every edit;
// the engine rebuilds only when it changes.
type Config struct {
	Version uint64       `json:"version"`
	Filters []FilterSpec `json:"filters"`
}

// ParseConfig decodes a Config from JSON.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}
