// SPDX-License-Identifier: EPL-2.0

package clock

// Partition is the observable state of one odometer digit.
type Partition struct {
	Name    string `json:"name"`
	Value   uint64 `json:"value"`
	Modulus uint64 `json:"modulus"`
}

// Snapshot is the clock state after a tick.
type Snapshot struct {
	Tick       uint64      `json:"tick"`
	Epoch      uint64      `json:"epoch"`
	Partitions []Partition `json:"partitions"`
	Pulses     []string    `json:"pulses"`
	Overflowed bool        `json:"overflowed"`
}

// PulseEvent is the record published for every pulse that fired.
type PulseEvent struct {
	Name  string `json:"name"`
	Tick  uint64 `json:"tick"`
	Epoch uint64 `json:"epoch"`
}

// Events expands the fired pulse names of s into records.
func (s Snapshot) Events() []PulseEvent {
	events := make([]PulseEvent, 0, len(s.Pulses))
	for _, name := range s.Pulses {
		events = append(events, PulseEvent{Name: name, Tick: s.Tick, Epoch: s.Epoch})
	}
	return events
}

// Clock is not safe for concurrent use; the control loop owns it.
type Clock struct {
	cfg        Config
	tick       uint64
	epoch      uint64
	values     []uint64
	overflowed bool
}

// New returns a clock at tick 0. The boolean is true when cfg was invalid
// and DefaultConfig was used instead.
func New(cfg Config) (*Clock, bool) {
	c := &Clock{}
	substituted := c.Configure(cfg)
	return c, substituted
}

// Configure installs cfg, or DefaultConfig when cfg is invalid, and resets
// the clock to tick 0. It reports whether the default was substituted.
func (c *Clock) Configure(cfg Config) bool {
	substituted := cfg.Validate() != nil
	if substituted {
		cfg = DefaultConfig()
	}

	c.cfg = cfg.clone()
	c.tick = 0
	c.epoch = 0
	c.overflowed = false
	c.values = make([]uint64, len(c.cfg.Partitions))

	return substituted
}

// Config returns a copy of the active configuration.
func (c *Clock) Config() Config { return c.cfg.clone() }

// Advance moves the clock forward by one tick and returns the new snapshot.
func (c *Clock) Advance() Snapshot {
	c.tick++
	c.overflowed = false

	carry := len(c.values) > 0
	for i := range c.values {
		c.values[i]++
		if c.values[i] < uint64(c.cfg.Partitions[i].Modulus) {
			carry = false
			break
		}
		c.values[i] = 0
	}

	if carry {
		c.overflowed = true
		c.epoch++
	}

	return c.Snapshot()
}

// Snapshot describes the current tick without advancing.
func (c *Clock) Snapshot() Snapshot {
	s := Snapshot{
		Tick:       c.tick,
		Epoch:      c.epoch,
		Partitions: make([]Partition, len(c.values)),
		Pulses:     []string{},
		Overflowed: c.overflowed,
	}

	for i, v := range c.values {
		s.Partitions[i] = Partition{
			Name:    c.cfg.Partitions[i].Name,
			Value:   v,
			Modulus: uint64(c.cfg.Partitions[i].Modulus),
		}
	}

	for _, p := range c.cfg.Pulses {
		if c.tick%uint64(p.Every) == 0 {
			s.Pulses = append(s.Pulses, p.Name)
		}
	}

	return s
}
