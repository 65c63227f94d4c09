// SPDX-License-Identifier: EPL-2.0

// Package clock implements a partitioned musical clock.
//
// Partitions form a mixed-radix odometer: the first partition is the
// fastest, and every wrap of a partition carries one step into the next.
// When the carry falls off the last partition the clock has completed a
// full cycle, the snapshot is marked overflowed and the epoch grows by one.
//
// Pulses are independent of partitions. A pulse with interval every fires
// on every tick t where t%every == 0, including tick 0.
//
//	c := clock.New(clock.DefaultConfig())
//	snap := c.Advance()
//	for _, ev := range snap.Events() {
//	    fmt.Println(ev.Name, ev.Tick)
//	}
package clock
