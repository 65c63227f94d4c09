// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "audplay"

// metrics implements player.Observer.
type metrics struct {
	commands *prometheus.CounterVec
	failures *prometheus.CounterVec
	rebuilds prometheus.Counter
	ticks    prometheus.Counter
	gapless  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, underruns func() uint64) (*metrics, error) {
	m := &metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands consumed from the store, by action.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_failures_total",
			Help:      "Tracks that failed to open or decode, by failure class.",
		}, []string{"kind"}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dsp_rebuilds_total",
			Help:      "DSP chain rebuilds after a config version change.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_ticks_total",
			Help:      "Clock ticks published.",
		}),
		gapless: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gapless_transitions_total",
			Help:      "Track changes spliced from a pre-probed session.",
		}),
	}

	underrunsFunc := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "buffer_underruns_total",
		Help:      "Output buffers that found the sample buffer short while playing.",
	}, func() float64 { return float64(underruns()) })

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.commands, m.failures, m.rebuilds, m.ticks, m.gapless, underrunsFunc} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) TrackFailed(kind string) { m.failures.WithLabelValues(kind).Inc() }
func (m *metrics) GaplessTransition()      { m.gapless.Inc() }
