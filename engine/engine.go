// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/clock"
	"github.com/ik5/audplay/device"
	"github.com/ik5/audplay/dsp"
	"github.com/ik5/audplay/internal/config"
	"github.com/ik5/audplay/player"
	"github.com/ik5/audplay/queue"
	"github.com/ik5/audplay/ringbuf"
	"github.com/ik5/audplay/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// QueueRequest replaces the queue. With Play set the first item starts
// playing right away.
type QueueRequest struct {
	Items []string `json:"items"`
	Play  bool     `json:"play,omitempty"`
}

type Options struct {
	Config config.Config
	Store  store.Store
	Logger zerolog.Logger

	// Registry picks decoders by file extension; nil registers every
	// built-in format.
	Registry *audio.Registry
	// Opener overrides file based session opening.
	Opener player.SessionOpener
	// Metrics receives the engine collectors. nil creates a private
	// registry, served on Config.MetricsAddr when that is set.
	Metrics *prometheus.Registry
	// Queue seeds shuffling; nil uses a random seed.
	Queue *queue.Queue
}

// Engine owns every piece of mutable playback state. Only the goroutine
// running Run (or the caller of Cycle) touches the controller, queue and
// clock.
type Engine struct {
	cfg     config.Config
	st      store.Store
	log     zerolog.Logger
	reg     *prometheus.Registry
	metrics *metrics

	pipe  *player.Pipeline
	out   *player.Output
	ctrl  *player.Controller
	clock *clock.Clock
	dev   device.Device

	eqSeen    uint64 // record version of the last EQ config read
	clockSeen uint64 // record version of the installed clock config
	lastPoll  time.Time

	mu        sync.Mutex // orders Run start against Shutdown
	running   sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

// New builds the pipeline and opens the audio device. A device that cannot
// be opened after the configured attempts fails with
// device.ErrDeviceUnavailable.
func New(ctx context.Context, opts Options) (*Engine, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Store == nil {
		return nil, errors.New("engine: nil store")
	}

	registry := opts.Registry
	if registry == nil {
		registry = audplay.NewRegistry()
	}
	opener := opts.Opener
	if opener == nil {
		opener = player.FileOpener{Registry: registry, Rate: cfg.Rate, Channels: cfg.Channels}
	}
	reg := opts.Metrics
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	ring := ringbuf.New(ringbuf.FramesForLatency(cfg.Rate, cfg.Latency()), cfg.Channels)
	out := player.NewOutput(ring)
	pipe := player.NewPipeline(ring, out, cfg.Rate)

	m, err := newMetrics(reg, out.Underruns)
	if err != nil {
		return nil, err
	}

	clk, _ := clock.New(clock.DefaultConfig())

	e := &Engine{
		cfg:     cfg,
		st:      opts.Store,
		log:     opts.Logger.With().Str("component", "engine").Logger(),
		reg:     reg,
		metrics: m,
		pipe:    pipe,
		out:     out,
		clock:   clk,
		closed:  make(chan struct{}),
	}

	e.ctrl = player.NewController(player.Options{
		Library:            StoreLibrary{Store: opts.Store},
		Opener:             opener,
		Pipeline:           pipe,
		Queue:              opts.Queue,
		Logger:             opts.Logger.With().Str("component", "player").Logger(),
		Observer:           m,
		MaxFailures:        cfg.MaxFailures,
		ProbeThresholdMs:   cfg.ProbeThresholdMs,
		RestartThresholdMs: cfg.RestartThresholdMs,
	})

	e.dev, err = device.Open(ctx, device.Options{
		Backend:  cfg.Backend,
		Format:   device.Format{Rate: cfg.Rate, Channels: cfg.Channels, Period: cfg.Period()},
		Attempts: cfg.DeviceAttempts,
		Backoff:  cfg.DeviceBackoff,
		Logger:   opts.Logger.With().Str("component", "device").Logger(),
	}, out)
	if err != nil {
		e.ctrl.Close()
		return nil, err
	}

	// Config records present at start are applied before the first cycle.
	e.pollConfig(ctx)

	return e, nil
}

// Output is the render end of the pipeline.
func (e *Engine) Output() *player.Output { return e.out }

// State is the playback state as of the last cycle.
func (e *Engine) State() player.State { return e.ctrl.State() }

func (e *Engine) Metrics() *prometheus.Registry { return e.reg }

// Run drives the control loop at the configured period until ctx is done or
// Shutdown is called. Store writes that fail are logged and retried on the
// next cycle; they never stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	select {
	case <-e.closed:
		e.mu.Unlock()
		return ErrClosed
	default:
	}
	e.running.Add(1)
	e.mu.Unlock()
	defer e.running.Done()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return e.loop(gctx) })

	if e.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              e.cfg.MetricsAddr,
			Handler:           e.metricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return gctx },
		}

		g.Go(func() error {
			e.log.Info().Str("addr", e.cfg.MetricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func (e *Engine) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{}))
	return mux
}

func (e *Engine) loop(ctx context.Context) error {
	// Command writes wake the loop early so commands do not wait out the
	// rest of the period. Only the ticker advances the clock.
	wake, err := e.st.Watch(ctx, store.CommandsPrefix)
	if err != nil {
		e.log.Warn().Err(err).Msg("command watch unavailable, polling only")
		wake = nil
	}

	ticker := time.NewTicker(e.cfg.ControlPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.closed:
			return ErrClosed
		case ev, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
			if !ev.Deleted {
				e.consumeCommands(ctx)
				e.ctrl.Tick(ctx)
				e.publishState(ctx)
			}
		case <-ticker.C:
			e.Cycle(ctx)
		}
	}
}

// Cycle runs one control-loop iteration.
func (e *Engine) Cycle(ctx context.Context) {
	e.consumeQueueRequest(ctx)
	e.consumeCommands(ctx)
	e.ctrl.Tick(ctx)

	// A new clock config takes effect from its own first tick.
	poll := time.Since(e.lastPoll) >= e.cfg.PollInterval
	if poll {
		e.lastPoll = time.Now()
		e.pollClock(ctx)
	}
	e.advanceClock(ctx)
	if poll {
		e.pollEQ(ctx)
	}

	e.publishState(ctx)
}

// consumeCommands claims pending commands in key order by soft deleting
// them, then dispatches them. A command another consumer claimed first is
// skipped.
func (e *Engine) consumeCommands(ctx context.Context) {
	recs, err := e.st.List(ctx, store.CommandsPrefix)
	if err != nil {
		e.log.Error().Err(err).Msg("list commands")
		return
	}

	for _, rec := range recs {
		if err := e.st.Delete(ctx, rec.Path); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				e.log.Error().Err(err).Str("path", rec.Path).Msg("claim command")
			}
			continue
		}

		cmd, err := player.ParseCommand(rec.Data)
		if err != nil {
			e.metrics.commands.WithLabelValues("invalid").Inc()
			e.log.Warn().Err(err).Str("path", rec.Path).Msg("dropping command")
			continue
		}

		e.metrics.commands.WithLabelValues(cmd.Action()).Inc()
		e.ctrl.Dispatch(ctx, cmd)
	}
}

func (e *Engine) consumeQueueRequest(ctx context.Context) {
	rec, err := e.st.Get(ctx, store.QueueRequestPath)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Msg("read queue request")
		}
		return
	}
	if err := e.st.Delete(ctx, store.QueueRequestPath); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Msg("claim queue request")
		}
		return
	}

	var req QueueRequest
	if err := rec.Decode(&req); err != nil {
		e.log.Warn().Err(err).Msg("dropping queue request")
		return
	}

	e.log.Info().Int("items", len(req.Items)).Bool("play", req.Play).Msg("queue replaced")
	e.ctrl.SetQueue(req.Items)
	if req.Play && len(req.Items) > 0 {
		e.ctrl.Dispatch(ctx, player.Play{ID: req.Items[0]})
	}
}

func (e *Engine) advanceClock(ctx context.Context) {
	snap := e.clock.Advance()
	e.metrics.ticks.Inc()

	if _, err := e.st.Put(ctx, store.ClockTickPath, snap); err != nil {
		e.log.Error().Err(err).Msg("publish clock tick")
		return
	}
	for _, ev := range snap.Events() {
		if _, err := e.st.Put(ctx, store.PulsePath(ev.Name), ev); err != nil {
			e.log.Error().Err(err).Str("pulse", ev.Name).Msg("publish pulse")
		}
	}
}

func (e *Engine) pollConfig(ctx context.Context) {
	e.lastPoll = time.Now()
	e.pollEQ(ctx)
	e.pollClock(ctx)
}

// pollEQ rebuilds the chain off the render goroutine and publishes it in
// one pointer swap when the config's own version moved.
func (e *Engine) pollEQ(ctx context.Context) {
	rec, err := e.st.Get(ctx, store.EQPath)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Msg("read dsp config")
		}
		return
	}
	if rec.Version == e.eqSeen {
		return
	}
	e.eqSeen = rec.Version

	cfg, err := dsp.ParseConfig(rec.Data)
	if err != nil {
		e.log.Warn().Err(err).Msg("ignoring dsp config")
		return
	}

	if cur := e.out.Chain(); cur != nil && cur.Version() == cfg.Version {
		return
	}

	chain := dsp.Build(cfg, e.cfg.Rate, e.cfg.Channels)
	e.out.SetChain(chain)
	e.metrics.rebuilds.Inc()
	e.log.Info().Uint64("version", cfg.Version).Int("stages", chain.Len()).Msg("dsp chain rebuilt")
}

// pollClock reconfigures the clock when the config record changes. An
// invalid config falls back to the default and is only logged.
func (e *Engine) pollClock(ctx context.Context) {
	rec, err := e.st.Get(ctx, store.ClockConfigPath)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			e.log.Error().Err(err).Msg("read clock config")
		}
		return
	}
	if rec.Version == e.clockSeen {
		return
	}
	e.clockSeen = rec.Version

	var cfg clock.Config
	if err := rec.Decode(&cfg); err != nil {
		e.log.Warn().Err(err).Msg("unreadable clock config, using default")
		cfg = clock.DefaultConfig()
	}

	if e.clock.Configure(cfg) {
		e.log.Warn().Err(cfg.Validate()).Msg("invalid clock config, using default")
		return
	}
	e.log.Info().Int("partitions", len(cfg.Partitions)).Int("pulses", len(cfg.Pulses)).Msg("clock configured")
}

func (e *Engine) publishState(ctx context.Context) {
	if _, err := e.st.Put(ctx, store.StatePath, e.ctrl.State()); err != nil {
		e.log.Error().Err(err).Msg("publish state")
	}
	if _, err := e.st.Put(ctx, store.QueueCurrentPath, e.ctrl.Queue()); err != nil {
		e.log.Error().Err(err).Msg("publish queue")
	}
}

// Shutdown stops the loop, waits for Run to return, closes the device and
// releases every decode session. It is safe to call more than once.
func (e *Engine) Shutdown() error {
	var err error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		close(e.closed)
		e.mu.Unlock()

		e.running.Wait()
		err = e.dev.Close()
		e.ctrl.Close()
		e.log.Info().Msg("engine stopped")
	})
	return err
}
