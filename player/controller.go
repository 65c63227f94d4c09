// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/queue"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Controller defaults.
const (
	DefaultMaxFailures        = 5
	DefaultProbeThresholdMs   = 3000
	DefaultRestartThresholdMs = 3000
)

// Observer receives controller events worth counting.
type Observer interface {
	TrackFailed(kind string)
	GaplessTransition()
}

type nopObserver struct{}

func (nopObserver) TrackFailed(string) {}
func (nopObserver) GaplessTransition() {}

type Options struct {
	Library  Library
	Opener   SessionOpener
	Pipeline *Pipeline
	Queue    *queue.Queue // nil creates an empty, randomly seeded queue
	Logger   zerolog.Logger
	Observer Observer

	// MaxFailures is how many tracks in a row may fail before the
	// controller stops advancing and enters StatusError.
	MaxFailures int
	// ProbeThresholdMs is the remaining play time below which the next
	// track is opened in the background.
	ProbeThresholdMs int64
	// RestartThresholdMs: Previous past this position restarts the track.
	RestartThresholdMs int64
}

type queuedSession struct {
	id         string
	durationMs int64
}

// Controller is the playback state machine. It is not safe for concurrent
// use; the control loop is its only caller.
type Controller struct {
	lib    Library
	opener SessionOpener
	pipe   *Pipeline
	out    *Output
	queue  *queue.Queue
	prober *Prober
	log    zerolog.Logger
	obs    Observer

	maxFailures int
	probeMs     int64
	restartMs   int64

	state State
	media Media
	// session is the decode session of media while the worker runs it.
	session *Session

	// gen identifies the running decode worker.
	gen uint64
	// Ring position and track time the current track's first sample
	// corresponds to.
	startPos uint64
	startMs  int64

	pending *Event
	ended   bool
	endPos  uint64
	queued  *queuedSession

	failures int
}

func NewController(opts Options) *Controller {
	c := &Controller{
		lib:         opts.Library,
		opener:      opts.Opener,
		pipe:        opts.Pipeline,
		out:         opts.Pipeline.Output(),
		queue:       opts.Queue,
		prober:      NewProber(opts.Opener),
		log:         opts.Logger,
		obs:         opts.Observer,
		maxFailures: opts.MaxFailures,
		probeMs:     opts.ProbeThresholdMs,
		restartMs:   opts.RestartThresholdMs,
		state:       DefaultState(),
	}

	if c.queue == nil {
		c.queue = queue.New(nil)
	}
	if c.obs == nil {
		c.obs = nopObserver{}
	}
	if c.maxFailures <= 0 {
		c.maxFailures = DefaultMaxFailures
	}
	if c.probeMs <= 0 {
		c.probeMs = DefaultProbeThresholdMs
	}
	if c.restartMs <= 0 {
		c.restartMs = DefaultRestartThresholdMs
	}

	c.out.SetVolume(c.state.Volume)
	return c
}

// State returns a copy of the current playback state.
func (c *Controller) State() State {
	s := c.state
	s.Shuffle = c.queue.Shuffle()
	return s
}

func (c *Controller) Queue() queue.Snapshot { return c.queue.Snapshot() }

// Dispatch applies one command. Out-of-range arguments are clamped.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) {
	c.log.Debug().Str("action", cmd.Action()).Msg("command")

	switch cmd := cmd.(type) {
	case Play:
		c.failures = 0
		c.queue.JumpTo(cmd.ID)
		c.playID(ctx, cmd.ID)
	case Pause:
		c.pause()
	case Resume:
		c.resume(ctx)
	case Stop:
		c.stop()
	case Seek:
		c.seek(ctx, cmd.PositionMs)
	case Next:
		c.skip(ctx, queue.Forward)
	case Previous:
		c.previous(ctx)
	case SetVolume:
		c.state.Volume = lo.Clamp(cmd.Volume, 0, 1)
		c.out.SetVolume(c.state.Volume)
	case SetShuffle:
		c.queue.SetShuffle(cmd.Enabled)
		c.state.Shuffle = cmd.Enabled
		c.invalidateNext()
	case SetRepeat:
		c.state.Repeat = cmd.Mode
		c.invalidateNext()
	}
}

// SetQueue replaces the queue. The current track keeps playing.
func (c *Controller) SetQueue(items []string) {
	c.queue.SetItems(items)
	c.invalidateNext()
}

// Tick processes decode worker events, commits track boundaries the
// output has reached, refreshes the position and schedules pre-probing.
func (c *Controller) Tick(ctx context.Context) {
	if !c.collect(ctx) {
		return
	}

	readPos := c.pipe.Ring().ReadPos()
	if c.pending != nil && readPos >= c.pending.Pos {
		c.commit()
	}
	if c.ended && c.pending == nil && readPos >= c.endPos {
		c.trackEnded(ctx)
		return
	}

	c.updatePosition()
	c.prefetch(ctx)
}

// Close stops decoding and releases every open session.
func (c *Controller) Close() {
	c.halt("")
	c.prober.Close()
}

// collect drains worker events. It returns false when a failure was
// handled and the tick is over.
func (c *Controller) collect(ctx context.Context) bool {
	for {
		select {
		case ev := <-c.pipe.Events():
			if ev.Gen != c.gen {
				continue
			}

			switch ev.Kind {
			case EventTransition:
				c.pending = &ev
			case EventEnded:
				c.ended = true
				c.endPos = ev.Pos
			case EventFailed:
				if c.pending != nil {
					c.commit()
				}
				c.halt("")
				c.fail(ctx, ev.Media.ID, ev.Err)
				return false
			}
		default:
			return true
		}
	}
}

// commit makes a spliced-in track current once playback reaches it.
func (c *Controller) commit() {
	ev := c.pending
	c.pending = nil
	m := ev.Media

	if c.state.Repeat != queue.RepeatOne || m.ID != c.media.ID {
		id, ok := c.queue.Advance(queue.Forward, skipRepeat(c.state.Repeat))
		if !ok || id != m.ID {
			c.queue.JumpTo(m.ID)
		}
	}

	duration := m.DurationMs
	if c.queued != nil && c.queued.id == m.ID {
		duration = c.queued.durationMs
	}
	c.queued = nil

	c.media = m
	c.session = ev.session
	c.state.setMedia(m, duration)
	c.state.Error = ""
	c.startPos = ev.Pos
	c.startMs = 0
	c.failures = 0

	c.obs.GaplessTransition()
	c.log.Info().Str("id", m.ID).Msg("gapless transition")
}

// trackEnded handles the natural end of the current track.
func (c *Controller) trackEnded(ctx context.Context) {
	c.ended = false
	c.failures = 0

	if c.state.Repeat == queue.RepeatOne && c.media.ID != "" {
		c.playID(ctx, c.media.ID)
		return
	}

	c.advance(ctx, queue.Forward, c.state.Repeat)
}

func (c *Controller) updatePosition() {
	if c.state.Status != StatusPlaying && c.state.Status != StatusPaused {
		return
	}

	rp := c.pipe.Ring().ReadPos()
	if rp < c.startPos {
		return
	}

	frames := int64(rp-c.startPos) / int64(c.pipe.Channels())
	pos := c.startMs + frames*1000/int64(c.pipe.Rate())
	if c.state.DurationMs > 0 {
		pos = min(pos, c.state.DurationMs)
	}
	c.state.PositionMs = pos
}

// prefetch opens the upcoming track in the background once the current
// one is close to its end, and hands it to the worker when ready.
func (c *Controller) prefetch(ctx context.Context) {
	if c.state.Status != StatusPlaying && c.state.Status != StatusPaused {
		return
	}
	if c.queued != nil || c.pending != nil || c.ended || !c.pipe.Running() {
		return
	}
	if d := c.state.DurationMs; d > 0 && d-c.state.PositionMs > c.probeMs {
		return
	}

	id, ok := c.upcoming()
	if !ok {
		return
	}

	if c.prober.Target() != id {
		m, err := c.lib.Resolve(ctx, id)
		if err != nil {
			c.log.Debug().Err(err).Str("id", id).Msg("pre-probe skipped")
			return
		}
		c.prober.Start(ctx, m)
		return
	}

	if !c.prober.Poll() {
		if err := c.prober.Err(); err != nil {
			c.log.Debug().Err(err).Str("id", id).Msg("pre-probe failed")
		}
		return
	}

	s := c.prober.Take(id)
	c.queued = &queuedSession{id: id, durationMs: s.DurationMs()}
	if old := c.pipe.Queue(s); old != nil {
		old.Close()
	}
	c.log.Debug().Str("id", id).Msg("next track queued")
}

// upcoming is the id natural track end would play.
func (c *Controller) upcoming() (string, bool) {
	if c.state.Repeat == queue.RepeatOne && c.media.ID != "" {
		return c.media.ID, true
	}
	return c.queue.Peek(queue.Forward, c.state.Repeat)
}

func (c *Controller) pause() {
	if c.state.Status != StatusPlaying {
		return
	}
	c.out.SetPaused(true)
	c.state.Status = StatusPaused
	c.state.Playing = false
}

func (c *Controller) resume(ctx context.Context) {
	switch {
	case c.state.Status == StatusPaused:
		c.out.SetPaused(false)
		c.state.Status = StatusPlaying
		c.state.Playing = true
	case c.state.Status == StatusStopped && c.state.CurrentID != "":
		c.failures = 0
		c.playID(ctx, c.state.CurrentID)
	}
}

func (c *Controller) stop() {
	c.halt("")
	c.prober.Invalidate()
	c.state.Status = StatusStopped
	c.state.Playing = false
	c.state.PositionMs = 0
}

func (c *Controller) seek(ctx context.Context, ms int64) {
	if c.state.Status != StatusPlaying && c.state.Status != StatusPaused {
		return
	}

	ms = max(ms, 0)
	if c.state.DurationMs > 0 {
		ms = min(ms, c.state.DurationMs)
	}
	paused := c.state.Status == StatusPaused

	c.out.SetActive(false)
	s := c.pipe.Stop()
	if s != nil && s != c.session {
		// The worker has already moved on to the queued track.
		s.Close()
		s = nil
	}
	c.invalidateNext()
	c.resetTransitions()

	err := audio.ErrNotSeekable
	if s != nil {
		err = s.Seek(ms)
	}
	if errors.Is(err, audio.ErrNotSeekable) {
		if s != nil {
			s.Close()
		}
		s, err = c.opener.Open(ctx, c.media)
		if err == nil {
			err = s.Seek(ms)
		}
	}
	if err != nil {
		if s != nil {
			s.Close()
		}
		c.fail(ctx, c.media.ID, err)
		return
	}

	duration := c.state.DurationMs
	c.start(s, ms, paused)
	c.state.DurationMs = duration
	c.state.PositionMs = ms
}

func (c *Controller) previous(ctx context.Context) {
	playing := c.state.Status == StatusPlaying || c.state.Status == StatusPaused
	if playing && c.state.PositionMs > c.restartMs {
		c.seek(ctx, 0)
		return
	}
	c.skip(ctx, queue.Backward)
}

// skip is an explicit next or previous. Repeat one does not pin the track
// here.
func (c *Controller) skip(ctx context.Context, dir queue.Direction) {
	c.failures = 0
	c.advance(ctx, dir, skipRepeat(c.state.Repeat))
}

func (c *Controller) advance(ctx context.Context, dir queue.Direction, repeat queue.Repeat) {
	id, ok := c.queue.Advance(dir, repeat)
	if !ok {
		c.finish()
		return
	}
	c.playID(ctx, id)
}

// finish is the end of the queue.
func (c *Controller) finish() {
	c.halt("")
	c.prober.Invalidate()
	c.media = Media{}
	c.state.clearMedia()
	c.state.Status = StatusIdle
	c.state.Playing = false
	c.log.Info().Msg("end of queue")
}

func (c *Controller) playID(ctx context.Context, id string) {
	s, err := c.acquire(ctx, id)
	if err != nil {
		c.fail(ctx, id, err)
		return
	}
	c.start(s, 0, false)
	c.log.Info().Str("id", id).Str("title", s.Media.Title).Msg("playing")
}

// acquire stops the worker and returns a session for id, preferring one
// that was already opened ahead of time.
func (c *Controller) acquire(ctx context.Context, id string) (*Session, error) {
	if s := c.halt(id); s != nil {
		c.prober.Invalidate()
		return s, nil
	}
	if s := c.prober.Take(id); s != nil {
		return s, nil
	}

	m, err := c.lib.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.opener.Open(ctx, m)
}

// halt stops decoding and drops buffered audio. A queued session for keep
// is returned instead of being closed.
func (c *Controller) halt(keep string) *Session {
	c.out.SetActive(false)
	if s := c.pipe.Stop(); s != nil {
		s.Close()
	}
	c.session = nil

	var kept *Session
	if s := c.pipe.Unqueue(); s != nil {
		if keep != "" && s.Media.ID == keep {
			kept = s
		} else {
			s.Close()
		}
	}

	c.queued = nil
	c.resetTransitions()
	return kept
}

func (c *Controller) resetTransitions() {
	c.pipe.Drop()
	c.pending = nil
	c.ended = false
}

// invalidateNext forgets any prepared upcoming track.
func (c *Controller) invalidateNext() {
	c.prober.Invalidate()
	if s := c.pipe.Unqueue(); s != nil {
		s.Close()
	}
	c.queued = nil
}

// start launches the worker on s with the track clock at offsetMs.
func (c *Controller) start(s *Session, offsetMs int64, paused bool) {
	c.gen++
	c.resetTransitions()

	c.media = s.Media
	c.session = s
	c.state.setMedia(s.Media, s.DurationMs())
	c.state.PositionMs = offsetMs
	c.state.Error = ""
	c.startPos = c.pipe.Ring().ReadPos()
	c.startMs = offsetMs

	c.pipe.Start(s, c.gen)

	c.out.SetPaused(paused)
	c.out.SetActive(true)
	if paused {
		c.state.Status = StatusPaused
	} else {
		c.state.Status = StatusPlaying
	}
	c.state.Playing = !paused
}

// fail records a track failure and moves on, unless the failure limit is
// reached.
func (c *Controller) fail(ctx context.Context, id string, err error) {
	c.failures++
	c.obs.TrackFailed(failureKind(err))
	c.state.Error = fmt.Sprintf("%s: %v", id, err)

	if c.failures >= c.maxFailures {
		c.halt("")
		c.prober.Invalidate()
		c.state.Status = StatusError
		c.state.Playing = false
		c.log.Error().Err(err).Str("id", id).Int("failures", c.failures).Msg(ErrFailureLimit.Error())
		return
	}

	c.log.Warn().Err(err).Str("id", id).Int("failures", c.failures).Msg("track failed, skipping")
	c.advance(ctx, queue.Forward, skipRepeat(c.state.Repeat))
}

func skipRepeat(r queue.Repeat) queue.Repeat {
	if r == queue.RepeatOne {
		return queue.RepeatAll
	}
	return r
}

func failureKind(err error) string {
	if errors.Is(err, ErrUnknownMedia) {
		return "unknown_media"
	}

	switch audio.Classify(err) {
	case audio.ErrUnsupportedFormat:
		return "unsupported_format"
	case audio.ErrIO:
		return "io"
	default:
		return "corrupt_stream"
	}
}
