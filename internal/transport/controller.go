// Package transport implements the playback transport: a state machine
// tracking position over wall-clock time with a tempo scale factor applied,
// driving a best-effort audio backend and a background position tracker.
package transport

import (
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"miditempo/internal/audio"
)

// Source is the loaded MIDI performance the transport plays back.
type Source interface {
	// Duration is the authored length, before tempo scaling.
	Duration() time.Duration
	// BaseTempo is the authored tempo in BPM, or 0 when the file
	// reports none.
	BaseTempo() float64
	Name() string
	Path() string
}

const (
	// DefaultTempo is assumed when a source reports no tempo.
	DefaultTempo = 120

	defaultPollInterval = 100 * time.Millisecond
	trackerJoinTimeout  = time.Second
)

// Option configures a Controller.
type Option func(*Controller)

// WithPollInterval sets the position tracker tick period.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithDefaultTempo sets the tempo assumed for sources that report none.
func WithDefaultTempo(bpm float64) Option {
	return func(c *Controller) {
		if bpm > 0 {
			c.defaultTempo = bpm
		}
	}
}

// Controller owns the transport state machine. All commands come from the
// caller's goroutine; the position tracker runs concurrently and shares the
// state record under the controller's mutex.
type Controller struct {
	mu     sync.Mutex
	st     transportState
	source Source

	backend audio.Backend // nil means tracking-only from the start
	log     *zap.Logger

	interval     time.Duration
	defaultTempo float64
	now          func() time.Time

	trackerDone chan struct{}

	subs   []*Subscription
	subsMu sync.RWMutex
	closed bool
}

// New creates a transport controller. backend may be nil, in which case
// every playback runs in silent tracking-only mode.
func New(backend audio.Backend, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		backend:      backend,
		log:          log,
		interval:     defaultPollInterval,
		defaultTempo: DefaultTempo,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadSource installs src as the active performance and resets the whole
// transport state. Active playback is stopped first.
func (c *Controller) LoadSource(src Source) error {
	if src == nil {
		return &SourceError{Err: errors.New("nil source")}
	}

	c.Stop()

	c.mu.Lock()
	c.source = src
	tempo := src.BaseTempo()
	if tempo <= 0 {
		tempo = c.defaultTempo
	}
	c.st = transportState{
		originalTempo: tempo,
		currentTempo:  tempo,
	}
	c.mu.Unlock()

	c.log.Info("source loaded",
		zap.String("name", src.Name()),
		zap.Float64("bpm", tempo),
		zap.Duration("duration", src.Duration()))
	c.emitSource(SourceChange{Name: src.Name(), Duration: src.Duration(), Tempo: tempo})
	return nil
}

// SetTempo sets the playback tempo in BPM. The displayed duration and
// position scaling change immediately, but a live tracker keeps running on
// the ratio captured at Play time; the new tempo takes effect on the next
// Play or Seek. SetTempo never starts, stops or pauses playback.
func (c *Controller) SetTempo(bpm float64) error {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return ErrInvalidTempo
	}

	c.mu.Lock()
	c.st.currentTempo = bpm
	c.mu.Unlock()

	c.log.Debug("tempo set", zap.Float64("bpm", bpm))
	return nil
}

// Play starts playback at the given position. Fails if no source is loaded
// or playback is already active; a backend failure degrades to silent
// tracking instead of failing the command.
func (c *Controller) Play(at time.Duration) error {
	c.mu.Lock()
	if c.source == nil {
		c.mu.Unlock()
		return ErrNoSourceLoaded
	}
	if c.st.playing {
		c.mu.Unlock()
		return ErrAlreadyPlaying
	}
	if at < 0 {
		at = 0
	}

	c.st.playing = true
	c.st.paused = false
	c.st.position = at
	// now - refStart == at, right from the first tick.
	c.st.refStart = c.now().Add(-at)
	c.st.silent = c.startBackendLocked()

	// The tracker runs against the ratio in force now; SetTempo during
	// playback deliberately does not resync it.
	limit := c.st.scaledDuration(c.source.Duration())
	done := make(chan struct{})
	c.trackerDone = done
	interval := c.interval
	tempo := c.st.currentTempo
	c.mu.Unlock()

	go c.track(done, interval, limit)

	c.log.Info("playback started",
		zap.Duration("at", at),
		zap.Float64("bpm", tempo),
		zap.Duration("scaled_duration", limit))
	c.emitState(Stopped, Playing)
	return nil
}

// startBackendLocked issues load+play to the backend best-effort and
// reports whether playback fell back to silent tracking-only mode.
func (c *Controller) startBackendLocked() bool {
	if c.backend == nil {
		return true
	}
	if err := c.backend.Load(c.source.Path()); err != nil {
		c.log.Warn("audio backend load failed, tracking silently",
			zap.String("path", c.source.Path()), zap.Error(err))
		c.emitError("load", err)
		return true
	}
	if err := c.backend.Play(); err != nil {
		c.log.Warn("audio backend play failed, tracking silently", zap.Error(err))
		c.emitError("play", err)
		return true
	}
	return false
}

// Pause pauses playback. Returns false without any state change unless
// playing and not already paused.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	if !c.st.playing || c.st.paused {
		c.mu.Unlock()
		return false
	}
	c.st.paused = true
	c.st.pausedAt = c.now()
	if c.backend != nil && !c.st.silent {
		c.backend.Pause()
	}
	c.mu.Unlock()

	c.emitState(Playing, Paused)
	return true
}

// Resume resumes paused playback. Shifting the reference instant by exactly
// the paused duration keeps the position continuous with the moment pause
// began. Returns false unless playing and paused.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	if !c.st.playing || !c.st.paused {
		c.mu.Unlock()
		return false
	}
	pauseDuration := c.now().Sub(c.st.pausedAt)
	c.st.refStart = c.st.refStart.Add(pauseDuration)
	c.st.paused = false
	if c.backend != nil && !c.st.silent {
		c.backend.Unpause()
	}
	c.mu.Unlock()

	c.emitState(Paused, Playing)
	return true
}

// Stop stops playback, resets the position and joins the tracker with a
// bounded timeout, so no tracker activity observes state after Stop
// returns. Returns false if nothing was playing.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if !c.st.playing {
		c.mu.Unlock()
		return false
	}
	prev := c.st.state()
	c.st.playing = false
	c.st.paused = false
	c.st.position = 0
	done := c.trackerDone
	if c.backend != nil && !c.st.silent {
		c.backend.Stop()
	}
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-time.After(trackerJoinTimeout):
			c.log.Warn("tracker did not finish within join timeout")
		}
	}

	c.emitState(prev, Stopped)
	return true
}

// Seek moves to the given scaled position. While active it restarts
// playback there; the brief re-issue of the audio command is an accepted
// discontinuity. While stopped it only moves the position.
func (c *Controller) Seek(pos time.Duration) error {
	c.mu.Lock()
	if c.source == nil {
		c.mu.Unlock()
		return ErrNoSourceLoaded
	}
	if pos < 0 || pos > c.st.scaledDuration(c.source.Duration()) {
		c.mu.Unlock()
		return ErrOutOfRange
	}
	active := c.st.playing
	c.mu.Unlock()

	if active {
		c.Stop()
		return c.Play(pos)
	}

	c.mu.Lock()
	c.st.position = pos
	c.mu.Unlock()

	c.emitPosition(pos)
	return nil
}

// Status returns an immutable snapshot of the transport state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:         c.st.state(),
		Position:      c.st.position,
		CurrentTempo:  c.st.currentTempo,
		OriginalTempo: c.st.originalTempo,
		Silent:        c.st.silent,
	}
	if c.source != nil {
		st.SourceLoaded = true
		st.SourceName = c.source.Name()
		st.Duration = c.st.scaledDuration(c.source.Duration())
	}
	return st
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Close stops playback and closes all subscriptions.
func (c *Controller) Close() error {
	c.Stop()

	c.subsMu.Lock()
	if c.closed {
		c.subsMu.Unlock()
		return nil
	}
	c.closed = true
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	return nil
}

func (c *Controller) emitState(prev, cur State) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendState(StateChange{Previous: prev, Current: cur})
	}
}

func (c *Controller) emitSource(e SourceChange) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendSource(e)
	}
}

func (c *Controller) emitPosition(pos time.Duration) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendPosition(pos)
	}
}

func (c *Controller) emitError(op string, err error) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.sendError(ErrorEvent{Operation: op, Err: err})
	}
}
