// Package playback owns the single playing-or-paused media resource of a
// player screen: loading, transport, seeking, volume and the notifications
// that flow back to the owner.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/samber/lo"
)

var ErrClosed = errors.New("controller closed")

// Controller drives one Element through the playback state machine:
//
//	idle -> loading -> playing <-> paused
//	           |          |
//	           v          v
//	        errored     ended
//
// Any state goes back to loading on Load. Every Load bumps a generation
// counter and every play attempt bumps an attempt counter; element
// callbacks carrying an old generation or attempt are dropped, so a late
// completion for an abandoned track never touches the current one.
type Controller struct {
	// elMu serializes calls into the element; mu guards the state below.
	// Element callbacks only take mu, so an element may call back
	// synchronously from inside Play.
	elMu sync.Mutex
	mu   sync.Mutex

	el       Element
	dispatch *dispatcher

	track    *catalog.Track
	state    State
	position time.Duration
	duration time.Duration
	volume   float64
	err      error

	gen      uint64
	attempt  uint64
	seeks    uint64
	endedGen uint64
	busy     bool
	closed   bool
}

// NewController creates an idle controller. obs may be nil.
func NewController(el Element, obs Observer) *Controller {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Controller{
		el:       el,
		dispatch: &dispatcher{obs: obs},
		state:    StateIdle,
		volume:   1,
	}
}

// begin locks out other operations and marks the controller busy so element
// callbacks leave notification delivery to finish.
func (c *Controller) begin() {
	c.elMu.Lock()
	c.mu.Lock()
	c.busy = true
}

// finish releases the element and delivers everything queued meanwhile.
// c.mu must not be held.
func (c *Controller) finish() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	c.elMu.Unlock()
	c.dispatch.drain()
}

// setState must be called with c.mu held.
func (c *Controller) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	slog.Debug("playback state changed", "from", from, "to", to, "track", c.track)
	c.dispatch.enqueue(func(o Observer) { o.StateChanged(from, to) })
}

// Load replaces the current track and starts playing it. Whatever the
// previous track was doing is abandoned.
func (c *Controller) Load(track *catalog.Track) error {
	if track == nil {
		return fmt.Errorf("%w: nil track", ErrNoTrackLoaded)
	}

	c.begin()
	defer c.finish()

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	c.gen++
	c.attempt++
	gen, attempt := c.gen, c.attempt
	c.track = track
	c.seeks = 0
	c.position = 0
	c.duration = 0
	c.err = nil
	c.setState(StateLoading)
	c.dispatch.enqueue(func(o Observer) { o.PositionChanged(0) })
	volume := c.volume
	c.mu.Unlock()

	slog.Info("loading track", "track", track.Title, "id", track.ID, "src", track.SourceURL)
	c.el.Load(track.SourceURL, c.events(gen))
	c.el.SetVolume(volume)
	c.el.Play(c.started(gen, attempt))
	return nil
}

// Play starts or resumes playback. Playing or loading is a no-op; an ended
// track restarts from the beginning; an errored track is retried.
func (c *Controller) Play() error {
	c.begin()
	defer c.finish()

	switch c.state {
	case StateIdle:
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}
		return ErrNoTrackLoaded

	case StatePlaying, StateLoading:
		c.mu.Unlock()
		return nil

	case StatePaused:
		c.attempt++
		started := c.started(c.gen, c.attempt)
		c.setState(StatePlaying)
		c.mu.Unlock()
		c.el.Play(started)

	case StateEnded:
		c.attempt++
		started := c.started(c.gen, c.attempt)
		c.position = 0
		c.seeks++
		c.endedGen = 0
		c.setState(StateLoading)
		c.dispatch.enqueue(func(o Observer) { o.PositionChanged(0) })
		c.mu.Unlock()
		c.el.Seek(0)
		c.el.Play(started)

	case StateErrored:
		c.attempt++
		started := c.started(c.gen, c.attempt)
		c.err = nil
		c.setState(StateLoading)
		c.mu.Unlock()
		c.el.Play(started)
	}
	return nil
}

// Pause pauses a playing or loading track. Other states are left alone.
func (c *Controller) Pause() error {
	c.begin()
	defer c.finish()

	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return ErrNoTrackLoaded

	case StatePlaying, StateLoading:
		// A start still in flight must not flip us back to playing.
		c.attempt++
		c.setState(StatePaused)
		c.mu.Unlock()
		c.el.Pause()

	default:
		c.mu.Unlock()
	}
	return nil
}

// TogglePlayback pauses when playing or loading and plays otherwise.
func (c *Controller) TogglePlayback() error {
	switch c.State() {
	case StatePlaying, StateLoading:
		return c.Pause()
	default:
		return c.Play()
	}
}

// Seek moves the position, clamped to [0, duration]. While the duration is
// still unknown the only valid target is 0. Seeking an ended track leaves it
// paused at the new position.
func (c *Controller) Seek(position time.Duration) error {
	c.begin()
	defer c.finish()

	if c.state == StateIdle {
		c.mu.Unlock()
		return ErrNoTrackLoaded
	}

	position = lo.Clamp(position, 0, c.duration)
	c.position = position
	c.seeks++
	c.dispatch.enqueue(func(o Observer) { o.PositionChanged(position) })
	if c.state == StateEnded {
		c.setState(StatePaused)
	}
	c.mu.Unlock()

	c.el.Seek(position)
	return nil
}

// SetVolume sets the output level, clamped to [0, 1]. The level carries over
// to tracks loaded later.
func (c *Controller) SetVolume(level float64) {
	c.begin()
	defer c.finish()

	level = lo.Clamp(level, 0, 1)
	c.volume = level
	c.mu.Unlock()

	c.el.SetVolume(level)
}

// Close releases the element and drops all pending callbacks. It is safe to
// call more than once.
func (c *Controller) Close() error {
	c.begin()
	defer c.finish()

	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.gen++
	c.attempt++
	c.track = nil
	c.position = 0
	c.duration = 0
	c.setState(StateIdle)
	c.mu.Unlock()

	return c.el.Close()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a snapshot of the current playback state.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Session{
		Track:     c.track,
		State:     c.state,
		IsPlaying: c.state == StatePlaying,
		Position:  c.position,
		Duration:  c.duration,
		Volume:    c.volume,
		Err:       c.err,
	}
}

// handle runs fn under the lock if gen is still current, then delivers
// notifications unless an operation in progress will.
func (c *Controller) handle(gen uint64, fn func()) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	fn()
	busy := c.busy
	c.mu.Unlock()

	if !busy {
		c.dispatch.drain()
	}
}

func (c *Controller) started(gen, attempt uint64) func(error) {
	return func(err error) {
		c.handle(gen, func() {
			if attempt != c.attempt {
				slog.Debug("discarding stale playback start", "track", c.track, "error", err)
				return
			}
			if err != nil {
				c.fail(fmt.Errorf("%w: %w", ErrPlaybackStartFailed, err))
				return
			}
			if c.state == StateLoading {
				c.setState(StatePlaying)
			}
		})
	}
}

// fail must be called with c.mu held.
func (c *Controller) fail(err error) {
	track := c.track
	c.err = err
	c.setState(StateErrored)
	slog.Warn("playback failed", "track", track, "error", err)
	c.dispatch.enqueue(func(o Observer) { o.Errored(track, err) })
}

func (c *Controller) events(gen uint64) Events {
	return Events{
		TimeUpdate: func(position time.Duration, seeks uint64) {
			c.handle(gen, func() {
				// Sampled before the latest seek landed.
				if seeks < c.seeks {
					return
				}
				if c.duration > 0 {
					position = min(position, c.duration)
				}
				// Late updates from before a forward seek would move backwards.
				if position < c.position || c.state == StateEnded {
					return
				}
				c.position = position
				c.dispatch.enqueue(func(o Observer) { o.PositionChanged(position) })
			})
		},
		LoadedMetadata: func(duration time.Duration) {
			c.handle(gen, func() {
				c.duration = max(duration, 0)
				c.dispatch.enqueue(func(o Observer) { o.DurationKnown(duration) })
			})
		},
		Ended: func() {
			c.handle(gen, func() {
				if c.endedGen == gen {
					return
				}
				c.endedGen = gen
				track := c.track
				c.position = c.duration
				c.setState(StateEnded)
				c.dispatch.enqueue(func(o Observer) { o.Ended(track) })
			})
		},
		Error: func(err error) {
			c.handle(gen, func() {
				// A failed start already reported it.
				if c.state == StateErrored {
					return
				}
				c.fail(err)
			})
		},
	}
}
