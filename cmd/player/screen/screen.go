// Package screen composes the playback controller, the equalizer and the
// navigation history into the player screen the front-ends drive.
package screen

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gigurra/tunes/cmd/player/audio"
	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/gigurra/tunes/cmd/player/eq"
	"github.com/gigurra/tunes/cmd/player/navigation"
	"github.com/gigurra/tunes/cmd/player/playback"
)

// Listener receives everything the screen shows: the controller's
// notifications plus track changes. Track changes are notified while the
// screen holds its track lock, so a Listener must not call Open, Next or
// Previous from inside a callback.
type Listener interface {
	playback.Observer
	TrackChanged(track *catalog.Track, historyLength int)
}

// NopListener ignores every notification.
type NopListener struct {
	playback.NopObserver
}

func (NopListener) TrackChanged(track *catalog.Track, historyLength int) {}

type Options struct {
	// ExcludeRecent is how many recent tracks Next avoids; 0 avoids the
	// whole history.
	ExcludeRecent int
	AutoAdvance   bool
	Volume        float64
	Preset        string
	Rand          *rand.Rand
	Listener      Listener
}

func DefaultOptions() Options {
	return Options{
		AutoAdvance: true,
		Volume:      1,
		Preset:      string(eq.PresetFlat),
	}
}

// Screen owns one controller, one equalizer chain and one history for its
// whole lifetime. The chain stays wired across track changes.
type Screen struct {
	// switching serializes track changes so the playing track and the last
	// history entry move together.
	switching sync.Mutex

	mu     sync.RWMutex
	cat    *catalog.Catalog
	preset string

	opts     Options
	listener Listener
	ctrl     *playback.Controller
	eq       *eq.Engine
	nav      *navigation.Manager

	closeOnce sync.Once
	closeErr  error
}

// New wires an equalizer between source and the destination of ctx and puts
// a controller in front of el. Nothing plays until Open or Next.
func New(ctx audio.Context, el playback.Element, source audio.Node, cat *catalog.Catalog, opts Options) (*Screen, error) {
	engine, err := eq.NewEngine(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to build equalizer: %w", err)
	}

	s := &Screen{
		cat:      cat,
		opts:     opts,
		listener: opts.Listener,
		eq:       engine,
		nav:      navigation.NewManager(opts.Rand),
	}
	if s.listener == nil {
		s.listener = NopListener{}
	}
	s.ctrl = playback.NewController(el, (*observer)(s))
	s.ctrl.SetVolume(opts.Volume)
	s.ApplyPreset(opts.Preset)
	return s, nil
}

// Open plays track and records it as current.
func (s *Screen) Open(track *catalog.Track) error {
	s.switching.Lock()
	defer s.switching.Unlock()
	return s.openLocked(track)
}

func (s *Screen) openLocked(track *catalog.Track) error {
	if err := s.ctrl.Load(track); err != nil {
		return err
	}
	s.nav.RecordCurrent(track)
	s.listener.TrackChanged(track, s.nav.HistoryLength())
	return nil
}

// Next plays a random track that was not played recently.
func (s *Screen) Next() error {
	s.switching.Lock()
	defer s.switching.Unlock()
	return s.nextLocked()
}

func (s *Screen) nextLocked() error {
	track, err := s.nav.PickNext(s.Catalog().Tracks(), s.opts.ExcludeRecent)
	if err != nil {
		return err
	}
	return s.openLocked(track)
}

// Previous goes back one step in the history.
func (s *Screen) Previous() error {
	s.switching.Lock()
	defer s.switching.Unlock()

	track, err := s.nav.PickPrevious()
	if err != nil {
		return err
	}
	if err := s.ctrl.Load(track); err != nil {
		return err
	}
	s.listener.TrackChanged(track, s.nav.HistoryLength())
	return nil
}

// CanGoBack reports whether Previous has somewhere to go.
func (s *Screen) CanGoBack() bool {
	return s.nav.HistoryLength() >= 2
}

func (s *Screen) HistoryLength() int {
	return s.nav.HistoryLength()
}

func (s *Screen) History() []*catalog.Track {
	return s.nav.History()
}

func (s *Screen) TogglePlayback() error {
	return s.ctrl.TogglePlayback()
}

func (s *Screen) Play() error {
	return s.ctrl.Play()
}

func (s *Screen) Pause() error {
	return s.ctrl.Pause()
}

func (s *Screen) Seek(position time.Duration) error {
	return s.ctrl.Seek(position)
}

// SeekBy moves the position relative to where it is now.
func (s *Screen) SeekBy(delta time.Duration) error {
	return s.ctrl.Seek(s.ctrl.Session().Position + delta)
}

func (s *Screen) SetVolume(level float64) {
	s.ctrl.SetVolume(level)
}

func (s *Screen) Session() playback.Session {
	return s.ctrl.Session()
}

// SetGain sets one band, clamped to the slider range.
func (s *Screen) SetGain(band int, db float64) error {
	return s.eq.SetGain(band, eq.ClampGain(db))
}

// ApplyPreset switches the equalizer to a named preset. Unknown names give
// the flat curve.
func (s *Screen) ApplyPreset(name string) {
	s.eq.ApplyPreset(name)
	if !eq.Preset(name).Known() {
		name = string(eq.PresetFlat)
	}

	s.mu.Lock()
	s.preset = name
	s.mu.Unlock()
}

// Preset returns the last applied preset. Individual band changes do not
// clear it.
func (s *Screen) Preset() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preset
}

func (s *Screen) Gains() []float64 {
	return s.eq.Gains()
}

func (s *Screen) Bands() []eq.Band {
	return s.eq.Bands()
}

func (s *Screen) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// SetCatalog swaps the catalog Next picks from. History and the current
// track are kept.
func (s *Screen) SetCatalog(cat *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = cat
}

// Close stops playback and tears the equalizer chain out of the graph. Only
// the first call does anything.
func (s *Screen) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.ctrl.Close()
		s.eq.Disconnect()
	})
	return s.closeErr
}

// observer is the controller's view of the screen.
type observer Screen

func (o *observer) StateChanged(from, to playback.State) {
	o.listener.StateChanged(from, to)
}

func (o *observer) PositionChanged(position time.Duration) {
	o.listener.PositionChanged(position)
}

func (o *observer) DurationKnown(duration time.Duration) {
	o.listener.DurationKnown(duration)
}

func (o *observer) Errored(track *catalog.Track, err error) {
	o.listener.Errored(track, err)
}

func (o *observer) Ended(track *catalog.Track) {
	o.listener.Ended(track)

	s := (*Screen)(o)
	if s.opts.AutoAdvance {
		// Ended can be delivered from inside a track change that holds the
		// switching lock.
		go s.advance(track)
	}
}

// advance plays the next track unless something else already replaced or
// restarted the one that ended.
func (s *Screen) advance(ended *catalog.Track) {
	s.switching.Lock()
	defer s.switching.Unlock()

	if sess := s.ctrl.Session(); sess.Track != ended || sess.State != playback.StateEnded {
		slog.Debug("skipping auto-advance, track already changed", "ended", ended, "current", sess.Track)
		return
	}
	if err := s.nextLocked(); err != nil {
		if errors.Is(err, playback.ErrClosed) {
			return
		}
		slog.Warn("auto-advance failed", "after", ended, "error", err)
		s.listener.Errored(ended, err)
	}
}
