// Package navigation decides what plays next and what played before.
package navigation

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/samber/lo"
)

var (
	ErrEmptyCatalog    = errors.New("catalog is empty")
	ErrNoPreviousTrack = errors.New("no previous track")
)

// PickNext picks uniformly among tracks whose id is not excluded. When the
// exclusion leaves nothing, it picks uniformly among all tracks instead.
func PickNext(tracks []*catalog.Track, excluded map[catalog.ID]struct{}, rng *rand.Rand) (*catalog.Track, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyCatalog
	}

	candidates := lo.Filter(tracks, func(t *catalog.Track, _ int) bool {
		_, skip := excluded[t.ID]
		return !skip
	})
	if len(candidates) == 0 {
		candidates = tracks
	}
	return candidates[intN(rng, len(candidates))], nil
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

// Manager keeps the play history of one player screen. The last history
// entry is the current track.
type Manager struct {
	mu      sync.RWMutex
	rng     *rand.Rand
	history []*catalog.Track
}

// NewManager creates a manager with empty history. A nil rng uses the
// global random source.
func NewManager(rng *rand.Rand) *Manager {
	return &Manager{rng: rng}
}

// RecordCurrent appends track to the history, unless it already is the
// current track.
func (m *Manager) RecordCurrent(track *catalog.Track) {
	if track == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.history); n > 0 && m.history[n-1].Same(track) {
		return
	}
	m.history = append(m.history, track)
}

// PickNext picks a random track that is neither current nor among the
// excludeRecent most recent history entries. excludeRecent <= 0 excludes
// the whole history. The history itself is not changed.
func (m *Manager) PickNext(tracks []*catalog.Track, excludeRecent int) (*catalog.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recent := m.history
	if excludeRecent > 0 && excludeRecent < len(recent) {
		recent = recent[len(recent)-excludeRecent:]
	}
	excluded := lo.SliceToMap(recent, func(t *catalog.Track) (catalog.ID, struct{}) {
		return t.ID, struct{}{}
	})
	if n := len(m.history); n > 0 {
		excluded[m.history[n-1].ID] = struct{}{}
	}

	return PickNext(tracks, excluded, m.rng)
}

// PickPrevious drops the current track from the history and returns the one
// before it.
func (m *Manager) PickPrevious() (*catalog.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.history)
	if n < 2 {
		return nil, ErrNoPreviousTrack
	}
	m.history[n-1] = nil
	m.history = m.history[:n-1]
	return m.history[n-2], nil
}

// HistoryLength returns the number of history entries, current track included.
func (m *Manager) HistoryLength() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history)
}

// Current returns the last recorded track, or nil.
func (m *Manager) Current() *catalog.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

// History returns a copy of the history, oldest first.
func (m *Manager) History() []*catalog.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history)
}
