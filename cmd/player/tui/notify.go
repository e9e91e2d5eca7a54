package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/gigurra/tunes/cmd/player/playback"
)

type (
	tickMsg     time.Time
	refreshMsg  struct{}
	trackMsg    struct{ track *catalog.Track }
	errMsg      struct{ err error }
	catalogMsg  struct{ tracks int }
	endedMsg    struct{ track *catalog.Track }
	durationMsg time.Duration
)

// Notifier turns screen notifications into tea messages. Screen calls can
// come from inside the program's own Update, so messages are queued and
// handed to the program by a separate goroutine, in order. Messages sent
// before Bind are dropped; the model refreshes on its own tick anyway.
type Notifier struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
	sending bool

	// OnTrackChanged, when set, is called for every track change.
	OnTrackChanged func(track *catalog.Track)
}

// Bind routes messages to p.
func (n *Notifier) Bind(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = p.Send
}

func (n *Notifier) post(msg tea.Msg) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.send == nil {
		return
	}
	n.pending = append(n.pending, msg)
	if !n.sending {
		n.sending = true
		go n.flush(n.send)
	}
}

func (n *Notifier) flush(send func(tea.Msg)) {
	n.mu.Lock()
	for len(n.pending) > 0 {
		msg := n.pending[0]
		n.pending = n.pending[1:]
		n.mu.Unlock()
		// Send returns immediately once the program has exited.
		send(msg)
		n.mu.Lock()
	}
	n.sending = false
	n.mu.Unlock()
}

// CatalogChanged reports a reloaded catalog.
func (n *Notifier) CatalogChanged(c *catalog.Catalog) {
	n.post(catalogMsg{tracks: c.Len()})
}

func (n *Notifier) TrackChanged(track *catalog.Track, historyLength int) {
	if n.OnTrackChanged != nil {
		n.OnTrackChanged(track)
	}
	n.post(trackMsg{track: track})
}

func (n *Notifier) StateChanged(from, to playback.State) {
	n.post(refreshMsg{})
}

func (n *Notifier) PositionChanged(position time.Duration) {
	n.post(refreshMsg{})
}

func (n *Notifier) DurationKnown(duration time.Duration) {
	n.post(durationMsg(duration))
}

func (n *Notifier) Ended(track *catalog.Track) {
	n.post(endedMsg{track: track})
}

func (n *Notifier) Errored(track *catalog.Track, err error) {
	n.post(errMsg{err: err})
}
