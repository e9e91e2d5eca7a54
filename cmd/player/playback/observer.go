package playback

import (
	"sync"
	"time"

	"github.com/gigurra/tunes/cmd/player/catalog"
)

// Observer receives the controller's notifications. Calls are delivered in
// the order the controller produced them, never concurrently, and never
// while the controller's lock is held, so an Observer may call back into
// the Controller.
type Observer interface {
	StateChanged(from, to State)
	PositionChanged(position time.Duration)
	DurationKnown(duration time.Duration)
	// Ended is called exactly once per loaded track.
	Ended(track *catalog.Track)
	Errored(track *catalog.Track, err error)
}

// NopObserver ignores every notification. Embed it to implement only part of Observer.
type NopObserver struct{}

func (NopObserver) StateChanged(from, to State)             {}
func (NopObserver) PositionChanged(position time.Duration)  {}
func (NopObserver) DurationKnown(duration time.Duration)    {}
func (NopObserver) Ended(track *catalog.Track)              {}
func (NopObserver) Errored(track *catalog.Track, err error) {}

// dispatcher delivers queued notifications in order. Whoever finds the
// queue idle drains it; reentrant or concurrent producers only enqueue.
type dispatcher struct {
	mu       sync.Mutex
	queue    []func(Observer)
	draining bool
	obs      Observer
}

func (d *dispatcher) enqueue(fns ...func(Observer)) {
	d.mu.Lock()
	d.queue = append(d.queue, fns...)
	d.mu.Unlock()
}

func (d *dispatcher) drain() {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	for len(d.queue) > 0 {
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		fn(d.obs)
		d.mu.Lock()
	}
	d.draining = false
	d.mu.Unlock()
}
