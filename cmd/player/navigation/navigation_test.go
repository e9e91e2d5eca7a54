package navigation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/gigurra/tunes/cmd/player/catalog"
)

func tracks(n int) []*catalog.Track {
	out := make([]*catalog.Track, n)
	for i := range out {
		out[i] = &catalog.Track{ID: catalog.ID(fmt.Sprint(i + 1)), Title: fmt.Sprintf("Track %d", i+1)}
	}
	return out
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestRecordCurrent_SkipsConsecutiveDuplicates(t *testing.T) {
	ts := tracks(2)
	m := NewManager(seeded())

	m.RecordCurrent(ts[0])
	m.RecordCurrent(ts[0])
	if got := m.HistoryLength(); got != 1 {
		t.Fatalf("HistoryLength() = %d after duplicate record, want 1", got)
	}

	// Same id, different pointer.
	m.RecordCurrent(&catalog.Track{ID: ts[0].ID})
	if got := m.HistoryLength(); got != 1 {
		t.Errorf("HistoryLength() = %d after recording an equal track, want 1", got)
	}

	m.RecordCurrent(ts[1])
	m.RecordCurrent(ts[0])
	if got := m.HistoryLength(); got != 3 {
		t.Errorf("HistoryLength() = %d, want 3 (non-consecutive repeats are kept)", got)
	}
	if m.Current() != ts[0] {
		t.Errorf("Current() = %v, want %v", m.Current(), ts[0])
	}

	m.RecordCurrent(nil)
	if got := m.HistoryLength(); got != 3 {
		t.Errorf("HistoryLength() = %d after RecordCurrent(nil), want 3", got)
	}
}

func TestPickPrevious(t *testing.T) {
	ts := tracks(3)
	m := NewManager(seeded())

	if _, err := m.PickPrevious(); !errors.Is(err, ErrNoPreviousTrack) {
		t.Errorf("PickPrevious() on empty history error = %v, want ErrNoPreviousTrack", err)
	}

	m.RecordCurrent(ts[0])
	if got := m.HistoryLength(); got != 1 {
		t.Fatalf("HistoryLength() = %d, want 1", got)
	}
	if _, err := m.PickPrevious(); !errors.Is(err, ErrNoPreviousTrack) {
		t.Errorf("PickPrevious() with one entry error = %v, want ErrNoPreviousTrack", err)
	}
	if got := m.HistoryLength(); got != 1 {
		t.Errorf("HistoryLength() = %d after failed PickPrevious, want 1", got)
	}

	m.RecordCurrent(ts[1])
	prev, err := m.PickPrevious()
	if err != nil {
		t.Fatalf("PickPrevious() error = %v", err)
	}
	if prev != ts[0] {
		t.Errorf("PickPrevious() = %v, want %v", prev, ts[0])
	}
	if got := m.HistoryLength(); got != 1 {
		t.Errorf("HistoryLength() = %d after PickPrevious, want 1", got)
	}
	if m.Current() != ts[0] {
		t.Errorf("Current() = %v, want %v", m.Current(), ts[0])
	}
}

func TestPickNext_ExcludesHistory(t *testing.T) {
	ts := tracks(5)
	m := NewManager(seeded())
	for _, tr := range ts[:4] {
		m.RecordCurrent(tr)
	}

	for range 50 {
		got, err := m.PickNext(ts, 0)
		if err != nil {
			t.Fatalf("PickNext() error = %v", err)
		}
		if got != ts[4] {
			t.Fatalf("PickNext() = %v, want the only unplayed track %v", got, ts[4])
		}
	}
	if got := m.HistoryLength(); got != 4 {
		t.Errorf("HistoryLength() = %d after PickNext, want 4 (unchanged)", got)
	}
}

func TestPickNext_ExcludeWindow(t *testing.T) {
	ts := tracks(5)
	m := NewManager(seeded())
	for _, tr := range ts {
		m.RecordCurrent(tr)
	}

	// Only the last two (tracks 4 and 5) are excluded.
	seen := map[catalog.ID]bool{}
	for range 200 {
		got, err := m.PickNext(ts, 2)
		if err != nil {
			t.Fatalf("PickNext() error = %v", err)
		}
		seen[got.ID] = true
	}
	for _, id := range []catalog.ID{"4", "5"} {
		if seen[id] {
			t.Errorf("PickNext(_, 2) returned recently played track %s", id)
		}
	}
	for _, id := range []catalog.ID{"1", "2", "3"} {
		if !seen[id] {
			t.Errorf("PickNext(_, 2) never returned track %s in 200 picks", id)
		}
	}
}

func TestPickNext_FallsBackToWholeCatalog(t *testing.T) {
	ts := tracks(5)
	m := NewManager(seeded())
	for _, tr := range ts {
		m.RecordCurrent(tr)
	}

	seen := map[catalog.ID]bool{}
	for range 200 {
		got, err := m.PickNext(ts, 0)
		if err != nil {
			t.Fatalf("PickNext() error = %v", err)
		}
		seen[got.ID] = true
	}
	if len(seen) != len(ts) {
		t.Errorf("fallback picked %d distinct tracks, want all %d", len(seen), len(ts))
	}
}

func TestPickNext_EmptyCatalog(t *testing.T) {
	m := NewManager(seeded())
	if _, err := m.PickNext(nil, 0); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("PickNext(nil) error = %v, want ErrEmptyCatalog", err)
	}
	if _, err := PickNext(nil, nil, nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("PickNext(nil, nil, nil) error = %v, want ErrEmptyCatalog", err)
	}
}

func TestPickNext_SingleTrackCatalog(t *testing.T) {
	ts := tracks(1)
	m := NewManager(nil)
	m.RecordCurrent(ts[0])

	got, err := m.PickNext(ts, 0)
	if err != nil || got != ts[0] {
		t.Errorf("PickNext() = (%v, %v), want (%v, nil)", got, err, ts[0])
	}
}

func TestPickNext_IsDeterministicWithSeed(t *testing.T) {
	ts := tracks(20)
	excluded := map[catalog.ID]struct{}{"3": {}, "7": {}}

	a, b := seeded(), seeded()
	for i := range 20 {
		x, _ := PickNext(ts, excluded, a)
		y, _ := PickNext(ts, excluded, b)
		if x != y {
			t.Fatalf("pick %d differs with the same seed: %v vs %v", i, x, y)
		}
		if _, bad := excluded[x.ID]; bad {
			t.Errorf("pick %d returned excluded track %v", i, x)
		}
	}
}

func TestHistory_IsCopy(t *testing.T) {
	ts := tracks(2)
	m := NewManager(nil)
	m.RecordCurrent(ts[0])
	m.RecordCurrent(ts[1])

	h := m.History()
	h[0] = nil
	if m.History()[0] != ts[0] {
		t.Error("mutating History() result changed the manager's history")
	}
}
