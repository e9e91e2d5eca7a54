package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/gigurra/tunes/cmd/player/eq"
	"github.com/gigurra/tunes/cmd/player/navigation"
	"github.com/gigurra/tunes/cmd/player/playback"
)

type fakePlayer struct {
	session  playback.Session
	gains    []float64
	preset   string
	history  int
	calls    []string
	seeks    []time.Duration
	nextErr  error
	lastGain [2]float64
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		session: playback.Session{Volume: 0.5, State: playback.StateIdle},
		gains:   make([]float64, eq.NumBands),
		preset:  "flat",
	}
}

func (f *fakePlayer) TogglePlayback() error { f.calls = append(f.calls, "toggle"); return nil }
func (f *fakePlayer) Next() error            { f.calls = append(f.calls, "next"); return f.nextErr }
func (f *fakePlayer) Previous() error        { f.calls = append(f.calls, "previous"); return nil }
func (f *fakePlayer) SeekBy(d time.Duration) error {
	f.seeks = append(f.seeks, d)
	return nil
}
func (f *fakePlayer) SetVolume(level float64) { f.session.Volume = level }
func (f *fakePlayer) SetGain(band int, db float64) error {
	f.lastGain = [2]float64{float64(band), db}
	f.gains[band] = db
	return nil
}
func (f *fakePlayer) ApplyPreset(name string)    { f.preset = name }
func (f *fakePlayer) Preset() string             { return f.preset }
func (f *fakePlayer) Gains() []float64           { return append([]float64(nil), f.gains...) }
func (f *fakePlayer) Bands() []eq.Band           { return eq.Bands() }
func (f *fakePlayer) Session() playback.Session  { return f.session }
func (f *fakePlayer) CanGoBack() bool            { return f.history >= 2 }
func (f *fakePlayer) HistoryLength() int         { return f.history }

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

func TestModel_Transport(t *testing.T) {
	p := newFakePlayer()
	m := press(newModel(p), " ", "n", "p", "left", "right")

	want := []string{"toggle", "next"}
	if strings.Join(p.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v (previous is disabled without history)", p.calls, want)
	}
	if len(p.seeks) != 2 || p.seeks[0] != -seekStep || p.seeks[1] != seekStep {
		t.Errorf("seeks = %v, want [-5s 5s]", p.seeks)
	}

	p.history = 2
	press(m, "p")
	if p.calls[len(p.calls)-1] != "previous" {
		t.Errorf("calls = %v, want previous last", p.calls)
	}
}

func TestModel_Volume(t *testing.T) {
	p := newFakePlayer()
	p.session.Volume = 0.98
	m := press(newModel(p), "+", "+")
	if p.session.Volume != 1 {
		t.Errorf("volume = %v, want clamped to 1", p.session.Volume)
	}
	p.session.Volume = 0.02
	press(m.refresh(), "-")
	if p.session.Volume != 0 {
		t.Errorf("volume = %v, want clamped to 0", p.session.Volume)
	}
}

func TestModel_Equalizer(t *testing.T) {
	p := newFakePlayer()
	m := press(newModel(p), "]", "]", "up", "up", "down")

	if m.band != 2 {
		t.Errorf("selected band = %d, want 2", m.band)
	}
	if p.gains[2] != 1 {
		t.Errorf("band 2 gain = %v, want 1", p.gains[2])
	}

	m = press(m, "[", "[", "[")
	if m.band != 0 {
		t.Errorf("selected band = %d, want 0", m.band)
	}

	press(m, "tab")
	if p.preset != "bass-boost" {
		t.Errorf("preset after tab = %q, want bass-boost", p.preset)
	}
	p.preset = "vocal-boost"
	press(m.refresh(), "tab")
	if p.preset != "flat" {
		t.Errorf("preset after tab from the last one = %q, want flat", p.preset)
	}
}

func TestModel_ShowsErrors(t *testing.T) {
	p := newFakePlayer()
	p.nextErr = navigation.ErrEmptyCatalog
	m := press(newModel(p), "n")
	if !strings.Contains(m.View(), "catalog is empty") {
		t.Errorf("View() does not show the Next error:\n%s", m.View())
	}

	next, _ := m.Update(trackMsg{})
	if next.(model).err != nil {
		t.Error("error not cleared by a track change")
	}

	p.session.State = playback.StateErrored
	next, _ = m.Update(errMsg{err: errors.New("autoplay blocked")})
	view := next.(model).View()
	if !strings.Contains(view, "autoplay blocked") || !strings.Contains(view, "retry") {
		t.Errorf("View() does not show the playback error with a retry hint:\n%s", view)
	}
}

func TestModel_View(t *testing.T) {
	p := newFakePlayer()
	if v := newModel(p).View(); !strings.Contains(v, "Nothing playing") || !strings.Contains(v, "00:00") {
		t.Errorf("idle View() =\n%s", v)
	}

	p.session = playback.Session{
		Track:    &catalog.Track{ID: "1", Title: "Lovely Day", ArtistID: "7"},
		State:    playback.StatePlaying,
		Position: 83 * time.Second,
		Duration: 225 * time.Second,
		Volume:   1,
	}
	v := newModel(p).View()
	for _, want := range []string{"Lovely Day", "01:23", "03:45", "100%", "Equalizer [flat]", "16k"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q:\n%s", want, v)
		}
	}
}

func TestModel_Quit(t *testing.T) {
	_, cmd := newModel(newFakePlayer()).Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{61500 * time.Millisecond, "01:01"},
		{100 * time.Minute, "100:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pos, total time.Duration
		want       string
	}{
		{0, 0, "────"},
		{time.Second, 2 * time.Second, "━━──"},
		{3 * time.Second, 2 * time.Second, "━━━━"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.pos, tt.total, 4); got != tt.want {
			t.Errorf("ProgressBar(%v, %v, 4) = %q, want %q", tt.pos, tt.total, got, tt.want)
		}
	}
}

func TestGainBar(t *testing.T) {
	tests := []struct {
		db   float64
		want string
	}{
		{0, "    │    "},
		{12, "    │████"},
		{-6, "  ██│    "},
		{-30, "████│    "},
	}
	for _, tt := range tests {
		if got := GainBar(tt.db, 4); got != tt.want {
			t.Errorf("GainBar(%v, 4) = %q, want %q", tt.db, got, tt.want)
		}
	}
}
