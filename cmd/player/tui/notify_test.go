package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/tunes/cmd/player/audio"
	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/gigurra/tunes/cmd/player/playback"
	"github.com/gigurra/tunes/cmd/player/screen"
)

// instantElement starts every track immediately.
type instantElement struct{}

func (instantElement) Load(src string, ev playback.Events) {}
func (instantElement) Play(started func(error))           { started(nil) }
func (instantElement) Pause()                             {}
func (instantElement) Seek(position time.Duration)        {}
func (instantElement) SetVolume(level float64)            {}
func (instantElement) Close() error                       { return nil }

func sendWithin(t *testing.T, prog *tea.Program, msg tea.Msg) {
	t.Helper()
	sent := make(chan struct{})
	go func() {
		prog.Send(msg)
		close(sent)
	}()
	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatalf("event loop stuck before accepting %#v", msg)
	}
}

func TestRun_KeysDoNotBlockTheEventLoop(t *testing.T) {
	tracks := []*catalog.Track{
		{ID: "1", Title: "One", SourceURL: "one.mp3"},
		{ID: "2", Title: "Two", SourceURL: "two.mp3"},
	}
	cat, err := catalog.New(tracks)
	if err != nil {
		t.Fatal(err)
	}
	graph := audio.NewGraph(audio.DefaultSampleRate)
	source := graph.CreateSource()

	n := &Notifier{}
	opts := screen.DefaultOptions()
	opts.Listener = n
	scr, err := screen.New(graph, instantElement{}, source, cat, opts)
	if err != nil {
		t.Fatalf("screen.New() error = %v", err)
	}
	defer scr.Close()
	if err := scr.Open(tracks[0]); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	prog := tea.NewProgram(newModel(scr), tea.WithInput(nil), tea.WithoutRenderer(), tea.WithoutSignalHandler())
	n.Bind(prog)
	done := make(chan error, 1)
	go func() {
		_, err := prog.Run()
		done <- err
	}()

	for _, k := range []string{" ", "n", "p", "right", " "} {
		sendWithin(t, prog, key(k))
	}
	// Only accepted once the Update for the last key has returned.
	sendWithin(t, prog, tea.WindowSizeMsg{Width: 100, Height: 40})

	prog.Quit()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("program did not quit")
	}

	// pause, next, previous, seek, pause
	if s := scr.Session(); s.Track != tracks[0] || s.State != playback.StatePaused {
		t.Errorf("session = %v %v, want %v paused", s.Track, s.State, tracks[0])
	}
}

func TestNotifier_DeliversInOrderAfterBind(t *testing.T) {
	n := &Notifier{}
	n.Ended(nil) // dropped, nothing bound yet

	got := make(chan tea.Msg, 8)
	n.mu.Lock()
	n.send = func(msg tea.Msg) { got <- msg }
	n.mu.Unlock()

	n.DurationKnown(time.Minute)
	n.StateChanged(playback.StatePlaying, playback.StatePaused)
	n.Errored(nil, playback.ErrNoTrackLoaded)

	want := []tea.Msg{durationMsg(time.Minute), refreshMsg{}, errMsg{err: playback.ErrNoTrackLoaded}}
	for i, w := range want {
		select {
		case msg := <-got:
			if msg != w {
				t.Errorf("message %d = %#v, want %#v", i, msg, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("message %d never delivered", i)
		}
	}
	select {
	case msg := <-got:
		t.Errorf("unexpected extra message %#v", msg)
	case <-time.After(20 * time.Millisecond):
	}
}
