// Package tui is the terminal front-end of the player screen.
package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/tunes/cmd/player/eq"
	"github.com/gigurra/tunes/cmd/player/navigation"
	"github.com/gigurra/tunes/cmd/player/playback"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	artistStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // Green
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")) // Yellow
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Bright red
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
	gainStep   = 1.0
	gainWidth  = 12
)

// Player is what the model drives; *screen.Screen implements it.
type Player interface {
	TogglePlayback() error
	Next() error
	Previous() error
	SeekBy(delta time.Duration) error
	SetVolume(level float64)
	SetGain(band int, db float64) error
	ApplyPreset(name string)
	Preset() string
	Gains() []float64
	Bands() []eq.Band
	Session() playback.Session
	CanGoBack() bool
	HistoryLength() int
}

type model struct {
	player  Player
	session playback.Session
	gains   []float64
	bands   []eq.Band
	preset  string
	history int
	band    int
	err     error
	tracks  int
	width   int
	help    bool
}

func newModel(p Player) model {
	m := model{player: p, width: 80}
	return m.refresh()
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) refresh() model {
	m.session = m.player.Session()
	m.gains = m.player.Gains()
	m.bands = m.player.Bands()
	m.preset = m.player.Preset()
	m.history = m.player.HistoryLength()
	if m.band >= len(m.bands) {
		m.band = max(0, len(m.bands)-1)
	}
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m.refresh(), tickCmd()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case refreshMsg, durationMsg, endedMsg:
		return m.refresh(), nil
	case trackMsg:
		m.err = nil
		return m.refresh(), nil
	case catalogMsg:
		m.tracks = msg.tracks
		return m, nil
	case errMsg:
		m.err = msg.err
		return m.refresh(), nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help {
		m.help = false
		return m, nil
	}

	var err error
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "?":
		m.help = true
		return m, nil
	case " ", "enter":
		err = m.player.TogglePlayback()
	case "n":
		err = m.player.Next()
	case "p", "b":
		if !m.player.CanGoBack() {
			return m, nil
		}
		err = m.player.Previous()
	case "left", "h":
		err = m.player.SeekBy(-seekStep)
	case "right", "l":
		err = m.player.SeekBy(seekStep)
	case "+", "=":
		m.player.SetVolume(lo.Clamp(m.session.Volume+volumeStep, 0, 1))
	case "-", "_":
		m.player.SetVolume(lo.Clamp(m.session.Volume-volumeStep, 0, 1))
	case "[":
		m.band = max(0, m.band-1)
	case "]":
		m.band = min(len(m.bands)-1, m.band+1)
	case "up", "k":
		err = m.adjustGain(gainStep)
	case "down", "j":
		err = m.adjustGain(-gainStep)
	case "tab":
		m.player.ApplyPreset(string(nextPreset(eq.Preset(m.preset))))
	case "0":
		m.player.ApplyPreset(string(eq.PresetFlat))
	default:
		return m, nil
	}

	m.err = err
	if errors.Is(err, navigation.ErrNoPreviousTrack) {
		m.err = nil
	}
	return m.refresh(), nil
}

func (m model) adjustGain(delta float64) error {
	if m.band < 0 || m.band >= len(m.gains) {
		return nil
	}
	return m.player.SetGain(m.band, m.gains[m.band]+delta)
}

func nextPreset(current eq.Preset) eq.Preset {
	presets := eq.Presets()
	i := slices.Index(presets, current)
	return presets[(i+1)%len(presets)]
}

func (m model) View() string {
	if m.help {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString("\n")

	s := m.session
	if s.Track == nil {
		b.WriteString(artistStyle.Render("  Nothing playing. Press n to pick a track."))
		b.WriteString("\n")
	} else {
		title := runewidth.Truncate(s.Track.Title, max(10, m.width-6), "…")
		b.WriteString("  " + titleStyle.Render(title) + "\n")
		b.WriteString("  " + artistStyle.Render(fmt.Sprintf("artist %s · history %d", s.Track.ArtistID, m.history)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  %s %s %s %s   vol %3.0f%%\n",
		stateIcon(s.State),
		FormatTime(s.Position),
		barStyle.Render(ProgressBar(s.Position, s.Duration, max(10, min(50, m.width-36)))),
		FormatTime(s.Duration),
		s.Volume*100,
	))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("  Equalizer [%s]", m.preset)))
	b.WriteString("\n")
	for i, band := range m.bands {
		label := fmt.Sprintf("%5s", band)
		if i == m.band {
			label = selectedStyle.Render(label)
		}
		gain := 0.0
		if i < len(m.gains) {
			gain = m.gains[i]
		}
		b.WriteString(fmt.Sprintf("  %s %s %+5.1f dB\n", label, barStyle.Render(GainBar(gain, gainWidth)), gain))
	}
	b.WriteString("\n")

	if m.tracks > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  catalog reloaded: %d tracks", m.tracks)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("  Error: " + m.err.Error()))
		b.WriteString("\n")
		if s.State == playback.StateErrored {
			b.WriteString(helpStyle.Render("  press space to retry, n for another track"))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("  space play/pause • n next • p prev • ←/→ seek • +/- vol • [/] band • ↑/↓ gain • tab preset • ? help • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m model) renderHelp() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("  Transport"))
	b.WriteString("\n")
	b.WriteString("    space     Play / pause (retries after an error)\n")
	b.WriteString("    n         Next random track\n")
	b.WriteString("    p/b       Previous track from history\n")
	b.WriteString("    ←/→       Seek 5 seconds\n")
	b.WriteString("    +/-       Volume\n")
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("  Equalizer"))
	b.WriteString("\n")
	b.WriteString("    [/]       Select band\n")
	b.WriteString("    ↑/↓       Raise / lower the selected band\n")
	b.WriteString("    tab       Next preset\n")
	b.WriteString("    0         Flat\n")
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  Press any key to close"))
	b.WriteString("\n")
	return b.String()
}

func stateIcon(s playback.State) string {
	switch s {
	case playback.StatePlaying:
		return playingStyle.Render("▶")
	case playback.StateLoading:
		return pausedStyle.Render("…")
	case playback.StatePaused, playback.StateEnded:
		return pausedStyle.Render("⏸")
	case playback.StateErrored:
		return errorStyle.Render("✗")
	default:
		return helpStyle.Render("■")
	}
}

// FormatTime renders d as mm:ss. Unknown or negative durations show 00:00.
func FormatTime(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// ProgressBar renders how far pos is into total using width cells.
func ProgressBar(pos, total time.Duration, width int) string {
	filled := 0
	if total > 0 {
		filled = int(float64(width) * float64(lo.Clamp(pos, 0, total)) / float64(total))
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// GainBar renders a gain in [MinGain, MaxGain] as a bar centered on 0 dB,
// width cells to each side.
func GainBar(db float64, width int) string {
	n := int(float64(width) * lo.Clamp(db, eq.MinGain, eq.MaxGain) / eq.MaxGain)
	left := strings.Repeat(" ", width)
	right := strings.Repeat(" ", width)
	if n < 0 {
		left = strings.Repeat(" ", width+n) + strings.Repeat("█", -n)
	} else if n > 0 {
		right = strings.Repeat("█", n) + strings.Repeat(" ", width-n)
	}
	return left + "│" + right
}

// Run shows the player until the user quits. The notifier is bound to the
// program so screen notifications reach the view.
func Run(p Player, n *Notifier) error {
	prog := tea.NewProgram(newModel(p), tea.WithAltScreen())
	if n != nil {
		n.Bind(prog)
	}
	_, err := prog.Run()
	return err
}
