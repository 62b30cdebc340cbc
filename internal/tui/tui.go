// Package tui provides a Bubble Tea terminal user interface for freshtracks.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/acquire"
	"github.com/rlafferty/freshtracks/internal/app"
	"github.com/rlafferty/freshtracks/internal/config"
	"github.com/rlafferty/freshtracks/internal/library"
	"github.com/rlafferty/freshtracks/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateFetching State = iota
	StateAcquiring
	StateRotating
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   acquire.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	verbose  bool

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// Pipeline
	runner *app.Runner
	events chan acquire.ProgressEvent

	// Run state
	tracks   []model.WantedTrack
	acquired int
	failed   int
	rotation library.Result
	err      error

	width  int
	height int
}

// NewModel creates a TUI model over a wired pipeline. The returned
// error reflects invalid settings or an unusable collection directory.
func NewModel(settings *config.Settings, log zerolog.Logger) (Model, error) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	events := make(chan acquire.ProgressEvent, 256)
	runner, err := app.NewRunner(settings, log, func(event acquire.ProgressEvent) {
		select {
		case events <- event:
		default:
			// UI lagging; drop rather than stall acquisitions.
		}
	})
	if err != nil {
		cancel()
		return Model{}, err
	}

	return Model{
		state:    StateFetching,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		runner:   runner,
		events:   events,
	}, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchTracks(), m.waitForEvent())
}

// Message types
type (
	// TracksMsg is sent when the wanted list has been fetched.
	TracksMsg struct {
		Tracks []model.WantedTrack
		Err    error
	}

	// EventMsg carries one acquisition progress event.
	EventMsg struct {
		Event acquire.ProgressEvent
	}

	// AcquireDoneMsg is sent when the batch run settles.
	AcquireDoneMsg struct {
		Summary acquire.Summary
	}

	// RotateDoneMsg is sent when rotation and playlist output finish.
	RotateDoneMsg struct {
		Result library.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateFetching || m.state == StateAcquiring || m.state == StateRotating {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "v":
			m.verbose = !m.verbose

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		if msg.Event.Level != acquire.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{
				Message: msg.Event.Message,
				Level:   msg.Event.Level,
			})
			// Keep only last 10 logs
			if len(m.logs) > 10 {
				m.logs = m.logs[len(m.logs)-10:]
			}
		}
		cmds = append(cmds, m.waitForEvent())

	case TracksMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else if len(msg.Tracks) == 0 {
			m.state = StateError
			m.err = fmt.Errorf("recommendation source returned no tracks")
		} else {
			m.tracks = msg.Tracks
			m.state = StateAcquiring
			cmds = append(cmds, m.acquireAll(), m.tickProgress())
		}

	case AcquireDoneMsg:
		m.acquired = len(msg.Summary.Acquired)
		m.failed = len(msg.Summary.Failed)
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateRotating
			cmds = append(cmds, m.rotate())
		}

	case RotateDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.rotation = msg.Result
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateAcquiring {
			done, total := m.runner.Progress()
			var percent float64
			if total > 0 {
				percent = float64(done) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent relays the next acquisition progress event to the UI.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 FreshTracks"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Keep the collection fresh"))
	b.WriteString("\n\n")

	switch m.state {
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateAcquiring:
		b.WriteString(m.viewAcquiring())
	case StateRotating:
		b.WriteString(m.viewRotating())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching recommendations..."))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Collection: %s", m.settings.CurrentPath)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewAcquiring() string {
	var b strings.Builder

	done, total := m.runner.Progress()
	b.WriteString(successStyle.Render(fmt.Sprintf("Acquiring %d track(s):", total)))
	b.WriteString("\n")
	for i, track := range m.tracks {
		if i >= 5 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(m.tracks)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(trackStyle.Render(fmt.Sprintf("  ♪ %s", track)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var percent float64
	if total > 0 {
		percent = float64(done) / float64(total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", done, total)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewRotating() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Rotating collection..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"✨ Run Complete!\n\n"+
			"Acquired: %d\n"+
			"Failed: %d\n"+
			"Rotated: %d  Deleted: %d  Evicted: %d",
		m.acquired,
		m.failed,
		m.rotation.Rotated,
		m.rotation.Deleted,
		m.rotation.Evicted,
	))
	return box
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case acquire.LevelError:
			style = errorStyle
			prefix = "✗"
		case acquire.LevelWarning:
			style = warningStyle
			prefix = "!"
		case acquire.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case acquire.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateFetching, StateAcquiring, StateRotating:
		return "v: verbose • esc: cancel"
	case StateComplete, StateError:
		return "q: quit"
	}
	return ""
}

// fetchTracks pulls the wanted list from the recommendation source.
func (m *Model) fetchTracks() tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.runner.FetchTracks(m.ctx)
		return TracksMsg{Tracks: tracks, Err: err}
	}
}

// acquireAll runs the batch acquisition in the background.
func (m *Model) acquireAll() tea.Cmd {
	return func() tea.Msg {
		summary := m.runner.AcquireAll(m.ctx, m.tracks)
		return AcquireDoneMsg{Summary: summary}
	}
}

// rotate applies the collection policy and regenerates the playlist.
func (m *Model) rotate() tea.Cmd {
	return func() tea.Msg {
		result, err := m.runner.Rotate()
		if err == nil {
			if perr := m.runner.WritePlaylist(); perr != nil {
				err = perr
			}
		}
		return RotateDoneMsg{Result: result, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, log zerolog.Logger) error {
	m, err := NewModel(settings, log)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
