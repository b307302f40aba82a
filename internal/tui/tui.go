// Package tui provides a Bubble Tea terminal user interface for multialbum.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/multialbum/internal/config"
	"github.com/handiism/multialbum/internal/logging"
	"github.com/handiism/multialbum/internal/renumber"
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
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   renumber.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   textinput.Model
	output   textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	result   *renumber.Result
	err      error

	ctx    context.Context
	cancel context.CancelFunc

	manager *renumber.Manager
	events  chan renumber.ProgressEvent
	current renumber.Progress

	// Options
	playlist bool
	verify   bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model using settings as the base
// configuration for every run.
func NewModel(settings *config.Settings) Model {
	in := textinput.New()
	in.Placeholder = "/music/Box Set/CD1" + string(os.PathListSeparator) + "/music/Box Set/CD2"
	in.Focus()
	in.CharLimit = 2000
	in.Width = 60

	out := textinput.New()
	out.Placeholder = "/music/Box Set (merged)"
	out.CharLimit = 500
	out.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:    StateInput,
		inputs:   in,
		output:   out,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		playlist: settings.CreatePlaylist,
		verify:   settings.Verify,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one pipeline event.
	ProgressMsg struct {
		Event renumber.ProgressEvent
	}

	// RunDoneMsg is sent when the pipeline returns.
	RunDoneMsg struct {
		Result *renumber.Result
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
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
			}

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.toggleFocus()
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				if m.focus == 0 {
					m.toggleFocus()
					return m, nil
				}
				if m.inputs.Value() != "" && m.output.Value() != "" {
					cmd := m.start()
					return m, cmd
				}
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+y":
			if m.state == StateInput {
				m.verify = !m.verify
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == renumber.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case RunDoneMsg:
		m.result = msg.Result
		if m.manager != nil {
			m.current = m.manager.GetProgress()
		}
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.state = StateError
			m.err = errors.New("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.current = m.manager.GetProgress()

			var percent float64
			if m.current.Total > 0 {
				percent = float64(m.current.Done) / float64(m.current.Total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		if m.focus == 0 {
			m.inputs, cmd = m.inputs.Update(msg)
		} else {
			m.output, cmd = m.output.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.inputs.Blur()
		m.output.Focus()
	} else {
		m.focus = 0
		m.output.Blur()
		m.inputs.Focus()
	}
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.result = nil
	m.err = nil
	m.manager = nil
	m.events = nil
	m.current = renumber.Progress{}
	m.focus = 1
	m.toggleFocus()
}

// start builds a manager for the entered directories and launches the run.
func (m *Model) start() tea.Cmd {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.Verify = m.verify

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.events = make(chan renumber.ProgressEvent, 64)
	m.state = StateRunning

	ctx, events := m.ctx, m.events
	m.manager = renumber.NewManager(&settings, logging.Discard(), func(event renumber.ProgressEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	})

	opts := renumber.Options{
		InputDirs: splitDirs(m.inputs.Value()),
		OutputDir: strings.TrimSpace(m.output.Value()),
	}
	manager := m.manager
	run := func() tea.Msg {
		defer close(events)
		result, err := manager.Run(ctx, opts)
		return RunDoneMsg{Result: result, Err: err}
	}

	return tea.Batch(run, m.waitForEvent(), m.tickProgress(), m.spinner.Tick)
}

// waitForEvent returns a command that delivers the next pipeline event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// splitDirs splits the input field on the OS path list separator.
func splitDirs(s string) []string {
	var dirs []string
	for _, d := range filepath.SplitList(s) {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("💿 Multi-Disk Album Renumber"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Merge disks into one directory and renumber the tracks"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Input directories (separated by %q):", string(os.PathListSeparator))))
	b.WriteString("\n")
	b.WriteString(m.inputs.View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Output directory:"))
	b.WriteString("\n")
	b.WriteString(m.output.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Verify track numbers (ctrl+y)\n", checkbox(m.verify))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+v)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Audio extension: .%s | Workers: %d", m.settings.AudioExtension, m.settings.WorkerCount())))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(phaseTitle(m.current.Phase)))
	b.WriteString("\n\n")

	var percent float64
	if m.current.Total > 0 {
		percent = float64(m.current.Done) / float64(m.current.Total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.current.Done, m.current.Total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func phaseTitle(p renumber.Phase) string {
	switch p {
	case renumber.PhaseSelect:
		return "Selecting files..."
	case renumber.PhaseCopy:
		return "Copying files..."
	case renumber.PhaseRenumber:
		return "Updating track metadata..."
	case renumber.PhaseVerify:
		return "Verifying track metadata..."
	default:
		return "Finishing..."
	}
}

func (m Model) viewComplete() string {
	var b strings.Builder

	var copied, skipped, renumbered int
	playlist := "-"
	if m.result != nil {
		copied, skipped, renumbered = m.result.Copied, m.result.Skipped, len(m.result.Tracks)
		if m.result.PlaylistPath != "" {
			playlist = filepath.Base(m.result.PlaylistPath)
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Renumber Complete!\n\n"+
			"Copied: %d\n"+
			"Renumbered: %d\n"+
			"Skipped: %d\n"+
			"Playlist: %s",
		copied, renumbered, skipped, playlist,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case renumber.LevelError:
			style = errorStyle
			prefix = "✗"
		case renumber.LevelWarning:
			style = warningStyle
			prefix = "!"
		case renumber.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case renumber.LevelInfo:
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
	case StateInput:
		return "tab: switch field • enter: start • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
