// Package tui provides a Bubble Tea terminal user interface for sped-tables.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/sped-tables/internal/config"
	"github.com/handiism/sped-tables/internal/download"
	ioutils "github.com/handiism/sped-tables/internal/io"
	"github.com/handiism/sped-tables/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2A9D8F")).
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

	variantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// logBuffer keeps the most recent progress events. The manager writes to it
// from worker goroutines; the UI reads it on each tick.
type logBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	verbose bool
}

func (b *logBuffer) add(event download.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if event.Level == download.LevelVerbose && !b.verbose {
		return
	}
	b.entries = append(b.entries, LogEntry{Message: event.Message, Level: event.Level})
	// Keep only last 10 logs
	if len(b.entries) > 10 {
		b.entries = b.entries[len(b.entries)-10:]
	}
}

func (b *logBuffer) snapshot() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]LogEntry(nil), b.entries...)
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      *logBuffer
	summaries []*download.Summary
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager

	// Download progress
	variant         model.Variant
	downloadedFiles int32
	failedFiles     int32
	totalFiles      int32

	// Options
	abortOnError bool
	verbose      bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "SpedFiscal, SpedPisCofins, SpedContabil, SpedEcf"
	ti.SetValue(strings.Join(settings.Variants, ", "))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2A9D8F"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:        StateInput,
		textInput:    ti,
		spinner:      sp,
		progress:     prog,
		settings:     settings,
		logs:         &logBuffer{},
		ctx:          ctx,
		cancel:       cancel,
		abortOnError: settings.AbortOnError,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// StartedMsg is sent once the manager is created.
	StartedMsg struct {
		Manager  *download.Manager
		Variants []model.Variant
		Store    *ioutils.Store
		Err      error
	}

	// DoneMsg is sent when all variants have been processed.
	DoneMsg struct {
		Summaries []*download.Summary
		Err       error
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
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && len(model.ParseVariants(m.textInput.Value())) > 0 {
				m.state = StateDownloading
				m.logs.verbose = m.verbose
				return m, tea.Batch(m.start(), m.spinner.Tick)
			}

		case "ctrl+a":
			if m.state == StateInput {
				m.abortOnError = !m.abortOnError
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
				// Reset for a new run
				m.state = StateInput
				m.logs = &logBuffer{}
				m.summaries = nil
				m.err = nil
				m.manager = nil
				m.variant = ""
				m.downloadedFiles = 0
				m.failedFiles = 0
				m.totalFiles = 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StartedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			cmds = append(cmds, m.run(msg.Manager, msg.Variants, msg.Store), m.tickProgress())
		}

	case DoneMsg:
		m.summaries = msg.Summaries
		m.refresh()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			percent := m.refresh()
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// refresh copies the manager counters into the model and returns the
// completed fraction.
func (m *Model) refresh() float64 {
	if m.manager == nil {
		return 0
	}
	m.downloadedFiles, m.failedFiles, m.totalFiles = m.manager.GetProgress()
	m.variant = m.manager.CurrentVariant()
	if m.totalFiles == 0 {
		return 0
	}
	return float64(m.downloadedFiles+m.failedFiles) / float64(m.totalFiles)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📑 SPED Tables Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download SPED external reference tables"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Variants to fetch:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Abort on first error (ctrl+a)\n", checkbox(m.abortOnError)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s | Workers: %d", m.settings.OutputURL, m.settings.Parallelism())))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.variant != "" {
		b.WriteString(variantStyle.Render(fmt.Sprintf("Processing %s", m.variant)))
	} else {
		b.WriteString(subtitleStyle.Render("Fetching table listing..."))
	}
	b.WriteString("\n\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles+m.failedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Tables: %d/%d | Failed: %d",
		m.downloadedFiles,
		m.totalFiles,
		m.failedFiles,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	var lines []string
	for _, s := range m.summaries {
		line := fmt.Sprintf("%s: %d/%d", s.Variant, s.Completed, s.Total)
		if s.Err != nil {
			line += " (" + s.Err.Error() + ")"
		} else if len(s.Failures) > 0 {
			line += fmt.Sprintf(" (%d failed)", len(s.Failures))
		}
		lines = append(lines, line)
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Tables: %d/%d\n"+
			"Failed: %d\n\n%s",
		m.downloadedFiles,
		m.totalFiles,
		m.failedFiles,
		strings.Join(lines, "\n"),
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs.snapshot() {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
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
		return "enter: start • ctrl+a: abort on error • ctrl+v: verbose • esc: quit"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

// start opens the output store and creates the manager.
func (m *Model) start() tea.Cmd {
	ctx := m.ctx
	logs := m.logs
	settings := *m.settings
	settings.AbortOnError = m.abortOnError
	variants := model.ParseVariants(m.textInput.Value())

	return func() tea.Msg {
		store, err := ioutils.OpenStore(ctx, settings.OutputURL)
		if err != nil {
			return StartedMsg{Err: err}
		}

		manager, err := download.NewManager(ctx, &settings, store, logs.add)
		if err != nil {
			store.Close()
			return StartedMsg{Err: err}
		}

		return StartedMsg{Manager: manager, Variants: variants, Store: store}
	}
}

// run processes every variant in the background.
func (m *Model) run(manager *download.Manager, variants []model.Variant, store *ioutils.Store) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		defer store.Close()
		summaries, err := manager.Run(ctx, variants)
		return DoneMsg{Summaries: summaries, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
