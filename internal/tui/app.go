package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/segmentform/internal/segment"
	"github.com/muurk/segmentform/internal/submit"
	"github.com/muurk/segmentform/internal/ui"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenLauncher Screen = "launcher"
	ScreenEditor   Screen = "editor"
)

// launcherKeyMap defines key bindings for the launcher screen
type launcherKeyMap struct {
	Open key.Binding
	Quit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k launcherKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k launcherKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Quit},
	}
}

// Options configures the application
type Options struct {
	Catalog   *segment.Catalog
	Submitter submit.Submitter
	Endpoint  string
	Timeout   time.Duration
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	CurrentScreen Screen

	EditorModel EditorModel

	// Result of the last editor session
	LastSegment *segment.Segment
	Notice      string

	// UI state
	Width  int
	Height int

	Help help.Model
	Keys launcherKeyMap

	options Options
}

// NewAppModel creates the application model on the launcher screen
func NewAppModel(opts Options) AppModel {
	if opts.Catalog == nil {
		opts.Catalog = segment.DefaultCatalog()
	}
	if opts.Submitter == nil {
		client := submit.NewClient(opts.Endpoint)
		opts.Endpoint = client.Endpoint
		if opts.Timeout > 0 {
			client.SetTimeout(opts.Timeout)
		}
		opts.Submitter = client
	}

	return AppModel{
		CurrentScreen: ScreenLauncher,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Help:          help.New(),
		Keys: launcherKeyMap{
			Open: key.NewBinding(
				key.WithKeys("enter", "s"),
				key.WithHelp("enter/s", "save segment"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc"),
				key.WithHelp("q", "quit"),
			),
		},
		options: opts,
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.EditorModel.Width = msg.Width
		m.EditorModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.CurrentScreen {
	case ScreenEditor:
		return m.updateEditor(msg)
	default:
		return m.updateLauncher(msg)
	}
}

func (m AppModel) updateLauncher(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.Keys.Open):
		return m.openEditor()
	case key.Matches(keyMsg, m.Keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// openEditor starts a fresh editor session with empty rows
func (m AppModel) openEditor() (tea.Model, tea.Cmd) {
	m.EditorModel = NewEditorModel(m.options.Catalog, m.options.Submitter, m.options.Endpoint, m.options.Timeout)
	m.EditorModel.Width = m.Width
	m.EditorModel.Height = m.Height
	m.CurrentScreen = ScreenEditor
	m.Notice = ""
	return m, m.EditorModel.Init()
}

func (m AppModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.EditorModel.Update(msg)
	m.EditorModel = updated.(EditorModel)

	if !m.EditorModel.Closed {
		return m, cmd
	}

	m.CurrentScreen = ScreenLauncher
	if seg := m.EditorModel.Submitted; seg != nil {
		m.LastSegment = seg
		m.Notice = fmt.Sprintf("Segment %q saved", seg.Name)
	} else {
		m.Notice = "Segment discarded"
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	if m.CurrentScreen == ScreenEditor {
		return m.EditorModel.View()
	}
	return RenderApplicationContainer(m.buildLauncherContent(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m AppModel) buildLauncherContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Segments"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("Submitting to " + m.options.Endpoint))
	b.WriteString("\n\n")
	b.WriteString(RenderButton("Save segment", true))
	b.WriteString("\n\n")

	if m.Notice != "" {
		if m.LastSegment != nil {
			b.WriteString(RenderSuccess(m.Notice))
		} else {
			b.WriteString(NoticeStyle.Render(m.Notice))
		}
		b.WriteString("\n")
	}

	if m.LastSegment != nil {
		b.WriteString("\n")
		b.WriteString(ui.RenderSegmentPreview(*m.LastSegment, m.Width-8))
		b.WriteString("\n")
	}

	return b.String()
}

// Run starts the interactive editor and blocks until the user quits
func Run(opts Options) error {
	program := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("segment editor: %w", err)
	}
	return nil
}
