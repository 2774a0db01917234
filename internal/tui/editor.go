package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/logging"
	"github.com/muurk/segmentform/internal/segment"
	"github.com/muurk/segmentform/internal/submit"
)

// Placeholders for selectors with no value chosen
const (
	rowPlaceholder     = "Select schema"
	pendingPlaceholder = "Add schema to segment"
)

// submitResultMsg carries the outcome of the single submission attempt
type submitResultMsg struct {
	segment  segment.Segment
	err      error
	duration time.Duration
}

// editorKeyMap defines key bindings for the editor popup
type editorKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Enter  key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Right, k.Enter, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Right},
		{k.Enter, k.Cancel},
	}
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("←/→", "choose schema"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// EditorModel is the segment popup: a name input, one selector per
// committed row, the pending selector and the three buttons.
//
// Focus order: name (0), rows (1..n), pending, add, save, cancel.
type EditorModel struct {
	Editor    *segment.Editor
	NameInput textinput.Model
	Focus     int

	// Submission state
	Submitting bool
	LastError  error
	Spinner    spinner.Model

	// Set when the popup should close. Submitted is non-nil only after success.
	Closed    bool
	Submitted *segment.Segment

	// UI state
	Width  int
	Height int

	Help help.Model
	Keys editorKeyMap

	submitter submit.Submitter
	endpoint  string
	timeout   time.Duration
}

// NewEditorModel opens an editor with empty rows over catalog
func NewEditorModel(catalog *segment.Catalog, submitter submit.Submitter, endpoint string, timeout time.Duration) EditorModel {
	name := textinput.New()
	name.Placeholder = "Name of the segment"
	name.CharLimit = 120
	name.Width = 40
	name.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return EditorModel{
		Editor:    segment.NewEditor(catalog),
		NameInput: name,
		Spinner:   s,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Help:      help.New(),
		Keys:      newEditorKeyMap(),
		submitter: submitter,
		endpoint:  endpoint,
		timeout:   timeout,
	}
}

// Focus positions derived from the current row count
func (m EditorModel) pendingFocus() int { return 1 + m.Editor.Len() }
func (m EditorModel) addFocus() int     { return m.pendingFocus() + 1 }
func (m EditorModel) saveFocus() int    { return m.pendingFocus() + 2 }
func (m EditorModel) cancelFocus() int  { return m.pendingFocus() + 3 }

// isRowFocus reports whether focus is on a committed row and which one
func (m EditorModel) isRowFocus() (int, bool) {
	if m.Focus >= 1 && m.Focus < m.pendingFocus() {
		return m.Focus - 1, true
	}
	return 0, false
}

// Init initializes the editor
func (m EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case submitResultMsg:
		return m.handleSubmitResult(msg)

	case spinner.TickMsg:
		if !m.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Input is locked until the outcome is reported
		if m.Submitting {
			return m, nil
		}
		return m.handleKey(msg)
	}

	if m.Focus == 0 {
		var cmd tea.Cmd
		m.NameInput, cmd = m.NameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		return m.cancel()

	case key.Matches(msg, m.Keys.Next):
		return m.moveFocus(1)

	case key.Matches(msg, m.Keys.Prev):
		return m.moveFocus(-1)

	case key.Matches(msg, m.Keys.Enter):
		return m.activate()

	case m.Focus != 0 && key.Matches(msg, m.Keys.Left):
		m.cycle(-1)
		return m, nil

	case m.Focus != 0 && key.Matches(msg, m.Keys.Right):
		m.cycle(1)
		return m, nil
	}

	if m.Focus == 0 {
		var cmd tea.Cmd
		m.NameInput, cmd = m.NameInput.Update(msg)
		m.Editor.SetName(m.NameInput.Value())
		return m, cmd
	}
	return m, nil
}

// moveFocus moves focus by delta, wrapping around
func (m EditorModel) moveFocus(delta int) (tea.Model, tea.Cmd) {
	total := m.cancelFocus() + 1
	m.Focus = ((m.Focus+delta)%total + total) % total

	if m.Focus == 0 {
		return m, m.NameInput.Focus()
	}
	m.NameInput.Blur()
	return m, nil
}

// activate handles enter on the focused element
func (m EditorModel) activate() (tea.Model, tea.Cmd) {
	switch m.Focus {
	case m.addFocus():
		// An empty pending selection is ignored
		if m.Editor.CommitPendingRow() {
			// The new row pushes the buttons down by one
			m.Focus++
			logging.Debug("Schema row added",
				zap.String("key", m.Editor.Pending()),
				zap.Int("rows", m.Editor.Len()),
			)
		}
		return m, nil

	case m.saveFocus():
		return m.startSubmit()

	case m.cancelFocus():
		return m.cancel()
	}

	return m.moveFocus(1)
}

// cycle steps the focused selector through "" and its available options
func (m *EditorModel) cycle(delta int) {
	var current string
	row, onRow := m.isRowFocus()

	switch {
	case onRow:
		r, err := m.Editor.Row(row)
		if err != nil {
			return
		}
		current = r.Key
	case m.Focus == m.pendingFocus():
		current = m.Editor.Pending()
	default:
		return
	}

	// The pending selector never offers keys already used by a row
	offerFor := current
	if !onRow {
		offerFor = ""
	}
	choices := []string{""}
	for _, e := range m.Editor.AvailableOptionsFor(offerFor) {
		choices = append(choices, e.Key)
	}

	idx := 0
	for i, k := range choices {
		if k == current {
			idx = i
			break
		}
	}
	next := choices[((idx+delta)%len(choices)+len(choices))%len(choices)]

	if onRow {
		if err := m.Editor.ChangeRowSelection(row, next); err != nil {
			logging.Error("Row selection failed", zap.Error(err))
		}
		return
	}
	m.Editor.SetPendingSelection(next)
}

func (m EditorModel) startSubmit() (tea.Model, tea.Cmd) {
	seg := m.Editor.Serialize()
	m.Submitting = true
	m.LastError = nil

	logging.Info("Submitting segment",
		zap.String("name", seg.Name),
		zap.Strings("keys", seg.Keys()),
		zap.String("endpoint", m.endpoint),
	)

	return m, tea.Batch(m.Spinner.Tick, submitCmd(m.submitter, seg, m.timeout))
}

// submitCmd performs the submission off the UI loop
func submitCmd(s submit.Submitter, seg segment.Segment, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		err := s.Submit(ctx, seg)
		return submitResultMsg{segment: seg, err: err, duration: time.Since(start)}
	}
}

func (m EditorModel) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	m.Submitting = false

	if msg.err != nil {
		// Rows and name stay as they are so the user can retry
		m.LastError = msg.err
		logging.Error("Segment submission failed", zap.Error(msg.err))
		return m, nil
	}

	seg := msg.segment
	m.Submitted = &seg
	m.Closed = true
	m.Editor.Reset()
	return m, nil
}

func (m EditorModel) cancel() (tea.Model, tea.Cmd) {
	m.Editor.Reset()
	m.Closed = true
	return m, nil
}

// View renders the editor popup inside the application container
func (m EditorModel) View() string {
	return RenderApplicationContainer(m.buildContent(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m EditorModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Saving Segment"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("To save your segment, add the schemas to build the query"))
	b.WriteString("\n\n")

	var lines []string
	lines = append(lines, m.renderLine("Segment name", m.NameInput.View(), m.Focus == 0))

	for i, row := range m.Editor.Rows() {
		lines = append(lines, m.renderSelector(fmt.Sprintf("Schema %d", i+1), row.Key, rowPlaceholder, m.Focus == i+1))
	}
	lines = append(lines, m.renderSelector("New schema", m.Editor.Pending(), pendingPlaceholder, m.Focus == m.pendingFocus()))

	lines = append(lines, "", RenderButton("+ Add new schema", m.Focus == m.addFocus()))
	lines = append(lines, "",
		lipgloss.JoinHorizontal(lipgloss.Top,
			RenderButton("Save the Segment", m.Focus == m.saveFocus()),
			"   ",
			RenderButton("Cancel", m.Focus == m.cancelFocus()),
		),
	)

	b.WriteString(PopupStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")

	switch {
	case m.Submitting:
		b.WriteString(m.Spinner.View() + " Sending segment to " + m.endpoint + "...")
	case m.LastError != nil:
		b.WriteString(RenderError(submit.ShortMessage(m.LastError)))
		b.WriteString("\n")
		for _, hint := range submit.TroubleshootingHints(m.LastError) {
			b.WriteString(NoticeStyle.Render("• " + hint))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m EditorModel) renderLine(label, value string, focused bool) string {
	arrow := "  "
	labelStyle := LabelStyle
	if focused {
		arrow = "→ "
		labelStyle = FocusedLabelStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, arrow, labelStyle.Render(label), value)
}

func (m EditorModel) renderSelector(label, selected, placeholder string, focused bool) string {
	value := PlaceholderStyle.Render(placeholder)
	if selected != "" {
		text := m.Editor.Catalog().Label(selected)
		if text == "" {
			text = selected
		}
		value = text
		if focused {
			value = FocusedValueStyle.Render(text)
		}
	}

	if focused {
		value = "◀ " + value + " ▶"
	}
	return m.renderLine(label, value, focused)
}
