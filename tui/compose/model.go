// Package compose captures post text, either inline with a textarea or
// through $EDITOR. The model never publishes anything itself; it hands
// the finished text back to the root model via DoneMsg.
package compose

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/infra/editor"
)

type mode int

const (
	editorMode mode = iota
	inlineMode
)

// DoneMsg is sent when composing is complete. Empty Content means the
// user cancelled.
type DoneMsg struct {
	Content string
	Err     error
}

// editorFinishedMsg is sent after the external editor exits.
type editorFinishedMsg struct {
	tmpPath string
	err     error
}

// Model holds the state for the compose view.
type Model struct {
	mode     mode
	editor   *editor.EnvEditor
	status   string
	textarea textarea.Model // inline mode only
	tmpPath  string
}

// NewEditor creates a compose model that opens $EDITOR via tea.Exec.
func NewEditor(ed *editor.EnvEditor) Model {
	return Model{
		mode:   editorMode,
		editor: ed,
		status: "Opening editor...",
	}
}

// NewInline creates a compose model with an inline textarea.
func NewInline() Model {
	ta := textarea.New()
	ta.Placeholder = "What's on your mind?"
	ta.CharLimit = domain.MaxPostLen
	ta.SetWidth(72)
	ta.SetHeight(6)
	ta.Focus()

	return Model{
		mode:     inlineMode,
		textarea: ta,
	}
}

// Init returns the initial command for the active mode.
func (m Model) Init() tea.Cmd {
	switch m.mode {
	case editorMode:
		return m.launchEditor()
	case inlineMode:
		return textarea.Blink
	}
	return nil
}

// launchEditor prepares the editor command and uses tea.Exec to properly
// suspend Bubble Tea's raw terminal mode while the editor runs.
func (m *Model) launchEditor() tea.Cmd {
	cmd, tmpPath, err := m.editor.Cmd("")
	if err != nil {
		return func() tea.Msg {
			return DoneMsg{Err: fmt.Errorf("preparing editor: %w", err)}
		}
	}
	m.tmpPath = tmpPath

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{tmpPath: tmpPath, err: err}
	})
}

// Update handles messages for the compose view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editorFinishedMsg:
		if msg.err != nil {
			return m, done(DoneMsg{Err: fmt.Errorf("editor: %w", msg.err)})
		}
		content, err := m.editor.ReadContent(msg.tmpPath)
		if err != nil {
			return m, done(DoneMsg{Err: err})
		}
		return m, done(DoneMsg{Content: content})

	case tea.KeyMsg:
		if m.mode != inlineMode {
			break
		}
		switch msg.String() {
		case "esc":
			return m, done(DoneMsg{})
		case "ctrl+d":
			return m, done(DoneMsg{Content: m.textarea.Value()})
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}

	if m.mode == inlineMode {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	return m, nil
}

// done wraps a DoneMsg into a tea.Cmd for immediate delivery.
func done(msg DoneMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
