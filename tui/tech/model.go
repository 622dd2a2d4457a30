// Package tech renders the disconnected technology bulk-editor: mark a
// set of entries, reassign their status in one stroke, and exchange the
// whole list as a JSON file. Nothing here talks to the backend.
package tech

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

// ExportFileName is where x writes and i reads the exchange file.
const ExportFileName = "pulse-tech-export.json"

// ioResultMsg reports a finished export or import.
type ioResultMsg struct {
	action string
	count  int
	err    error
}

// Model holds the state for the technology editor.
type Model struct {
	service app.TechnologyService

	items  []domain.Technology
	cursor int
	marked map[string]bool
	status string
	errMsg string
}

// New creates the technology editor.
func New(service app.TechnologyService) Model {
	return Model{
		service: service,
		items:   service.List(),
		marked:  map[string]bool{},
	}
}

// Init is a no-op; the list is loaded synchronously.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the technology editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ioResultMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			return m, nil
		}
		m.errMsg = ""
		switch msg.action {
		case "export":
			m.status = fmt.Sprintf("Exported %d entries to %s.", msg.count, ExportFileName)
		case "import":
			m.items = m.service.List()
			m.marked = map[string]bool{}
			m.cursor = 0
			m.status = fmt.Sprintf("Imported %d entries.", msg.count)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		if m.cursor < len(m.items) {
			id := m.items[m.cursor].ID
			if m.marked[id] {
				delete(m.marked, id)
			} else {
				m.marked[id] = true
			}
		}
	case "a":
		if len(m.marked) == len(m.items) {
			m.marked = map[string]bool{}
		} else {
			for _, item := range m.items {
				m.marked[item.ID] = true
			}
		}
	case "1":
		return m.applyStatus(domain.TechActive)
	case "2":
		return m.applyStatus(domain.TechInactive)
	case "3":
		return m.applyStatus(domain.TechPending)
	case "4":
		return m.applyStatus(domain.TechCompleted)
	case "x":
		return m, m.exportCmd()
	case "i":
		return m, m.importCmd()
	}
	return m, nil
}

// applyStatus reassigns the marked entries, falling back to the cursor
// row when nothing is marked.
func (m Model) applyStatus(status domain.TechStatus) (Model, tea.Cmd) {
	ids := make([]string, 0, len(m.marked))
	for id := range m.marked {
		ids = append(ids, id)
	}
	if len(ids) == 0 && m.cursor < len(m.items) {
		ids = append(ids, m.items[m.cursor].ID)
	}
	if len(ids) == 0 {
		return m, nil
	}

	changed, err := m.service.BulkSetStatus(ids, status)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.items = m.service.List()
	m.errMsg = ""
	m.status = fmt.Sprintf("Set %d of %d to %s.", changed, len(ids), status)
	return m, nil
}

func (m Model) exportCmd() tea.Cmd {
	service := m.service
	count := len(m.items)
	return func() tea.Msg {
		data, err := service.Export()
		if err != nil {
			return ioResultMsg{action: "export", err: err}
		}
		if err := os.WriteFile(ExportFileName, data, 0o644); err != nil {
			return ioResultMsg{action: "export", err: err}
		}
		return ioResultMsg{action: "export", count: count}
	}
}

func (m Model) importCmd() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		data, err := os.ReadFile(ExportFileName)
		if err != nil {
			return ioResultMsg{action: "import", err: err}
		}
		count, err := service.Import(data)
		return ioResultMsg{action: "import", count: count, err: err}
	}
}
