package tech

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/tui/common"
)

var statusStyles = map[domain.TechStatus]lipgloss.Style{
	domain.TechActive:    common.SuccessStyle,
	domain.TechInactive:  common.HintStyle,
	domain.TechPending:   common.CounterStyle,
	domain.TechCompleted: common.AuthorStyle,
}

// View renders the technology editor.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render("⚡ Pulse"))
	b.WriteString(common.TaglineStyle.Render("technology tracker"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString("  Nothing tracked yet. i imports " + ExportFileName + ".\n")
	}

	for i, item := range m.items {
		marker := "  "
		if i == m.cursor {
			marker = common.LikedStyle.Render("> ")
		}
		check := "[ ]"
		if m.marked[item.ID] {
			check = common.SuccessStyle.Render("[x]")
		}
		status := statusStyles[item.Status].Render(string(item.Status))
		line := fmt.Sprintf("%s%s %-16s %-10s %s",
			marker, check, item.Name, status, common.HintStyle.Render(item.Category))
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.errMsg != "":
		b.WriteString("  " + common.ErrorStyle.Render(m.errMsg) + "\n")
	case m.status != "":
		b.WriteString("  " + common.SuccessStyle.Render(m.status) + "\n")
	}

	b.WriteString("  " + common.HintStyle.Render(
		"space: mark • a: mark all • 1-4: active/inactive/pending/completed • x: export • i: import • esc: back") + "\n")
	return b.String()
}
