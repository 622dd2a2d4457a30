package login

import (
	"strings"

	"github.com/pulsefeed/pulse/tui/common"
)

// View renders the auth form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render("⚡ Pulse"))
	if m.mode == signUpMode {
		b.WriteString(common.TaglineStyle.Render("create your account"))
	} else {
		b.WriteString(common.TaglineStyle.Render("sign in"))
	}
	b.WriteString("\n\n")

	labels := []string{"Email", "Password", "Display name"}
	for i := 0; i < m.fieldCount(); i++ {
		b.WriteString("  ")
		b.WriteString(common.InputLabelStyle.Render(labels[i]))
		b.WriteString("\n  ")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	if m.errMsg != "" {
		b.WriteString("  ")
		b.WriteString(common.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}
	if m.submitting {
		b.WriteString("  ")
		b.WriteString(common.StatusBarStyle.Render("Signing in..."))
		b.WriteString("\n")
		return b.String()
	}

	hint := "enter: sign in • ctrl+s: create account • ctrl+c: quit"
	if m.mode == signUpMode {
		hint = "enter: create account • ctrl+s: back to sign in • ctrl+c: quit"
	}
	b.WriteString("  ")
	b.WriteString(common.HintStyle.Render(hint))
	b.WriteString("\n")
	return b.String()
}
