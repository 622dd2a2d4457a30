package profile

import (
	"strings"

	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/tui/common"
)

// View renders the profile editor.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(common.AppTitleStyle.Render("⚡ Pulse"))
	b.WriteString(common.TaglineStyle.Render("edit profile"))
	b.WriteString("\n\n")

	labels := []string{"Display name", "Bio"}
	for i, input := range m.inputs {
		b.WriteString("  ")
		b.WriteString(common.InputLabelStyle.Render(labels[i]))
		b.WriteString("\n  ")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	b.WriteString("  ")
	b.WriteString(common.InputLabelStyle.Render("Avatar"))
	b.WriteString("\n  ")
	b.WriteString(m.avatarRow())
	b.WriteString("\n\n")

	switch {
	case m.errMsg != "":
		b.WriteString("  " + common.ErrorStyle.Render(m.errMsg) + "\n\n")
	case m.status != "":
		b.WriteString("  " + common.SuccessStyle.Render(m.status) + "\n\n")
	case m.saving:
		b.WriteString("  " + common.StatusBarStyle.Render("Saving...") + "\n\n")
	}

	b.WriteString("  ")
	b.WriteString(common.HintStyle.Render("tab: next field • ←/→: pick avatar • ctrl+s: save • esc: back"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) avatarRow() string {
	if m.avatar < 0 {
		return common.HintStyle.Render(common.AvatarGlyph(m.photoURL) + " (uploaded photo, ←/→ to replace)")
	}
	var parts []string
	for i, id := range domain.Avatars {
		glyph := common.AvatarGlyph(id)
		if i == m.avatar {
			if m.focused == fieldAvatar {
				glyph = common.SuccessStyle.Render("[" + glyph + "]")
			} else {
				glyph = common.SuccessStyle.Render(" " + glyph + " ")
			}
		} else {
			glyph = common.HintStyle.Render(" " + glyph + " ")
		}
		parts = append(parts, glyph)
	}
	return strings.Join(parts, " ")
}
