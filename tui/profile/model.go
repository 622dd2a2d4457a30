// Package profile renders the profile editor: display name, bio, and
// the avatar picker over the fixed symbolic set. Saving goes through
// ProfileService.Update; the refreshed session state flows back in via
// the root model.
package profile

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

const (
	fieldDisplayName = iota
	fieldBio
	fieldAvatar
	fieldCount
)

// SavedMsg is sent when a save attempt finishes.
type SavedMsg struct {
	Err error
	Seq int
}

// Model holds the state for the profile editor.
type Model struct {
	profiles app.ProfileService
	session  app.SessionService

	inputs   []textinput.Model
	focused  int
	avatar   int // index into domain.Avatars, -1 when keeping a hosted photo
	photoURL string
	saving   bool
	status   string
	errMsg   string
	seq      int
}

// New creates the profile editor prefilled from the current session.
func New(profiles app.ProfileService, session app.SessionService) Model {
	user, _ := session.Current()

	displayName := textinput.New()
	displayName.Placeholder = "display name"
	displayName.CharLimit = 60
	displayName.SetValue(user.DisplayName)
	displayName.Focus()

	bio := textinput.New()
	bio.Placeholder = "bio"
	bio.CharLimit = 200
	bio.SetValue(user.Bio)

	avatar := -1
	for i, id := range domain.Avatars {
		if user.PhotoURL == id {
			avatar = i
		}
	}
	if user.PhotoURL == "" {
		avatar = 0
	}

	return Model{
		profiles: profiles,
		session:  session,
		inputs:   []textinput.Model{displayName, bio},
		avatar:   avatar,
		photoURL: user.PhotoURL,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the profile editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focused = (m.focused + 1) % fieldCount
			return m.refocus(), nil
		case "shift+tab", "up":
			m.focused = (m.focused - 1 + fieldCount) % fieldCount
			return m.refocus(), nil
		case "left":
			if m.focused == fieldAvatar {
				m.avatar = (m.avatar - 1 + len(domain.Avatars)) % len(domain.Avatars)
				return m, nil
			}
		case "right":
			if m.focused == fieldAvatar {
				m.avatar = (m.avatar + 1) % len(domain.Avatars)
				return m, nil
			}
		case "enter":
			if m.focused < fieldCount-1 {
				m.focused++
				return m.refocus(), nil
			}
			return m.save()
		case "ctrl+s":
			return m.save()
		}

		if m.focused < len(m.inputs) {
			var cmd tea.Cmd
			m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
			return m, cmd
		}
		return m, nil

	case SavedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.saving = false
		if msg.Err != nil {
			m.errMsg = "Save failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = "Profile saved."
		return m, nil
	}

	if m.focused < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) refocus() Model {
	for i := range m.inputs {
		if i == m.focused {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m Model) save() (Model, tea.Cmd) {
	displayName := m.inputs[fieldDisplayName].Value()
	bio := m.inputs[fieldBio].Value()

	upd := app.ProfileUpdate{
		DisplayName: &displayName,
		Bio:         &bio,
	}
	if m.avatar >= 0 {
		upd.AvatarID = domain.Avatars[m.avatar]
	}

	m.saving = true
	m.errMsg = ""
	m.status = ""
	m.seq++
	seq := m.seq

	profiles := m.profiles
	return m, func() tea.Msg {
		return SavedMsg{Err: profiles.Update(context.Background(), upd), Seq: seq}
	}
}
