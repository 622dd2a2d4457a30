// Package login renders the sign-in / sign-up form shown before a
// session exists.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/social"
)

type mode int

const (
	signInMode mode = iota
	signUpMode
)

const (
	fieldEmail = iota
	fieldPassword
	fieldDisplayName
)

// ResultMsg is sent when a submit attempt finishes.
type ResultMsg struct {
	Err error
	Seq int
}

// Model holds the state for the auth form.
type Model struct {
	session app.SessionService

	mode       mode
	inputs     []textinput.Model
	focused    int
	submitting bool
	errMsg     string
	seq        int // Discards results from a superseded submit.
}

// New creates the auth form in sign-in mode.
func New(session app.SessionService) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	displayName := textinput.New()
	displayName.Placeholder = "display name (optional)"
	displayName.CharLimit = 60

	return Model{
		session: session,
		inputs:  []textinput.Model{email, password, displayName},
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) fieldCount() int {
	if m.mode == signUpMode {
		return 3
	}
	return 2
}

// Update handles messages for the auth form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab":
			m.focused = (m.focused + 1) % m.fieldCount()
			return m.refocus(), nil
		case "shift+tab":
			m.focused = (m.focused - 1 + m.fieldCount()) % m.fieldCount()
			return m.refocus(), nil
		case "ctrl+s":
			m = m.toggleMode()
			return m.refocus(), nil
		case "enter":
			if m.focused < m.fieldCount()-1 {
				m.focused++
				return m.refocus(), nil
			}
			return m.submit()
		}

		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd

	case ResultMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.errMsg = social.AuthMessage(msg.Err)
			return m, nil
		}
		// A successful auth flows back in through the session listener;
		// nothing to do here.
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) toggleMode() Model {
	if m.mode == signInMode {
		m.mode = signUpMode
	} else {
		m.mode = signInMode
		if m.focused >= m.fieldCount() {
			m.focused = 0
		}
	}
	m.errMsg = ""
	return m
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

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		m.errMsg = "Email and password are required."
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	m.seq++
	seq := m.seq

	register := m.mode == signUpMode
	displayName := strings.TrimSpace(m.inputs[fieldDisplayName].Value())
	session := m.session
	return m, func() tea.Msg {
		var err error
		if register {
			err = session.Register(context.Background(), email, password, displayName)
		} else {
			err = session.Login(context.Background(), email, password)
		}
		return ResultMsg{Err: err, Seq: seq}
	}
}
