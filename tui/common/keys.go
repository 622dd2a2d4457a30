package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	NewInline key.Binding // p: compose inline
	NewEditor key.Binding // P: compose via $EDITOR
	Like      key.Binding // l: toggle like
	BulkLike  key.Binding // L: like everything eligible on screen
	Comments  key.Binding // c: open comments
	Delete    key.Binding // d: delete own post
	Search    key.Binding // /: search posts
	Scope     key.Binding // m: toggle my posts / all posts
	Profile   key.Binding // u: edit profile
	Tech      key.Binding // t: technology editor
	Logout    key.Binding
	Back      key.Binding
	Confirm   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NewInline: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "post (inline)"),
		),
		NewEditor: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "post ($EDITOR)"),
		),
		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like"),
		),
		BulkLike: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "like all"),
		),
		Comments: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comments"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Scope: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "my posts"),
		),
		Profile: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "profile"),
		),
		Tech: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tech list"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logout"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
	}
}
