// Package tui is the Bubble Tea layer. The root App model routes
// between the auth form, the feed, the composer, the profile editor,
// and the technology tracker; each sub-view is its own model.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/infra/editor"
	"github.com/pulsefeed/pulse/tui/common"
	"github.com/pulsefeed/pulse/tui/compose"
	"github.com/pulsefeed/pulse/tui/feed"
	"github.com/pulsefeed/pulse/tui/login"
	"github.com/pulsefeed/pulse/tui/profile"
	"github.com/pulsefeed/pulse/tui/tech"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI
// container.
type Deps struct {
	Feed      app.FeedService
	Comments  app.CommentService
	Reactions app.ReactionService
	Bulk      app.BulkLiker
	Search    app.SearchService
	Session   app.SessionService
	Profiles  app.ProfileService
	Tech      app.TechnologyService
	Editor    *editor.EnvEditor

	// Send delivers messages produced outside the program loop (session
	// transitions, live snapshots, bulk progress). Wired to
	// Program.Send in main.
	Send func(tea.Msg)
}

// SessionChangedMsg is pushed whenever the auth state resolves or
// changes. Main wires the session listener to Program.Send.
type SessionChangedMsg struct {
	User     domain.User
	SignedIn bool
}

// LogoutResultMsg reports a finished logout attempt.
type LogoutResultMsg struct {
	Err error
}

type postResultMsg struct {
	err error
}

type activeView int

const (
	loginView activeView = iota
	feedView
	composeView
	profileView
	techView
)

// App is the root Bubble Tea model. It routes between sub-views.
type App struct {
	deps    Deps
	active  activeView
	login   login.Model
	feed    feed.Model
	compose compose.Model
	profile profile.Model
	tech    tech.Model
	keys    common.KeyMap
	status  string // transient, shown under the active view
	width   int
	height  int
}

// NewApp creates the root model with all dependencies wired. It starts
// on the auth form; the first SessionChangedMsg decides where to go.
func NewApp(deps Deps) App {
	return App{
		deps:   deps,
		active: loginView,
		login:  login.New(deps.Session),
		feed:   newFeed(deps),
		keys:   common.DefaultKeyMap(),
	}
}

func newFeed(deps Deps) feed.Model {
	return feed.New(feed.Deps{
		Feed:      deps.Feed,
		Comments:  deps.Comments,
		Reactions: deps.Reactions,
		Bulk:      deps.Bulk,
		Search:    deps.Search,
		Session:   deps.Session,
	}, deps.Send)
}

// Init delegates to the starting sub-model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.login.Init(), a.feed.Init())
}

// ActiveView names the current view for state persistence.
func (a App) ActiveView() string {
	switch a.active {
	case feedView:
		return "feed"
	case profileView:
		return "profile"
	case techView:
		return "tech"
	}
	return ""
}

// Update handles messages and routes to the active sub-model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The feed tracks size even while hidden.
		a.feed, _ = a.feed.Update(msg)
		return a, nil

	case SessionChangedMsg:
		return a.onSessionChanged(msg)

	case LogoutResultMsg:
		if msg.Err != nil {
			a.status = "Logout failed: " + msg.Err.Error()
		}
		return a, nil

	case compose.DoneMsg:
		return a.onComposeDone(msg)

	case postResultMsg:
		if msg.err != nil {
			a.status = "Post failed: " + msg.err.Error()
		} else {
			a.status = "Posted!"
		}
		return a, nil

	case feed.PostsUpdatedMsg, feed.CommentsUpdatedMsg, feed.ScopeResultMsg,
		feed.LikeResultMsg, feed.DeleteResultMsg, feed.CommentResultMsg,
		feed.BulkProgressMsg, feed.BulkDoneMsg, feed.SearchResultsMsg:
		// Snapshots land whether or not the feed is showing; losing one
		// would leave the list stale after returning to it.
		var cmd tea.Cmd
		a.feed, cmd = a.feed.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if model, cmd, handled := a.handleGlobalKey(msg); handled {
			return model, cmd
		}
	}

	return a.delegate(msg)
}

// handleGlobalKey intercepts app-level bindings. Keys never fire while
// a sub-view is capturing text.
func (a App) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit, true
	}

	switch a.active {
	case feedView:
		if a.feed.Capturing() {
			return a, nil, false
		}
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit, true
		case key.Matches(msg, a.keys.NewInline):
			a.active = composeView
			a.status = ""
			a.compose = compose.NewInline()
			return a, a.compose.Init(), true
		case key.Matches(msg, a.keys.NewEditor):
			a.active = composeView
			a.status = ""
			a.compose = compose.NewEditor(a.deps.Editor)
			return a, a.compose.Init(), true
		case key.Matches(msg, a.keys.Profile):
			a.active = profileView
			a.status = ""
			a.profile = profile.New(a.deps.Profiles, a.deps.Session)
			return a, a.profile.Init(), true
		case key.Matches(msg, a.keys.Tech):
			a.active = techView
			a.status = ""
			a.tech = tech.New(a.deps.Tech)
			return a, a.tech.Init(), true
		case key.Matches(msg, a.keys.Logout):
			session := a.deps.Session
			return a, func() tea.Msg {
				return LogoutResultMsg{Err: session.Logout(context.Background())}
			}, true
		}

	case profileView, techView:
		if key.Matches(msg, a.keys.Back) {
			a.active = feedView
			return a, nil, true
		}
	}
	return a, nil, false
}

func (a App) onSessionChanged(msg SessionChangedMsg) (tea.Model, tea.Cmd) {
	if !msg.SignedIn {
		if a.active != loginView {
			a.active = loginView
			a.login = login.New(a.deps.Session)
			a.status = ""
			return a, a.login.Init()
		}
		return a, nil
	}

	if a.active == loginView {
		a.active = feedView
		a.status = ""
		// Subscribe now that there is an identity to read as.
		feedSvc := a.deps.Feed
		return a, tea.Batch(a.feed.Init(), func() tea.Msg {
			return feed.ScopeResultMsg{Err: feedSvc.SetScope(feedSvc.Scope())}
		})
	}
	return a, nil
}

func (a App) onComposeDone(msg compose.DoneMsg) (tea.Model, tea.Cmd) {
	a.active = feedView
	if msg.Err != nil {
		a.status = "Compose failed: " + msg.Err.Error()
		return a, nil
	}
	if msg.Content == "" {
		a.status = "Cancelled."
		return a, nil
	}

	a.status = "Posting..."
	feedSvc := a.deps.Feed
	content := msg.Content
	return a, func() tea.Msg {
		_, err := feedSvc.CreatePost(context.Background(), content)
		return postResultMsg{err: err}
	}
}

// delegate routes the message to the active sub-model.
func (a App) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case loginView:
		a.login, cmd = a.login.Update(msg)
	case feedView:
		a.feed, cmd = a.feed.Update(msg)
	case composeView:
		a.compose, cmd = a.compose.Update(msg)
	case profileView:
		a.profile, cmd = a.profile.Update(msg)
	case techView:
		a.tech, cmd = a.tech.Update(msg)
	}
	return a, cmd
}

// View renders the active sub-model.
func (a App) View() string {
	var s string
	switch a.active {
	case loginView:
		s = a.login.View()
	case feedView:
		s = a.feed.View()
	case composeView:
		s = a.compose.View()
	case profileView:
		s = a.profile.View()
	case techView:
		s = a.tech.View()
	}

	if a.status != "" {
		s += "\n" + common.StatusBarStyle.Render(a.status)
	}
	return s
}
