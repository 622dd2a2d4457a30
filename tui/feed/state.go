// Package feed renders the live post list: scope switching, likes and
// bulk likes, the comments overlay, client-side search, and post
// deletion. All list content arrives as full snapshots pushed from the
// services; the model never mutates the list itself.
package feed

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/tui/common"
)

// --- Messages ---

// PostsUpdatedMsg carries a fresh feed snapshot. The services guarantee
// it belongs to the active scope; superseded-scope snapshots are
// discarded before they get here.
type PostsUpdatedMsg struct {
	Posts []domain.Post
	Total int
}

// CommentsUpdatedMsg carries a fresh comment snapshot for one post.
type CommentsUpdatedMsg struct {
	PostID   string
	Comments []domain.Comment
}

// LikeResultMsg is sent after a like toggle attempt.
type LikeResultMsg struct {
	ID  string
	Err error
}

// DeleteResultMsg is sent after a post deletion attempt.
type DeleteResultMsg struct {
	ID  string
	Err error
}

// CommentResultMsg is sent after adding or deleting a comment.
type CommentResultMsg struct {
	Err error
}

// BulkProgressMsg is one step report from a running bulk like.
type BulkProgressMsg struct {
	Progress app.BulkProgress
}

// BulkDoneMsg ends a bulk-like run. Partial success is not an error.
type BulkDoneMsg struct {
	Report app.BulkReport
	Err    error
}

// ScopeResultMsg reports whether a scope switch took.
type ScopeResultMsg struct {
	Err error
}

// SearchResultsMsg carries finished search results. Seq pins the result
// to the query that produced it; late results for old queries are dropped.
type SearchResultsMsg struct {
	Query string
	Posts []domain.Post
	Err   error
	Seq   int
}

// --- Model ---

type services struct {
	feed        app.FeedService
	commentsSvc app.CommentService
	reactions   app.ReactionService
	bulk        app.BulkLiker
	search      app.SearchService
	session     app.SessionService
}

type listState struct {
	posts         []domain.Post
	cursor        int
	startIndex    int // first visible item, for scrolling
	loading       bool
	scopeMine     bool
	err           error
	status        string
	confirmDelete bool
}

type commentState struct {
	open     bool
	postID   string
	comments []domain.Comment
	selected int // highlighted comment, for deletion
	input    textinput.Model
}

type searchState struct {
	searchInput   bool // the input row is active
	searchResults bool // showing a result list
	input         textinput.Model
	results       []domain.Post
	query         string
	seq           int
}

type bulkState struct {
	running  bool
	progress app.BulkProgress
}

// Model holds the state for the feed view.
type Model struct {
	services
	listState
	commentState
	searchState
	bulkState

	keys    common.KeyMap
	spinner spinner.Model
	send    func(tea.Msg) // delivers service-pushed snapshots into the program
	width   int
	height  int
}

// Deps holds the services the feed view calls.
type Deps struct {
	Feed      app.FeedService
	Comments  app.CommentService
	Reactions app.ReactionService
	Bulk      app.BulkLiker
	Search    app.SearchService
	Session   app.SessionService
}

// New creates a feed model. send delivers messages produced outside the
// Bubble Tea loop (bulk progress callbacks).
func New(deps Deps, send func(tea.Msg)) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7DC4FF"))

	commentInput := textinput.New()
	commentInput.Placeholder = "write a comment"
	commentInput.CharLimit = domain.MaxCommentLen

	searchInput := textinput.New()
	searchInput.Placeholder = "search posts"
	searchInput.CharLimit = 200

	return Model{
		services: services{
			feed:        deps.Feed,
			commentsSvc: deps.Comments,
			reactions:   deps.Reactions,
			bulk:        deps.Bulk,
			search:      deps.Search,
			session:     deps.Session,
		},
		listState:    listState{loading: true},
		commentState: commentState{input: commentInput},
		searchState:  searchState{input: searchInput},
		keys:         common.DefaultKeyMap(),
		spinner:      sp,
		send:         send,
	}
}

// Init starts the spinner; the first snapshot arrives from the feed
// subscription.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Capturing reports whether the feed currently owns the keyboard (a text
// input or the delete prompt is active), so the root model must not
// intercept keys.
func (m Model) Capturing() bool {
	return m.searchInput || m.open || m.confirmDelete
}

// selectedPost returns the post under the cursor in whichever list is
// showing.
func (m Model) selectedPost() (domain.Post, bool) {
	list := m.visiblePosts()
	if len(list) == 0 || m.cursor < 0 || m.cursor >= len(list) {
		return domain.Post{}, false
	}
	return list[m.cursor], true
}

// visiblePosts is the list currently on screen: search results when a
// search is showing, the live feed otherwise.
func (m Model) visiblePosts() []domain.Post {
	if m.searchResults {
		return m.results
	}
	return m.posts
}

func (m Model) currentUID() string {
	user, ok := m.session.Current()
	if !ok {
		return ""
	}
	return user.UID
}
