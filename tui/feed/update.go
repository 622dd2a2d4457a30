package feed

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
)

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case PostsUpdatedMsg:
		m.posts = msg.Posts
		m.loading = false
		m.err = nil
		if m.cursor >= len(m.posts) {
			m.cursor = 0
			m.startIndex = 0
		}
		return m, nil

	case CommentsUpdatedMsg:
		// Snapshots for a post that is no longer open are stale; drop them.
		if !m.open || msg.PostID != m.postID {
			return m, nil
		}
		m.comments = msg.Comments
		if m.selected >= len(m.comments) {
			m.selected = 0
		}
		return m, nil

	case ScopeResultMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.loading = false
		}
		return m, nil

	case LikeResultMsg:
		if msg.Err != nil {
			m.status = "Like failed: " + msg.Err.Error()
		}
		return m, nil

	case DeleteResultMsg:
		if msg.Err != nil {
			m.status = "Delete failed: " + msg.Err.Error()
		} else {
			m.status = "Post deleted."
		}
		return m, nil

	case CommentResultMsg:
		if msg.Err != nil {
			m.status = "Comment failed: " + msg.Err.Error()
		}
		return m, nil

	case BulkProgressMsg:
		m.progress = msg.Progress
		return m, nil

	case BulkDoneMsg:
		m.running = false
		m.status = bulkSummary(msg)
		return m, nil

	case SearchResultsMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		if msg.Err != nil {
			m.status = "Search failed: " + msg.Err.Error()
			return m, nil
		}
		m.searchResults = true
		m.results = msg.Posts
		m.query = msg.Query
		m.cursor = 0
		m.startIndex = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.searchInput {
		var cmd tea.Cmd
		m.searchState.input, cmd = m.searchState.input.Update(msg)
		return m, cmd
	}
	if m.open {
		var cmd tea.Cmd
		m.commentState.input, cmd = m.commentState.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func bulkSummary(msg BulkDoneMsg) string {
	switch {
	case msg.Err != nil:
		return "Bulk like stopped: " + msg.Err.Error()
	case msg.Report.Total == 0:
		return "Nothing new to like."
	case msg.Report.Succeeded == msg.Report.Total:
		return "Liked all posts."
	default:
		return "Bulk like finished with skips."
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case m.searchInput:
		return m.handleSearchInputKey(msg)
	case m.open:
		return m.handleCommentsKey(msg)
	case m.confirmDelete:
		return m.handleConfirmDeleteKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleSearchInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput = false
		m.searchState.input.Blur()
		return m, nil
	case "enter":
		query := strings.TrimSpace(m.searchState.input.Value())
		m.searchInput = false
		m.searchState.input.Blur()
		if query == "" {
			return m, nil
		}
		m.seq++
		m.status = ""
		return m, m.searchCmd(query, m.seq)
	}
	var cmd tea.Cmd
	m.searchState.input, cmd = m.searchState.input.Update(msg)
	return m, cmd
}

func (m Model) handleCommentsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.open = false
		m.postID = ""
		m.comments = nil
		m.commentState.input.Blur()
		m.commentsSvc.Close()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.commentState.input.Value())
		if text == "" {
			return m, nil
		}
		m.commentState.input.SetValue("")
		return m, m.addCommentCmd(m.postID, text)
	case "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "ctrl+n":
		if m.selected < len(m.comments)-1 {
			m.selected++
		}
		return m, nil
	case "ctrl+x":
		if m.selected < len(m.comments) {
			c := m.comments[m.selected]
			return m, m.deleteCommentCmd(c.ID, m.postID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.commentState.input, cmd = m.commentState.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmDeleteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmDelete = false
		if post, ok := m.selectedPost(); ok {
			return m, m.deletePostCmd(post.ID)
		}
		return m, nil
	default:
		m.confirmDelete = false
		return m, nil
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visiblePosts())-1 {
			m.cursor++
		}
		m.ensureCursorVisible()
		return m, nil

	case key.Matches(msg, m.keys.Like):
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		uid := m.currentUID()
		if post.IsOwn(uid) {
			m.status = "You cannot like your own post."
			return m, nil
		}
		m.status = ""
		return m, m.toggleLikeCmd(post, uid)

	case key.Matches(msg, m.keys.BulkLike):
		if m.running {
			return m, nil
		}
		m.running = true
		m.progress = app.BulkProgress{}
		m.status = ""
		return m, tea.Batch(m.bulkLikeCmd(m.visiblePosts()), m.spinner.Tick)

	case key.Matches(msg, m.keys.Comments):
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		m.open = true
		m.postID = post.ID
		m.comments = nil
		m.selected = 0
		m.commentState.input.Focus()
		return m, tea.Batch(m.openCommentsCmd(post.ID), textinput.Blink)

	case key.Matches(msg, m.keys.Delete):
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		if !post.IsOwn(m.currentUID()) {
			m.status = "Only your own posts can be deleted."
			return m, nil
		}
		m.confirmDelete = true
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchInput = true
		m.searchState.input.SetValue("")
		m.searchState.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Scope):
		if m.searchResults {
			return m, nil
		}
		m.scopeMine = !m.scopeMine
		m.loading = true
		m.cursor = 0
		m.startIndex = 0
		scope := app.FeedScope{}
		if m.scopeMine {
			scope.UserID = m.currentUID()
		}
		return m, tea.Batch(m.setScopeCmd(scope), m.spinner.Tick)

	case msg.String() == "esc":
		if m.searchResults {
			m.searchResults = false
			m.results = nil
			m.query = ""
			m.cursor = 0
			m.startIndex = 0
		}
		m.status = ""
		return m, nil
	}
	return m, nil
}

// visibleRows is how many posts fit on screen.
func (m Model) visibleRows() int {
	rows := (m.height - 8) / 4
	if rows < 1 {
		return 1
	}
	return rows
}

func (m *Model) ensureCursorVisible() {
	rows := m.visibleRows()
	if m.cursor < m.startIndex {
		m.startIndex = m.cursor
	}
	if m.cursor >= m.startIndex+rows {
		m.startIndex = m.cursor - rows + 1
	}
}
