package feed

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

type stubFeed struct {
	scope     app.FeedScope
	deleted   []string
	scopeErr  error
	deleteErr error
}

func (s *stubFeed) SetScope(scope app.FeedScope) error {
	s.scope = scope
	return s.scopeErr
}
func (s *stubFeed) Scope() app.FeedScope                               { return s.scope }
func (s *stubFeed) Posts() []domain.Post                               { return nil }
func (s *stubFeed) SetListener(func(posts []domain.Post, total int))   {}
func (s *stubFeed) CreatePost(context.Context, string) (string, error) { return "p1", nil }
func (s *stubFeed) DeletePost(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}
func (s *stubFeed) Close() {}

type stubComments struct {
	opened  []string
	added   []string
	removed []string
	closed  int
}

func (s *stubComments) Open(postID string) error {
	s.opened = append(s.opened, postID)
	return nil
}
func (s *stubComments) SetListener(func(postID string, comments []domain.Comment)) {}
func (s *stubComments) Add(_ context.Context, postID, text string) (string, error) {
	s.added = append(s.added, postID+":"+text)
	return "c1", nil
}
func (s *stubComments) Delete(_ context.Context, commentID, _ string) error {
	s.removed = append(s.removed, commentID)
	return nil
}
func (s *stubComments) Close() { s.closed++ }

type stubReactions struct {
	toggled []string
}

func (s *stubReactions) ToggleLike(_ context.Context, postID string, _ bool) error {
	s.toggled = append(s.toggled, postID)
	return nil
}

type stubBulk struct{}

func (stubBulk) LikeAll(context.Context, []domain.Post, func(app.BulkProgress)) (app.BulkReport, error) {
	return app.BulkReport{}, nil
}

type stubSearch struct {
	queries []string
	results []domain.Post
}

func (s *stubSearch) SearchPosts(_ context.Context, text string) ([]domain.Post, error) {
	s.queries = append(s.queries, text)
	return s.results, nil
}

type stubSession struct {
	user     domain.User
	signedIn bool
}

func (s *stubSession) Current() (domain.User, bool) { return s.user, s.signedIn }
func (s *stubSession) Loading() bool                { return false }
func (s *stubSession) Login(context.Context, string, string) error {
	return nil
}
func (s *stubSession) Register(context.Context, string, string, string) error { return nil }
func (s *stubSession) Logout(context.Context) error                           { return nil }
func (s *stubSession) OnChange(func(domain.User, bool)) app.CancelFunc {
	return func() {}
}
func (s *stubSession) Refresh(context.Context) error { return nil }
func (s *stubSession) Close()                        {}

type stubs struct {
	feed      *stubFeed
	comments  *stubComments
	reactions *stubReactions
	search    *stubSearch
	session   *stubSession
}

func newTestModel() (Model, *stubs) {
	st := &stubs{
		feed:      &stubFeed{},
		comments:  &stubComments{},
		reactions: &stubReactions{},
		search:    &stubSearch{},
		session:   &stubSession{user: domain.User{UID: "me", DisplayName: "Me"}, signedIn: true},
	}
	m := New(Deps{
		Feed:      st.feed,
		Comments:  st.comments,
		Reactions: st.reactions,
		Bulk:      stubBulk{},
		Search:    st.search,
		Session:   st.session,
	}, func(tea.Msg) {})
	m.width = 100
	m.height = 40
	return m, st
}

func makePost(id, userID string, createdAt time.Time) domain.Post {
	return domain.Post{
		ID:        id,
		Text:      "post " + id,
		UserID:    userID,
		UserName:  "user-" + userID,
		CreatedAt: createdAt,
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes a command, descending into batches.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}

func snapshot(n int, userID string) PostsUpdatedMsg {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, 0, n)
	for i := n - 1; i >= 0; i-- {
		posts = append(posts, makePost(string(rune('a'+i)), userID, base.Add(time.Duration(i)*time.Minute)))
	}
	return PostsUpdatedMsg{Posts: posts, Total: n}
}

func TestCursorMovesWithinBounds(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(3, "other"))

	m, _ = m.Update(keyMsg("up"))
	if m.cursor != 0 {
		t.Fatalf("cursor moved above top: %d", m.cursor)
	}
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down"))
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want clamped to 2", m.cursor)
	}
}

func TestSnapshotShrinkResetsCursor(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(3, "other"))
	m, _ = m.Update(keyMsg("down"))
	m, _ = m.Update(keyMsg("down"))

	m, _ = m.Update(snapshot(1, "other"))
	if m.cursor != 0 {
		t.Fatalf("cursor = %d after shrink, want 0", m.cursor)
	}
}

func TestLikeOwnPostBlockedLocally(t *testing.T) {
	m, st := newTestModel()
	m, _ = m.Update(snapshot(1, "me"))

	m, cmd := m.Update(keyMsg("l"))
	if cmd != nil {
		t.Fatal("own-post like should not produce a command")
	}
	if len(st.reactions.toggled) != 0 {
		t.Fatalf("reactions called: %v", st.reactions.toggled)
	}
	if m.status == "" {
		t.Fatal("expected a status explaining the rejection")
	}
}

func TestLikeOtherPostCallsReactions(t *testing.T) {
	m, st := newTestModel()
	m, _ = m.Update(snapshot(1, "other"))

	_, cmd := m.Update(keyMsg("l"))
	if cmd == nil {
		t.Fatal("expected a like command")
	}
	msg := cmd()
	if res, ok := msg.(LikeResultMsg); !ok || res.Err != nil {
		t.Fatalf("like command result = %#v", msg)
	}
	if len(st.reactions.toggled) != 1 {
		t.Fatalf("toggled = %v", st.reactions.toggled)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, st := newTestModel()
	m, _ = m.Update(snapshot(1, "me"))

	m, _ = m.Update(keyMsg("d"))
	if !m.confirmDelete {
		t.Fatal("expected confirm prompt")
	}

	// Anything except y cancels.
	m, cmd := m.Update(keyMsg("n"))
	if m.confirmDelete || cmd != nil {
		t.Fatal("n should cancel without deleting")
	}
	if len(st.feed.deleted) != 0 {
		t.Fatalf("deleted = %v", st.feed.deleted)
	}

	m, _ = m.Update(keyMsg("d"))
	_, cmd = m.Update(keyMsg("y"))
	if cmd == nil {
		t.Fatal("y should produce the delete command")
	}
	cmd()
	if len(st.feed.deleted) != 1 {
		t.Fatalf("deleted = %v", st.feed.deleted)
	}
}

func TestDeleteForeignPostRejected(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(1, "other"))

	m, _ = m.Update(keyMsg("d"))
	if m.confirmDelete {
		t.Fatal("foreign post must not reach the confirm prompt")
	}
	if m.status == "" {
		t.Fatal("expected a status explaining the rejection")
	}
}

func TestStaleCommentSnapshotDropped(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(2, "other"))

	m, _ = m.Update(keyMsg("c"))
	if !m.open {
		t.Fatal("comments overlay should be open")
	}
	openedFor := m.postID

	stale := CommentsUpdatedMsg{PostID: "someone-else", Comments: []domain.Comment{{ID: "x"}}}
	m, _ = m.Update(stale)
	if len(m.comments) != 0 {
		t.Fatal("stale snapshot applied")
	}

	fresh := CommentsUpdatedMsg{PostID: openedFor, Comments: []domain.Comment{{ID: "c1", PostID: openedFor}}}
	m, _ = m.Update(fresh)
	if len(m.comments) != 1 {
		t.Fatal("matching snapshot not applied")
	}
}

func TestClosingCommentsReleasesSubscription(t *testing.T) {
	m, st := newTestModel()
	m, _ = m.Update(snapshot(1, "other"))

	m, _ = m.Update(keyMsg("c"))
	m, _ = m.Update(keyMsg("esc"))
	if m.open {
		t.Fatal("overlay still open")
	}
	if st.comments.closed != 1 {
		t.Fatalf("Close calls = %d, want 1", st.comments.closed)
	}
}

func TestSearchResultSeqGuard(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(2, "other"))

	m, _ = m.Update(keyMsg("/"))
	if !m.searchInput {
		t.Fatal("search input should be active")
	}
	m.searchState.input.SetValue("hello")
	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected search command")
	}

	// A result from a superseded query must not land.
	late := SearchResultsMsg{Query: "old", Posts: []domain.Post{{ID: "z"}}, Seq: m.seq - 1}
	m, _ = m.Update(late)
	if m.searchResults {
		t.Fatal("stale search result applied")
	}

	current := SearchResultsMsg{Query: "hello", Posts: []domain.Post{{ID: "a"}}, Seq: m.seq}
	m, _ = m.Update(current)
	if !m.searchResults || len(m.results) != 1 {
		t.Fatalf("current search result not applied: %v", m.results)
	}

	// esc leaves search mode and shows the live feed again.
	m, _ = m.Update(keyMsg("esc"))
	if m.searchResults {
		t.Fatal("esc should dismiss search results")
	}
	if len(m.visiblePosts()) != 2 {
		t.Fatal("live feed not restored")
	}
}

func TestScopeToggleUsesCurrentUID(t *testing.T) {
	m, st := newTestModel()
	m, _ = m.Update(snapshot(2, "other"))

	m, cmd := m.Update(keyMsg("m"))
	if cmd == nil {
		t.Fatal("expected scope command")
	}
	runCmd(cmd)
	if st.feed.scope.UserID != "me" {
		t.Fatalf("scope = %+v, want own UID", st.feed.scope)
	}

	m, cmd = m.Update(keyMsg("m"))
	runCmd(cmd)
	if st.feed.scope.UserID != "" {
		t.Fatalf("scope = %+v, want all posts", st.feed.scope)
	}
	_ = m
}

func TestBulkDoneStatusLines(t *testing.T) {
	cases := []struct {
		name string
		msg  BulkDoneMsg
		want string
	}{
		{"empty", BulkDoneMsg{}, "Nothing new to like."},
		{"full", BulkDoneMsg{Report: app.BulkReport{Total: 3, Succeeded: 3}}, "Liked all posts."},
		{"partial", BulkDoneMsg{Report: app.BulkReport{Total: 3, Succeeded: 2}}, "Bulk like finished with skips."},
		{"cancelled", BulkDoneMsg{Err: context.Canceled}, "Bulk like stopped: context canceled"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestModel()
			m.running = true
			m, _ = m.Update(tc.msg)
			if m.running {
				t.Fatal("run still marked active")
			}
			if m.status != tc.want {
				t.Fatalf("status = %q, want %q", m.status, tc.want)
			}
		})
	}
}

func TestAddCommentClearsInput(t *testing.T) {
	m, st := newTestModel()
	m, _ = m.Update(snapshot(1, "other"))
	m, _ = m.Update(keyMsg("c"))

	m.commentState.input.SetValue("nice one")
	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected add-comment command")
	}
	cmd()
	if len(st.comments.added) != 1 || !strings.HasSuffix(st.comments.added[0], ":nice one") {
		t.Fatalf("added = %v", st.comments.added)
	}
	if m.commentState.input.Value() != "" {
		t.Fatal("input not cleared after submit")
	}
}

func TestViewRendersPostsAndScope(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(2, "other"))

	out := m.View()
	if !strings.Contains(out, "Pulse") {
		t.Fatal("missing title")
	}
	if !strings.Contains(out, "all posts") {
		t.Fatal("missing scope line")
	}
	if !strings.Contains(out, "user-other") {
		t.Fatal("missing author name")
	}
}

func TestViewShowsConfirmPrompt(t *testing.T) {
	m, _ := newTestModel()
	m, _ = m.Update(snapshot(1, "me"))
	m, _ = m.Update(keyMsg("d"))

	out := m.View()
	if !strings.Contains(out, "Delete this post?") {
		t.Fatal("missing delete confirmation")
	}
}
