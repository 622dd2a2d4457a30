package feed

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

func (m Model) toggleLikeCmd(post domain.Post, uid string) tea.Cmd {
	reactions := m.reactions
	liked := post.LikedBy(uid)
	return func() tea.Msg {
		err := reactions.ToggleLike(context.Background(), post.ID, liked)
		return LikeResultMsg{ID: post.ID, Err: err}
	}
}

func (m Model) deletePostCmd(id string) tea.Cmd {
	feed := m.feed
	return func() tea.Msg {
		err := feed.DeletePost(context.Background(), id)
		return DeleteResultMsg{ID: id, Err: err}
	}
}

func (m Model) addCommentCmd(postID, text string) tea.Cmd {
	comments := m.commentsSvc
	return func() tea.Msg {
		_, err := comments.Add(context.Background(), postID, text)
		return CommentResultMsg{Err: err}
	}
}

func (m Model) deleteCommentCmd(commentID, postID string) tea.Cmd {
	comments := m.commentsSvc
	return func() tea.Msg {
		err := comments.Delete(context.Background(), commentID, postID)
		return CommentResultMsg{Err: err}
	}
}

// bulkLikeCmd runs the sequential bulk like off the update loop.
// Progress lands via send because the runner outlives the command.
func (m Model) bulkLikeCmd(posts []domain.Post) tea.Cmd {
	bulk := m.bulk
	send := m.send
	return func() tea.Msg {
		report, err := bulk.LikeAll(context.Background(), posts, func(p app.BulkProgress) {
			send(BulkProgressMsg{Progress: p})
		})
		return BulkDoneMsg{Report: report, Err: err}
	}
}

func (m Model) searchCmd(query string, seq int) tea.Cmd {
	search := m.search
	return func() tea.Msg {
		posts, err := search.SearchPosts(context.Background(), query)
		return SearchResultsMsg{Query: query, Posts: posts, Err: err, Seq: seq}
	}
}

// openCommentsCmd subscribes to the post's comments; snapshots flow in
// through CommentsUpdatedMsg.
func (m Model) openCommentsCmd(postID string) tea.Cmd {
	comments := m.commentsSvc
	return func() tea.Msg {
		if err := comments.Open(postID); err != nil {
			return CommentResultMsg{Err: err}
		}
		return nil
	}
}

func (m Model) setScopeCmd(scope app.FeedScope) tea.Cmd {
	feed := m.feed
	return func() tea.Msg {
		return ScopeResultMsg{Err: feed.SetScope(scope)}
	}
}
