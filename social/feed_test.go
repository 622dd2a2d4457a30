package social

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
)

func newFeed(t *testing.T, e *env) *Feed {
	t.Helper()
	feed := NewFeed(e.st, e.session, zap.NewNop())
	t.Cleanup(feed.Close)
	return feed
}

func TestCreatePostValidation(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)

	_, err := feed.CreatePost(context.Background(), "   \n\t ")
	require.ErrorIs(t, err, domain.ErrEmptyText)

	_, err = feed.CreatePost(context.Background(), strings.Repeat("x", domain.MaxPostLen+1))
	require.ErrorIs(t, err, domain.ErrTextTooLong)

	_, err = feed.CreatePost(context.Background(), strings.Repeat("x", domain.MaxPostLen))
	require.NoError(t, err)
}

func TestCreatePostRequiresSession(t *testing.T) {
	e := newEnv(t)
	feed := newFeed(t, e)
	_, err := feed.CreatePost(context.Background(), "hello")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreatePostDenormalizesAuthor(t *testing.T) {
	e := newEnv(t)
	user := e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)

	id := e.createPost(t, feed, "first post")
	p := e.post(t, id)
	require.Equal(t, "first post", p.Text)
	require.Equal(t, user.UID, p.UserID)
	require.Equal(t, "amy@example.com", p.UserEmail)
	require.Equal(t, "Amy", p.UserName)
	require.Equal(t, domain.DefaultAvatar, p.UserAvatar)
	require.False(t, p.CreatedAt.IsZero())
	require.Zero(t, p.LikesCount)
	require.Zero(t, p.CommentsCount)
}

func TestFeedOrdersNewestFirst(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)

	e.createPost(t, feed, "one")
	e.createPost(t, feed, "two")
	e.createPost(t, feed, "three")

	require.NoError(t, feed.SetScope(app.FeedScope{}))
	waitFor(t, func() bool { return len(feed.Posts()) == 3 })

	posts := feed.Posts()
	require.Equal(t, "three", posts[0].Text)
	require.Equal(t, "two", posts[1].Text)
	require.Equal(t, "one", posts[2].Text)
}

func TestFeedScopeFiltersAuthor(t *testing.T) {
	e := newEnv(t)
	amy := e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	e.createPost(t, feed, "amy post")

	e.register(t, "bob@example.com", "Bob")
	e.createPost(t, feed, "bob post")

	require.NoError(t, feed.SetScope(app.FeedScope{UserID: amy.UID}))
	waitFor(t, func() bool { return len(feed.Posts()) == 1 })
	require.Equal(t, "amy post", feed.Posts()[0].Text)
	require.Equal(t, app.FeedScope{UserID: amy.UID}, feed.Scope())
}

func TestFeedScopeSwitchDropsStaleSnapshots(t *testing.T) {
	e := newEnv(t)
	amy := e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	e.createPost(t, feed, "amy 1")
	e.createPost(t, feed, "amy 2")

	bob := e.register(t, "bob@example.com", "Bob")
	e.createPost(t, feed, "bob 1")

	var mu sync.Mutex
	var seen [][]domain.Post
	feed.SetListener(func(posts []domain.Post, _ int) {
		mu.Lock()
		seen = append(seen, posts)
		mu.Unlock()
	})

	// Rapid switches; only the last scope may populate the feed.
	require.NoError(t, feed.SetScope(app.FeedScope{}))
	require.NoError(t, feed.SetScope(app.FeedScope{UserID: amy.UID}))
	require.NoError(t, feed.SetScope(app.FeedScope{UserID: bob.UID}))

	waitFor(t, func() bool {
		posts := feed.Posts()
		return len(posts) == 1 && posts[0].Text == "bob 1"
	})

	// Whatever snapshots arrived, the projection settled on the final
	// scope and no later delivery reverts it.
	mu.Lock()
	last := seen[len(seen)-1]
	mu.Unlock()
	require.Len(t, last, 1)
	require.Equal(t, "bob 1", last[0].Text)
}

func TestFeedLiveUpdateOnCreate(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)

	require.NoError(t, feed.SetScope(app.FeedScope{}))

	e.createPost(t, feed, "live")
	waitFor(t, func() bool { return len(feed.Posts()) == 1 })
}

func TestDeletePostAuthorOnly(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	id := e.createPost(t, feed, "amy post")

	e.register(t, "bob@example.com", "Bob")
	err := feed.DeletePost(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrNotOwner)

	e.login(t, "amy@example.com")
	require.NoError(t, feed.DeletePost(context.Background(), id))

	err = feed.DeletePost(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePostKeepsComments(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	comments := NewComments(e.st, e.session, zap.NewNop())
	t.Cleanup(comments.Close)

	id := e.createPost(t, feed, "post")
	cid, err := comments.Add(context.Background(), id, "reply")
	require.NoError(t, err)

	require.NoError(t, feed.DeletePost(context.Background(), id))

	// Comments are not cascade-deleted; the orphan stays behind.
	_, err = e.st.Get(context.Background(), "comments", cid)
	require.NoError(t, err)
}
