package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSearchBlankReturnsNil(t *testing.T) {
	e := newEnv(t)
	search := NewSearch(e.st, zap.NewNop())

	for _, input := range []string{"", "   ", "\t\n"} {
		got, err := search.SearchPosts(context.Background(), input)
		require.NoError(t, err)
		require.Nil(t, got)
	}
}

func TestSearchMatchesTextAndAuthor(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	e.createPost(t, feed, "Shipping the new Parser today")
	e.createPost(t, feed, "lunch break")

	e.register(t, "parserfan@example.com", "ParserFan")
	e.createPost(t, feed, "hello world")

	search := NewSearch(e.st, zap.NewNop())
	got, err := search.SearchPosts(context.Background(), "parser")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first: ParserFan's post (author match) then Amy's (text match).
	require.Equal(t, "hello world", got[0].Text)
	require.Equal(t, "Shipping the new Parser today", got[1].Text)
}

func TestSearchCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	e.createPost(t, feed, "GoLang Tips")

	search := NewSearch(e.st, zap.NewNop())
	for _, q := range []string{"golang", "GOLANG", "GoLa"} {
		got, err := search.SearchPosts(context.Background(), q)
		require.NoError(t, err)
		require.Len(t, got, 1, "query %q", q)
	}
}

func TestSearchNoMatches(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	feed := newFeed(t, e)
	e.createPost(t, feed, "something")

	search := NewSearch(e.st, zap.NewNop())
	got, err := search.SearchPosts(context.Background(), "zzz-absent")
	require.NoError(t, err)
	require.Empty(t, got)
}
