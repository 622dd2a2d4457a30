package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/store"
)

func tickingStore() *Store {
	s := New()
	now := time.Unix(1700000000, 0)
	s.SetClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	return s
}

func TestAddGetRoundTrip(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()

	id, err := s.Add(ctx, "posts", map[string]any{
		"text":      "hello",
		"createdAt": store.ServerTime,
		"count":     0,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "posts", id)
	require.NoError(t, err)
	require.Equal(t, "hello", doc.Str("text"))
	require.False(t, doc.Time("createdAt").IsZero(), "sentinel resolved to the store clock")

	_, err = s.Get(ctx, "posts", "absent")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetMergeSemantics(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"name": "Amy", "bio": "hi"}, false))
	require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"bio": "updated"}, true))

	doc, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, "Amy", doc.Str("name"), "merge keeps absent fields")
	require.Equal(t, "updated", doc.Str("bio"))

	require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"bio": "only"}, false))
	doc, err = s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, "", doc.Str("name"), "non-merge replaces the document")
}

func TestUpdateTransforms(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "posts", "p1", map[string]any{"likesCount": 0}, false))

	require.NoError(t, s.Update(ctx, "posts", "p1",
		store.ArrayUnion("likes", "u1"),
		store.Increment("likesCount", 1),
	))
	// Union is idempotent; the duplicate add is dropped.
	require.NoError(t, s.Update(ctx, "posts", "p1", store.ArrayUnion("likes", "u1")))

	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, doc.Strs("likes"))
	require.Equal(t, 1, doc.Int("likesCount"))

	require.NoError(t, s.Update(ctx, "posts", "p1",
		store.ArrayRemove("likes", "u1"),
		store.Increment("likesCount", -1),
	))
	doc, err = s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	require.Empty(t, doc.Strs("likes"))
	require.Equal(t, 0, doc.Int("likesCount"))

	require.ErrorIs(t, s.Update(ctx, "posts", "absent", store.Set("x", 1)), store.ErrNotFound)
}

func TestQueryFilterAndOrder(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()

	for _, p := range []struct {
		id, author string
	}{
		{"p1", "amy"}, {"p2", "bob"}, {"p3", "amy"},
	} {
		require.NoError(t, s.Set(ctx, "posts", p.id, map[string]any{
			"userId":    p.author,
			"createdAt": store.ServerTime,
		}, false))
	}

	docs, err := s.Query(ctx, store.Query{Collection: "posts", OrderBy: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Equal(t, []string{"p3", "p2", "p1"}, ids(docs))

	docs, err = s.Query(ctx, store.Query{Collection: "posts", OrderBy: "createdAt"}.Where("userId", "amy"))
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p3"}, ids(docs))
}

func TestQueryEqualKeysKeepInsertionOrder(t *testing.T) {
	s := New()
	at := time.Unix(1700000000, 0)
	s.SetClock(func() time.Time { return at })
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(ctx, "posts", id, map[string]any{"createdAt": store.ServerTime}, false))
	}

	docs, err := s.Query(ctx, store.Query{Collection: "posts", OrderBy: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, ids(docs), "ties keep store-assigned order")
}

func TestSubscribeDeliversInitialAndUpdates(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", map[string]any{"text": "first"}, false))

	var mu sync.Mutex
	var snaps []store.Snapshot
	cancel, err := s.Subscribe(store.Query{Collection: "posts"}, func(snap store.Snapshot) {
		mu.Lock()
		snaps = append(snaps, snap)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer cancel()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) >= 1
	})
	mu.Lock()
	require.Len(t, snaps[0].Docs, 1, "initial snapshot carries the current set")
	mu.Unlock()

	require.NoError(t, s.Set(ctx, "posts", "p2", map[string]any{"text": "second"}, false))
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) >= 2 && len(snaps[len(snaps)-1].Docs) == 2
	})

	// Mutations in other collections do not wake this subscription.
	before := snapCount(&mu, &snaps)
	require.NoError(t, s.Set(ctx, "users", "u1", map[string]any{"name": "Amy"}, false))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, before, snapCount(&mu, &snaps))
}

func TestSubscribeCancelStopsDelivery(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()

	var mu sync.Mutex
	count := 0
	cancel, err := s.Subscribe(store.Query{Collection: "posts"}, func(store.Snapshot) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 1
	})
	cancel()
	cancel() // safe to call twice

	require.NoError(t, s.Set(ctx, "posts", "p1", map[string]any{"text": "x"}, false))
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	require.Equal(t, 1, count)
	mu.Unlock()
}

func TestRunTransactionAtomicity(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", map[string]any{"commentsCount": 2}, false))
	require.NoError(t, s.Set(ctx, "comments", "c1", map[string]any{"postId": "p1"}, false))

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Delete("comments", "c1"); err != nil {
			return err
		}
		if err := tx.Update("posts", "p1", store.Increment("commentsCount", -1)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Aborted: both writes discarded.
	_, err = s.Get(ctx, "comments", "c1")
	require.NoError(t, err)
	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	require.Equal(t, 2, doc.Int("commentsCount"))

	err = s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Delete("comments", "c1"); err != nil {
			return err
		}
		return tx.Update("posts", "p1", store.Increment("commentsCount", -1))
	})
	require.NoError(t, err)

	_, err = s.Get(ctx, "comments", "c1")
	require.ErrorIs(t, err, store.ErrNotFound)
	doc, err = s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Int("commentsCount"))
}

func TestTransactionReadsCommittedState(t *testing.T) {
	s := tickingStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "posts", "p1", map[string]any{"n": 1}, false))

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		if err := tx.Update("posts", "p1", store.Set("n", 2)); err != nil {
			return err
		}
		doc, err := tx.Get("posts", "p1")
		if err != nil {
			return err
		}
		// Reads see pre-transaction state; writes land at commit.
		require.Equal(t, 1, doc.Int("n"))
		return nil
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	require.Equal(t, 2, doc.Int("n"))
}

func ids(docs []store.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func snapCount(mu *sync.Mutex, snaps *[]store.Snapshot) int {
	mu.Lock()
	defer mu.Unlock()
	return len(*snaps)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
