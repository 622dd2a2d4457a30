package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/infra/memstore"
)

// env wires the services against the in-memory backend. The store clock
// ticks one second per write so creation order is always distinguishable.
type env struct {
	st      *memstore.Store
	auth    *memstore.Auth
	blobs   *memstore.Blobs
	session *Session
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memstore.New()
	now := time.Unix(1700000000, 0)
	st.SetClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	auth := memstore.NewAuth([]byte("test-secret"))
	session := NewSession(auth, st, zap.NewNop())
	t.Cleanup(session.Close)
	return &env{st: st, auth: auth, blobs: memstore.NewBlobs(), session: session}
}

// register signs up a fresh account, which also signs it in.
func (e *env) register(t *testing.T, email, name string) domain.User {
	t.Helper()
	if err := e.session.Register(context.Background(), email, "hunter22", name); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	user, ok := e.session.Current()
	if !ok {
		t.Fatalf("no session after registering %s", email)
	}
	return user
}

func (e *env) login(t *testing.T, email string) domain.User {
	t.Helper()
	if err := e.session.Login(context.Background(), email, "hunter22"); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	user, ok := e.session.Current()
	if !ok {
		t.Fatalf("no session after logging in %s", email)
	}
	return user
}

// waitFor polls cond until it holds or the deadline passes. Snapshot
// delivery is asynchronous, so list assertions go through here.
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

func (e *env) createPost(t *testing.T, feed *Feed, text string) string {
	t.Helper()
	id, err := feed.CreatePost(context.Background(), text)
	require.NoError(t, err)
	return id
}

func (e *env) post(t *testing.T, id string) domain.Post {
	t.Helper()
	doc, err := e.st.Get(context.Background(), "posts", id)
	require.NoError(t, err)
	return postFromDoc(doc)
}
