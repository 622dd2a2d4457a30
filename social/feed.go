package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

// Feed keeps a live post list for one scope. Each SetScope bumps a
// generation counter and resubscribes; snapshot callbacks carry the
// generation they were created under and are dropped when it no longer
// matches, so a superseded scope can never repopulate the list.
type Feed struct {
	st      store.Store
	session app.SessionService
	log     *zap.Logger

	mu       sync.Mutex
	scope    app.FeedScope
	gen      int
	posts    []domain.Post
	listener func(posts []domain.Post, total int)
	cancel   store.CancelFunc
}

var _ app.FeedService = (*Feed)(nil)

func NewFeed(st store.Store, session app.SessionService, log *zap.Logger) *Feed {
	return &Feed{st: st, session: session, log: log}
}

// SetScope switches the feed's query, cancelling the previous
// subscription first.
func (f *Feed) SetScope(scope app.FeedScope) error {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	gen := f.gen
	f.scope = scope
	f.posts = nil
	f.mu.Unlock()

	q := store.Query{Collection: colPosts, OrderBy: "createdAt", Desc: true}
	if scope.UserID != "" {
		q = q.Where("userId", scope.UserID)
	}

	cancel, err := f.st.Subscribe(q, func(snap store.Snapshot) {
		f.apply(gen, snap)
	})
	if err != nil {
		return fmt.Errorf("subscribe feed: %w", err)
	}

	f.mu.Lock()
	if gen != f.gen {
		// Lost the race to a newer SetScope.
		f.mu.Unlock()
		cancel()
		return nil
	}
	f.cancel = cancel
	f.mu.Unlock()
	return nil
}

func (f *Feed) apply(gen int, snap store.Snapshot) {
	posts := make([]domain.Post, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		posts = append(posts, postFromDoc(d))
	}

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.posts = posts
	fn := f.listener
	f.mu.Unlock()

	if fn != nil {
		fn(posts, len(posts))
	}
}

// Scope returns the active scope.
func (f *Feed) Scope() app.FeedScope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scope
}

// Posts returns the current projection, newest first.
func (f *Feed) Posts() []domain.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

// SetListener registers the single snapshot callback.
func (f *Feed) SetListener(fn func(posts []domain.Post, total int)) {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
}

// CreatePost publishes a post by the current user. The author fields
// are a denormalized snapshot of the profile at this moment; the
// timestamp is assigned by the backend.
func (f *Feed) CreatePost(ctx context.Context, text string) (string, error) {
	user, ok := f.session.Current()
	if !ok {
		return "", domain.ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyText
	}
	if len([]rune(text)) > domain.MaxPostLen {
		return "", domain.ErrTextTooLong
	}

	avatar := user.PhotoURL
	if avatar == "" {
		avatar = domain.DefaultAvatar
	}
	id, err := f.st.Add(ctx, colPosts, map[string]any{
		"text":          text,
		"userId":        user.UID,
		"userEmail":     user.Email,
		"userName":      user.Name(),
		"userAvatar":    avatar,
		"createdAt":     store.ServerTime,
		"likes":         []string{},
		"likesCount":    0,
		"commentsCount": 0,
	})
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	f.log.Info("post created", zap.String("id", id), zap.String("uid", user.UID))
	return id, nil
}

// DeletePost removes a post; author-only. Its comments are left in
// place and become unreachable orphans.
func (f *Feed) DeletePost(ctx context.Context, id string) error {
	user, ok := f.session.Current()
	if !ok {
		return domain.ErrUnauthorized
	}
	doc, err := f.st.Get(ctx, colPosts, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("load post: %w", err)
	}
	if doc.Str("userId") != user.UID {
		return domain.ErrNotOwner
	}
	if err := f.st.Delete(ctx, colPosts, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	f.log.Info("post deleted", zap.String("id", id), zap.String("uid", user.UID))
	return nil
}

// Close cancels the active subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.gen++
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
