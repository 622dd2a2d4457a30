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

// Comments keeps a live comment list for the currently open post,
// oldest first. The same generation guard as the feed applies: opening
// a different post invalidates snapshots still in flight for the old one.
type Comments struct {
	st      store.Store
	session app.SessionService
	log     *zap.Logger

	mu       sync.Mutex
	postID   string
	gen      int
	listener func(postID string, comments []domain.Comment)
	cancel   store.CancelFunc
}

var _ app.CommentService = (*Comments)(nil)

func NewComments(st store.Store, session app.SessionService, log *zap.Logger) *Comments {
	return &Comments{st: st, session: session, log: log}
}

// Open subscribes to a post's comments, replacing any previous
// subscription.
func (c *Comments) Open(postID string) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	c.postID = postID
	c.mu.Unlock()

	q := store.Query{Collection: colComments, OrderBy: "createdAt"}.Where("postId", postID)
	cancel, err := c.st.Subscribe(q, func(snap store.Snapshot) {
		c.apply(gen, postID, snap)
	})
	if err != nil {
		return fmt.Errorf("subscribe comments: %w", err)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.cancel = cancel
	c.mu.Unlock()
	return nil
}

func (c *Comments) apply(gen int, postID string, snap store.Snapshot) {
	comments := make([]domain.Comment, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		comments = append(comments, commentFromDoc(d))
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	fn := c.listener
	c.mu.Unlock()

	if fn != nil {
		fn(postID, comments)
	}
}

// SetListener registers the single snapshot callback.
func (c *Comments) SetListener(fn func(postID string, comments []domain.Comment)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// Add appends a comment, then bumps the parent post's counter with a
// second write. The two are not atomic: if the counter write fails the
// comment stays and the count is off by one until the next decrement.
func (c *Comments) Add(ctx context.Context, postID, text string) (string, error) {
	user, ok := c.session.Current()
	if !ok {
		return "", domain.ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyText
	}
	if len([]rune(text)) > domain.MaxCommentLen {
		return "", domain.ErrTextTooLong
	}

	avatar := user.PhotoURL
	if avatar == "" {
		avatar = domain.DefaultAvatar
	}
	id, err := c.st.Add(ctx, colComments, map[string]any{
		"text":       text,
		"postId":     postID,
		"userId":     user.UID,
		"userEmail":  user.Email,
		"userName":   user.Name(),
		"userAvatar": avatar,
		"createdAt":  store.ServerTime,
	})
	if err != nil {
		return "", fmt.Errorf("add comment: %w", err)
	}

	if err := c.st.Update(ctx, colPosts, postID, store.Increment("commentsCount", 1)); err != nil {
		c.log.Warn("comment counter increment failed",
			zap.String("post", postID), zap.String("comment", id), zap.Error(err))
		return id, fmt.Errorf("increment comment count: %w", err)
	}
	return id, nil
}

// Delete removes a comment inside a transaction. The comment's author
// may delete it, and so may the parent post's author; the removal and
// the counter decrement commit together.
func (c *Comments) Delete(ctx context.Context, commentID, postID string) error {
	user, ok := c.session.Current()
	if !ok {
		return domain.ErrUnauthorized
	}

	err := c.st.RunTransaction(ctx, func(tx store.Tx) error {
		comment, err := tx.Get(colComments, commentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if comment.Str("userId") != user.UID {
			post, err := tx.Get(colPosts, postID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return domain.ErrNotFound
				}
				return err
			}
			if post.Str("userId") != user.UID {
				return domain.ErrNotOwner
			}
		}
		if err := tx.Delete(colComments, commentID); err != nil {
			return err
		}
		return tx.Update(colPosts, postID, store.Increment("commentsCount", -1))
	})
	if err != nil {
		return err
	}
	c.log.Info("comment deleted", zap.String("comment", commentID), zap.String("post", postID))
	return nil
}

// Close cancels the active subscription.
func (c *Comments) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.gen++
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
