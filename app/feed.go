package app

import (
	"context"

	"github.com/pulsefeed/pulse/domain"
)

// FeedScope selects which posts the feed shows: all of them, or one
// author's. The zero value means all posts.
type FeedScope struct {
	UserID string
}

// FeedService maintains a live-updating ordered post list for a scope.
// The backend owns the data; the service's list is a transient
// projection rebuilt from scratch on every snapshot.
type FeedService interface {
	// SetScope switches the feed's query. The previous subscription is
	// cancelled first; snapshots it already queued are discarded, so a
	// stale scope can never leak into the new one.
	SetScope(scope FeedScope) error

	// Scope returns the active scope.
	Scope() FeedScope

	// Posts returns the current projection, newest first.
	Posts() []domain.Post

	// SetListener registers the single callback invoked with the new
	// list and its length after every accepted snapshot.
	SetListener(fn func(posts []domain.Post, total int))

	// CreatePost validates and publishes a post authored by the current
	// user, with the denormalized author snapshot and a server timestamp.
	CreatePost(ctx context.Context, text string) (string, error)

	// DeletePost removes a post; author-only. Comments are intentionally
	// not cascade-deleted.
	DeletePost(ctx context.Context, id string) error

	// Close cancels the active subscription.
	Close()
}
