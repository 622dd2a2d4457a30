package app

import (
	"context"

	"github.com/pulsefeed/pulse/domain"
)

// CommentService maintains a live comment list for one open post,
// ordered oldest first (chat order, the opposite of the feed).
type CommentService interface {
	// Open subscribes to a post's comments, replacing any previous
	// subscription. Late snapshots from a superseded post are discarded.
	Open(postID string) error

	// SetListener registers the callback invoked with the post ID and
	// its full comment list after every accepted snapshot.
	SetListener(fn func(postID string, comments []domain.Comment))

	// Add validates and appends a comment, then increments the parent
	// post's counter as a separate write. The two writes are not atomic;
	// a failure in between leaves the counter off by one.
	Add(ctx context.Context, postID, text string) (string, error)

	// Delete removes a comment transactionally: permitted for the
	// comment's author or the parent post's author; the removal and the
	// counter decrement commit together or not at all.
	Delete(ctx context.Context, commentID, postID string) error

	// Close cancels the active subscription.
	Close()
}
