package app

import (
	"context"

	"github.com/pulsefeed/pulse/domain"
)

// ReactionService toggles the current user's like on a post. Every call
// is one atomic backend mutation (set-add or set-remove plus counter);
// the UI reflects it only after the subscription re-delivers.
type ReactionService interface {
	// ToggleLike adds the caller to the post's like set when
	// currentlyLiked is false, removes them when true. Self-likes are
	// rejected here as policy; the backend does not enforce it.
	ToggleLike(ctx context.Context, postID string, currentlyLiked bool) error
}

// BulkProgress is one step report from a bulk-like run.
type BulkProgress struct {
	Done      int // items processed so far, including failures
	Total     int // eligible items at the start of the run
	Succeeded int
}

// Fraction returns processed/total in [0,1], 1 for an empty run.
func (p BulkProgress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// BulkReport is the final outcome of a bulk-like run. Partial success
// is the normal completion mode.
type BulkReport struct {
	Total     int
	Succeeded int
}

// BulkLiker likes every eligible visible post strictly sequentially
// with a fixed inter-request delay.
type BulkLiker interface {
	// LikeAll filters posts to those neither owned by the caller nor
	// already liked, then toggles each in order, reporting progress
	// after every step. Per-item failures are logged and skipped.
	LikeAll(ctx context.Context, posts []domain.Post, onProgress func(BulkProgress)) (BulkReport, error)
}
