package app

import (
	"context"

	"github.com/pulsefeed/pulse/domain"
)

// SearchService finds posts by substring. There is no server-side text
// index: the whole collection is fetched ordered by recency and filtered
// client-side, which caps out at small collections by design.
type SearchService interface {
	// SearchPosts returns posts whose body or author name contains text
	// case-insensitively, newest first. Blank input returns nil without
	// a backend call.
	SearchPosts(ctx context.Context, text string) ([]domain.Post, error)
}
