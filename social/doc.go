// Package social implements the application services over the backend
// boundaries in package store: session tracking, the live feed and
// comment synchronizers, like toggling, bulk likes, search, and the
// profile editor. Nothing here holds authoritative state; every list is
// a projection of a backend subscription, rebuilt from scratch on every
// snapshot.
package social

import (
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

// Collection names on the backend.
const (
	colUsers         = "users"
	colPosts         = "posts"
	colComments      = "comments"
	colSubscriptions = "subscriptions"
)

func postFromDoc(d store.Document) domain.Post {
	return domain.Post{
		ID:            d.ID,
		Text:          d.Str("text"),
		UserID:        d.Str("userId"),
		UserEmail:     d.Str("userEmail"),
		UserName:      d.Str("userName"),
		UserAvatar:    d.Str("userAvatar"),
		CreatedAt:     d.Time("createdAt"),
		Likes:         d.Strs("likes"),
		LikesCount:    d.Int("likesCount"),
		CommentsCount: d.Int("commentsCount"),
	}
}

func commentFromDoc(d store.Document) domain.Comment {
	return domain.Comment{
		ID:         d.ID,
		Text:       d.Str("text"),
		UserID:     d.Str("userId"),
		UserEmail:  d.Str("userEmail"),
		UserName:   d.Str("userName"),
		UserAvatar: d.Str("userAvatar"),
		PostID:     d.Str("postId"),
		CreatedAt:  d.Time("createdAt"),
	}
}
