package domain

import (
	"slices"
	"time"
)

// MaxPostLen bounds post body length; the backend enforces nothing here.
const MaxPostLen = 1000

// MaxCommentLen bounds comment body length.
const MaxCommentLen = 500

// Post is a single feed entry. Author fields are a snapshot captured at
// creation time; they go stale when the author later edits their profile.
type Post struct {
	ID            string
	Text          string
	UserID        string
	UserEmail     string
	UserName      string
	UserAvatar    string
	CreatedAt     time.Time
	Likes         []string // UIDs, in like order
	LikesCount    int      // Mirrors len(Likes) after every mutation
	CommentsCount int
}

// LikedBy reports whether uid is in the post's like set.
func (p Post) LikedBy(uid string) bool {
	return slices.Contains(p.Likes, uid)
}

// IsOwn reports whether the post was authored by uid.
func (p Post) IsOwn(uid string) bool {
	return uid != "" && p.UserID == uid
}

// Comment is a reply attached to a post, chat-ordered (oldest first).
type Comment struct {
	ID         string
	Text       string
	UserID     string
	UserEmail  string
	UserName   string
	UserAvatar string
	PostID     string
	CreatedAt  time.Time
}
