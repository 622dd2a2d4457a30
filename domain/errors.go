package domain

import "errors"

var (
	// ErrUnauthorized indicates no user is signed in.
	ErrUnauthorized = errors.New("not signed in")

	// ErrEmptyText indicates a blank post or comment body.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrTextTooLong indicates the body exceeds the length bound.
	ErrTextTooLong = errors.New("text exceeds character limit")

	// ErrSelfLike indicates an attempt to like one's own post. This is a
	// client-side policy, not a backend invariant.
	ErrSelfLike = errors.New("cannot like your own post")

	// ErrNotOwner indicates a mutation on a document the caller does not own.
	ErrNotOwner = errors.New("not the author")

	// ErrNotFound indicates the referenced document no longer exists.
	ErrNotFound = errors.New("not found")
)
