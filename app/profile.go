package app

import "context"

// ProfileUpdate carries the changed profile fields. Nil pointers leave a
// field untouched. At most one of AvatarID and PhotoData is set: a
// symbolic avatar from the fixed local set, or raw image bytes to upload.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarID    string
	PhotoData   []byte
	PhotoName   string
}

// ProfileService edits the current user's profile and manages the
// follow relation between profiles.
type ProfileService interface {
	// Update resolves the avatar reference (uploading and best-effort
	// deleting the predecessor blob when raw bytes are given), applies
	// the auth-record update, merges the rest into the profile document,
	// and leaves the auth record, profile document, and session cache
	// consistent without any reload.
	Update(ctx context.Context, upd ProfileUpdate) error

	// Follow subscribes the current user to target's profile and bumps
	// the target's subscriber counter. The pair is unique: following an
	// already-followed profile is a no-op.
	Follow(ctx context.Context, targetUID string) error

	// Unfollow removes the relation and decrements the counter, which
	// never goes below zero.
	Unfollow(ctx context.Context, targetUID string) error

	// IsFollowing reports whether the relation exists.
	IsFollowing(ctx context.Context, targetUID string) (bool, error)
}
