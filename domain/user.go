package domain

import "strings"

// User is the merged identity of the signed-in account: the auth record
// (uid, email, displayName, photoURL) overlaid on the profile document
// (displayName, photoURL, bio), auth record winning where both are set.
type User struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	Bio         string
}

// Name returns the best display name available: displayName, then the
// local part of the email, then a generic placeholder.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return "user"
}

// Avatars is the fixed local avatar set the profile editor offers. An
// avatar reference on a user is either one of these symbolic IDs or a
// backend-hosted blob URL.
var Avatars = []string{"avatar_1", "avatar_2", "avatar_3", "avatar_4"}

// DefaultAvatar is used for new accounts and posts without a photo.
const DefaultAvatar = "avatar_1"

// IsAvatarID reports whether ref is a symbolic ID from the fixed set
// rather than a hosted URL.
func IsAvatarID(ref string) bool {
	for _, a := range Avatars {
		if ref == a {
			return true
		}
	}
	return false
}
