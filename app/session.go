package app

import (
	"context"

	"github.com/pulsefeed/pulse/domain"
)

// CancelFunc releases a listener registration.
type CancelFunc func()

// SessionService tracks the authenticated identity. The current user is
// the auth record merged with the profile document; Loading is true
// until the first auth-state resolution arrives.
type SessionService interface {
	// Current returns the merged signed-in user, if any.
	Current() (domain.User, bool)

	// Loading reports whether the initial auth state is still unresolved.
	Loading() bool

	// Login authenticates with email and password.
	Login(ctx context.Context, email, password string) error

	// Register creates an account, sets the display name on the auth
	// record, and provisions the profile document with an empty bio.
	Register(ctx context.Context, email, password, displayName string) error

	// Logout ends the session.
	Logout(ctx context.Context) error

	// OnChange registers fn for session transitions; it fires with the
	// current state immediately and after every auth-state change.
	OnChange(fn func(user domain.User, signedIn bool)) CancelFunc

	// Refresh re-fetches the profile document and re-merges the current
	// user in place. Used after profile saves instead of any reload.
	Refresh(ctx context.Context) error

	// Close releases the long-lived auth-state subscription.
	Close()
}
