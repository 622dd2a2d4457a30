package store

import (
	"context"
	"fmt"
)

// AuthUser is the raw auth-provider record, before merging with the
// profile document.
type AuthUser struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Auth provider error codes, mirroring the backend's wire codes. Codes
// outside this set are surfaced verbatim and rendered generically.
const (
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeUnauthorizedDomain = "auth/unauthorized-domain"
	CodeEmailInUse         = "auth/email-already-in-use"
	CodeWeakPassword       = "auth/weak-password"
	CodeNetwork            = "auth/network-request-failed"
)

// AuthError is a provider-surfaced failure with a stable code.
type AuthError struct {
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthClient is the auth provider boundary. Implementations own
// credential storage and session tokens; the client never sees either.
type AuthClient interface {
	// SignUp registers a new account and signs it in.
	SignUp(ctx context.Context, email, password string) (AuthUser, error)

	// SignIn authenticates an existing account.
	SignIn(ctx context.Context, email, password string) (AuthUser, error)

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// UpdateProfile updates displayName/photoURL on the auth record.
	// Empty strings leave the corresponding field untouched.
	UpdateProfile(ctx context.Context, displayName, photoURL string) error

	// CurrentUser returns the signed-in user, if any.
	CurrentUser() (AuthUser, bool)

	// OnStateChange registers fn for auth-state transitions. fn fires
	// once immediately with the current state, then on every sign-in,
	// sign-out, and auth-record update, until cancelled.
	OnStateChange(fn func(u AuthUser, signedIn bool)) CancelFunc
}

// BlobClient is the blob-storage boundary, used for uploaded avatars.
type BlobClient interface {
	// Upload stores data under a generated object name derived from name
	// and returns a fetchable URL.
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)

	// Delete removes the object behind a previously returned URL.
	// Unknown URLs are not an error.
	Delete(ctx context.Context, url string) error
}
