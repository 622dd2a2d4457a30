package social

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

func TestRegisterProvisionsProfile(t *testing.T) {
	e := newEnv(t)
	user := e.register(t, "amy@example.com", "Amy")

	require.Equal(t, "Amy", user.DisplayName)
	require.Equal(t, "amy@example.com", user.Email)
	require.NotEmpty(t, user.UID)

	doc, err := e.st.Get(context.Background(), "users", user.UID)
	require.NoError(t, err)
	require.Equal(t, "Amy", doc.Str("displayName"))
	require.Equal(t, "", doc.Str("bio"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")

	err := e.session.Register(context.Background(), "amy@example.com", "different9", "Imposter")
	var ae *store.AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, store.CodeEmailInUse, ae.Code)
}

func TestRegisterWeakPassword(t *testing.T) {
	e := newEnv(t)
	err := e.session.Register(context.Background(), "amy@example.com", "short", "Amy")
	var ae *store.AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, store.CodeWeakPassword, ae.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	e.register(t, "amy@example.com", "Amy")
	require.NoError(t, e.session.Logout(context.Background()))

	err := e.session.Login(context.Background(), "amy@example.com", "wrong-pass")
	var ae *store.AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, store.CodeInvalidCredential, ae.Code)

	_, signedIn := e.session.Current()
	require.False(t, signedIn)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	// Unknown account and wrong password must be indistinguishable.
	e := newEnv(t)
	err := e.session.Login(context.Background(), "nobody@example.com", "whatever99")
	var ae *store.AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, store.CodeInvalidCredential, ae.Code)
}

func TestSessionListenerTransitions(t *testing.T) {
	e := newEnv(t)

	var mu sync.Mutex
	var states []bool
	cancel := e.session.OnChange(func(_ domain.User, signedIn bool) {
		mu.Lock()
		states = append(states, signedIn)
		mu.Unlock()
	})
	defer cancel()

	e.register(t, "amy@example.com", "Amy")
	require.NoError(t, e.session.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(states), 3)
	require.False(t, states[0], "fires immediately with the signed-out state")
	require.True(t, states[1], "sign-up transition")
	require.False(t, states[len(states)-1], "logout transition")
}

func TestAuthMessageMapping(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{store.CodeInvalidCredential, "Incorrect email or password."},
		{store.CodeEmailInUse, "An account with this email already exists."},
		{store.CodeWeakPassword, "Password must be at least 6 characters."},
		{store.CodeNetwork, "Network error. Check your connection and try again."},
		{store.CodeUnauthorizedDomain, "This domain is not authorized. Contact support."},
		{"auth/teapot", `Authentication failed (auth/teapot).`},
	}
	for _, tt := range tests {
		got := AuthMessage(&store.AuthError{Code: tt.code})
		require.Equal(t, tt.want, got, "code %s", tt.code)
	}
	require.Equal(t, "Something went wrong. Please try again.",
		AuthMessage(errors.New("plain")))
}

func TestRefreshMergesProfileEdits(t *testing.T) {
	e := newEnv(t)
	user := e.register(t, "amy@example.com", "Amy")

	err := e.st.Set(context.Background(), "users", user.UID,
		map[string]any{"bio": "gopher"}, true)
	require.NoError(t, err)

	require.NoError(t, e.session.Refresh(context.Background()))
	got, ok := e.session.Current()
	require.True(t, ok)
	require.Equal(t, "gopher", got.Bio)
	require.Equal(t, "Amy", got.DisplayName)
}
