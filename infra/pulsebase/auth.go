package pulsebase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/pulsefeed/pulse/store"
)

// Auth implements store.AuthClient over the Pulsebase auth endpoints.
// It also serves as the TokenProvider for the rest of the API: every
// successful sign-in yields the session token attached to later calls.
type Auth struct {
	client *Client

	mu        sync.Mutex
	current   store.AuthUser
	signedIn  bool
	token     string
	listeners map[int]func(store.AuthUser, bool)
	nextID    int
}

var _ store.AuthClient = (*Auth)(nil)
var _ TokenProvider = (*Auth)(nil)

// NewAuth creates an auth client for a Pulsebase project.
func NewAuth(baseURL, apiKey string) *Auth {
	a := &Auth{listeners: make(map[int]func(store.AuthUser, bool))}
	a.client = NewClient(baseURL, apiKey, a)
	return a
}

// SessionToken implements TokenProvider.
func (a *Auth) SessionToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// authResponse is the wire shape of sign-in and sign-up results.
type authResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Token       string `json:"token"`
}

func (r authResponse) user() store.AuthUser {
	return store.AuthUser{UID: r.UID, Email: r.Email, DisplayName: r.DisplayName, PhotoURL: r.PhotoURL}
}

// authError converts the API's auth/* error codes to the typed error
// the session layer maps to messages. Anything else passes through.
func authError(err error) error {
	var se *StatusError
	if errors.As(err, &se) && strings.HasPrefix(se.Code, "auth/") {
		return &store.AuthError{Code: se.Code}
	}
	return err
}

// SignUp implements store.AuthClient.
func (a *Auth) SignUp(ctx context.Context, email, password string) (store.AuthUser, error) {
	return a.credentialCall(ctx, "/v1/auth:signUp", email, password)
}

// SignIn implements store.AuthClient.
func (a *Auth) SignIn(ctx context.Context, email, password string) (store.AuthUser, error) {
	return a.credentialCall(ctx, "/v1/auth:signIn", email, password)
}

func (a *Auth) credentialCall(ctx context.Context, path, email, password string) (store.AuthUser, error) {
	var resp authResponse
	err := a.client.do(ctx, http.MethodPost, path,
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return store.AuthUser{}, authError(err)
	}

	user := resp.user()
	a.mu.Lock()
	a.current = user
	a.signedIn = true
	a.token = resp.Token
	fns := a.listenersLocked()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(user, true)
	}
	return user, nil
}

// SignOut implements store.AuthClient. The local session ends even if
// the revocation call fails; the token is already discarded.
func (a *Auth) SignOut(ctx context.Context) error {
	err := a.client.do(ctx, http.MethodPost, "/v1/auth:signOut", nil, nil)

	a.mu.Lock()
	a.current = store.AuthUser{}
	a.signedIn = false
	a.token = ""
	fns := a.listenersLocked()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(store.AuthUser{}, false)
	}
	return authError(err)
}

// UpdateProfile implements store.AuthClient.
func (a *Auth) UpdateProfile(ctx context.Context, displayName, photoURL string) error {
	var resp authResponse
	err := a.client.do(ctx, http.MethodPost, "/v1/auth:update",
		map[string]string{"displayName": displayName, "photoURL": photoURL}, &resp)
	if err != nil {
		return authError(err)
	}

	user := resp.user()
	a.mu.Lock()
	a.current = user
	fns := a.listenersLocked()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(user, true)
	}
	return nil
}

// CurrentUser implements store.AuthClient.
func (a *Auth) CurrentUser() (store.AuthUser, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.signedIn
}

// OnStateChange implements store.AuthClient.
func (a *Auth) OnStateChange(fn func(store.AuthUser, bool)) store.CancelFunc {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.listeners[id] = fn
	user, signedIn := a.current, a.signedIn
	a.mu.Unlock()

	fn(user, signedIn)
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *Auth) listenersLocked() []func(store.AuthUser, bool) {
	fns := make([]func(store.AuthUser, bool), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	return fns
}
