package social

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulsefeed/pulse/app"
	"github.com/pulsefeed/pulse/domain"
	"github.com/pulsefeed/pulse/store"
)

const profileFetchTimeout = 10 * time.Second

// Session tracks the authenticated identity by subscribing to the auth
// provider's state stream and overlaying the profile document on each
// auth record. It is the single source of truth for "who is signed in";
// everything else asks it via Current or OnChange.
type Session struct {
	auth store.AuthClient
	st   store.Store
	log  *zap.Logger

	mu        sync.Mutex
	user      domain.User
	signedIn  bool
	loading   bool
	listeners map[int]func(domain.User, bool)
	nextID    int
	cancel    store.CancelFunc
}

var _ app.SessionService = (*Session)(nil)

// NewSession starts tracking auth state immediately.
func NewSession(auth store.AuthClient, st store.Store, log *zap.Logger) *Session {
	s := &Session{
		auth:      auth,
		st:        st,
		log:       log,
		loading:   true,
		listeners: make(map[int]func(domain.User, bool)),
	}
	s.cancel = auth.OnStateChange(s.onAuthState)
	return s
}

func (s *Session) onAuthState(au store.AuthUser, signedIn bool) {
	var user domain.User
	if signedIn {
		user = s.mergeProfile(au)
	}

	s.mu.Lock()
	s.user = user
	s.signedIn = signedIn
	s.loading = false
	fns := make([]func(domain.User, bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user, signedIn)
	}
}

// mergeProfile overlays the profile document on the auth record. The
// auth record wins where both carry a value; a missing profile document
// is not an error, the account simply has no bio yet.
func (s *Session) mergeProfile(au store.AuthUser) domain.User {
	user := domain.User{
		UID:         au.UID,
		Email:       au.Email,
		DisplayName: au.DisplayName,
		PhotoURL:    au.PhotoURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
	defer cancel()

	doc, err := s.st.Get(ctx, colUsers, au.UID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("profile fetch failed", zap.String("uid", au.UID), zap.Error(err))
		}
		return user
	}

	if user.DisplayName == "" {
		user.DisplayName = doc.Str("displayName")
	}
	if user.PhotoURL == "" {
		user.PhotoURL = doc.Str("photoURL")
	}
	user.Bio = doc.Str("bio")
	return user
}

// Current returns the merged signed-in user, if any.
func (s *Session) Current() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.signedIn
}

// Loading reports whether the initial auth state is still unresolved.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Login authenticates with email and password. The session state itself
// updates through the auth-state stream, not here.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if _, err := s.auth.SignIn(ctx, email, password); err != nil {
		s.log.Info("login rejected", zap.String("email", email), zap.Error(err))
		return err
	}
	s.log.Info("logged in", zap.String("email", email))
	return nil
}

// Register creates the account, applies the display name to the auth
// record, and provisions the profile document with an empty bio.
func (s *Session) Register(ctx context.Context, email, password, displayName string) error {
	au, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		s.log.Info("registration rejected", zap.String("email", email), zap.Error(err))
		return err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName != "" {
		if err := s.auth.UpdateProfile(ctx, displayName, ""); err != nil {
			return err
		}
	}
	if err := s.st.Set(ctx, colUsers, au.UID, map[string]any{
		"displayName": displayName,
		"bio":         "",
	}, true); err != nil {
		return err
	}

	// The auth-state callback may have fired before the display name and
	// profile document existed; fold them in now.
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("post-register refresh failed", zap.Error(err))
	}
	s.log.Info("registered", zap.String("email", email), zap.String("uid", au.UID))
	return nil
}

// Logout ends the session.
func (s *Session) Logout(ctx context.Context) error {
	return s.auth.SignOut(ctx)
}

// OnChange registers fn for session transitions. It fires immediately
// with the current state, then after every auth-state change.
func (s *Session) OnChange(fn func(user domain.User, signedIn bool)) app.CancelFunc {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	user, signedIn := s.user, s.signedIn
	s.mu.Unlock()

	fn(user, signedIn)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Refresh re-merges the auth record and profile document in place and
// notifies listeners. Called after profile saves so no view has to
// reload anything.
func (s *Session) Refresh(ctx context.Context) error {
	au, ok := s.auth.CurrentUser()
	if !ok {
		return domain.ErrUnauthorized
	}
	user := s.mergeProfile(au)

	s.mu.Lock()
	s.user = user
	fns := make([]func(domain.User, bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user, true)
	}
	return nil
}

// Close releases the auth-state subscription.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// AuthMessage maps an auth failure to the sentence shown on the login
// screen. Unknown codes get a generic line with the code visible.
func AuthMessage(err error) string {
	var ae *store.AuthError
	if !errors.As(err, &ae) {
		return "Something went wrong. Please try again."
	}
	switch ae.Code {
	case store.CodeInvalidCredential:
		return "Incorrect email or password."
	case store.CodeUnauthorizedDomain:
		return "This domain is not authorized. Contact support."
	case store.CodeEmailInUse:
		return "An account with this email already exists."
	case store.CodeWeakPassword:
		return "Password must be at least 6 characters."
	case store.CodeNetwork:
		return "Network error. Check your connection and try again."
	}
	return "Authentication failed (" + ae.Code + ")."
}
