package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsefeed/pulse/store"
)

const minPasswordLen = 6

type authRecord struct {
	uid         string
	email       string
	displayName string
	photoURL    string
	hash        []byte
}

// Auth is an in-memory store.AuthClient: bcrypt-hashed credentials and
// HS256-signed session tokens, mirroring the hosted provider's behavior.
type Auth struct {
	mu        sync.Mutex
	byEmail   map[string]*authRecord
	current   *authRecord
	token     string
	secret    []byte
	listeners map[int]func(store.AuthUser, bool)
	nextID    int
	tokenTTL  time.Duration
}

// NewAuth creates an auth emulator signing tokens with secret.
func NewAuth(secret []byte) *Auth {
	return &Auth{
		byEmail:   make(map[string]*authRecord),
		secret:    secret,
		listeners: make(map[int]func(store.AuthUser, bool)),
		tokenTTL:  time.Hour,
	}
}

// SignUp implements store.AuthClient.
func (a *Auth) SignUp(_ context.Context, email, password string) (store.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return store.AuthUser{}, &store.AuthError{Code: store.CodeInvalidCredential}
	}
	if len(password) < minPasswordLen {
		return store.AuthUser{}, &store.AuthError{Code: store.CodeWeakPassword}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.AuthUser{}, fmt.Errorf("hashing password: %w", err)
	}

	a.mu.Lock()
	if _, exists := a.byEmail[email]; exists {
		a.mu.Unlock()
		return store.AuthUser{}, &store.AuthError{Code: store.CodeEmailInUse}
	}
	rec := &authRecord{uid: uuid.NewString(), email: email, hash: hash}
	a.byEmail[email] = rec
	a.current = rec
	a.token = a.signLocked(rec)
	user := rec.user()
	fns := a.listenersLocked()
	a.mu.Unlock()

	notify(fns, user, true)
	return user, nil
}

// SignIn implements store.AuthClient.
func (a *Auth) SignIn(_ context.Context, email, password string) (store.AuthUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a.mu.Lock()
	rec, ok := a.byEmail[email]
	a.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(rec.hash, []byte(password)) != nil {
		return store.AuthUser{}, &store.AuthError{Code: store.CodeInvalidCredential}
	}

	a.mu.Lock()
	a.current = rec
	a.token = a.signLocked(rec)
	user := rec.user()
	fns := a.listenersLocked()
	a.mu.Unlock()

	notify(fns, user, true)
	return user, nil
}

// SignOut implements store.AuthClient.
func (a *Auth) SignOut(context.Context) error {
	a.mu.Lock()
	a.current = nil
	a.token = ""
	fns := a.listenersLocked()
	a.mu.Unlock()

	notify(fns, store.AuthUser{}, false)
	return nil
}

// UpdateProfile implements store.AuthClient.
func (a *Auth) UpdateProfile(_ context.Context, displayName, photoURL string) error {
	a.mu.Lock()
	rec := a.current
	if rec == nil {
		a.mu.Unlock()
		return &store.AuthError{Code: store.CodeInvalidCredential}
	}
	if displayName != "" {
		rec.displayName = displayName
	}
	if photoURL != "" {
		rec.photoURL = photoURL
	}
	user := rec.user()
	fns := a.listenersLocked()
	a.mu.Unlock()

	notify(fns, user, true)
	return nil
}

// CurrentUser implements store.AuthClient.
func (a *Auth) CurrentUser() (store.AuthUser, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return store.AuthUser{}, false
	}
	return a.current.user(), true
}

// OnStateChange implements store.AuthClient.
func (a *Auth) OnStateChange(fn func(store.AuthUser, bool)) store.CancelFunc {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.listeners[id] = fn
	user, signedIn := store.AuthUser{}, false
	if a.current != nil {
		user, signedIn = a.current.user(), true
	}
	a.mu.Unlock()

	fn(user, signedIn)
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Token returns the current signed session token, empty when signed out.
func (a *Auth) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// VerifyToken checks a session token's signature and expiry and returns
// the subject UID.
func (a *Auth) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("reading subject: %w", err)
	}
	return sub, nil
}

func (a *Auth) signLocked(rec *authRecord) string {
	claims := jwt.MapClaims{
		"sub":   rec.uid,
		"email": rec.email,
		"iat":   jwt.NewNumericDate(time.Now()),
		"exp":   jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		// HS256 signing of a well-formed claim set cannot fail.
		return ""
	}
	return signed
}

func (a *Auth) listenersLocked() []func(store.AuthUser, bool) {
	fns := make([]func(store.AuthUser, bool), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(store.AuthUser, bool), user store.AuthUser, signedIn bool) {
	for _, fn := range fns {
		fn(user, signedIn)
	}
}

func (r *authRecord) user() store.AuthUser {
	return store.AuthUser{
		UID:         r.uid,
		Email:       r.email,
		DisplayName: r.displayName,
		PhotoURL:    r.photoURL,
	}
}
