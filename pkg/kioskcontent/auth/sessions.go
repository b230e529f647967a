package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "kiosk_admin"

// ErrInvalidCredentials is returned when a login attempt fails. It is
// deliberately identical for unknown users and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")

// SessionManager issues and resolves admin session cookies.
type SessionManager struct {
	store *sessions.CookieStore
	creds CredentialStore
}

// NewSessionManager creates a session manager. The session key must be at
// least 32 characters long.
func NewSessionManager(sessionKey string, creds CredentialStore) (*SessionManager, error) {
	if len(sessionKey) < 32 {
		return nil, errors.New("session key must be at least 32 characters long")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options.HttpOnly = true
	store.Options.Path = "/"
	store.Options.SameSite = http.SameSiteLaxMode
	return &SessionManager{store: store, creds: creds}, nil
}

// Login verifies the credentials and writes a session cookie on success.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, username, password string) error {
	hash, err := m.creds.FindPasswordHash(r.Context(), username)
	if err != nil {
		return ErrInvalidCredentials
	}
	if !VerifyPassword(hash, password) {
		return ErrInvalidCredentials
	}

	session, _ := m.store.Get(r, sessionName)
	session.Values["username"] = username
	return session.Save(r, w)
}

// Logout clears the session cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, "username")
	return session.Save(r, w)
}

// Middleware resolves the session cookie into a context principal for
// downstream handlers and the capability gate. Requests without a valid
// session pass through unauthenticated.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, sessionName)
		if err == nil {
			if username, ok := session.Values["username"].(string); ok && username != "" {
				r = r.WithContext(WithPrincipal(r.Context(), username))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// MemoryCredentials is an in-memory credential store for tests and the
// memory database mode.
type MemoryCredentials struct {
	hashes map[string]string
}

// NewMemoryCredentials creates an empty in-memory credential store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{hashes: make(map[string]string)}
}

// Add registers a user with a freshly hashed password.
func (m *MemoryCredentials) Add(username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	m.hashes[username] = hash
	return nil
}

func (m *MemoryCredentials) FindPasswordHash(ctx context.Context, username string) (string, error) {
	hash, ok := m.hashes[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	return hash, nil
}
