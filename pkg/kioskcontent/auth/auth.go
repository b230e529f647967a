// Package auth provides the capability gate consumed by the content
// service, backed by cookie sessions and bcrypt-hashed credentials.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

type contextKey struct{}

var principalKey contextKey

// WithPrincipal returns a context carrying the authenticated username.
func WithPrincipal(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, principalKey, username)
}

// PrincipalFrom extracts the authenticated username from the context.
func PrincipalFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(principalKey).(string)
	return username, ok && username != ""
}

// SessionGate implements kioskcontent.Gate: a request is authorized when an
// authenticated principal travels in its context.
type SessionGate struct{}

// NewSessionGate creates the context-principal capability gate.
func NewSessionGate() *SessionGate { return &SessionGate{} }

func (SessionGate) Authorized(ctx context.Context) bool {
	_, ok := PrincipalFrom(ctx)
	return ok
}

// CredentialStore resolves a username to its stored password hash. The SQL
// repositories implement it against the users table.
type CredentialStore interface {
	FindPasswordHash(ctx context.Context, username string) (string, error)
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
