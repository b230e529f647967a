package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindPasswordHash returns the stored password hash for a username. A
// missing user surfaces as sql.ErrNoRows to the auth layer.
func (r *Repository) FindPasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		"SELECT password_hash FROM users WHERE username = ?", username).Scan(&hash)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// SeedUser inserts a user if the username is not taken yet. Used to seed
// the initial admin account on startup.
func (r *Repository) SeedUser(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash)
	if err != nil {
		return fmt.Errorf("error seeding user: %w", err)
	}
	return nil
}

// UserExists reports whether a username is registered.
func (r *Repository) UserExists(ctx context.Context, username string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
