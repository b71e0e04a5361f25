package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuimath/internal/model"
)

// CreateUser inserts a profile and mints its opaque bearer token. Existing
// usernames get a fresh token instead of a duplicate row.
func (s *Store) CreateUser(ctx context.Context, username string) (model.User, string, error) {
	if username == "" {
		return model.User{}, "", fmt.Errorf("username must not be empty")
	}
	token := uuid.NewString()

	var user model.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		now := time.Now()
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO users (username, token, created_at) VALUES (?, ?, ?)`,
			username, token, now.Format(time.RFC3339Nano))
		if err != nil {
			return model.User{}, "", err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return model.User{}, "", err
		}
		return model.User{ID: id, Username: username, CreatedAt: now}, token, nil
	case err != nil:
		return model.User{}, "", err
	default:
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET token = ? WHERE id = ?`, token, user.ID); err != nil {
			return model.User{}, "", err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return model.User{}, "", err
		}
		user.CreatedAt = parsed
		return user, token, nil
	}
}

// UserByToken resolves an opaque bearer token to its profile.
func (s *Store) UserByToken(ctx context.Context, token string) (model.User, error) {
	var user model.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE token = ?`, token).
		Scan(&user.ID, &user.Username, &createdAt)
	if err != nil {
		return model.User{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.User{}, err
	}
	user.CreatedAt = parsed
	return user, nil
}
