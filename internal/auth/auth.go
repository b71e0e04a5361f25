// Package auth manages the local profile credential.
package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/tuimath/internal/model"
	"github.com/verte-zerg/tuimath/internal/store"
)

// SaveToken writes the opaque bearer token to the credentials file.
func SaveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// LoadToken reads the stored token. A missing file means anonymous.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearToken removes the credentials file. Missing file is not an error.
func ClearToken(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// CurrentUser resolves the stored credential to a profile. Any failure
// means the player is anonymous; sessions still work, they are just not
// attributed.
func CurrentUser(ctx context.Context, st *store.Store, credentialsPath string) *model.User {
	token, err := LoadToken(credentialsPath)
	if err != nil || token == "" {
		return nil
	}
	user, err := st.UserByToken(ctx, token)
	if err != nil {
		return nil
	}
	return &user
}
