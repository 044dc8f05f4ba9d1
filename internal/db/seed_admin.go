package db

import (
	"context"
	"fmt"

	"github.com/geocoder89/docvault/internal/domain/user"
)

type AdminStore interface {
	HasRole(ctx context.Context, role string) (bool, error)
	Create(ctx context.Context, email, passwordHash, role string) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureAdminUser creates the admin account unless some admin already exists.
// It reports whether a user was created.
func EnsureAdminUser(ctx context.Context, store AdminStore, hasher PasswordHasher, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, fmt.Errorf("admin email and password are required")
	}

	exists, err := store.HasRole(ctx, user.RoleAdmin)

	if err != nil {
		return false, fmt.Errorf("check existing admin: %w", err)
	}

	if exists {
		return false, nil
	}

	hash, err := hasher.Hash(password)

	if err != nil {
		return false, err
	}

	_, err = store.Create(ctx, email, hash, user.RoleAdmin)

	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	return true, nil
}
