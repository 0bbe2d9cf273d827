package users

import (
	"context"
	stderrors "errors"
	"time"

	"resumegenius/internal/errors"
)

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// DemoUser describes one seeded account.
type DemoUser struct {
	ID         string
	Username   string
	Email      string
	Password   string
	Role       Role
	IsApproved bool
}

// DemoUsers is the demo directory: one admin, one pending and one approved standard account.
var DemoUsers = []DemoUser{
	{ID: "1", Username: "admin", Email: "admin@example.com", Password: "admin123", Role: RoleAdmin, IsApproved: true},
	{ID: "2", Username: "john_pending", Email: "john.pending@example.com", Password: "password123", Role: RoleStandard, IsApproved: false},
	{ID: "3", Username: "jane_standard", Email: "jane.standard@example.com", Password: "password123", Role: RoleStandard, IsApproved: true},
}

// Seed inserts the demo users that are not already present, in order.
// It returns how many were inserted.
func Seed(ctx context.Context, repo Repository, hasher PasswordHasher, now time.Time) (int, error) {
	inserted := 0
	for i, d := range DemoUsers {
		hash, err := hasher.Hash(d.Password)
		if err != nil {
			return inserted, errors.NewInternalError(errors.ErrCodeHashFailed, "Failed to hash demo password", err)
		}

		err = repo.Insert(ctx, &User{
			ID:           d.ID,
			Username:     d.Username,
			Email:        d.Email,
			PasswordHash: hash,
			Role:         d.Role,
			IsApproved:   d.IsApproved,
			CreatedAt:    now.Add(time.Duration(i) * time.Millisecond),
		})
		if stderrors.Is(err, errors.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
