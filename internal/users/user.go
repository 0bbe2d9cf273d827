// Package users holds the credential store: user records, the Repository
// abstraction and its in-memory, PostgreSQL and circuit-breaker implementations.
package users

import (
	"context"
	"time"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

// User is a stored user record including the password hash.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsApproved   bool
	CreatedAt    time.Time
}

// PublicUser is a user record without its password hash. It is the only
// user shape handed out of the auth layer.
type PublicUser struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		CreatedAt:  u.CreatedAt,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u PublicUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Repository is the credential store. Lookups by email are exact and
// case-sensitive. Mutations of an absent id fail with errors.ErrNotFound and
// inserting an email that already resolves fails with errors.ErrDuplicateEmail.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// List returns every user in creation order, without password hashes.
	List(ctx context.Context) ([]PublicUser, error)
	Insert(ctx context.Context, user *User) error
	SetApproved(ctx context.Context, id string, approved bool) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	Remove(ctx context.Context, id string) error
}
