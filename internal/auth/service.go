// Package auth implements the account rules on top of the credential store:
// registration with an approval gate, credential checks, admin user management
// and resource ownership checks.
//
// The service performs no role checks. Callers are expected to enforce the
// admin role at the HTTP boundary before invoking admin operations.
package auth

import (
	"context"
	"path"
	"sync"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/google/uuid"
)

// dummyPassword is hashed once and compared against when an email is unknown,
// so a miss costs the same bcrypt work as a wrong password.
const dummyPassword = "resumegenius-dummy-password"

// Service holds the account business rules.
type Service struct {
	repo   users.Repository
	hasher Hasher
	logger *errors.Logger
	now    func() time.Time
	newID  func() string

	dummyOnce sync.Once
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the random UUID generator used for new users.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *errors.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates an auth service over repo.
func NewService(repo users.Repository, hasher Hasher, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		hasher: hasher,
		logger: errors.NewNopLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unapproved standard account. It never creates a session.
func (s *Service) Register(ctx context.Context, username, email, password string) (users.PublicUser, error) {
	u, err := s.insert(ctx, username, email, password, users.RoleStandard, false)
	if err != nil {
		return users.PublicUser{}, err
	}
	s.logger.Info("User registered", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Authenticate checks email and password. The password is verified before the
// approval flag, so a pending account only reports PENDING_APPROVAL to someone
// who knows its password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.PublicUser, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			return users.PublicUser{}, err
		}
		s.compareDummy(password)
		return users.PublicUser{}, invalidCredentials()
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		s.logger.LogError(err, "Stored password hash is unusable", "user_id", u.ID)
		return users.PublicUser{}, invalidCredentials()
	}
	if !ok {
		return users.PublicUser{}, invalidCredentials()
	}
	if !u.IsApproved {
		return users.PublicUser{}, errors.NewAuthError(errors.ErrCodePendingApproval, errors.ErrPendingApproval.Message, nil).
			WithContext("user_id", u.ID)
	}

	s.rehashIfNeeded(ctx, u, password)
	return u.Public(), nil
}

func (s *Service) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.LogError(err, "Failed to prepare dummy hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *Service) rehashIfNeeded(ctx context.Context, u *users.User, password string) {
	if !s.hasher.NeedsRehash(u.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.repo.SetPasswordHash(ctx, u.ID, hash)
	}
	if err != nil {
		s.logger.Warn("Password rehash failed", "user_id", u.ID, "error", err.Error())
		return
	}
	s.logger.Debug("Password rehashed with current cost", "user_id", u.ID)
}

// Approve marks the account approved and returns it.
func (s *Service) Approve(ctx context.Context, id string) (users.PublicUser, error) {
	if err := s.repo.SetApproved(ctx, id, true); err != nil {
		return users.PublicUser{}, err
	}
	s.logger.Info("User approved", "user_id", id)
	return s.GetUser(ctx, id)
}

// Reject deletes a pending registration. It reports false when id does not exist.
func (s *Service) Reject(ctx context.Context, id string) (bool, error) {
	removed, err := s.remove(ctx, id)
	if removed {
		s.logger.Info("User rejected", "user_id", id)
	}
	return removed, err
}

// ResetPassword replaces the password hash of id.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) (users.PublicUser, error) {
	hash, err := s.hash(newPassword)
	if err != nil {
		return users.PublicUser{}, err
	}
	if err := s.repo.SetPasswordHash(ctx, id, hash); err != nil {
		return users.PublicUser{}, err
	}
	s.logger.Info("Password reset", "user_id", id)
	return s.GetUser(ctx, id)
}

// CreateByAdmin creates an account directly. An empty role means standard.
func (s *Service) CreateByAdmin(ctx context.Context, username, email, password string, role users.Role, isApproved bool) (users.PublicUser, error) {
	if role == "" {
		role = users.RoleStandard
	}
	if !role.Valid() {
		return users.PublicUser{}, errors.NewValidationError(errors.ErrCodeValidation, "Role must be admin or standard", nil).
			WithContext("role", string(role))
	}
	u, err := s.insert(ctx, username, email, password, role, isApproved)
	if err != nil {
		return users.PublicUser{}, err
	}
	s.logger.Info("User created by admin", "user_id", u.ID, "role", string(role))
	return u, nil
}

// Delete removes the account. It reports false when id does not exist.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.remove(ctx, id)
	if removed {
		s.logger.Info("User deleted", "user_id", id)
	}
	return removed, err
}

// ListUsers returns every account in creation order.
func (s *Service) ListUsers(ctx context.Context) ([]users.PublicUser, error) {
	return s.repo.List(ctx)
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, id string) (users.PublicUser, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return users.PublicUser{}, err
	}
	return u.Public(), nil
}

// CanAccess reports whether requester may touch data owned by ownerID.
func CanAccess(requester users.PublicUser, ownerID string) bool {
	return requester.IsAdmin() || requester.ID == ownerID
}

// UserDataPath is the storage prefix for a user's documents.
func UserDataPath(id string) string {
	return path.Join("user_data", id) + "/"
}

func (s *Service) insert(ctx context.Context, username, email, password string, role users.Role, approved bool) (users.PublicUser, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return users.PublicUser{}, duplicateEmail(email)
	} else if !errors.Is(err, errors.ErrNotFound) {
		return users.PublicUser{}, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return users.PublicUser{}, err
	}

	u := &users.User{
		ID:           s.newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   approved,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return users.PublicUser{}, err
	}
	return u.Public(), nil
}

func (s *Service) remove(ctx context.Context, id string) (bool, error) {
	err := s.repo.Remove(ctx, id)
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeHashFailed, "Failed to hash password", err)
	}
	return hash, nil
}

func invalidCredentials() error {
	return errors.NewAuthError(errors.ErrCodeInvalidCredentials, errors.ErrInvalidCredentials.Message, nil)
}

func duplicateEmail(email string) error {
	return errors.NewConflictError(errors.ErrCodeDuplicateEmail, errors.ErrDuplicateEmail.Message, nil).
		WithContext("email", email)
}

// Hasher returns the password hasher, for seeding.
func (s *Service) Hasher() Hasher {
	return s.hasher
}
