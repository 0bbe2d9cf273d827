//go:build devbypass

package auth

import (
	"context"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"
)

// BypassEnabled reports whether this binary was built with the emergency login.
const BypassEnabled = true

// EmergencyBypass returns the first admin account in creation order without
// checking any credentials. It exists only in builds tagged devbypass.
func (s *Service) EmergencyBypass(ctx context.Context) (users.PublicUser, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return users.PublicUser{}, err
	}
	for _, u := range list {
		if u.IsAdmin() {
			s.logger.Warn("Emergency bypass used", "user_id", u.ID)
			return u, nil
		}
	}
	return users.PublicUser{}, errors.NewNotFoundError(errors.ErrCodeNoAdminFound, errors.ErrNoAdminFound.Message, nil)
}
