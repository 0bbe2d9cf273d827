//go:build !devbypass

package auth

import (
	"context"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"
)

// BypassEnabled reports whether this binary was built with the emergency login.
const BypassEnabled = false

// EmergencyBypass always fails in regular builds.
func (s *Service) EmergencyBypass(context.Context) (users.PublicUser, error) {
	return users.PublicUser{}, errors.NewAuthError(errors.ErrCodeBypassDisabled, errors.ErrBypassDisabled.Message, nil)
}
