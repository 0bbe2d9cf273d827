package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"resumegenius/internal/errors"
	"resumegenius/internal/users"

	"github.com/google/uuid"
)

// Session is a restored sign-in.
type Session struct {
	User  users.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Manager saves, restores and clears sessions in a Store.
type Manager struct {
	store  Store
	logger *errors.Logger
}

// NewManager creates a Manager over store.
func NewManager(store Store, logger *errors.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Save writes user and token for sid, overwriting any previous session.
func (m *Manager) Save(ctx context.Context, sid string, user users.PublicUser, token string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSessionStoreFailed, "Failed to encode session user", err)
	}
	return m.store.Set(ctx, sid, map[string]string{
		FieldUser:  string(data),
		FieldToken: token,
	})
}

// Restore returns the session for sid. A missing field or a user that does not
// decode is reported as no session (nil, nil); only store failures are errors.
func (m *Manager) Restore(ctx context.Context, sid string) (*Session, error) {
	fields, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}

	rawUser, hasUser := fields[FieldUser]
	token, hasToken := fields[FieldToken]
	if !hasUser || !hasToken || rawUser == "" || token == "" {
		if hasUser != hasToken {
			m.logger.Warn("Discarding incomplete session", "has_user", hasUser, "has_token", hasToken)
		}
		return nil, nil
	}

	var user users.PublicUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn("Discarding session with unreadable user", "error", err.Error())
		return nil, nil
	}
	if user.ID == "" {
		return nil, nil
	}
	return &Session{User: user, Token: token}, nil
}

// Clear removes the session for sid.
func (m *Manager) Clear(ctx context.Context, sid string) error {
	return m.store.Delete(ctx, sid)
}

// NewToken builds the opaque session token. It is informational only and is
// never verified.
func NewToken(user users.PublicUser, now time.Time) string {
	raw := user.ID + ":" + user.Email + ":" + strconv.FormatInt(now.UnixMilli(), 10)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}
