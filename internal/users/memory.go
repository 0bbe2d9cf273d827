package users

import (
	"context"
	"sort"
	"sync"

	"resumegenius/internal/errors"
)

type memoryEntry struct {
	user User
	seq  uint64
}

// MemoryRepository is a Repository backed by process memory. The directory
// does not survive a restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*memoryEntry
	byEmail map[string]string
	nextSeq uint64
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*memoryEntry),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, notFound("email", email)
	}
	u := r.byID[id].user
	return &u, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, notFound("user_id", id)
	}
	u := e.user
	return &u, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]PublicUser, error) {
	r.mu.RLock()
	entries := make([]*memoryEntry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]PublicUser, len(entries))
	for i, e := range entries {
		out[i] = e.user.Public()
	}
	return out, nil
}

func (r *MemoryRepository) Insert(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return errors.NewConflictError(errors.ErrCodeDuplicateEmail, errors.ErrDuplicateEmail.Message, nil).
			WithContext("email", user.Email)
	}
	if _, taken := r.byID[user.ID]; taken {
		return errors.NewConflictError(errors.ErrCodeDuplicateID, "User id already exists", nil).WithContext("user_id", user.ID)
	}

	r.nextSeq++
	r.byID[user.ID] = &memoryEntry{user: *user, seq: r.nextSeq}
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepository) SetApproved(_ context.Context, id string, approved bool) error {
	return r.update(id, func(u *User) { u.IsApproved = approved })
}

func (r *MemoryRepository) SetPasswordHash(_ context.Context, id, hash string) error {
	return r.update(id, func(u *User) { u.PasswordHash = hash })
}

func (r *MemoryRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return notFound("user_id", id)
	}
	delete(r.byEmail, e.user.Email)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) update(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return notFound("user_id", id)
	}
	fn(&e.user)
	return nil
}

func notFound(key, value string) error {
	return errors.NewNotFoundError(errors.ErrCodeNotFound, errors.ErrNotFound.Message, nil).WithContext(key, value)
}
