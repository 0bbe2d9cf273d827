package users

import (
	"context"
	stderrors "errors"
	"fmt"

	"resumegenius/internal/config"
	"resumegenius/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// BreakerRepository guards a Repository with a circuit breaker so that a
// failing database is not hammered by every login attempt. Domain outcomes
// (not found, duplicate email) count as successes.
type BreakerRepository struct {
	next Repository
	cb   *gobreaker.CircuitBreaker[any]
}

var _ Repository = (*BreakerRepository)(nil)

// NewBreakerRepository wraps next. When the breaker is disabled next is returned unchanged.
func NewBreakerRepository(next Repository, cfg config.CircuitBreakerConfig, logger *errors.Logger) Repository {
	if !cfg.Enabled {
		return next
	}

	settings := gobreaker.Settings{
		Name:        "credential-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
		IsSuccessful: isStoreHealthy,
	}

	return &BreakerRepository{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func isStoreHealthy(err error) bool {
	return err == nil ||
		stderrors.Is(err, errors.ErrNotFound) ||
		stderrors.Is(err, errors.ErrDuplicateEmail) ||
		stderrors.Is(err, &errors.AppError{Code: errors.ErrCodeDuplicateID}) ||
		stderrors.Is(err, context.Canceled)
}

// Stats returns circuit breaker statistics for the stats endpoint.
func (b *BreakerRepository) Stats() map[string]any {
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is closed.
func (b *BreakerRepository) IsHealthy() bool {
	return b.cb.State() == gobreaker.StateClosed
}

func (b *BreakerRepository) run(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.NewNetworkError(errors.ErrCodeStoreUnavailable, errors.ErrStoreUnavailable.Message, err)
	}
	return v, err
}

func runTyped[T any](b *BreakerRepository, fn func() (T, error)) (T, error) {
	v, err := b.run(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected breaker result %T", v)
	}
	return t, nil
}

func (b *BreakerRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return runTyped(b, func() (*User, error) { return b.next.FindByEmail(ctx, email) })
}

func (b *BreakerRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return runTyped(b, func() (*User, error) { return b.next.FindByID(ctx, id) })
}

func (b *BreakerRepository) List(ctx context.Context) ([]PublicUser, error) {
	return runTyped(b, func() ([]PublicUser, error) { return b.next.List(ctx) })
}

func (b *BreakerRepository) Insert(ctx context.Context, user *User) error {
	_, err := b.run(func() (any, error) { return nil, b.next.Insert(ctx, user) })
	return err
}

func (b *BreakerRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	_, err := b.run(func() (any, error) { return nil, b.next.SetApproved(ctx, id, approved) })
	return err
}

func (b *BreakerRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := b.run(func() (any, error) { return nil, b.next.SetPasswordHash(ctx, id, hash) })
	return err
}

func (b *BreakerRepository) Remove(ctx context.Context, id string) error {
	_, err := b.run(func() (any, error) { return nil, b.next.Remove(ctx, id) })
	return err
}
