// README: Monthly AI quota; one token per caddie narration, lazily reset each month.
package aiusage

import (
	"context"
	"errors"
	"time"
)

type usageStore interface {
	UseToken(ctx context.Context, uid, month string, allowance int) error
	EnsureUser(ctx context.Context, uid, month string, allowance int) error
	Get(ctx context.Context, uid string) (Usage, bool, error)
}

type Service struct {
	store     usageStore
	allowance int
	now       func() time.Time
}

// NewService creates a Service granting allowance tokens per month. A
// non-positive allowance falls back to DefaultTokens.
func NewService(store usageStore, allowance int) *Service {
	if allowance <= 0 {
		allowance = DefaultTokens
	}
	return &Service{store: store, allowance: allowance, now: time.Now}
}

func (s *Service) month() string {
	return s.now().UTC().Format(monthLayout)
}

// UseToken deducts one token from the user's monthly allowance.
// If the user row does not exist yet it is initialised and the token is immediately consumed.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	month := s.month()
	err := s.store.UseToken(ctx, uid, month, s.allowance)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: create it, then retry the deduction once.
	if err := s.store.EnsureUser(ctx, uid, month, s.allowance); err != nil {
		return err
	}
	return s.store.UseToken(ctx, uid, month, s.allowance)
}

// Remaining reports the tokens left this month without consuming any.
func (s *Service) Remaining(ctx context.Context, uid string) (Usage, error) {
	month := s.month()
	u, ok, err := s.store.Get(ctx, uid)
	if err != nil {
		return Usage{}, err
	}
	if !ok || u.Month < month {
		return Usage{UID: uid, TokensRemaining: s.allowance, Month: month}, nil
	}
	return u, nil
}
