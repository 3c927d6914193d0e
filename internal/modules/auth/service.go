// README: Registration and login; bcrypt password hashes, signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"caddy/internal/validation"
)

type userStore interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(uid, email, role string) (string, time.Time, error)
}

type Service struct {
	store  userStore
	issuer TokenIssuer
	logger *zerolog.Logger
	cost   int
}

func NewService(store userStore, issuer TokenIssuer, logger *zerolog.Logger) *Service {
	return &Service{store: store, issuer: issuer, logger: logger, cost: bcrypt.DefaultCost}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Email: in.Email, Name: in.Name, PasswordHash: string(hash)}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login checks the password and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	u, err := s.store.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		s.logger.Debug().Int64("user_id", u.ID).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.issuer.Issue(strconv.FormatInt(u.ID, 10), u.Email, "")
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, TokenType: "bearer", ExpiresAt: exp, User: *u}, nil
}
