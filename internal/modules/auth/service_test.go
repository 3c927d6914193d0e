package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"caddy/internal/infra"
)

type memStore struct {
	users map[string]*User
}

func (m *memStore) Create(_ context.Context, u *User) error {
	if _, ok := m.users[u.Email]; ok {
		return ErrEmailTaken
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.Email] = u
	return nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func newTestService(t *testing.T) (*Service, *infra.JWTManager) {
	t.Helper()
	jwt, err := infra.NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour, "caddy")
	require.NoError(t, err)
	logger := zerolog.Nop()
	svc := NewService(&memStore{users: map[string]*User{}}, jwt, &logger)
	svc.cost = bcrypt.MinCost
	return svc, jwt
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwt := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: " Rory@Example.com ", Password: "fore-fore-fore", Name: "Rory"})
	require.NoError(t, err)
	assert.Equal(t, "rory@example.com", u.Email)
	assert.NotEqual(t, "fore-fore-fore", u.PasswordHash)

	sess, err := svc.Login(ctx, LoginInput{Email: "rory@example.com", Password: "fore-fore-fore"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", sess.TokenType)

	tok, err := jwt.VerifyToken(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", tok.UID)
	assert.Equal(t, "rory@example.com", tok.Email)
}

func TestRegister_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "x@y.co", Password: "short", Name: "Xi"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{Email: "x@y.co", Password: "longenough", Name: "Xi"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "X@y.co", Password: "longenough", Name: "Xi"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_SameErrorForUnknownAndWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "x@y.co", Password: "longenough", Name: "Xi"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "x@y.co", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@y.co", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
