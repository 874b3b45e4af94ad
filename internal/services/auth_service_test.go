package services

import (
	"context"
	"testing"

	pollstream_errors "pollstream/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newTestDB(t), "test-secret", 60, nil)
}

func TestRegisterAndParseToken(t *testing.T) {
	svc := newAuthService(t)

	u, token, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.UUID.String(), claims.Subject)

	resolved, err := svc.GetUserByUUID(context.Background(), u.UUID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, resolved.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Name: "Other Alice", Email: "Alice@Example.com", Password: "different1",
	})
	assert.ErrorIs(t, err, pollstream_errors.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"empty name", RegisterInput{Name: " ", Email: "a@example.com", Password: "secret123"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, pollstream_errors.ErrInvalidInput)
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	u, token, err := svc.Login(context.Background(), LoginInput{
		Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.UUID.String(), claims.Subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, pollstream_errors.ErrUnauthorized)

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, pollstream_errors.ErrUnauthorized)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, pollstream_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, pollstream_errors.ErrUnauthorized)
}

func TestParseAccessTokenRejectsForeignSecret(t *testing.T) {
	svc := newAuthService(t)
	other := NewAuthService(newTestDB(t), "other-secret", 60, nil)

	_, token, err := other.Register(context.Background(), RegisterInput{
		Name: "Eve", Email: "eve@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, pollstream_errors.ErrUnauthorized)
}
