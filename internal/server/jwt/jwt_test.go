package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueAndValidate(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	token, expiresIn, err := svc.IssueAccessToken("user-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestService_ValidateExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, _, err := svc.IssueAccessToken("user-1", "alice")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateWrongSecret(t *testing.T) {
	token, _, err := NewService("secret-a", time.Hour).IssueAccessToken("user-1", "alice")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateGarbage(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
