package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute, time.Hour)

	token, err := svc.GenerateToken("user-1", "skipper@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", string(claims.UserID))
	assert.Equal(t, "skipper@example.com", claims.Email)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, time.Hour)

	token, err := svc.GenerateToken("user-1", "skipper@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Minute, time.Hour)
	verifier := NewTokenService("secret-b", time.Minute, time.Hour)

	token, err := issuer.GenerateToken("user-1", "skipper@example.com")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute, time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
