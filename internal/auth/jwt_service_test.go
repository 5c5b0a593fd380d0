package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angel7544/mentorconnect/internal/models"
)

func newTestService(t *testing.T, clock func() time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		Issuer:         "mentorconnect",
		AccessTokenTTL: time.Hour,
		Clock:          clock,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService(t, nil)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "mentorconnect", claims.Issuer)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issued

	svc := newTestService(t, func() time.Time { return current })

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	current = issued.Add(2 * time.Hour)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	other, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)

	token, err := other.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	svc := newTestService(t, nil)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}

func TestGenerateRequiresUserID(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.GenerateAccessToken(AccessTokenInput{})
	require.Error(t, err)
}
