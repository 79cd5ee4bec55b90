package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "test-secret", TTL: time.Hour})
	token, expiresAt, err := svc.Issue("session-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenService(TokenConfig{Secret: "a"}).Issue("session-1")
	require.NoError(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "b"}).Validate(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestTokenExpiry(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "s", TTL: time.Minute})
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, _, err := svc.Issue("session-1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.Validate(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrSessionExpired))
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sid": "session-1", "iss": tokenIssuerName})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "s"}).Validate(signed)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
