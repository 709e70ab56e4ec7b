package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/noble-diary/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-that-is-32-chars-long"

func testService(t *testing.T, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := testService(t, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), "n1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "n1", claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), "  ")
	assert.Error(t, err)
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := testService(t, func() time.Time { return issued })
	token, err := issuer.GenerateToken(context.Background(), "n1")
	require.NoError(t, err)

	otherKey, err := newHMACJWTService(config.AuthConfig{
		JWTSecret:            "a-different-secret-that-is-long-enough",
		TokenLifetimeMinutes: 60,
	}, func() time.Time { return issued })
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "n1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{"missing", issuer, "", ErrMissingToken},
		{"malformed", issuer, "not.a.jwt", ErrInvalidToken},
		{"wrong key", otherKey, token, ErrInvalidToken},
		{"none algorithm", issuer, noneToken, ErrInvalidToken},
		{"expired", testService(t, func() time.Time { return issued.Add(2 * time.Hour) }), token, ErrExpiredToken},
		{"not yet valid", testService(t, func() time.Time { return issued.Add(-time.Hour) }), token, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
