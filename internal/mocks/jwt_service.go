package mocks

import (
	"context"

	"github.com/phrazzld/noble-diary/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, subject string) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Defaults used when the function fields are nil.
	Token       string
	Err         error
	Claims      *auth.Claims
	ValidateErr error
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements auth.JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, subject string) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, subject)
	}
	return m.Token, m.Err
}

// ValidateToken implements auth.JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
