// Package auth issues and validates the bearer tokens that guard the diary API.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for subject, the noble id.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken validates the token string and extracts its claims.
	// Returns ErrMissingToken, ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims holds the validated registered claims of a token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
