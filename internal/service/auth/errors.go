package auth

import "errors"

// Token validation failures. The API answers 401 for all of them; they are
// kept apart so the cause can be logged.
var (
	// ErrMissingToken is returned for an empty token string.
	ErrMissingToken = errors.New("bearer token missing")

	// ErrExpiredToken is returned once the exp claim has passed.
	ErrExpiredToken = errors.New("bearer token expired")

	// ErrInvalidToken covers every other rejection: bad signature, wrong
	// issuer or algorithm, missing claims, or a token used before nbf.
	ErrInvalidToken = errors.New("bearer token invalid")
)
