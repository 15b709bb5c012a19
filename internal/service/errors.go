package service

import "errors"

var (
	// ErrInvalidCredentials is returned when username or password do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned for a missing, unknown or expired session token.
	ErrUnauthenticated = errors.New("authentication required")
)
