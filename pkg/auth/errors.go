package auth

import "errors"

// General authentication errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// OAuth-specific errors
var (
	ErrInvalidState       = errors.New("invalid OAuth state")
	ErrStateNotFound      = errors.New("OAuth state not found or expired")
	ErrInvalidCode        = errors.New("invalid OAuth code")
	ErrProviderLinked     = errors.New("provider already linked to another account")
	ErrNoProviderLink     = errors.New("no provider link found")
	ErrUnverifiedEmail    = errors.New("email not verified by provider")
	ErrProviderEmailInUse = errors.New("email from provider already registered")
)
