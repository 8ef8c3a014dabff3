package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OAuthAuthenticator defines the interface for OAuth-based authentication.
type OAuthAuthenticator interface {
	// GetAuthURL generates an OAuth authorization URL with CSRF protection.
	GetAuthURL(ctx context.Context) (string, error)

	// Auth handles the OAuth callback: authenticates the user or links the
	// provider identity to an existing user when linkToUserID is set.
	Auth(ctx context.Context, code, state string, linkToUserID *uuid.UUID) (*User, error)

	// Unlink removes the OAuth provider link from a user account.
	Unlink(ctx context.Context, userID uuid.UUID) error
}

// UserStore persists local users and their OAuth provider links.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	StoreOAuthLink(ctx context.Context, userID uuid.UUID, provider, providerUserID string) error
	GetUserByOAuth(ctx context.Context, provider, providerUserID string) (*User, error)
	RemoveOAuthLink(ctx context.Context, userID uuid.UUID, provider string) error
}

// StateStore persists one-time CSRF state tokens.
type StateStore interface {
	StoreState(ctx context.Context, state string, expiresAt time.Time) error

	// ConsumeState atomically checks that the state exists and removes it.
	// Returns ErrStateNotFound if the state does not exist or was already
	// consumed. Atomicity is required to prevent races between concurrent
	// callback requests.
	ConsumeState(ctx context.Context, state string) error
}
