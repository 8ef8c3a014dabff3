package auth

import (
	"time"

	"github.com/google/uuid"
)

// Authentication method identifiers used to track how users authenticate.
const (
	MethodOAuthMailru = "oauth_mailru"
)

// User represents a user account in the authentication system.
type User struct {
	ID         uuid.UUID
	Email      string
	Name       string // Display name (optional)
	Avatar     string // Avatar URL (optional)
	AuthMethod string
	IsVerified bool
	CreatedAt  time.Time
}
