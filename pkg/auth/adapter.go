package auth

import "context"

// OAuth provider identifiers used across the auth system.
const (
	OAuthProviderMailru = "mailru"
)

// ProviderAdapter abstracts provider-specific OAuth behavior behind a
// minimal, provider-agnostic interface. Implementations encapsulate all
// protocol details (oauth2.Config, token exchange, profile API calls) and
// expose only the primitives the core OAuth service needs.
type ProviderAdapter interface {
	// ProviderID returns a stable provider identifier used for storage and
	// logging, e.g. "mailru".
	ProviderID() string

	// AuthURL builds the provider authorization URL for the given state
	// token. Implementations may add provider-specific parameters (display
	// mode, offline access).
	AuthURL(state string) (string, error)

	// ResolveProfile performs the end-to-end flow for an authorization
	// code: exchanges it for an access token, calls the provider's profile
	// endpoint(s) and returns a normalized ProviderProfile.
	//
	// On invalid code or token exchange failures, the returned error
	// matches ErrInvalidCode via errors.Is.
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}

// ProviderProfile is the normalized user profile returned by a provider
// adapter. The core OAuth service uses it to enforce security policies
// (verified-only), prevent account takeover, and create or link local users.
type ProviderProfile struct {
	// ProviderUserID is the provider's stable user identifier, always
	// represented as a string.
	ProviderUserID string

	// Email as returned by the provider; normalized by the core service
	// before use.
	Email string

	// EmailVerified indicates whether the provider asserts the email is
	// verified.
	EmailVerified bool

	// Name is the display name from the provider (optional).
	Name string

	// AvatarURL points at the user's avatar image (optional).
	AvatarURL string
}
