package mailru

import (
	"context"
	"errors"
	"fmt"

	"github.com/authkit/authkit/pkg/auth"
)

// Ensure Strategy can be plugged into the provider-agnostic OAuth service.
var _ auth.ProviderAdapter = (*Strategy)(nil)

// ProviderID implements auth.ProviderAdapter.
func (s *Strategy) ProviderID() string {
	return Provider
}

// AuthURL implements auth.ProviderAdapter. The configured display mode is
// applied; use AuthCodeURL directly to choose one per request.
func (s *Strategy) AuthURL(state string) (string, error) {
	return s.AuthCodeURL(state, s.display), nil
}

// ResolveProfile implements auth.ProviderAdapter: it exchanges the code for
// an access token, fetches the signed profile and maps it into the
// provider-agnostic shape.
func (s *Strategy) ResolveProfile(ctx context.Context, code string) (auth.ProviderProfile, error) {
	tok, err := s.Exchange(ctx, code)
	if err != nil {
		// Let the core flow treat this as an invalid code while keeping
		// the provider diagnostics reachable via errors.As.
		return auth.ProviderProfile{}, errors.Join(auth.ErrInvalidCode, err)
	}

	p, err := s.UserProfile(ctx, tok.AccessToken)
	if err != nil {
		return auth.ProviderProfile{}, fmt.Errorf("fetch mailru user: %w", err)
	}

	out := auth.ProviderProfile{
		ProviderUserID: p.ID,
		Name:           p.DisplayName,
	}
	if len(p.Emails) > 0 {
		out.Email = p.Emails[0].Value
		// The email is the Mailru account's own mailbox.
		out.EmailVerified = true
	}
	if len(p.Photos) > 0 {
		out.AvatarURL = p.Photos[0].Value
	}
	return out, nil
}
