// Package auth provides a provider-agnostic OAuth authentication service:
// the host-side collaborator that drives a pluggable provider strategy
// through the authorization-redirect / callback / profile-resolution
// lifecycle.
//
// The package is built around three small contracts:
//
//   - ProviderAdapter encapsulates everything provider-specific (endpoint
//     configuration, token exchange, profile APIs) behind ProviderID,
//     AuthURL and ResolveProfile. The Mailru strategy in pkg/mailru is one
//     implementation.
//   - UserStore persists local users and their provider links.
//   - StateStore persists one-time CSRF state tokens; pkg/oauthstate ships a
//     Redis-backed implementation.
//
// # Usage
//
//	strategy, _ := mailru.New(cfg)
//	svc := auth.NewOAuthService(users, states, strategy,
//	    auth.WithLogger(log),
//	    auth.WithStateTTL(10*time.Minute),
//	)
//
//	// Build the redirect.
//	url, err := svc.GetAuthURL(ctx)
//
//	// In the callback handler.
//	user, err := svc.Auth(ctx, code, state, nil)
//
// Auth either signs in an existing linked user, creates a new one, or, when
// a link target is supplied, attaches the provider identity to an existing
// account. State tokens are single-use; replays fail with ErrInvalidState.
//
// Hooks (WithAfterAuth, WithBeforeLink, WithAfterLink) provide extension
// points without subclassing; hook failures after the fact are logged, never
// propagated.
package auth
