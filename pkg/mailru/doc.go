// Package mailru implements the Mailru (mail.ru) OAuth 2.0 authentication
// strategy on top of golang.org/x/oauth2.
//
// The package covers the provider-specific parts of the flow and delegates
// the generic authorization-code handshake to x/oauth2:
//
//   - Authorization URL construction with the provider's optional "display"
//     parameter (page, popup, touch).
//   - Code-for-token exchange via oauth2.Config.Exchange, with token endpoint
//     error payloads mapped to the structured APIError type.
//   - Profile retrieval through the proprietary users.getInfo REST method,
//     which requires an MD5 request signature computed over the request
//     parameters and the application secret (see Sign).
//   - Normalization of the provider-native profile object into the canonical
//     Profile shape, including the binary sex flag to gender mapping and the
//     absent-when-empty semantics of the Emails and Photos lists.
//
// # Usage
//
//	strategy, err := mailru.New(mailru.Config{
//	    ClientID:     os.Getenv("MAILRU_OAUTH_CLIENT_ID"),
//	    ClientSecret: os.Getenv("MAILRU_OAUTH_CLIENT_SECRET"),
//	    RedirectURL:  "https://example.com/auth/mailru/callback",
//	})
//	if err != nil {
//	    // missing client credentials
//	}
//
//	// Redirect the user to the authorization page.
//	url := strategy.AuthCodeURL(state, mailru.DisplayPage)
//
//	// In the callback handler, exchange the code and fetch the profile.
//	tok, err := strategy.Exchange(ctx, code)
//	profile, err := strategy.UserProfile(ctx, tok.AccessToken)
//
// Strategy also satisfies the auth.ProviderAdapter interface, so it can be
// plugged into the provider-agnostic OAuth service from pkg/auth:
//
//	svc := auth.NewOAuthService(users, states, strategy)
//
// # Error handling
//
// Failures reported by the provider itself (both the token endpoint and the
// profile endpoint) surface as *APIError carrying the provider's message,
// type tag, numeric code, subcode and trace identifier. Transport failures
// and malformed payloads surface as wrapped generic errors; nothing is
// retried internally.
package mailru
