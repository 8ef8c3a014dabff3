package mailru

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Display modes accepted by the authorization endpoint. The value is passed
// through as-is; membership is not validated here.
const (
	DisplayPage  = "page"
	DisplayPopup = "popup"
	DisplayTouch = "touch"
)

// Strategy implements the Mailru OAuth 2.0 flow on top of golang.org/x/oauth2.
// It holds no mutable state after construction and is safe for concurrent use;
// concurrent profile fetches for different tokens are fully independent.
type Strategy struct {
	conf       *oauth2.Config
	profileURL string
	display    string
	httpClient *http.Client

	// profileFields is stored for configuration compatibility only; the
	// users.getInfo response is returned unfiltered.
	profileFields []string
}

// New constructs a Mailru strategy from the given configuration, applying
// the default endpoints and scope separator where the config leaves them
// empty. It fails rather than producing a partially configured strategy when
// client credentials are missing.
func New(cfg Config) (*Strategy, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = DefaultProfileURL
	}

	// x/oauth2 always joins scopes with spaces. A custom separator is
	// honored by pre-joining the scopes into a single opaque value.
	scopes := cfg.Scopes
	if sep := cfg.ScopeSeparator; sep != "" && sep != DefaultScopeSeparator && len(scopes) > 1 {
		scopes = []string{strings.Join(cfg.Scopes, sep)}
	}

	return &Strategy{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		profileURL:    profileURL,
		display:       cfg.Display,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		profileFields: cfg.ProfileFields,
	}, nil
}

// AuthCodeURL returns the authorization redirect URL for the given state.
// A non-empty display mode is added as the provider-specific "display"
// parameter; an empty mode adds nothing.
func (s *Strategy) AuthCodeURL(state, display string) string {
	return s.conf.AuthCodeURL(state, authorizationParams(display)...)
}

// authorizationParams builds the provider-specific authorization parameter
// overrides. Pure; an empty display mode yields no overrides.
func authorizationParams(display string) []oauth2.AuthCodeOption {
	if display == "" {
		return nil
	}
	return []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("display", display)}
}

// Exchange swaps an authorization code for an access token. Token endpoint
// failures carrying a structured provider error are converted to *APIError;
// everything else keeps x/oauth2's own error shape.
func (s *Strategy) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, s.ParseTokenError(err)
	}
	return tok, nil
}

// ParseTokenError inspects a token endpoint failure. When the response body
// contains the provider's structured error object, it is returned as a
// token-exchange *APIError; otherwise the original error is returned
// unchanged so x/oauth2's default error reporting still applies.
func (s *Strategy) ParseTokenError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		if apiErr, ok := parseAPIError(ErrKindTokenExchange, rErr.Body); ok {
			return apiErr
		}
	}
	return err
}

// UserProfile fetches and normalizes the authenticated user's profile via
// the users.getInfo REST method. The access token doubles as the session key
// the request signature is computed over. Exactly one outbound request is
// issued per call; nothing is retried.
func (s *Strategy) UserProfile(ctx context.Context, accessToken string) (*Profile, error) {
	sig := Sign(s.conf.ClientID, apiMethodGetInfo, accessToken, s.conf.ClientSecret)
	reqURL := s.profileURL +
		"&app_id=" + url.QueryEscape(s.conf.ClientID) +
		"&session_key=" + url.QueryEscape(accessToken) +
		"&secure=1" +
		"&sig=" + sig

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if apiErr, ok := parseAPIError(ErrKindProfileFetch, body); ok {
			return nil, apiErr
		}
		return nil, fmt.Errorf("failed to fetch user profile: mailru api returned status %d", resp.StatusCode)
	}

	// users.getInfo wraps the profile object in a single-element array.
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		// Some API failures are reported with status 200.
		if apiErr, ok := parseAPIError(ErrKindProfileFetch, body); ok {
			return nil, apiErr
		}
		return nil, errors.Join(ErrMalformedProfile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty record list", ErrMalformedProfile)
	}

	return ParseProfile(records[0])
}
