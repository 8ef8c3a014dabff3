package mailru

// Default endpoint locations for the Mailru OAuth flow. The profile endpoint
// already carries the REST method name as a query parameter, so every
// additional parameter is appended with "&".
const (
	DefaultAuthURL    = "https://connect.mail.ru/oauth/authorize"
	DefaultTokenURL   = "https://connect.mail.ru/oauth/token"
	DefaultProfileURL = "http://www.appsmail.ru/platform/api?method=users.getInfo"

	// DefaultScopeSeparator joins requested scopes in the authorization
	// request. Mailru follows the standard space-delimited convention.
	DefaultScopeSeparator = " "
)

// Config holds the configuration for the Mailru OAuth strategy.
type Config struct {
	ClientID     string   `env:"MAILRU_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"MAILRU_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"MAILRU_OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"MAILRU_OAUTH_SCOPES" envSeparator:","`

	// Endpoint overrides, used mostly in tests. Empty values fall back to
	// the Default* constants above.
	AuthURL    string `env:"MAILRU_OAUTH_AUTH_URL"`
	TokenURL   string `env:"MAILRU_OAUTH_TOKEN_URL"`
	ProfileURL string `env:"MAILRU_OAUTH_PROFILE_URL"`

	// ProfileFields is accepted for compatibility with other strategy
	// configurations. The users.getInfo response is returned unfiltered;
	// the field list is stored but not consulted.
	ProfileFields []string `env:"MAILRU_OAUTH_PROFILE_FIELDS" envSeparator:","`

	// ScopeSeparator overrides the delimiter between requested scopes for
	// deployments where the provider deviates from the space-delimited
	// default.
	ScopeSeparator string `env:"MAILRU_OAUTH_SCOPE_SEPARATOR"`

	// Display selects the authorization page flavor. See the Display*
	// constants; the value is passed through unvalidated.
	Display string `env:"MAILRU_OAUTH_DISPLAY"`
}
