// Package httpauth wires an auth.OAuthAuthenticator into HTTP endpoints:
// a login handler that redirects to the provider's authorization page and a
// callback handler that completes the flow. Both are mounted as a chi
// sub-router:
//
//	r := chi.NewRouter()
//	r.Mount("/auth/mailru", httpauth.NewHandler(svc).Routes())
//
// Success and failure responses are pluggable; the defaults render JSON.
package httpauth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/authkit/authkit/pkg/auth"
	"github.com/authkit/authkit/pkg/logger"
)

// FailureInfo describes an authentication failure reported to the failure
// handler. For provider-reported callback failures, Message carries the
// provider's error_description when one is present, and Code the raw error
// code (e.g. "access_denied").
type FailureInfo struct {
	Message string
	Code    string
}

// SuccessHandler renders a completed authentication.
type SuccessHandler func(w http.ResponseWriter, r *http.Request, user *auth.User)

// FailureHandler renders a failed authentication.
type FailureHandler func(w http.ResponseWriter, r *http.Request, info FailureInfo)

// Handler exposes an OAuth service over HTTP.
type Handler struct {
	svc       auth.OAuthAuthenticator
	logger    *slog.Logger
	onSuccess SuccessHandler
	onFailure FailureHandler
}

// Option configures a Handler during construction.
type Option func(*Handler)

// WithLogger configures the logger for the handler.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// WithSuccessHandler overrides the default success response.
func WithSuccessHandler(fn SuccessHandler) Option {
	return func(h *Handler) {
		h.onSuccess = fn
	}
}

// WithFailureHandler overrides the default failure response.
func WithFailureHandler(fn FailureHandler) Option {
	return func(h *Handler) {
		h.onFailure = fn
	}
}

// NewHandler creates an HTTP handler around the given OAuth service.
func NewHandler(svc auth.OAuthAuthenticator, opts ...Option) *Handler {
	h := &Handler{
		svc:       svc,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		onSuccess: defaultSuccess,
		onFailure: defaultFailure,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the login and callback endpoints as a mountable sub-router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.handleLogin)
	r.Get("/callback", h.handleCallback)
	return r
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.GetAuthURL(r.Context())
	if err != nil {
		h.logger.Error("failed to build authorization URL",
			logger.Error(err),
			logger.Component("httpauth"),
		)
		h.onFailure(w, r, FailureInfo{Message: "failed to start authentication"})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Provider-reported denial: the callback carries an error instead of a
	// code. The human message is the description when the provider sent one.
	if code := q.Get("error"); code != "" {
		msg := q.Get("error_description")
		if msg == "" {
			msg = code
		}
		h.onFailure(w, r, FailureInfo{Message: msg, Code: code})
		return
	}

	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		h.onFailure(w, r, FailureInfo{Message: "authorization response is incomplete"})
		return
	}

	user, err := h.svc.Auth(r.Context(), code, state, nil)
	if err != nil {
		h.logger.Error("authentication failed",
			logger.Error(err),
			logger.Component("httpauth"),
		)
		h.onFailure(w, r, FailureInfo{Message: failureMessage(err)})
		return
	}

	h.onSuccess(w, r, user)
}

// failureMessage maps known authentication errors to user-presentable
// messages without leaking internals.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidState):
		return "invalid authentication state"
	case errors.Is(err, auth.ErrInvalidCode):
		return "invalid authorization code"
	case errors.Is(err, auth.ErrUnverifiedEmail):
		return "email not verified by provider"
	case errors.Is(err, auth.ErrProviderEmailInUse):
		return "email already registered"
	default:
		return "authentication failed"
	}
}

func defaultSuccess(w http.ResponseWriter, _ *http.Request, user *auth.User) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

func defaultFailure(w http.ResponseWriter, _ *http.Request, info FailureInfo) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": info.Message,
	})
}
