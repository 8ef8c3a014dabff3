package mailru

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors returned by the strategy.
var (
	ErrMissingClientID     = errors.New("mailru: client id is required")
	ErrMissingClientSecret = errors.New("mailru: client secret is required")
	ErrMalformedProfile    = errors.New("mailru: malformed profile payload")
)

// ErrorKind discriminates which endpoint reported a provider failure.
type ErrorKind string

const (
	ErrKindTokenExchange ErrorKind = "token_exchange"
	ErrKindProfileFetch  ErrorKind = "profile_fetch"
)

// APIError is a failure reported by the Mailru API itself, as opposed to a
// transport or parse failure. The diagnostic fields are copied verbatim from
// the provider's error payload.
type APIError struct {
	Kind    ErrorKind
	Message string
	Type    string
	Code    int
	Subcode int
	TraceID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mailru: %s error (code %d)", e.Kind, e.Code)
	}
	return fmt.Sprintf("mailru: %s error: %s", e.Kind, e.Message)
}

// apiErrorEnvelope matches the provider's error payload shape. The trace
// identifier key is what the provider actually emits.
type apiErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Subcode int    `json:"error_subcode"`
		TraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// parseAPIError maps a provider error payload into an *APIError of the given
// kind. It reports false when the body carries no structured error object
// (absent "error" field, or "error" is not an object), in which case the
// caller falls back to generic transport-error wrapping.
func parseAPIError(kind ErrorKind, body []byte) (*APIError, bool) {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return nil, false
	}
	return &APIError{
		Kind:    kind,
		Message: env.Error.Message,
		Type:    env.Error.Type,
		Code:    env.Error.Code,
		Subcode: env.Error.Subcode,
		TraceID: env.Error.TraceID,
	}, true
}
