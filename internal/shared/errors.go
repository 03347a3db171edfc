package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed set of failures the gateway reports to callers.
// Each kind maps to exactly one HTTP status and one stable code.
type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindInsufficientCredits ErrorKind = "INSUFFICIENT_CREDITS"
	KindRateLimited         ErrorKind = "RATE_LIMITED"
	KindQuotaExceeded       ErrorKind = "QUOTA_EXCEEDED"
	KindProviderFailure     ErrorKind = "PROVIDER_FAILURE"
	KindNotFound            ErrorKind = "NOT_FOUND"
)

// InternalErrorCode is only produced at the boundary for errors that never
// went through the taxonomy.
const InternalErrorCode = "INTERNAL_ERROR"

// StatusCode returns the HTTP status for the kind.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInsufficientCredits:
		return http.StatusPaymentRequired
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExceeded, KindProviderFailure:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine readable code sent to clients.
func (k ErrorKind) Code() string {
	return string(k)
}

// RequestError is the only typed error that crosses component boundaries.
// Adapters create it where an upstream call fails, flows pass it through
// untouched and the router serializes it. First classification wins: nothing
// above the adapter layer builds a new RequestError out of an existing one.
type RequestError struct {
	Kind    ErrorKind
	Message string

	// Provider and upstream diagnostics, empty for gateway side failures.
	Provider       string
	UpstreamStatus int
	UpstreamCode   string

	// Fields lists offending input fields for VALIDATION failures.
	Fields []string

	Err error
}

func (r *RequestError) Error() string {
	msg := fmt.Sprintf("%s: %s", r.Kind, r.Message)
	if r.Provider != "" {
		msg = fmt.Sprintf("%s (provider %s", msg, r.Provider)
		if r.UpstreamStatus != 0 {
			msg = fmt.Sprintf("%s, status %d", msg, r.UpstreamStatus)
		}
		msg += ")"
	}
	if r.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, r.Err)
	}
	return msg
}

func (r *RequestError) Unwrap() error {
	return r.Err
}

// StatusCode is derived from the kind, never stored.
func (r *RequestError) StatusCode() int {
	return r.Kind.StatusCode()
}

// AsRequestError finds the first RequestError in err's chain.
func AsRequestError(err error) (*RequestError, bool) {
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

func NewValidationError(msg string, fields ...string) *RequestError {
	return &RequestError{Kind: KindValidation, Message: msg, Fields: fields}
}

func NewUnauthorizedError(msg string) *RequestError {
	return &RequestError{Kind: KindUnauthorized, Message: msg}
}

// NewProviderError is used by provider adapters and the stream collector only.
func NewProviderError(provider string, kind ErrorKind, msg string, cause error) *RequestError {
	return &RequestError{Kind: kind, Message: msg, Provider: provider, Err: cause}
}

var (
	ErrMissingAuth   = NewUnauthorizedError("missing authorization header")
	ErrInvalidFormat = NewUnauthorizedError("invalid authentication format")
	ErrUnauthorized  = NewUnauthorizedError("unauthorized")
	ErrInvalidToken  = NewUnauthorizedError("invalid or expired credential")

	ErrInvalidRequest = NewValidationError("invalid request body")
)
