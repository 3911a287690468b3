package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies provider failures
type ErrorKind string

const (
	KindAuth       ErrorKind = "AUTH"
	KindRateLimit  ErrorKind = "RATE_LIMIT"
	KindHTTP       ErrorKind = "HTTP"
	KindConnection ErrorKind = "CONNECTION"
	KindAPIError   ErrorKind = "API_ERROR"
)

// ProviderError is the only error type adapters return. Status is zero
// when the request never reached the remote.
type ProviderError struct {
	Kind     ErrorKind `json:"code"`
	Provider Provider  `json:"provider"`
	Message  string    `json:"message"`
	Status   int       `json:"status,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s [%s %d]: %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Kind, e.Message)
}

// AsProviderError unwraps err into a *ProviderError if it is one
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a ProviderError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Kind == kind
}

func newProviderError(kind ErrorKind, provider Provider, status int, format string, args ...interface{}) *ProviderError {
	return &ProviderError{
		Kind:     kind,
		Provider: provider,
		Message:  Redact(fmt.Sprintf(format, args...)),
		Status:   status,
	}
}

// classifyStatus maps a non-2xx cloud response to an error kind.
// detail is the provider's own error message, or the raw body.
func classifyStatus(provider Provider, label string, status int, detail string) *ProviderError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return newProviderError(KindAuth, provider, status, "invalid or unauthorized %s API key", label)
	case http.StatusTooManyRequests:
		return newProviderError(KindRateLimit, provider, status, "%s rate limit exceeded", label)
	}
	if detail == "" {
		return newProviderError(KindHTTP, provider, status, "%s API error (%d)", label, status)
	}
	return newProviderError(KindHTTP, provider, status, "%s API error (%d): %s", label, status, detail)
}
