package provider

import (
	"fmt"

	"github.com/Digital-Shane/libby/internal/media"
)

// Error codes carried by ProviderError.
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUnavailable  = "UNAVAILABLE"
	CodeBadRequest   = "BAD_REQUEST"
	CodeBadResponse  = "BAD_RESPONSE"
	CodeNoRootFolder = "NO_ROOT_FOLDER"
	CodeUnknown      = "UNKNOWN"
)

// ProviderError represents a failed call to a library manager
type ProviderError struct {
	Provider string
	Code     string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CodeForStatus maps an HTTP status onto a ProviderError code.
func CodeForStatus(status int) string {
	switch {
	case status == 401 || status == 403:
		return CodeAuthFailed
	case status == 404:
		return CodeNotFound
	case status == 429:
		return CodeRateLimited
	case status >= 500:
		return CodeUnavailable
	case status >= 400:
		return CodeBadRequest
	default:
		return CodeUnknown
	}
}

// ConfigurationError reports a provider kind that cannot be constructed
// because its settings are missing or unusable.
type ConfigurationError struct {
	Kind   media.Kind
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s provider not configured: %s", e.Kind, e.Reason)
}
