// Package zoho holds the error taxonomy shared by the Zoho OAuth, CRM and
// Campaigns clients.
package zoho

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when client id, secret or redirect URI are missing.
	ErrNotConfigured = errors.New("zoho: integration not configured")
	// ErrTransport marks network level and unstructured HTTP failures.
	ErrTransport = errors.New("zoho: transport error")
	// ErrProvider marks a structured error returned by a Zoho service.
	ErrProvider = errors.New("zoho: provider error")
	// ErrMissingRefreshToken is returned when a refresh is needed but no refresh token is stored.
	ErrMissingRefreshToken = errors.New("zoho: no refresh token available")
	// ErrValidation marks malformed values encountered while mapping records.
	ErrValidation = errors.New("zoho: validation error")
	// ErrNotFound is returned when a requested remote or local record does not exist.
	ErrNotFound = errors.New("zoho: not found")
)

// ProviderError is a well-formed error response from a Zoho endpoint.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("zoho %s: provider error", e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports ProviderError as ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// TransportError wraps a network or unstructured HTTP failure.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zoho %s: transport error: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports TransportError as ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
