// Package llm provides the shared request types and service errors used when
// talking to the hosted language, speech and transcription services.
package llm

import (
	"errors"
	"fmt"
)

// ErrorResponse is the JSON body returned by the HTTP surface on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrNotConfigured is returned by a service client that has no credentials
// (or no voice id). It is never conflated with a transport failure.
var ErrNotConfigured = errors.New("service not configured")

// ServiceError is a non-success response from an upstream service.
type ServiceError struct {
	Service string
	Status  int
	Body    string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Service, e.Status)
	}

	return fmt.Sprintf("%s returned %d: %s", e.Service, e.Status, e.Body)
}
