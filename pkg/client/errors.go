package client

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken   = errors.New("client: bearer token is required")
	ErrMissingBaseURL = errors.New("client: base URL is required")
)

// APIError is a non-2xx response from the API with its decoded error
// message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: api responded %d: %s", e.StatusCode, e.Message)
}
