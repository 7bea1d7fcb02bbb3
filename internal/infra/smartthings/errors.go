package smartthings

import (
	"errors"
	"fmt"
	"net/http"

	"smart-remote/internal/domain"
)

var ErrMissingToken = errors.New("token missing from response")

// AuthError is returned when the service account token cannot be acquired.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "acquiring token: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d", e.StatusCode)
}

// Is lets errors.Is(err, domain.ErrUnauthorized) match a 401.
func (e *HTTPError) Is(target error) bool {
	return target == domain.ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err carries a 401 from the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
