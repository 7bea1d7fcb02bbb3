package domain

import "errors"

// ErrUnauthorized matches API errors caused by a rejected bearer token.
var ErrUnauthorized = errors.New("unauthorized")
