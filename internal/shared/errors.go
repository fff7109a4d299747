package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates the request carries no resolvable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)
