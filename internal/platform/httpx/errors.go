package httpx

import "errors"

// ErrValidation marks request payloads the domain layer rejected. Services
// wrap the validator's message with it so handlers can map it to a 400.
var ErrValidation = errors.New("validation failed")
