package actionlog

import "errors"

var (
	// ErrMissingEndpoint is returned when creating a sink without endpoint.
	ErrMissingEndpoint = errors.New("action log endpoint must not be null")
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("action log endpoint must be an http(s) url")
)
