package hardware

import "errors"

var (
	// ErrTransportUnavailable is returned when no driver is registered for
	// the requested device profile.
	ErrTransportUnavailable = errors.New("hardware transport unavailable")
	// ErrNilDriver ...
	ErrNilDriver = errors.New("driver must not be null")
)
