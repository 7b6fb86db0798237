package wsinterface

import "errors"

var (
	// ErrMissingLWSService ...
	ErrMissingLWSService = errors.New("lws app service must not be null")
	// ErrInvalidPort ...
	ErrInvalidPort = errors.New("port must be in range [0, 65535]")
	// ErrInvalidTLSConfig is returned if only one of TLS key and cert is set.
	ErrInvalidTLSConfig = errors.New("tls key and cert must be either both defined or undefined")
	// ErrServiceStopped is returned by Start if the service is stopped while
	// waiting for a port to be available.
	ErrServiceStopped = errors.New("service stopped")
	// ErrNoConnection is returned when writing to a closed session.
	ErrNoConnection = errors.New("no connection")
)
