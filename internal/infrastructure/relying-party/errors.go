package relyingparty

import "errors"

var (
	// ErrMissingRootEndpoint is returned if a relying party config has no
	// root endpoint and an endpoint is not given as absolute url.
	ErrMissingRootEndpoint = errors.New("relying party root endpoint is missing")
	// ErrInvalidChallenge is returned if the challenge jwt returned by the
	// relying party can't be parsed or has no challenge claim.
	ErrInvalidChallenge = errors.New("invalid challenge")
	// ErrMissingToken is returned if a relying party reply does not carry the
	// expected jwt.
	ErrMissingToken = errors.New("relying party replied without token")
	// ErrUnexpectedStatus is returned for any non 2xx reply.
	ErrUnexpectedStatus = errors.New("relying party replied with unexpected status")
)
