package relyingparty

import (
	"net/url"
	"strings"

	"github.com/idwallet/lwsd/internal/core/domain"
)

const (
	endpointChallenge = "challenge"
	endpointToken     = "token"
	endpointUsers     = "users"
)

var defaultEndpoints = map[string]string{
	endpointChallenge: "/auth/challenge",
	endpointToken:     "/auth/token",
	endpointUsers:     "/users",
}

// endpointURL resolves the url for the given endpoint name. Endpoints
// overridden in the config can be absolute urls or paths relative to the
// root endpoint.
func endpointURL(cfg domain.RelyingPartyConfig, name string) (string, error) {
	endpoint, ok := cfg.Endpoints[name]
	if !ok || len(endpoint) <= 0 {
		endpoint = defaultEndpoints[name]
	}

	if u, err := url.Parse(endpoint); err == nil && u.IsAbs() {
		return endpoint, nil
	}

	if len(cfg.RootEndpoint) <= 0 {
		return "", ErrMissingRootEndpoint
	}
	root, err := url.Parse(cfg.RootEndpoint)
	if err != nil || !root.IsAbs() {
		return "", ErrMissingRootEndpoint
	}

	return strings.TrimSuffix(root.String(), "/") + "/" +
		strings.TrimPrefix(endpoint, "/"), nil
}
