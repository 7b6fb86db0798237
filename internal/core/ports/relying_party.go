package ports

import (
	"context"

	"github.com/idwallet/lwsd/internal/core/domain"
)

// Challenge is what a relying party asks a wallet to sign to open a session.
type Challenge struct {
	// Token is the opaque challenge token to send back with the signature.
	Token string
	// Value is the message to sign.
	Value string
}

// RelyingPartyAttribute is an attribute submitted to a relying party at
// signup, already split into inline data and binary documents.
type RelyingPartyAttribute struct {
	ID        string
	Schema    map[string]interface{}
	Data      interface{}
	Documents []domain.Document
}

// RelyingPartyClient talks to the relying party endpoints described by a
// domain.RelyingPartyConfig.
type RelyingPartyClient interface {
	// GetChallenge requests a new challenge for the given address.
	GetChallenge(
		ctx context.Context, cfg domain.RelyingPartyConfig, address string,
	) (*Challenge, error)
	// SubmitChallenge sends back the signed challenge and returns the session
	// token.
	SubmitChallenge(
		ctx context.Context, cfg domain.RelyingPartyConfig,
		challengeToken, signature string,
	) (string, error)
	// GetUserLoginPayload returns the opaque login payload to hand back to
	// the website.
	GetUserLoginPayload(
		ctx context.Context, cfg domain.RelyingPartyConfig, sessionToken string,
	) (interface{}, error)
	// CreateUser provisions a new relying party account.
	CreateUser(
		ctx context.Context, cfg domain.RelyingPartyConfig, sessionToken string,
		attributes []RelyingPartyAttribute,
	) error
}
