package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
)

// RelyingPartyStatus is the state of a RelyingPartySession.
type RelyingPartyStatus int

const (
	RelyingPartyCreated RelyingPartyStatus = iota
	RelyingPartyEstablished
	RelyingPartyAuthenticated
	RelyingPartySignedUp
	RelyingPartyFailed
)

func (s RelyingPartyStatus) String() string {
	switch s {
	case RelyingPartyEstablished:
		return "established"
	case RelyingPartyAuthenticated:
		return "authenticated"
	case RelyingPartySignedUp:
		return "signed-up"
	case RelyingPartyFailed:
		return "failed"
	default:
		return "created"
	}
}

// MessageSigner is what a relying party session needs from an Identity.
type MessageSigner interface {
	Address() string
	SignMessage(ctx context.Context, msg []byte) (string, error)
}

// RelyingPartySession is one authentication or signup handshake with a
// relying party. Establish must succeed before GetUserLoginPayload or
// CreateUser are called, otherwise they panic.
type RelyingPartySession struct {
	cfg    domain.RelyingPartyConfig
	signer MessageSigner
	client ports.RelyingPartyClient

	status       RelyingPartyStatus
	established  bool
	sessionToken string
	lock         *sync.Mutex
}

func NewRelyingPartySession(
	cfg domain.RelyingPartyConfig,
	signer MessageSigner,
	client ports.RelyingPartyClient,
) *RelyingPartySession {
	return &RelyingPartySession{
		cfg:    cfg,
		signer: signer,
		client: client,
		status: RelyingPartyCreated,
		lock:   &sync.Mutex{},
	}
}

// Status returns the current state of the session.
func (s *RelyingPartySession) Status() RelyingPartyStatus {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.status
}

// Establish requests a challenge for the signer address, signs it and
// exchanges the signature for a session token.
func (s *RelyingPartySession) Establish(ctx context.Context) error {
	challenge, err := s.client.GetChallenge(ctx, s.cfg, s.signer.Address())
	if err != nil {
		s.fail()
		return fmt.Errorf("failed to get challenge: %w", err)
	}

	signature, err := s.signer.SignMessage(ctx, []byte(challenge.Value))
	if err != nil {
		s.fail()
		return fmt.Errorf("failed to sign challenge: %w", err)
	}

	token, err := s.client.SubmitChallenge(
		ctx, s.cfg, challenge.Token, signature,
	)
	if err != nil {
		s.fail()
		return fmt.Errorf("failed to submit challenge: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.sessionToken = token
	s.established = true
	s.status = RelyingPartyEstablished
	return nil
}

// GetUserLoginPayload returns the opaque payload the website uses to log
// the user in.
func (s *RelyingPartySession) GetUserLoginPayload(
	ctx context.Context,
) (interface{}, error) {
	token := s.mustBeEstablished()

	payload, err := s.client.GetUserLoginPayload(ctx, s.cfg, token)
	if err != nil {
		s.fail()
		return nil, err
	}

	s.setStatus(RelyingPartyAuthenticated)
	return payload, nil
}

// CreateUser provisions a new relying party account with the given
// attributes.
func (s *RelyingPartySession) CreateUser(
	ctx context.Context, attributes []ports.RelyingPartyAttribute,
) error {
	token := s.mustBeEstablished()

	if err := s.client.CreateUser(ctx, s.cfg, token, attributes); err != nil {
		s.fail()
		return err
	}

	s.setStatus(RelyingPartySignedUp)
	return nil
}

func (s *RelyingPartySession) mustBeEstablished() string {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.established {
		panic(ErrSessionNotEstablished)
	}
	return s.sessionToken
}

func (s *RelyingPartySession) fail() {
	s.setStatus(RelyingPartyFailed)
}

func (s *RelyingPartySession) setStatus(status RelyingPartyStatus) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.status = status
}
