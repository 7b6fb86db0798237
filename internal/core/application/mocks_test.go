package application_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/idwallet/lwsd/internal/core/application"
	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
)

// **** Wallet repository ****

type mockWalletRepository struct {
	mock.Mock
}

func (m *mockWalletRepository) AddWallet(
	ctx context.Context, wallet domain.Wallet,
) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *mockWalletRepository) FindAll(
	ctx context.Context,
) ([]domain.Wallet, error) {
	args := m.Called(ctx)

	var res []domain.Wallet
	if a := args.Get(0); a != nil {
		res = a.([]domain.Wallet)
	}
	return res, args.Error(1)
}

func (m *mockWalletRepository) FindByAddress(
	ctx context.Context, address string,
) (*domain.Wallet, error) {
	args := m.Called(ctx, address)

	var res *domain.Wallet
	if a := args.Get(0); a != nil {
		res = a.(*domain.Wallet)
	}
	return res, args.Error(1)
}

func (m *mockWalletRepository) HasSignedUpTo(
	ctx context.Context, walletID, websiteURL string,
) (bool, error) {
	args := m.Called(ctx, walletID, websiteURL)

	var res bool
	if a := args.Get(0); a != nil {
		res = a.(bool)
	}
	return res, args.Error(1)
}

func (m *mockWalletRepository) AddLoginAttempt(
	ctx context.Context, attempt domain.LoginAttempt,
) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *mockWalletRepository) ListLoginAttempts(
	ctx context.Context, walletID string,
) ([]domain.LoginAttempt, error) {
	args := m.Called(ctx, walletID)

	var res []domain.LoginAttempt
	if a := args.Get(0); a != nil {
		res = a.([]domain.LoginAttempt)
	}
	return res, args.Error(1)
}

// **** Attribute repository ****

type mockAttributeRepository struct {
	mock.Mock
}

func (m *mockAttributeRepository) AddAttributeType(
	ctx context.Context, attributeType domain.AttributeType,
) error {
	args := m.Called(ctx, attributeType)
	return args.Error(0)
}

func (m *mockAttributeRepository) GetAttributeType(
	ctx context.Context, url string,
) (*domain.AttributeType, error) {
	args := m.Called(ctx, url)

	var res *domain.AttributeType
	if a := args.Get(0); a != nil {
		res = a.(*domain.AttributeType)
	}
	return res, args.Error(1)
}

func (m *mockAttributeRepository) AddAttribute(
	ctx context.Context, attribute domain.Attribute,
) error {
	args := m.Called(ctx, attribute)
	return args.Error(0)
}

func (m *mockAttributeRepository) DeleteAttribute(
	ctx context.Context, id string,
) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAttributeRepository) FindByWalletID(
	ctx context.Context, walletID string,
) ([]domain.Attribute, error) {
	args := m.Called(ctx, walletID)

	var res []domain.Attribute
	if a := args.Get(0); a != nil {
		res = a.([]domain.Attribute)
	}
	return res, args.Error(1)
}

func (m *mockAttributeRepository) FindByTypeURLs(
	ctx context.Context, walletID string, urls []string,
) ([]domain.Attribute, error) {
	args := m.Called(ctx, walletID, urls)

	var res []domain.Attribute
	if a := args.Get(0); a != nil {
		res = a.([]domain.Attribute)
	}
	return res, args.Error(1)
}

// **** Key store ****

type mockKeyStore struct {
	mock.Mock
}

func (m *mockKeyStore) Decrypt(ref, password string) ([]byte, error) {
	args := m.Called(ref, password)

	var res []byte
	if a := args.Get(0); a != nil {
		res = a.([]byte)
	}
	return res, args.Error(1)
}

// **** Hardware transports ****

type mockTransportOpener struct {
	mock.Mock
}

func (m *mockTransportOpener) Open(
	ctx context.Context, profile string,
) (ports.HardwareTransport, error) {
	args := m.Called(ctx, profile)

	var res ports.HardwareTransport
	if a := args.Get(0); a != nil {
		res = a.(ports.HardwareTransport)
	}
	return res, args.Error(1)
}

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) GetPublicKey(
	ctx context.Context, hdPath string,
) (string, error) {
	args := m.Called(ctx, hdPath)
	return args.String(0), args.Error(1)
}

func (m *mockTransport) SignPersonalMessage(
	ctx context.Context, hdPath string, msg []byte,
) (*ports.HardwareSignature, error) {
	args := m.Called(ctx, hdPath, msg)

	var res *ports.HardwareSignature
	if a := args.Get(0); a != nil {
		res = a.(*ports.HardwareSignature)
	}
	return res, args.Error(1)
}

func (m *mockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

// **** Relying party client ****

type mockRelyingPartyClient struct {
	mock.Mock
}

func (m *mockRelyingPartyClient) GetChallenge(
	ctx context.Context, cfg domain.RelyingPartyConfig, address string,
) (*ports.Challenge, error) {
	args := m.Called(ctx, cfg, address)

	var res *ports.Challenge
	if a := args.Get(0); a != nil {
		res = a.(*ports.Challenge)
	}
	return res, args.Error(1)
}

func (m *mockRelyingPartyClient) SubmitChallenge(
	ctx context.Context, cfg domain.RelyingPartyConfig,
	challengeToken, signature string,
) (string, error) {
	args := m.Called(ctx, cfg, challengeToken, signature)
	return args.String(0), args.Error(1)
}

func (m *mockRelyingPartyClient) GetUserLoginPayload(
	ctx context.Context, cfg domain.RelyingPartyConfig, sessionToken string,
) (interface{}, error) {
	args := m.Called(ctx, cfg, sessionToken)
	return args.Get(0), args.Error(1)
}

func (m *mockRelyingPartyClient) CreateUser(
	ctx context.Context, cfg domain.RelyingPartyConfig, sessionToken string,
	attributes []ports.RelyingPartyAttribute,
) error {
	args := m.Called(ctx, cfg, sessionToken, attributes)
	return args.Error(0)
}

// **** Action logger ****

type mockActionLogger struct {
	mock.Mock
}

func (m *mockActionLogger) Append(
	ctx context.Context, kind, source, action string, entry domain.ActionLog,
) error {
	args := m.Called(ctx, kind, source, action, entry)
	return args.Error(0)
}

// **** Connection ****

type sentMessage struct {
	resp domain.Response
	req  *domain.Request
}

type fakeConnection struct {
	lock       sync.Mutex
	identities map[string]application.Identity
	sent       []sentMessage
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{
		identities: make(map[string]application.Identity),
	}
}

func (c *fakeConnection) AddIdentity(
	address string, identity application.Identity,
) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.identities[address] = identity
}

func (c *fakeConnection) GetIdentity(address string) application.Identity {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.identities[address]
}

func (c *fakeConnection) Send(resp domain.Response, req *domain.Request) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sent = append(c.sent, sentMessage{resp, req})
}

func (c *fakeConnection) last() domain.Response {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.sent) <= 0 {
		return domain.Response{}
	}
	return c.sent[len(c.sent)-1].resp
}
