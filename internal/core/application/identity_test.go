package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/idwallet/lwsd/internal/core/application"
	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
	"github.com/idwallet/lwsd/pkg/wallet"
)

var (
	ctx         = context.Background()
	password    = "password"
	testAddress = "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf"
	testHDPath  = "m/44'/60'/0'/0/0"

	localWallet = domain.Wallet{
		ID:               "wallet-1",
		Address:          testAddress,
		Name:             "main",
		Profile:          domain.ProfileLocal,
		KeystoreFilePath: "keystore.json",
	}
	ledgerWallet = domain.Wallet{
		ID:      "wallet-2",
		Address: wallet.AddressFromPublicKey(devicePublicKey(2)),
		Profile: domain.ProfileLedger,
		HDPath:  testHDPath,
	}
	trezorWallet = domain.Wallet{
		ID:      "wallet-3",
		Address: wallet.AddressFromPublicKey(devicePublicKey(3)),
		Profile: domain.ProfileTrezor,
		HDPath:  testHDPath,
	}
)

func devicePublicKey(scalar byte) *btcec.PublicKey {
	key := make([]byte, 32)
	key[31] = scalar
	privkey, _ := wallet.PrivateKeyFromBytes(key)
	return privkey.PubKey()
}

func newMockDevice(w domain.Wallet, scalar byte) *mockTransport {
	transport := &mockTransport{}
	transport.On("GetPublicKey", mock.Anything, w.HDPath).
		Return(wallet.PublicKeyHex(devicePublicKey(scalar)), nil)
	transport.On("Close").Return(nil)
	return transport
}

func testPrivateKey() []byte {
	key := make([]byte, 32)
	key[31] = 1
	return key
}

func newMockKeyStore() *mockKeyStore {
	ks := &mockKeyStore{}
	ks.On("Decrypt", localWallet.KeystoreFilePath, password).
		Return(testPrivateKey(), nil)
	ks.On("Decrypt", localWallet.KeystoreFilePath, mock.Anything).
		Return(nil, wallet.ErrInvalidPassphrase)
	return ks
}

func newUnlockedIdentity(
	t *testing.T, attrRepo domain.AttributeRepository,
) application.Identity {
	identity, err := application.NewIdentity(localWallet, application.IdentityOpts{
		KeyStore:            newMockKeyStore(),
		AttributeRepository: attrRepo,
	})
	require.NoError(t, err)
	require.NoError(t, identity.Unlock(ctx, password))
	return identity
}

func TestLocalIdentityUnlock(t *testing.T) {
	identity, err := application.NewIdentity(localWallet, application.IdentityOpts{
		KeyStore: newMockKeyStore(),
	})
	require.NoError(t, err)
	require.Equal(t, application.IdentityLocked, identity.Status())

	err = identity.Unlock(ctx, "wrong")
	require.True(t, errors.Is(err, application.ErrInvalidPassword))
	require.Equal(t, application.IdentityFailed, identity.Status())
	require.False(t, identity.IsUnlocked())
	require.Empty(t, identity.PublicKey())

	_, err = identity.SignMessage(ctx, []byte("msg"))
	require.Equal(t, application.ErrIdentityLocked, err)

	// a failed unlock can be retried.
	err = identity.Unlock(ctx, password)
	require.NoError(t, err)
	require.True(t, identity.IsUnlocked())
	require.Len(t, identity.PublicKey(), 128)
	require.Equal(t, testAddress, identity.Address())
}

func TestLocalIdentityAddressMismatch(t *testing.T) {
	w := localWallet
	w.Address = ledgerWallet.Address

	identity, err := application.NewIdentity(w, application.IdentityOpts{
		KeyStore: newMockKeyStore(),
	})
	require.NoError(t, err)

	err = identity.Unlock(ctx, password)
	require.Equal(t, application.ErrAddressMismatch, err)
	require.False(t, identity.IsUnlocked())
}

func TestLocalIdentitySignMessage(t *testing.T) {
	identity := newUnlockedIdentity(t, nil)

	msg := []byte("challenge")
	signature, err := identity.SignMessage(ctx, msg)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(signature, "0x"))
	require.Len(t, signature, 132)

	sig, err := wallet.ParseSignature(signature)
	require.NoError(t, err)
	signer, err := wallet.RecoverPersonalMessageSigner(msg, sig)
	require.NoError(t, err)
	require.Equal(t, testAddress, signer)
}

func TestHardwareIdentityUnlock(t *testing.T) {
	for _, w := range []domain.Wallet{ledgerWallet, trezorWallet} {
		identity, err := application.NewIdentity(w, application.IdentityOpts{})
		require.NoError(t, err)

		err = identity.Unlock(ctx, password)
		require.Equal(t, application.ErrNotSupported, err)
		require.False(t, identity.IsUnlocked())
	}
}

func TestHardwareIdentitySignMessage(t *testing.T) {
	msg := []byte("challenge")
	r := strings.Repeat("a", 64)
	s := strings.Repeat("b", 64)

	tests := []struct {
		name      string
		wallet    domain.Wallet
		scalar    byte
		signature *ports.HardwareSignature
		expected  string
	}{
		{
			name:      "ledger",
			wallet:    ledgerWallet,
			scalar:    2,
			signature: &ports.HardwareSignature{V: 28, R: r, S: s},
			expected:  "0x" + r + s + "01",
		},
		{
			name:      "trezor",
			wallet:    trezorWallet,
			scalar:    3,
			signature: &ports.HardwareSignature{Signature: r + s + "1b"},
			expected:  "0x" + r + s + "1b",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			transport := newMockDevice(tt.wallet, tt.scalar)
			transport.On("SignPersonalMessage", mock.Anything, testHDPath, msg).
				Return(tt.signature, nil)
			opener := &mockTransportOpener{}
			opener.On("Open", mock.Anything, tt.wallet.Profile).
				Return(transport, nil)

			identity, err := application.NewIdentity(
				tt.wallet, application.IdentityOpts{Transports: opener},
			)
			require.NoError(t, err)

			signature, err := identity.SignMessage(ctx, msg)
			require.NoError(t, err)
			require.Equal(t, tt.expected, signature)
			require.Equal(
				t, wallet.PublicKeyHex(devicePublicKey(tt.scalar)),
				identity.PublicKey(),
			)
			transport.AssertNumberOfCalls(t, "Close", 1)

			// The public key is read from the device only once.
			_, err = identity.SignMessage(ctx, msg)
			require.NoError(t, err)
			transport.AssertNumberOfCalls(t, "GetPublicKey", 1)
		})
	}
}

func TestHardwareIdentityWrongDevice(t *testing.T) {
	msg := []byte("challenge")

	t.Run("key_mismatch", func(t *testing.T) {
		transport := newMockDevice(ledgerWallet, 3)
		opener := &mockTransportOpener{}
		opener.On("Open", mock.Anything, domain.ProfileLedger).Return(transport, nil)

		identity, err := application.NewIdentity(
			ledgerWallet, application.IdentityOpts{Transports: opener},
		)
		require.NoError(t, err)

		_, err = identity.SignMessage(ctx, msg)
		require.ErrorIs(t, err, application.ErrAddressMismatch)
		require.Empty(t, identity.PublicKey())
		transport.AssertNotCalled(t, "SignPersonalMessage", mock.Anything, mock.Anything, mock.Anything)
		transport.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("malformed_key", func(t *testing.T) {
		transport := &mockTransport{}
		transport.On("GetPublicKey", mock.Anything, testHDPath).Return("0xzz", nil)
		transport.On("Close").Return(nil)
		opener := &mockTransportOpener{}
		opener.On("Open", mock.Anything, domain.ProfileLedger).Return(transport, nil)

		identity, err := application.NewIdentity(
			ledgerWallet, application.IdentityOpts{Transports: opener},
		)
		require.NoError(t, err)

		_, err = identity.SignMessage(ctx, msg)
		require.ErrorIs(t, err, wallet.ErrInvalidPublicKey)
		transport.AssertNumberOfCalls(t, "Close", 1)
	})
}

func TestHardwareIdentityReleasesTransport(t *testing.T) {
	msg := []byte("challenge")

	t.Run("on_error", func(t *testing.T) {
		transport := newMockDevice(ledgerWallet, 2)
		transport.On("SignPersonalMessage", mock.Anything, testHDPath, msg).
			Return(nil, errors.New("user rejected"))
		opener := &mockTransportOpener{}
		opener.On("Open", mock.Anything, domain.ProfileLedger).Return(transport, nil)

		identity, err := application.NewIdentity(
			ledgerWallet, application.IdentityOpts{Transports: opener},
		)
		require.NoError(t, err)

		_, err = identity.SignMessage(ctx, msg)
		require.Error(t, err)
		transport.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("on_panic", func(t *testing.T) {
		transport := newMockDevice(ledgerWallet, 2)
		transport.On("SignPersonalMessage", mock.Anything, testHDPath, msg).
			Panic("device unplugged")
		opener := &mockTransportOpener{}
		opener.On("Open", mock.Anything, domain.ProfileLedger).Return(transport, nil)

		identity, err := application.NewIdentity(
			ledgerWallet, application.IdentityOpts{Transports: opener},
		)
		require.NoError(t, err)

		require.Panics(t, func() {
			// nolint
			identity.SignMessage(ctx, msg)
		})
		transport.AssertNumberOfCalls(t, "Close", 1)
	})

	t.Run("open_failure", func(t *testing.T) {
		opener := &mockTransportOpener{}
		opener.On("Open", mock.Anything, domain.ProfileLedger).
			Return(nil, errors.New("transport unavailable"))

		identity, err := application.NewIdentity(
			ledgerWallet, application.IdentityOpts{Transports: opener},
		)
		require.NoError(t, err)

		_, err = identity.SignMessage(ctx, msg)
		require.Error(t, err)
	})
}

func TestIdentityGetAttributesByTypes(t *testing.T) {
	attrRepo := &mockAttributeRepository{}
	attrRepo.On("FindByTypeURLs", mock.Anything, localWallet.ID, []string{"email"}).
		Return([]domain.Attribute{{ID: "attr-1", TypeURL: "email"}}, nil)

	identity := newUnlockedIdentity(t, attrRepo)

	attributes, err := identity.GetAttributesByTypes(ctx, []string{"email"})
	require.NoError(t, err)
	require.Len(t, attributes, 1)

	attributes, err = identity.GetAttributesByTypes(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, attributes)
	attrRepo.AssertNumberOfCalls(t, "FindByTypeURLs", 1)
}

func TestNewIdentityInvalidWallet(t *testing.T) {
	_, err := application.NewIdentity(
		domain.Wallet{Profile: "paper"}, application.IdentityOpts{},
	)
	require.Equal(t, domain.ErrUnknownProfile, err)
}
