package wallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	// address of m/44'/60'/0'/0/0 for testMnemonic
	testMnemonicAddress = "0x9858effd232b4033e47d90003d41ec34ecaeda94"
)

func testKey() []byte {
	key := make([]byte, 32)
	key[31] = 1
	return key
}

func TestKeccak256(t *testing.T) {
	assert.Equal(
		t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256()),
	)
}

func TestAddressFromPublicKey(t *testing.T) {
	privkey, err := PrivateKeyFromBytes(testKey())
	require.NoError(t, err)

	addr := AddressFromPublicKey(privkey.PubKey())
	assert.Equal(t, "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", addr)
	assert.Len(t, PublicKeyHex(privkey.PubKey()), 128)
}

func TestFailingPrivateKeyFromBytes(t *testing.T) {
	tests := []struct {
		key []byte
		err error
	}{
		{nil, ErrNullPrivateKey},
		{[]byte{1, 2, 3}, ErrInvalidPrivateKey},
		{make([]byte, 32), ErrInvalidPrivateKey},
	}
	for _, tt := range tests {
		_, err := PrivateKeyFromBytes(tt.key)
		assert.Equal(t, tt.err, err)
	}
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"))
	assert.NoError(t, ValidateAddress(" 7e5f4552091a69125d5dfcb7b8c2659029395bdf "))
	assert.Equal(t, ErrInvalidAddress, ValidateAddress(""))
	assert.Equal(t, ErrInvalidAddress, ValidateAddress("0x1234"))
}

func TestPublicKeyFromHex(t *testing.T) {
	privkey, err := PrivateKeyFromBytes(testKey())
	require.NoError(t, err)
	pubkey := privkey.PubKey()
	address := AddressFromPublicKey(pubkey)

	for _, key := range []string{
		PublicKeyHex(pubkey),
		"0x" + hex.EncodeToString(pubkey.SerializeUncompressed()),
		hex.EncodeToString(pubkey.SerializeCompressed()),
	} {
		parsed, err := PublicKeyFromHex(key)
		require.NoError(t, err)
		assert.Equal(t, address, AddressFromPublicKey(parsed))
	}

	for _, key := range []string{"", "0xzz", strings.Repeat("00", 64)} {
		_, err := PublicKeyFromHex(key)
		assert.Equal(t, ErrInvalidPublicKey, err)
	}
}

func TestSignPersonalMessage(t *testing.T) {
	privkey, err := PrivateKeyFromBytes(testKey())
	require.NoError(t, err)

	msg := []byte("challenge-nonce")
	sig, err := SignPersonalMessage(privkey, msg)
	require.NoError(t, err)

	assert.Len(t, sig.R, 32)
	assert.Len(t, sig.S, 32)
	assert.True(t, sig.V == 27 || sig.V == 28)

	str := sig.String()
	assert.True(t, strings.HasPrefix(str, "0x"))
	assert.Len(t, str, 2+130)

	signer, err := RecoverPersonalMessageSigner(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, AddressFromPublicKey(privkey.PubKey()), signer)

	parsed, err := ParseSignature(str)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	_, err = ParseSignature("0x1234")
	assert.Equal(t, ErrMalformedSignature, err)
}

func TestEncryptDecryptKey(t *testing.T) {
	key := testKey()
	passphrase := "supersecurekey"

	keystore, err := EncryptKey(EncryptKeyOpts{
		PrivateKey: key,
		Passphrase: passphrase,
		ScryptN:    LightScryptN,
		ScryptP:    LightScryptP,
	})
	require.NoError(t, err)

	revealed, err := DecryptKey(DecryptKeyOpts{
		Keystore:   keystore,
		Passphrase: passphrase,
	})
	require.NoError(t, err)
	assert.Equal(t, key, revealed)

	_, err = DecryptKey(DecryptKeyOpts{
		Keystore:   keystore,
		Passphrase: "wrong",
	})
	assert.Equal(t, ErrInvalidPassphrase, err)
}

func TestFailingEncryptKey(t *testing.T) {
	tests := []struct {
		opts EncryptKeyOpts
		err  error
	}{
		{
			opts: EncryptKeyOpts{Passphrase: "supersecurekey"},
			err:  ErrNullPrivateKey,
		},
		{
			opts: EncryptKeyOpts{PrivateKey: testKey()},
			err:  ErrNullPassphrase,
		},
	}
	for _, tt := range tests {
		_, err := EncryptKey(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestFailingDecryptKey(t *testing.T) {
	tests := []struct {
		opts DecryptKeyOpts
		err  error
	}{
		{
			opts: DecryptKeyOpts{Passphrase: "supersecurekey"},
			err:  ErrNullKeystore,
		},
		{
			opts: DecryptKeyOpts{Keystore: []byte("{}")},
			err:  ErrNullPassphrase,
		},
		{
			opts: DecryptKeyOpts{Keystore: []byte("not json"), Passphrase: "pwd"},
			err:  ErrInvalidKeystore,
		},
		{
			opts: DecryptKeyOpts{
				Keystore:   []byte(`{"version":3,"crypto":{"cipher":"aes-256-gcm"}}`),
				Passphrase: "pwd",
			},
			err: ErrInvalidKeystore,
		},
	}
	for _, tt := range tests {
		_, err := DecryptKey(tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestParseDerivationPath(t *testing.T) {
	path, err := ParseDerivationPath("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, DefaultDerivationPath, path)
	assert.Equal(t, "m/44'/60'/0'/0/0", path.String())

	tests := []struct {
		path string
		err  error
	}{
		{"", ErrNullDerivationPath},
		{"m/", ErrMalformedDerivationPath},
		{"/0'/1", ErrMalformedDerivationPath},
		{"0'", ErrMalformedDerivationPath},
	}
	for _, tt := range tests {
		_, err := ParseDerivationPath(tt.path)
		assert.Equal(t, tt.err, err)
	}

	for _, str := range []string{
		"m/44'/x", "m/44'/-1", "m/2147483648'/0", "m/0/4294967296",
	} {
		_, err := ParseDerivationPath(str)
		assert.ErrorIs(t, err, ErrInvalidDerivationPath)
	}

	path, err = ParseDerivationPath("44'/0x3c'/0'/0/1")
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0/1", path.String())
}

func TestDeriveKeyFromMnemonic(t *testing.T) {
	privkey, err := DeriveKeyFromMnemonic(DeriveKeyOpts{
		Mnemonic: strings.Split(testMnemonic, " "),
	})
	require.NoError(t, err)
	assert.Equal(t, testMnemonicAddress, AddressFromPublicKey(privkey.PubKey()))

	_, err = DeriveKeyFromMnemonic(DeriveKeyOpts{
		Mnemonic: []string{"not", "a", "mnemonic"},
	})
	assert.Equal(t, ErrInvalidMnemonic, err)
}

func TestFailingNewMnemonic(t *testing.T) {
	tests := []int{-1, 127, 257, 130}
	for _, tt := range tests {
		_, err := NewMnemonic(NewMnemonicOpts{EntropySize: tt})
		assert.NotNil(t, err)
	}

	mnemonic, err := NewMnemonic(NewMnemonicOpts{})
	require.NoError(t, err)
	assert.Len(t, mnemonic, 12)
}
