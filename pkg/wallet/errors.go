package wallet

import "errors"

var (
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPrivateKey ...
	ErrNullPrivateKey = errors.New("private key must not be null")
	// ErrNullKeystore ...
	ErrNullKeystore = errors.New("keystore must not be null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")

	// ErrInvalidPrivateKey ...
	ErrInvalidPrivateKey = errors.New("private key must be a 32 byte scalar")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and can optionally start with 'm/'",
	)
	// ErrInvalidKeystore is returned when the keystore json can not be parsed
	// or uses unsupported cipher/kdf parameters.
	ErrInvalidKeystore = errors.New("keystore is invalid or unsupported")
	// ErrInvalidPassphrase is returned when the MAC of the keystore doesn't
	// match the one computed with the given passphrase.
	ErrInvalidPassphrase = errors.New("could not decrypt key with given passphrase")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("public key must be a valid secp256k1 point")
	// ErrMalformedSignature ...
	ErrMalformedSignature = errors.New("signature must be a 65 byte r||s||v hex string")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address must be a 20 byte hex string")
)
