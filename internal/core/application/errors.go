package application

import "errors"

var (
	// ErrNotSupported is returned when unlocking an identity whose key is
	// held by a hardware device.
	ErrNotSupported = errors.New("NOT_SUPPORTED")
	// ErrInvalidPassword is returned when the key material of a local
	// identity cannot be decrypted with the given password.
	ErrInvalidPassword = errors.New("INVALID_PASSWORD")
	// ErrIdentityLocked is returned when signing with a locked identity.
	ErrIdentityLocked = errors.New("identity is locked")
	// ErrAddressMismatch is returned when the decrypted key, or the public key
	// read from a device, does not belong to the wallet.
	ErrAddressMismatch = errors.New("key does not match wallet address")
	// ErrWalletListing is returned when resolving the state of a wallet
	// panics.
	ErrWalletListing = errors.New("failed to resolve wallet state")
	// ErrMissingAttributeType is returned when an attribute was loaded without
	// its schema.
	ErrMissingAttributeType = errors.New("attribute has no type")
	// ErrSessionNotEstablished is the panic value raised when using a relying
	// party session before establishing it.
	ErrSessionNotEstablished = errors.New("relying party session not established")
	// ErrMissingWalletRepository ...
	ErrMissingWalletRepository = errors.New("missing wallet repository")
	// ErrMissingAttributeRepository ...
	ErrMissingAttributeRepository = errors.New("missing attribute repository")
	// ErrMissingKeyStore ...
	ErrMissingKeyStore = errors.New("missing key store")
	// ErrMissingRelyingPartyClient ...
	ErrMissingRelyingPartyClient = errors.New("missing relying party client")
)
