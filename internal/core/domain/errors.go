package domain

import "errors"

var (
	// ErrWalletNotFound is returned when no wallet matches the given address.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = errors.New("wallet already exists")
	// ErrUnknownProfile is returned for wallets whose profile is not one of
	// local, ledger or trezor.
	ErrUnknownProfile = errors.New("unknown wallet profile")
	// ErrMissingKeystore is returned for local wallets without a keystore file.
	ErrMissingKeystore = errors.New("local wallet must reference a keystore file")
	// ErrMissingHDPath is returned for hardware wallets without a derivation
	// path.
	ErrMissingHDPath = errors.New("hardware wallet must have a derivation path")
	// ErrAttributeNotFound ...
	ErrAttributeNotFound = errors.New("attribute not found")
	// ErrAttributeTypeNotFound ...
	ErrAttributeTypeNotFound = errors.New("attribute type not found")
	// ErrAttributeTypeAlreadyExists ...
	ErrAttributeTypeAlreadyExists = errors.New("attribute type already exists")
	// ErrInvalidAttributeType is returned when the attribute type has no url
	// or its content is not a JSON object.
	ErrInvalidAttributeType = errors.New("attribute type must have an url and a JSON schema")
)
