package keystore

import "errors"

var (
	// ErrMissingDir ...
	ErrMissingDir = errors.New("keystore directory must not be null")
	// ErrKeystoreNotFound is returned if the referenced keystore file does
	// not exist.
	ErrKeystoreNotFound = errors.New("keystore file not found")
)
