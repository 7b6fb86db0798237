package ports

// KeyStore gives access to the encrypted key material of local wallets.
type KeyStore interface {
	// Decrypt returns the raw private key referenced by ref, or an error if
	// the password does not open it.
	Decrypt(ref, password string) ([]byte, error)
}
