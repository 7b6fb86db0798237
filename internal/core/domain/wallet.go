package domain

import "strings"

const (
	// ProfileLocal identifies wallets whose private key is stored in a local
	// encrypted keystore file.
	ProfileLocal = "local"
	// ProfileLedger identifies wallets backed by a Ledger device.
	ProfileLedger = "ledger"
	// ProfileTrezor identifies wallets backed by a Trezor device.
	ProfileTrezor = "trezor"
)

// Wallet is a record of one identity known to the desktop application.
type Wallet struct {
	ID               string
	Address          string
	Name             string
	Profile          string
	KeystoreFilePath string
	HDPath           string
}

// IsHardware returns whether signing for the wallet is delegated to a device.
func (w Wallet) IsHardware() bool {
	return w.Profile == ProfileLedger || w.Profile == ProfileTrezor
}

// Validate checks that the wallet carries what its profile needs.
func (w Wallet) Validate() error {
	switch w.Profile {
	case ProfileLocal:
		if len(w.KeystoreFilePath) <= 0 {
			return ErrMissingKeystore
		}
	case ProfileLedger, ProfileTrezor:
		if len(w.HDPath) <= 0 {
			return ErrMissingHDPath
		}
	default:
		return ErrUnknownProfile
	}
	return nil
}

// NormalizeAddress returns the canonical (lowercase, 0x prefixed) form of
// an address, used as key everywhere addresses are compared.
func NormalizeAddress(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	if len(address) <= 0 {
		return ""
	}
	if !strings.HasPrefix(address, "0x") {
		address = "0x" + address
	}
	return address
}
