package ports

import "context"

// HardwareSignature is the result of a personal message signature made by a
// hardware device. Ledger devices return the V, R and S components, Trezor
// devices the whole hex encoded signature.
type HardwareSignature struct {
	V         byte
	R         string
	S         string
	Signature string
}

// HardwareTransport is an open, exclusive channel to a hardware wallet.
type HardwareTransport interface {
	// GetPublicKey returns the hex encoded public key at the given derivation
	// path, either compressed or uncompressed, with or without the 0x04 prefix.
	GetPublicKey(ctx context.Context, hdPath string) (string, error)
	// SignPersonalMessage signs msg with the key at the given derivation path.
	SignPersonalMessage(
		ctx context.Context, hdPath string, msg []byte,
	) (*HardwareSignature, error)
	// Close releases the device.
	Close() error
}

// TransportOpener opens transports to hardware wallets of a given profile.
type TransportOpener interface {
	Open(ctx context.Context, profile string) (HardwareTransport, error)
}
