package domain

import "context"

// WalletRepository is the abstraction for any kind of database intended to
// persist Wallets and the LoginAttempts made with them.
type WalletRepository interface {
	// AddWallet adds a new wallet to the repository. ErrWalletAlreadyExists
	// is returned if a wallet with the same address exists.
	AddWallet(ctx context.Context, wallet Wallet) error
	// FindAll returns all known wallets.
	FindAll(ctx context.Context) ([]Wallet, error)
	// FindByAddress returns the wallet with the given address or
	// ErrWalletNotFound.
	FindByAddress(ctx context.Context, address string) (*Wallet, error)
	// HasSignedUpTo returns whether the wallet ever successfully logged in or
	// signed up to the given website.
	HasSignedUpTo(ctx context.Context, walletID, websiteURL string) (bool, error)
	// AddLoginAttempt persists a new login attempt.
	AddLoginAttempt(ctx context.Context, attempt LoginAttempt) error
	// ListLoginAttempts returns the login attempts of a wallet, oldest first.
	ListLoginAttempts(ctx context.Context, walletID string) ([]LoginAttempt, error)
}
