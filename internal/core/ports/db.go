package ports

import "github.com/idwallet/lwsd/internal/core/domain"

// RepoManager holds the repositories of the daemon, all backed by the same
// database.
type RepoManager interface {
	WalletRepository() domain.WalletRepository
	AttributeRepository() domain.AttributeRepository

	Close()
}
