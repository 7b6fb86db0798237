package inmemory

import (
	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
)

type RepoManager struct {
	walletRepository    domain.WalletRepository
	attributeRepository domain.AttributeRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		walletRepository:    NewWalletRepositoryImpl(),
		attributeRepository: NewAttributeRepositoryImpl(),
	}
}

func (d *RepoManager) WalletRepository() domain.WalletRepository {
	return d.walletRepository
}

func (d *RepoManager) AttributeRepository() domain.AttributeRepository {
	return d.attributeRepository
}

func (d *RepoManager) Close() {}
