package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/idwallet/lwsd/internal/core/domain"
)

// WalletRepositoryImpl represents an in memory storage
type WalletRepositoryImpl struct {
	wallets  map[string]domain.Wallet
	attempts map[string][]domain.LoginAttempt

	lock *sync.RWMutex
}

// NewWalletRepositoryImpl returns a new empty WalletRepositoryImpl
func NewWalletRepositoryImpl() *WalletRepositoryImpl {
	return &WalletRepositoryImpl{
		wallets:  map[string]domain.Wallet{},
		attempts: map[string][]domain.LoginAttempt{},
		lock:     &sync.RWMutex{},
	}
}

func (r *WalletRepositoryImpl) AddWallet(
	_ context.Context, wallet domain.Wallet,
) error {
	if err := wallet.Validate(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	wallet.Address = domain.NormalizeAddress(wallet.Address)
	if _, ok := r.wallets[wallet.Address]; ok {
		return domain.ErrWalletAlreadyExists
	}
	r.wallets[wallet.Address] = wallet
	return nil
}

func (r *WalletRepositoryImpl) FindAll(
	_ context.Context,
) ([]domain.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	wallets := make([]domain.Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		wallets = append(wallets, w)
	}
	sort.SliceStable(wallets, func(i, j int) bool {
		return wallets[i].Address < wallets[j].Address
	})
	return wallets, nil
}

func (r *WalletRepositoryImpl) FindByAddress(
	_ context.Context, address string,
) (*domain.Wallet, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	w, ok := r.wallets[domain.NormalizeAddress(address)]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

func (r *WalletRepositoryImpl) HasSignedUpTo(
	_ context.Context, walletID, websiteURL string,
) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, a := range r.attempts[walletID] {
		if a.Success && a.WebsiteURL == websiteURL {
			return true, nil
		}
	}
	return false, nil
}

func (r *WalletRepositoryImpl) AddLoginAttempt(
	_ context.Context, attempt domain.LoginAttempt,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.attempts[attempt.WalletID] = append(r.attempts[attempt.WalletID], attempt)
	return nil
}

func (r *WalletRepositoryImpl) ListLoginAttempts(
	_ context.Context, walletID string,
) ([]domain.LoginAttempt, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	attempts := make([]domain.LoginAttempt, len(r.attempts[walletID]))
	copy(attempts, r.attempts[walletID])
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt < attempts[j].CreatedAt
	})
	return attempts, nil
}
