package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/idwallet/lwsd/internal/core/domain"
)

type walletRepositoryImpl struct {
	store *badgerhold.Store
}

// NewWalletRepositoryImpl returns a badger implementation of
// domain.WalletRepository. Wallets are keyed by address.
func NewWalletRepositoryImpl(store *badgerhold.Store) domain.WalletRepository {
	return walletRepositoryImpl{store}
}

func (r walletRepositoryImpl) AddWallet(
	_ context.Context, wallet domain.Wallet,
) error {
	if err := wallet.Validate(); err != nil {
		return err
	}
	wallet.Address = domain.NormalizeAddress(wallet.Address)

	if err := r.store.Insert(wallet.Address, &wallet); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrWalletAlreadyExists
		}
		return err
	}
	return nil
}

func (r walletRepositoryImpl) FindAll(
	_ context.Context,
) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	if err := r.store.Find(&wallets, nil); err != nil {
		return nil, err
	}
	if wallets == nil {
		wallets = make([]domain.Wallet, 0)
	}
	return wallets, nil
}

func (r walletRepositoryImpl) FindByAddress(
	_ context.Context, address string,
) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := r.store.Get(domain.NormalizeAddress(address), &wallet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r walletRepositoryImpl) HasSignedUpTo(
	_ context.Context, walletID, websiteURL string,
) (bool, error) {
	query := badgerhold.Where("WalletID").Eq(walletID).
		And("WebsiteURL").Eq(websiteURL).
		And("Success").Eq(true)

	var attempts []domain.LoginAttempt
	if err := r.store.Find(&attempts, query.Limit(1)); err != nil {
		return false, err
	}
	return len(attempts) > 0, nil
}

func (r walletRepositoryImpl) AddLoginAttempt(
	_ context.Context, attempt domain.LoginAttempt,
) error {
	if err := r.store.Insert(attempt.ID, &attempt); err != nil {
		if err != badgerhold.ErrKeyExists {
			return err
		}
	}
	return nil
}

func (r walletRepositoryImpl) ListLoginAttempts(
	_ context.Context, walletID string,
) ([]domain.LoginAttempt, error) {
	query := badgerhold.Where("WalletID").Eq(walletID).SortBy("CreatedAt")

	var attempts []domain.LoginAttempt
	if err := r.store.Find(&attempts, query); err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = make([]domain.LoginAttempt, 0)
	}
	return attempts, nil
}
