package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	log "github.com/sirupsen/logrus"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
	"github.com/idwallet/lwsd/pkg/wallet"
)

// IdentityStatus is the unlock state of an Identity.
type IdentityStatus int

const (
	IdentityLocked IdentityStatus = iota
	IdentityUnlocking
	IdentityUnlocked
	// IdentityFailed is entered after a failed unlock. It counts as locked and
	// a new unlock attempt is allowed.
	IdentityFailed
)

func (s IdentityStatus) String() string {
	switch s {
	case IdentityUnlocking:
		return "unlocking"
	case IdentityUnlocked:
		return "unlocked"
	case IdentityFailed:
		return "failed"
	default:
		return "locked"
	}
}

// Identity is one unlockable cryptographic identity bound to a wallet.
// Local identities hold their private key in memory once unlocked, hardware
// ones delegate signing to a device and cannot be unlocked with a password.
type Identity interface {
	Wallet() domain.Wallet
	Address() string
	PublicKey() string
	Profile() string
	Status() IdentityStatus
	IsUnlocked() bool
	Unlock(ctx context.Context, password string) error
	SignMessage(ctx context.Context, msg []byte) (string, error)
	GetAttributesByTypes(
		ctx context.Context, urls []string,
	) ([]domain.Attribute, error)
}

// IdentityOpts groups the collaborators identities depend on.
type IdentityOpts struct {
	KeyStore            ports.KeyStore
	Transports          ports.TransportOpener
	AttributeRepository domain.AttributeRepository
}

// NewIdentity returns the Identity variant matching the wallet profile.
func NewIdentity(w domain.Wallet, opts IdentityOpts) (Identity, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	base := identity{
		wallet:   w,
		attrRepo: opts.AttributeRepository,
		status:   IdentityLocked,
		lock:     &sync.RWMutex{},
	}

	if w.IsHardware() {
		return &hardwareIdentity{base, opts.Transports}, nil
	}
	return &localIdentity{identity: base, keyStore: opts.KeyStore}, nil
}

type identity struct {
	wallet    domain.Wallet
	attrRepo  domain.AttributeRepository
	status    IdentityStatus
	publicKey string

	lock *sync.RWMutex
}

func (i *identity) Wallet() domain.Wallet {
	return i.wallet
}

func (i *identity) Address() string {
	return domain.NormalizeAddress(i.wallet.Address)
}

func (i *identity) Profile() string {
	return i.wallet.Profile
}

func (i *identity) PublicKey() string {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return i.publicKey
}

func (i *identity) Status() IdentityStatus {
	i.lock.RLock()
	defer i.lock.RUnlock()
	return i.status
}

func (i *identity) IsUnlocked() bool {
	return i.Status() == IdentityUnlocked
}

func (i *identity) GetAttributesByTypes(
	ctx context.Context, urls []string,
) ([]domain.Attribute, error) {
	if len(urls) <= 0 {
		return []domain.Attribute{}, nil
	}
	return i.attrRepo.FindByTypeURLs(ctx, i.wallet.ID, urls)
}

func (i *identity) setStatus(status IdentityStatus) {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.status = status
}

type localIdentity struct {
	identity
	keyStore ports.KeyStore
	privkey  *btcec.PrivateKey
}

func (i *localIdentity) Unlock(_ context.Context, password string) error {
	i.setStatus(IdentityUnlocking)

	key, err := i.keyStore.Decrypt(i.wallet.KeystoreFilePath, password)
	if err != nil {
		i.setStatus(IdentityFailed)
		return fmt.Errorf("%w: %s", ErrInvalidPassword, err)
	}
	privkey, err := wallet.PrivateKeyFromBytes(key)
	if err != nil {
		i.setStatus(IdentityFailed)
		return fmt.Errorf("%w: %s", ErrInvalidPassword, err)
	}
	if wallet.AddressFromPublicKey(privkey.PubKey()) != i.Address() {
		i.setStatus(IdentityFailed)
		return ErrAddressMismatch
	}

	i.lock.Lock()
	defer i.lock.Unlock()

	i.privkey = privkey
	i.publicKey = wallet.PublicKeyHex(privkey.PubKey())
	i.status = IdentityUnlocked
	return nil
}

func (i *localIdentity) SignMessage(
	_ context.Context, msg []byte,
) (string, error) {
	i.lock.RLock()
	privkey, status := i.privkey, i.status
	i.lock.RUnlock()

	if status != IdentityUnlocked || privkey == nil {
		return "", ErrIdentityLocked
	}

	sig, err := wallet.SignPersonalMessage(privkey, msg)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

type hardwareIdentity struct {
	identity
	transports ports.TransportOpener
}

func (i *hardwareIdentity) Unlock(context.Context, string) error {
	return ErrNotSupported
}

func (i *hardwareIdentity) SignMessage(
	ctx context.Context, msg []byte,
) (string, error) {
	var signature string
	err := withTransport(
		ctx, i.transports, i.wallet.Profile,
		func(t ports.HardwareTransport) error {
			if i.PublicKey() == "" {
				if err := i.resolvePublicKey(ctx, t); err != nil {
					return err
				}
			}
			sig, err := t.SignPersonalMessage(ctx, i.wallet.HDPath, msg)
			if err != nil {
				return err
			}
			signature = formatHardwareSignature(i.wallet.Profile, sig)
			return nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%s signature failed: %w", i.wallet.Profile, err)
	}
	return signature, nil
}

// resolvePublicKey reads the public key at the wallet derivation path and
// makes sure the device holds the key of this wallet.
func (i *hardwareIdentity) resolvePublicKey(
	ctx context.Context, t ports.HardwareTransport,
) error {
	key, err := t.GetPublicKey(ctx, i.wallet.HDPath)
	if err != nil {
		return err
	}
	pubkey, err := wallet.PublicKeyFromHex(key)
	if err != nil {
		return err
	}
	if wallet.AddressFromPublicKey(pubkey) != i.Address() {
		return ErrAddressMismatch
	}

	i.lock.Lock()
	defer i.lock.Unlock()
	i.publicKey = wallet.PublicKeyHex(pubkey)
	return nil
}

// withTransport opens a transport for the given profile and hands it to fn.
// The transport is closed on every exit path, panics included.
func withTransport(
	ctx context.Context, opener ports.TransportOpener, profile string,
	fn func(t ports.HardwareTransport) error,
) error {
	if opener == nil {
		return fmt.Errorf("no transport available for %s", profile)
	}
	t, err := opener.Open(ctx, profile)
	if err != nil {
		return err
	}
	defer func() {
		if err := t.Close(); err != nil {
			log.WithError(err).Warnf("failed to close %s transport", profile)
		}
	}()

	return fn(t)
}

func formatHardwareSignature(
	profile string, sig *ports.HardwareSignature,
) string {
	if profile == domain.ProfileTrezor {
		return addHexPrefix(sig.Signature)
	}

	v := sig.V
	if v >= 27 {
		v -= 27
	}
	return fmt.Sprintf(
		"0x%s%s%02x",
		strings.TrimPrefix(sig.R, "0x"), strings.TrimPrefix(sig.S, "0x"), v,
	)
}

func addHexPrefix(str string) string {
	if strings.HasPrefix(str, "0x") {
		return str
	}
	return "0x" + str
}
