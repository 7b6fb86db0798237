package wallet

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	entropy, err := bip39.NewEntropy(opts.EntropySize)
	if err != nil {
		return nil, err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

// DeriveKeyOpts is the struct given to DeriveKeyFromMnemonic method
type DeriveKeyOpts struct {
	Mnemonic       []string
	Passphrase     string
	DerivationPath string
}

func (o DeriveKeyOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !bip39.IsMnemonicValid(strings.Join(o.Mnemonic, " ")) {
		return ErrInvalidMnemonic
	}
	if o.DerivationPath != "" {
		if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
			return err
		}
	}
	return nil
}

// DeriveKeyFromMnemonic derives the private key at the given derivation path
// (DefaultDerivationPath if empty) from the BIP39 seed of the mnemonic.
func DeriveKeyFromMnemonic(opts DeriveKeyOpts) (*btcec.PrivateKey, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	path := DefaultDerivationPath
	if opts.DerivationPath != "" {
		path, _ = ParseDerivationPath(opts.DerivationPath)
	}

	seed := bip39.NewSeed(strings.Join(opts.Mnemonic, " "), opts.Passphrase)
	hdNode, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	for _, step := range path {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, err
		}
	}

	return hdNode.ECPrivKey()
}
