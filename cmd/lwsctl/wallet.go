package main

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/pkg/wallet"
)

var walletCmd = cli.Command{
	Name:  "wallet",
	Usage: "manage the wallets known to the daemon",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "create a new local wallet and print its mnemonic",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "password",
					Usage:    "password to encrypt the keystore file with",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "name",
					Usage: "label of the wallet",
				},
				&cli.StringFlag{
					Name:  "hd-path",
					Usage: "derivation path of the wallet key",
					Value: wallet.DefaultDerivationPath.String(),
				},
				&cli.BoolFlag{
					Name:  "no-mnemonic",
					Usage: "generate a random key without mnemonic backup",
				},
			},
			Action: createWalletAction,
		},
		{
			Name:  "import",
			Usage: "import a local wallet from mnemonic or private key, or a hardware one by address",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "profile",
					Usage: "wallet profile (local|ledger|trezor)",
					Value: domain.ProfileLocal,
				},
				&cli.StringFlag{
					Name:  "mnemonic",
					Usage: "space separated mnemonic of a local wallet",
				},
				&cli.StringFlag{
					Name:  "privkey",
					Usage: "hex private key of a local wallet",
				},
				&cli.StringFlag{
					Name:  "password",
					Usage: "password to encrypt the keystore file with",
				},
				&cli.StringFlag{
					Name:  "address",
					Usage: "address of a hardware wallet",
				},
				&cli.StringFlag{
					Name:  "hd-path",
					Usage: "derivation path of the wallet key",
					Value: wallet.DefaultDerivationPath.String(),
				},
				&cli.StringFlag{
					Name:  "name",
					Usage: "label of the wallet",
				},
			},
			Action: importWalletAction,
		},
		{
			Name:   "list",
			Usage:  "list all wallets",
			Action: listWalletsAction,
		},
	},
}

type walletInfo struct {
	ID               string `json:"id"`
	Address          string `json:"address"`
	Name             string `json:"name,omitempty"`
	Profile          string `json:"profile"`
	KeystoreFilePath string `json:"keystoreFilePath,omitempty"`
	HDPath           string `json:"hdPath,omitempty"`
}

func newWalletInfo(w domain.Wallet) walletInfo {
	return walletInfo{
		ID:               w.ID,
		Address:          w.Address,
		Name:             w.Name,
		Profile:          w.Profile,
		KeystoreFilePath: w.KeystoreFilePath,
		HDPath:           w.HDPath,
	}
}

func createWalletAction(ctx *cli.Context) error {
	if ctx.Bool("no-mnemonic") {
		privkey, err := randomPrivateKey()
		if err != nil {
			return err
		}
		w, err := addLocalWallet(
			ctx, privkey, ctx.String("password"), ctx.String("name"),
		)
		if err != nil {
			return err
		}
		return printJSON(ctx, map[string]interface{}{
			"wallet": newWalletInfo(*w),
		})
	}

	mnemonic, err := wallet.NewMnemonic(wallet.NewMnemonicOpts{})
	if err != nil {
		return err
	}
	privkey, err := wallet.DeriveKeyFromMnemonic(wallet.DeriveKeyOpts{
		Mnemonic:       mnemonic,
		DerivationPath: ctx.String("hd-path"),
	})
	if err != nil {
		return err
	}

	w, err := addLocalWallet(
		ctx, privkey, ctx.String("password"), ctx.String("name"),
	)
	if err != nil {
		return err
	}

	return printJSON(ctx, map[string]interface{}{
		"wallet":   newWalletInfo(*w),
		"mnemonic": strings.Join(mnemonic, " "),
	})
}

func importWalletAction(ctx *cli.Context) error {
	profile := ctx.String("profile")
	if profile != domain.ProfileLocal {
		return importHardwareWallet(ctx, profile)
	}

	password := ctx.String("password")
	if len(password) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	var privkey *btcec.PrivateKey
	var err error
	switch {
	case len(ctx.String("mnemonic")) > 0:
		privkey, err = wallet.DeriveKeyFromMnemonic(wallet.DeriveKeyOpts{
			Mnemonic:       strings.Fields(ctx.String("mnemonic")),
			DerivationPath: ctx.String("hd-path"),
		})
	case len(ctx.String("privkey")) > 0:
		privkey, err = wallet.PrivateKeyFromHex(ctx.String("privkey"))
	default:
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	if err != nil {
		return err
	}

	w, err := addLocalWallet(ctx, privkey, password, ctx.String("name"))
	if err != nil {
		return err
	}
	return printJSON(ctx, newWalletInfo(*w))
}

func importHardwareWallet(ctx *cli.Context, profile string) error {
	address := ctx.String("address")
	if err := wallet.ValidateAddress(address); err != nil {
		return err
	}

	w := domain.Wallet{
		ID:      uuid.New().String(),
		Address: domain.NormalizeAddress(address),
		Name:    ctx.String("name"),
		Profile: profile,
		HDPath:  ctx.String("hd-path"),
	}
	if err := w.Validate(); err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.repo.WalletRepository().AddWallet(ctx.Context, w); err != nil {
		return err
	}
	return printJSON(ctx, newWalletInfo(w))
}

func addLocalWallet(
	ctx *cli.Context, privkey *btcec.PrivateKey, password, name string,
) (*domain.Wallet, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	address := wallet.AddressFromPublicKey(privkey.PubKey())
	if _, err := s.repo.WalletRepository().FindByAddress(
		ctx.Context, address,
	); err == nil {
		return nil, domain.ErrWalletAlreadyExists
	}

	path, err := s.keyStore.Store(privkey.Serialize(), password)
	if err != nil {
		return nil, fmt.Errorf("failed to store keystore file: %w", err)
	}

	w := domain.Wallet{
		ID:               uuid.New().String(),
		Address:          address,
		Name:             name,
		Profile:          domain.ProfileLocal,
		KeystoreFilePath: path,
	}
	if err := s.repo.WalletRepository().AddWallet(ctx.Context, w); err != nil {
		return nil, err
	}
	return &w, nil
}

func listWalletsAction(ctx *cli.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	wallets, err := s.repo.WalletRepository().FindAll(ctx.Context)
	if err != nil {
		return err
	}

	list := make([]walletInfo, 0, len(wallets))
	for _, w := range wallets {
		list = append(list, newWalletInfo(w))
	}
	return printJSON(ctx, list)
}

func randomPrivateKey() (*btcec.PrivateKey, error) {
	for {
		buf := make([]byte, btcec.PrivKeyBytesLen)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		if key, err := wallet.PrivateKeyFromBytes(buf); err == nil {
			return key, nil
		}
	}
}
